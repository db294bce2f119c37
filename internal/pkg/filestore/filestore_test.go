package filestore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/registration-api/internal/config"
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"receipt.png":           "receipt.png",
		"my  upi\treceipt.png":  "my_upi_receipt.png",
		"../../etc/passwd":      "passwd",
		`C:\Users\asha\r 1.jpg`: "r_1.jpg",
		"":                      "receipt",
		"..":                    "receipt",
		"/":                     "receipt",
	}

	for in, want := range tests {
		assert.Equal(t, want, SanitizeName(in), "input %q", in)
	}
}

func TestUniqueName(t *testing.T) {
	a, err := UniqueName("my receipt.png")
	require.NoError(t, err)
	b, err := UniqueName("my receipt.png")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "-my_receipt.png"), a)
}

func TestLocalStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalStore(dir, "uploads/", "")
	require.NoError(t, err)

	assert.Equal(t, "/uploads", store.PublicPath())

	location, err := store.Save(context.Background(), "abc-r.png", strings.NewReader("data"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc-r.png"), location)

	b, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))

	_, err = store.Save(context.Background(), "abc-r.png", strings.NewReader("again"), "")
	assert.Error(t, err, "existing receipts are never overwritten")

	assert.Equal(t, "https://api.example.com/uploads/abc-r.png", store.URL("https://api.example.com/", "abc-r.png"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestLocalStore_RemovesPartialFile(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads", "")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "partial.png", io.MultiReader(strings.NewReader("da"), failingReader{}), "")
	require.Error(t, err)

	_, err = os.Stat(filepath.Join(store.Dir(), "partial.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_PublicBaseURL(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads", "https://cdn.example.com/")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/uploads/a%20b.png", store.URL("http://internal:5000", "a b.png"))
}

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}

	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(b))

	return &s3.PutObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	putter := &fakePutter{}
	store := NewS3StoreWithClient(putter, "receipts", "/2025/", "https://files.example.com/")

	key, err := store.Save(context.Background(), "abc-r.png", strings.NewReader("data"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "2025/abc-r.png", key)
	require.Len(t, putter.inputs, 1)
	assert.Equal(t, "receipts", aws.ToString(putter.inputs[0].Bucket))
	assert.Equal(t, "2025/abc-r.png", aws.ToString(putter.inputs[0].Key))
	assert.Equal(t, "image/png", aws.ToString(putter.inputs[0].ContentType))
	assert.Equal(t, "data", putter.bodies[0])

	assert.Equal(t, "https://files.example.com/2025/abc-r.png", store.URL("http://ignored", "abc-r.png"))
}

func TestS3Store_PutFailure(t *testing.T) {
	store := NewS3StoreWithClient(&fakePutter{err: errors.New("access denied")}, "receipts", "", "https://files.example.com")

	_, err := store.Save(context.Background(), "abc-r.png", strings.NewReader("data"), "")
	assert.ErrorContains(t, err, "access denied")
}

func TestNew(t *testing.T) {
	store, err := New(context.Background(), &config.StorageConfig{Driver: config.StorageDriverLocal, Dir: t.TempDir(), PublicPath: "/uploads"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = New(context.Background(), &config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
