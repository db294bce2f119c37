package v1

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/registration-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/registration-api/internal/config"
	"github.com/vietanh2810/registration-api/internal/domain"
	"github.com/vietanh2810/registration-api/internal/service"
)

type submitCall struct {
	sub     domain.Submission
	receipt string
	baseURL string
}

type fakeRegistrationService struct {
	calls []submitCall
	err   error
}

func (f *fakeRegistrationService) Submit(_ context.Context, sub domain.Submission, upload *domain.Upload, baseURL string) (domain.StoredFile, error) {
	call := submitCall{sub: sub, baseURL: baseURL}
	if upload != nil {
		b, err := io.ReadAll(upload.Reader)
		if err != nil {
			return domain.StoredFile{}, err
		}
		call.receipt = upload.Filename + ":" + string(b)
	}
	f.calls = append(f.calls, call)

	return domain.StoredFile{URL: baseURL + "/uploads/x"}, f.err
}

func newTestRouter(svc RegistrationService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	conf := &config.IntakeConfig{ReceiptField: "paymentReceipt", MaxUploadMB: 1, MaxBodyMB: 1}
	r := gin.New()
	r.GET("/", HandleHealthcheck("YUGANTRAN 2025"))
	r.POST("/submit", NewRegistrationHandler(conf, svc).HandleSubmit)

	return r
}

func multipartBody(t *testing.T, fields map[string][]string, receipt string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	if receipt != "" {
		part, err := w.CreateFormFile("paymentReceipt", "my receipt.png")
		require.NoError(t, err)
		_, err = part.Write([]byte(receipt))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return &body, w.FormDataContentType()
}

func TestHandleHealthcheck(t *testing.T) {
	r := newTestRouter(&fakeRegistrationService{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "✅ YUGANTRAN 2025 Backend Running Successfully!", rec.Body.String())
}

func TestHandleSubmit_Multipart(t *testing.T) {
	svc := &fakeRegistrationService{}
	r := newTestRouter(svc)

	body, contentType := multipartBody(t, map[string][]string{
		"name":          {" Asha "},
		"eventType[]":   {"Hack", "Quiz"},
		"teamMembers":   {`[{"name":"Bob"}]`},
		"transactionId": {"TX-1"},
	}, "png-bytes")

	req := httptest.NewRequest(http.MethodPost, "/submit", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Host = "api.example.com"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, response.MsgAccepted, rec.Body.String())

	require.Len(t, svc.calls, 1)
	call := svc.calls[0]
	assert.Equal(t, "Asha", call.sub.Name)
	assert.Equal(t, []string{"Hack", "Quiz"}, call.sub.Events)
	assert.Equal(t, domain.TeamMembersFromText(`[{"name":"Bob"}]`), call.sub.TeamMembers)
	assert.Equal(t, "my receipt.png:png-bytes", call.receipt)
	assert.Equal(t, "https://api.example.com", call.baseURL)
}

func TestHandleSubmit_JSON(t *testing.T) {
	svc := &fakeRegistrationService{}
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(
		`{"name":"Asha","semester":3,"eventType":"Hack","teamMembers":["Bob","Ann"],"transactionId":"TX-1"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.calls, 1)
	assert.Equal(t, "3", svc.calls[0].sub.Semester)
	assert.Equal(t, []string{"Hack"}, svc.calls[0].sub.Events)
	assert.Equal(t, domain.TeamMembersFromList([]any{"Bob", "Ann"}), svc.calls[0].sub.TeamMembers)
	assert.Empty(t, svc.calls[0].receipt)
}

func TestHandleSubmit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "missing fields",
			err:     &service.ValidationError{Reason: service.ErrMissingFields, Fields: []string{"transactionId"}},
			status:  http.StatusBadRequest,
			message: "❌ Missing required fields.",
		},
		{
			name:    "missing receipt",
			err:     &service.ValidationError{Reason: service.ErrMissingReceipt},
			status:  http.StatusBadRequest,
			message: "❌ Missing payment receipt file.",
		},
		{
			name:    "storage failure",
			err:     &service.IntakeError{Op: "store receipt", Err: errors.New("disk full")},
			status:  http.StatusInternalServerError,
			message: "⚠️ Server Error while submitting data.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeRegistrationService{err: tt.err})

			body, contentType := multipartBody(t, map[string][]string{"name": {"Asha"}}, "")
			req := httptest.NewRequest(http.MethodPost, "/submit", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "disk full")
		})
	}
}

func TestHandleSubmit_BadBodies(t *testing.T) {
	svc := &fakeRegistrationService{}
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, response.MsgInvalidBody, rec.Body.String())

	big := `{"name":"` + strings.Repeat("a", 2<<20) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, svc.calls)
}

func TestBaseURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/submit", nil)
	assert.Equal(t, "http://api.example.com", BaseURL(req))

	req.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https://api.example.com", BaseURL(req))

	req.TLS = nil
	req.Header.Set("X-Forwarded-Proto", "https, http")
	assert.Equal(t, "https://api.example.com", BaseURL(req))
}
