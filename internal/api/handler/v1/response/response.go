package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Client facing strings. Forms in the wild match on them, keep them stable.
const (
	MsgAccepted       = "✅ Registration received! We are processing it."
	MsgMissingFields  = "❌ Missing required fields."
	MsgMissingReceipt = "❌ Missing payment receipt file."
	MsgInvalidBody    = "❌ Invalid request body."
	MsgBodyTooLarge   = "❌ Request body too large."
	MsgServerError    = "⚠️ Server Error while submitting data."
)

func Liveness(eventName string) string {
	return fmt.Sprintf("✅ %v Backend Running Successfully!", eventName)
}

// Err is an error rendered to the client as its fixed message. The wrapped
// error is only logged.
type Err struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return fmt.Sprintf("%v: %v", e.Message, e.Err)
}

func (e *Err) Unwrap() error {
	return e.Err
}

func ErrBadRequest(message string, err error) *Err {
	return &Err{
		Status:  http.StatusBadRequest,
		Message: message,
		Err:     err,
	}
}

func ErrTooLarge(err error) *Err {
	return &Err{
		Status:  http.StatusRequestEntityTooLarge,
		Message: MsgBodyTooLarge,
		Err:     err,
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Status:  http.StatusInternalServerError,
		Message: MsgServerError,
		Err:     err,
	}
}

func RenderErr(ctx *gin.Context, e *Err) {
	fields := []zap.Field{
		zap.Int("status", e.Status),
		zap.String("request_id", requestid.Get(ctx)),
		zap.Error(e.Err),
	}

	if e.Status >= http.StatusInternalServerError {
		zap.L().Error("request failed", fields...)
	} else {
		zap.L().Info("request rejected", fields...)
	}

	ctx.String(e.Status, e.Message)
}
