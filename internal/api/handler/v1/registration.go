package v1

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vietanh2810/registration-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/registration-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/registration-api/internal/config"
	"github.com/vietanh2810/registration-api/internal/domain"
	"github.com/vietanh2810/registration-api/internal/service"
)

type RegistrationService interface {
	Submit(ctx context.Context, sub domain.Submission, upload *domain.Upload, baseURL string) (domain.StoredFile, error)
}

type RegistrationHandler struct {
	conf *config.IntakeConfig
	svc  RegistrationService
}

func NewRegistrationHandler(conf *config.IntakeConfig, svc RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		conf: conf,
		svc:  svc,
	}
}

// HandleSubmit godoc
// @Summary      Submit a registration
// @Description  Accepts the registration form with an optional payment receipt. The row append and the confirmation email happen after the response is sent.
// @Tags         registrations
// @Accept       mpfd
// @Accept       json
// @Produce      plain
// @Param        name           formData  string  true   "applicant name"
// @Param        rollNumber     formData  string  true   "roll number"
// @Param        program        formData  string  true   "program"
// @Param        semester       formData  string  true   "semester"
// @Param        mobileNumber   formData  string  true   "mobile number"
// @Param        college        formData  string  true   "college"
// @Param        eventType      formData  []string true  "selected events" collectionFormat(multi)
// @Param        teamType       formData  string  false  "Individual or Team"
// @Param        teamName       formData  string  false  "team name"
// @Param        teamMembers    formData  string  false  "JSON array of members or comma separated names"
// @Param        upiId          formData  string  true   "UPI id used for the payment"
// @Param        transactionId  formData  string  true   "payment transaction id"
// @Param        email          formData  string  false  "address for the confirmation email"
// @Param        whatsappLink   formData  string  false  "community group link"
// @Param        paymentReceipt formData  file    false  "payment receipt"
// @Success      200  {string}  string
// @Failure      400  {string}  string
// @Failure      413  {string}  string
// @Failure      500  {string}  string
// @Router       /submit [post]
func (h *RegistrationHandler) HandleSubmit(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, h.conf.MaxBodyMB<<20)

	var (
		sub     domain.Submission
		receipt *multipart.FileHeader
		err     error
	)
	if request.IsJSON(ctx.Request) {
		sub, err = request.DecodeJSON(ctx.Request)
	} else {
		sub, receipt, err = request.DecodeForm(ctx.Request, h.conf.MaxUploadMB<<20, h.conf.ReceiptField)
	}
	if err != nil {
		if errors.Is(err, request.ErrBodyTooLarge) {
			response.RenderErr(ctx, response.ErrTooLarge(err))
			return
		}
		response.RenderErr(ctx, response.ErrBadRequest(response.MsgInvalidBody, err))
		return
	}

	var upload *domain.Upload
	if receipt != nil {
		file, err := receipt.Open()
		if err != nil {
			err = fmt.Errorf("v1.HandleSubmit -> receipt.Open -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}
		defer file.Close()

		upload = &domain.Upload{
			Filename:    receipt.Filename,
			ContentType: receipt.Header.Get("Content-Type"),
			Size:        receipt.Size,
			Reader:      file,
		}
	}

	stored, err := h.svc.Submit(ctx.Request.Context(), sub, upload, BaseURL(ctx.Request))
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr) && errors.Is(validationErr.Reason, service.ErrMissingReceipt):
			response.RenderErr(ctx, response.ErrBadRequest(response.MsgMissingReceipt, err))
		case errors.As(err, &validationErr):
			response.RenderErr(ctx, response.ErrBadRequest(response.MsgMissingFields, err))
		default:
			err = fmt.Errorf("v1.HandleSubmit -> h.svc.Submit -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	zap.L().Info("registration accepted",
		zap.String("request_id", requestid.Get(ctx)),
		zap.String("transaction_id", sub.TransactionID),
		zap.String("event", sub.EventLabel()),
		zap.String("receipt", stored.URL),
	)

	ctx.String(http.StatusOK, response.MsgAccepted)
}

// BaseURL is the scheme and host the request was made on. A TLS terminating
// proxy in front of the service reports the original scheme in
// X-Forwarded-Proto.
func BaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	return scheme + "://" + r.Host
}
