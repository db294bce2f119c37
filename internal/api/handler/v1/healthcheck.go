package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/registration-api/internal/api/handler/v1/response"
)

// HandleHealthcheck godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string
// @Router       / [get]
func HandleHealthcheck(eventName string) gin.HandlerFunc {
	message := response.Liveness(eventName)

	return func(ctx *gin.Context) {
		ctx.String(http.StatusOK, message)
	}
}
