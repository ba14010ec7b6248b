package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/app/models"
)

// statusClientClosedRequest is the de facto status for a request the client
// abandoned.
const statusClientClosedRequest = 499

type BaseHandler struct {
	Logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseHandler{Logger: logger}
}

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(err error) int {
	switch models.KindOf(err) {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindConfiguration:
		return http.StatusServiceUnavailable
	case models.KindProvider, models.KindMalformedResponse, models.KindInvalidStructure:
		return http.StatusBadGateway
	case models.KindCancelled:
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err as an ErrorResponse with the status its kind maps
// to.
func (h *BaseHandler) RespondError(c *gin.Context, err error) {
	status := StatusFor(err)
	code := models.KindOf(err).String()

	message := err.Error()
	var e *models.Error
	if errors.As(err, &e) && e.Err != nil {
		message = e.Err.Error()
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: message})
}

// BadRequest answers 400 for malformed input that never reached the domain.
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: code, Message: message})
}
