package delivery

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quad400/kaydee-boutique/internal/domain"
	"github.com/sirupsen/logrus"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// failWith writes err in the envelope. Messages of internal errors stay in
// the log.
func failWith(c *gin.Context, log logrus.FieldLogger, action string, err error) {
	statusCode := mapErrorToStatus(err)
	if statusCode == http.StatusInternalServerError {
		log.Errorf("Failed to %s: %v", action, err)
		ErrorResponse(c, statusCode, "Internal server error")
		return
	}
	log.Warnf("Failed to %s: %v", action, err)
	ErrorResponse(c, statusCode, err.Error())
}

// NotFound answers routes no handler is registered for.
func NotFound(c *gin.Context) {
	ErrorResponse(c, http.StatusNotFound, "Not Found - "+c.Request.URL.Path)
}
