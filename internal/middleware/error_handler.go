package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sutaaa0/cashier-app-sub001/internal/cron"
	"github.com/sutaaa0/cashier-app-sub001/internal/dbadmin"
	"github.com/sutaaa0/cashier-app-sub001/internal/oplock"
	"github.com/sutaaa0/cashier-app-sub001/internal/service"
	"github.com/sutaaa0/cashier-app-sub001/internal/settings"
	"github.com/sutaaa0/cashier-app-sub001/pkg/config"
	"github.com/sutaaa0/cashier-app-sub001/pkg/logger"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message,omitempty"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandler is a middleware that catches panics and errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered", fmt.Errorf("%v", r), map[string]interface{}{
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "Internal server error",
					Message: "An unexpected error occurred",
					Code:    "INTERNAL_ERROR",
				})

				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			logger.Error("Request error", err.Err, map[string]interface{}{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			})

			if !c.Writer.Written() {
				HandleAppError(c, MapDomainError(err.Err))
			}
		}
	}
}

// Custom error types for better error handling

type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    "Internal server error",
		Err:        err,
	}
}

// MapDomainError converts service-layer errors to HTTP error responses.
func MapDomainError(err error) *AppError {
	var verr *settings.ValidationError
	if errors.As(err, &verr) {
		return &AppError{
			StatusCode: http.StatusBadRequest,
			Code:       "VALIDATION_ERROR",
			Message:    verr.Error(),
			Err:        err,
			Details:    map[string]interface{}{"field": verr.Field},
		}
	}

	var cerr *cron.InvalidExpressionError
	if errors.As(err, &cerr) {
		return &AppError{
			StatusCode: http.StatusBadRequest,
			Code:       "INVALID_CRON",
			Message:    cerr.Error(),
			Err:        err,
		}
	}

	if errors.Is(err, service.ErrConfirmationMismatch) {
		return &AppError{
			StatusCode: http.StatusForbidden,
			Code:       "CONFIRMATION_MISMATCH",
			Message:    "confirmation code does not match",
			Err:        err,
		}
	}

	if errors.Is(err, oplock.ErrBusy) {
		return &AppError{
			StatusCode: http.StatusConflict,
			Code:       "OPERATION_IN_PROGRESS",
			Message:    "another backup or reset is already running",
			Err:        err,
		}
	}

	var cfgErr *dbadmin.ConfigError
	if errors.As(err, &cfgErr) {
		return &AppError{
			StatusCode: http.StatusInternalServerError,
			Code:       "CONFIG_ERROR",
			Message:    detailOrGeneric(err, "database configuration is invalid"),
			Err:        err,
		}
	}

	var vferr *service.VerificationError
	if errors.As(err, &vferr) {
		return &AppError{
			StatusCode: http.StatusInternalServerError,
			Code:       "VERIFICATION_FAILED",
			Message:    detailOrGeneric(err, "backup verification failed"),
			Err:        err,
		}
	}

	var berr *service.BackupError
	if errors.As(err, &berr) {
		return &AppError{
			StatusCode: http.StatusInternalServerError,
			Code:       "BACKUP_FAILED",
			Message:    detailOrGeneric(err, "backup failed"),
			Err:        err,
			Details:    map[string]interface{}{"stage": berr.Stage},
		}
	}

	var rerr *service.ResetError
	if errors.As(err, &rerr) {
		return &AppError{
			StatusCode: http.StatusInternalServerError,
			Code:       "RESET_FAILED",
			Message:    detailOrGeneric(err, "reset failed"),
			Err:        err,
			Details:    map[string]interface{}{"stage": rerr.Stage},
		}
	}

	var serr *dbadmin.StatementError
	if errors.As(err, &serr) {
		return &AppError{
			StatusCode: http.StatusInternalServerError,
			Code:       "SQL_ERROR",
			Message:    detailOrGeneric(err, "database statement failed"),
			Err:        err,
		}
	}

	return NewInternalError(err)
}

// detailOrGeneric exposes the raw error only in debug mode.
func detailOrGeneric(err error, generic string) string {
	if config.AppConfig != nil && config.AppConfig.Debug {
		return err.Error()
	}
	return generic
}

// HandleAppError handles AppError types
func HandleAppError(c *gin.Context, err *AppError) {
	logger.Error(err.Message, err.Err, map[string]interface{}{
		"code":   err.Code,
		"status": err.StatusCode,
		"path":   c.Request.URL.Path,
	})

	response := ErrorResponse{
		Error:   err.Message,
		Code:    err.Code,
		Details: err.Details,
	}

	c.JSON(err.StatusCode, response)
	c.Abort()
}
