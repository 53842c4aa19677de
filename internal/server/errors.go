package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	applicationdomain "github.com/smallbiznis/agrichar/internal/application/domain"
	"github.com/smallbiznis/agrichar/internal/auth"
	"github.com/smallbiznis/agrichar/internal/authorization"
	biochardomain "github.com/smallbiznis/agrichar/internal/biochar/domain"
	biomassdomain "github.com/smallbiznis/agrichar/internal/biomass/domain"
	"github.com/smallbiznis/agrichar/internal/conservation"
	fertilizerdomain "github.com/smallbiznis/agrichar/internal/fertilizer/domain"
	"github.com/smallbiznis/agrichar/internal/idempotency"
	parceldomain "github.com/smallbiznis/agrichar/internal/parcel/domain"
	reportdomain "github.com/smallbiznis/agrichar/internal/report/domain"
	storagedomain "github.com/smallbiznis/agrichar/internal/storage/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var exceeds *conservation.ExceedsAvailableError
	if errors.As(err, &exceeds) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   "quantity",
					Code:    conservation.ErrExceedsAvailable.Error(),
					Message: exceeds.Error(),
				},
			},
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, authorization.ErrInvalidActor),
		isOwnerError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, parceldomain.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if status >= http.StatusInternalServerError {
		return "internal_error", err.Error()
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, conservation.ErrInvalidQuantity),
		errors.Is(err, idempotency.ErrInvalidKey):
		return true
	case isParcelValidationError(err),
		isBiomassValidationError(err),
		isBiocharValidationError(err),
		isStorageValidationError(err),
		isApplicationValidationError(err),
		isFertilizerValidationError(err),
		isMovementValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, biochardomain.ErrInvalidTransition),
		errors.Is(err, biochardomain.ErrNotCompleted),
		errors.Is(err, storagedomain.ErrBatchNotComplete),
		errors.Is(err, storagedomain.ErrAlreadyStored),
		errors.Is(err, idempotency.ErrDuplicateRequest):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, idempotency.ErrDuplicateRequest):
		return "duplicate request"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return strings.ReplaceAll(err.Error(), "_", " ")
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, parceldomain.ErrNotFound),
		errors.Is(err, biomassdomain.ErrNotFound),
		errors.Is(err, biochardomain.ErrNotFound),
		errors.Is(err, storagedomain.ErrNotFound),
		errors.Is(err, applicationdomain.ErrNotFound),
		errors.Is(err, fertilizerdomain.ErrNotFound),
		errors.Is(err, conservation.ErrSourceNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isOwnerError(err error) bool {
	switch {
	case errors.Is(err, parceldomain.ErrInvalidOwner),
		errors.Is(err, biomassdomain.ErrInvalidOwner),
		errors.Is(err, biochardomain.ErrInvalidOwner),
		errors.Is(err, storagedomain.ErrInvalidOwner),
		errors.Is(err, applicationdomain.ErrInvalidOwner),
		errors.Is(err, fertilizerdomain.ErrInvalidOwner),
		errors.Is(err, reportdomain.ErrInvalidOwner),
		errors.Is(err, conservation.ErrInvalidOwner):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "parcel_inactive":
		return "parcel_id"
	case "batch_empty":
		return "batch_id"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "parcel_inactive":
		return "parcel is inactive"
	case "batch_empty":
		return "batch produced no biochar"
	default:
		return "invalid value"
	}
}
