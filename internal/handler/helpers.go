package handler

import (
	"errors"
	"net/http"
	"reflect"

	"proptrust/internal/apierror"
	"proptrust/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps domain sentinel errors to HTTP status + machine-readable
// kind. Anything unmapped is a plain 400 with the error message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.NewKind("NOT_FOUND", err.Error()))
	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusConflict, apierror.NewKind("ACCOUNT_LOCKED", err.Error()))
	case errors.Is(err, service.ErrInvalidEntry):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewKind("INVALID_ENTRY", err.Error()))
	case errors.Is(err, service.ErrNoSettlement):
		c.JSON(http.StatusConflict, apierror.NewKind("NO_SETTLEMENT", err.Error()))
	case errors.Is(err, service.ErrInvalidWorkflowTransition):
		c.JSON(http.StatusConflict, apierror.NewKind("INVALID_WORKFLOW_TRANSITION", err.Error()))
	case errors.Is(err, service.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, apierror.NewKind("CONCURRENCY_CONFLICT", err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
