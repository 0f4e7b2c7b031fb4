// Package handlers provides the gin handlers for the REST API
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/kidneyplan/mealplanner/pkg/errors"
)

var registerOnce sync.Once

// RegisterValidation makes validator messages use json field names. It is
// safe to call more than once.
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// bindJSON decodes the request body into req. Decoding failures become a
// bad request and failed binding rules become validation errors.
func bindJSON(c *gin.Context, req interface{}) *errors.AppError {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		return translateValidation(verrs)
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) && typeErr.Field != "" {
		return errors.NewBadRequestError(fmt.Sprintf("Invalid request body: %s has the wrong type", typeErr.Field))
	}
	return errors.NewBadRequestError("Invalid request body")
}

func translateValidation(verrs validator.ValidationErrors) *errors.AppError {
	out := make([]errors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, errors.ValidationError{
			Field:   fe.Field(),
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: validationMessage(fe),
		})
	}
	return errors.NewValidationErrors(out)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// respondError writes `{"error": message}` with the status of err and hands
// err to the error middleware for logging
func respondError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError("An unexpected error occurred").WithCause(err)
	}
	_ = c.Error(appErr)
	c.JSON(appErr.StatusCode(), errors.ToErrorResponse(appErr))
}

// respondStatusError writes the `{status:"error", message}` envelope with 500
func respondStatusError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError("An unexpected error occurred").WithCause(err)
	}
	_ = c.Error(appErr)
	c.JSON(http.StatusInternalServerError, errors.ToStatusResponse(appErr))
}

func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, errors.StatusResponse{Status: "success", Message: message})
}
