package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/BloggingApp/blog-service/internal/dto"
	"github.com/BloggingApp/blog-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	errNoToken         = errors.New("No token, authorization denied")
	errServer          = errors.New("Server error")
	errTooManyRequests = errors.New("Too many requests")
	errInvalidBody     = errors.New("Invalid request body")
)

// respondError maps a service error to its status. Anything unknown is a 500
// with no detail.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		c.JSON(http.StatusNotFound, dto.NewMsgResponse(err.Error()))
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusUnauthorized, dto.NewMsgResponse(err.Error()))
	case errors.Is(err, service.ErrEmptyPostFields),
		errors.Is(err, service.ErrEmptyCommentText),
		errors.Is(err, service.ErrInvalidReactionType),
		errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, dto.NewMsgResponse(err.Error()))
	default:
		if !errors.Is(err, service.ErrInternal) {
			h.logger.Sugar().Errorf("unexpected error on %s %s: %s", c.Request.Method, c.FullPath(), err.Error())
		}
		c.JSON(http.StatusInternalServerError, dto.NewMsgResponse(errServer.Error()))
	}
}

func (h *Handler) respondBindError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, dto.ErrorsResponse{
			Errors: []dto.FieldError{{Msg: errInvalidBody.Error()}},
		})
		return
	}

	fieldErrs := make([]dto.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fieldErrs = append(fieldErrs, dto.FieldError{
			Field: strings.ToLower(fe.Field()),
			Msg:   fieldErrorMsg(fe),
		})
	}

	c.JSON(http.StatusBadRequest, dto.ErrorsResponse{Errors: fieldErrs})
}

func fieldErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please include a valid email"
	case "min":
		return fmt.Sprintf("%s should be minimum %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
