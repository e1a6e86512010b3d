package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"bloghive/internal/middleware"
	"bloghive/internal/services"
	"bloghive/internal/utils"
)

func statusFor(e *services.Error) int {
	switch e.Code {
	case services.ErrNotFound.Code:
		return http.StatusNotFound
	case services.ErrBanned.Code, services.ErrForbidden.Code:
		return http.StatusForbidden
	}
	switch e.Kind {
	case services.KindValidation, services.KindBusinessRule, services.KindChallenge:
		return http.StatusBadRequest
	case services.KindAuth:
		return http.StatusUnauthorized
	case services.KindThrottled:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func validationMessage(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}

// writeError is the single place where errors become HTTP responses.
// Infrastructure failures are logged with their cause and hidden behind a generic message.
func writeError(c *gin.Context, op string, err error) {
	log := utils.Logger.WithField("request_id", c.GetString(middleware.CtxRequestID))

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "kind": "validation", "message": validationMessage(verrs)})
		return
	}

	var se *services.Error
	if !errors.As(err, &se) {
		se = services.Infra(op, err)
	}
	if se.Kind == services.KindInfrastructure {
		log.WithError(se.Err).Errorf("[%s] failed", op)
	} else {
		log.WithField("kind", se.Code).Debugf("[%s] %s", op, se.Message)
	}
	c.JSON(statusFor(se), gin.H{"success": false, "kind": se.Code, "message": se.Message})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "kind": "validation", "message": msg})
}

// bindJSON reports binding failures itself and returns false.
func bindJSON(c *gin.Context, op string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeError(c, op, err)
			return false
		}
		badRequest(c, "Invalid request body")
		return false
	}
	return true
}
