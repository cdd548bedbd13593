package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"endgame/internal/server/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

const (
	localValidated = "validated"
	localBody      = "validatedBody"
	localUserID    = "userID"
)

// validationMiddleware parses and validates JSON bodies of game routes and
// stores the result for the handler
func validationMiddleware(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Next()
	}

	var body any
	switch path := strings.TrimSuffix(c.Path(), "/"); {
	case strings.HasSuffix(path, "/games"):
		body = &core.CreateGameRequest{}
	case strings.HasSuffix(path, "/moves"):
		body = &core.MoveRequest{}
	default:
		return c.Next()
	}

	if verr := bindAndValidate(c, body); verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	c.Locals(localBody, body)
	c.Locals(localValidated, true)
	return c.Next()
}

// bindAndValidate decodes the body into out, if there is one, and runs
// struct validation
func bindAndValidate(c *fiber.Ctx, out any) *core.ErrorResponse {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(out); err != nil {
			return &core.ErrorResponse{
				Error:   "invalid request body",
				Code:    core.ErrInvalidRequest,
				Details: err.Error(),
			}
		}
	}

	if err := validate.Struct(out); err != nil {
		details := err.Error()
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details = describe(verrs)
		}
		return &core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: details,
		}
	}
	return nil
}

// validated fetches the body stored by validationMiddleware
func validated[T any](c *fiber.Ctx) (T, bool) {
	var zero T
	if ok, _ := c.Locals(localValidated).(bool); !ok {
		return zero, false
	}
	body, ok := c.Locals(localBody).(*T)
	if !ok || body == nil {
		return zero, false
	}
	return *body, true
}

func describe(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		unit := ""
		if fe.Kind() == reflect.String {
			unit = " characters"
		}
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s%s", fe.Field(), fe.Param(), unit))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s%s", fe.Field(), fe.Param(), unit))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "alphanum":
			parts = append(parts, fmt.Sprintf("%s must be alphanumeric", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
