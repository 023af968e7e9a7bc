package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"usermgmt/internal/errors"
)

// ErrorHandler renders every error returned by handlers and middleware as
// an errors.ErrorResponse. Errors without a domain code are logged and
// reported as a generic 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var resp *errors.HTTPError
	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		resp = errors.NewHTTPError(he.Code, fmt.Sprint(he.Message), codeForStatus(he.Code))
		if he.Code >= http.StatusInternalServerError {
			c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		}
	} else {
		var mapped bool
		resp, mapped = errors.MapErrorToHTTP(err)
		if !mapped {
			c.Logger().Errorf("unhandled error on %s %s: %v", c.Request().Method, c.Path(), err)
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(resp.StatusCode)
	} else {
		err = c.JSON(resp.StatusCode, resp.ToErrorResponse())
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(errors.CodeValidation)
	case http.StatusUnauthorized:
		return string(errors.CodeInvalidToken)
	case http.StatusForbidden:
		return string(errors.CodeForbidden)
	case http.StatusNotFound:
		return string(errors.CodeNotFound)
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		if status >= http.StatusInternalServerError {
			return string(errors.CodeInternal)
		}
		return "HTTP_ERROR"
	}
}

// normalizer is implemented by requests that clean up their fields
// before validation.
type normalizer interface {
	normalize()
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.Validation([]errors.FieldError{{Field: "body", Message: "invalid request body"}})
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	return c.Validate(req)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
