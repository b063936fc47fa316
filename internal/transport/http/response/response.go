package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-backoffice/internal/domain"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New never leaves data null.
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error builds a failure envelope; an empty customMsg falls back to the code's text.
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// FromError maps err to the HTTP status and envelope returned to the client.
// Internal errors are reported with a generic message.
func FromError(err error) (int, Resp) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, Error(CodeTooLarge, "request body too large")
	}
	var de *domain.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, Error(CodeServerError, "")
	}
	switch de.Kind {
	case domain.KindValidation:
		return http.StatusBadRequest, Error(CodeBadRequest, de.Msg)
	case domain.KindConflict:
		return http.StatusBadRequest, Error(CodeConflict, de.Msg)
	case domain.KindNotFound:
		return http.StatusNotFound, Error(CodeNotFound, de.Msg)
	case domain.KindForbidden:
		return http.StatusForbidden, Error(CodeForbidden, de.Msg)
	case domain.KindUnauthorized:
		return http.StatusUnauthorized, Error(CodeUnauthorized, de.Msg)
	default:
		return http.StatusInternalServerError, Error(CodeServerError, "")
	}
}

// Fail aborts the request with the envelope for err. Internal failures are
// attached to the context so the access log can report them.
func Fail(c *gin.Context, err error) {
	status, body := FromError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, body)
}

// Abort stops the chain with a plain status/code pair.
func Abort(c *gin.Context, status, code int, msg string) {
	c.AbortWithStatusJSON(status, Error(code, msg))
}
