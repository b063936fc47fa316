package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"hotel-backoffice/internal/domain"
	mdw "hotel-backoffice/internal/transport/http/middleware"
	resp "hotel-backoffice/internal/transport/http/response"
)

// Binder selects where an action's input comes from.
type Binder string

const (
	BindJSON   Binder = "json"   // request body as JSON
	BindQuery  Binder = "query"  // URL ?a=b
	BindForm   Binder = "form"   // urlencoded or multipart form
	BindJSONOr Binder = "either" // JSON or form, by Content-Type
	BindNone   Binder = "none"   // handler reads c.Param / c.FormFile itself
)

// EZ registers actions on one route group.
type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// Action describes one endpoint: I is the bound input, O the envelope data.
type Action[I any, O any] struct {
	Method string
	Path   string
	Binder Binder
	Auth   bool // caller must be authenticated
	// Status on success; 0 means 200. 204 writes no body.
	Status  int
	Handler func(c *gin.Context, caller domain.Caller, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth {
			if err := mdw.Authenticated(c); err != nil {
				resp.Fail(c, err)
				return
			}
		}

		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			resp.Fail(c, err)
			return
		}

		out, err := a.Handler(c, mdw.CallerFrom(c), &in)
		if err != nil {
			resp.Fail(c, err)
			return
		}

		switch status := a.Status; status {
		case http.StatusNoContent:
			c.Status(status)
			c.Writer.WriteHeaderNow()
		case 0:
			c.JSON(http.StatusOK, resp.OK(out))
		default:
			c.JSON(status, resp.OK(out))
		}
	}
	e.g.Handle(strings.ToUpper(a.Method), a.Path, h)
}

func bind(c *gin.Context, b Binder, in any) error {
	var err error
	switch b {
	case BindJSON:
		err = c.ShouldBindJSON(in)
	case BindQuery:
		err = c.ShouldBindQuery(in)
	case BindForm:
		err = c.ShouldBindWith(in, binding.Form)
	case BindJSONOr:
		if c.ContentType() == binding.MIMEJSON {
			err = c.ShouldBindJSON(in)
		} else {
			err = c.ShouldBindWith(in, binding.Form)
		}
	default:
		return nil
	}
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	if errors.Is(err, io.EOF) {
		return domain.Validation("request body is empty")
	}
	return domain.Validation("invalid request: " + err.Error())
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validation(name + " must be a positive integer")
	}
	return id, nil
}
