package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-backoffice/internal/domain"
	"hotel-backoffice/internal/service"
	mdw "hotel-backoffice/internal/transport/http/middleware"
)

// Users mounts registration, login and account self-service.
type Users struct{ S *service.Users }

func (Users) Priority() int { return 10 }

type loginIn struct {
	// username is the OAuth2 password-form field name; pseudo is accepted too.
	Username string `json:"username" form:"username"`
	Pseudo   string `json:"pseudo" form:"pseudo"`
	Password string `json:"password" form:"password"`
}

type userListQ struct {
	Q      string `form:"q"`
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
}

func (h Users) MountAPI(g *gin.RouterGroup) {
	ez := New(g)

	RegisterAction(ez, Action[service.RegisterInput, *domain.User]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: BindJSONOr,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ domain.Caller, in *service.RegisterInput) (*domain.User, error) {
			return h.S.Register(c.Request.Context(), *in)
		},
	})

	RegisterAction(ez, Action[loginIn, *service.Token]{
		Method: http.MethodPost,
		Path:   "/users/login",
		Binder: BindJSONOr,
		Handler: func(c *gin.Context, _ domain.Caller, in *loginIn) (*service.Token, error) {
			pseudo := in.Username
			if pseudo == "" {
				pseudo = in.Pseudo
			}
			if pseudo == "" || in.Password == "" {
				return nil, domain.Validation("username and password are required")
			}
			return h.S.Login(c.Request.Context(), pseudo, in.Password)
		},
	})

	RegisterAction(ez, Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/me",
		Binder: BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller domain.Caller, _ *struct{}) (*domain.User, error) {
			return h.S.Get(c.Request.Context(), caller.UserID)
		},
	})

	RegisterAction(ez, Action[struct{}, struct{}]{
		Method: http.MethodPost,
		Path:   "/users/logout",
		Binder: BindNone,
		Auth:   true,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ domain.Caller, _ *struct{}) (struct{}, error) {
			return struct{}{}, h.S.Logout(c.Request.Context(), mdw.ClaimsFrom(c))
		},
	})

	RegisterAction(ez, Action[userListQ, *service.UserList]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: BindQuery,
		Handler: func(c *gin.Context, _ domain.Caller, in *userListQ) (*service.UserList, error) {
			return h.S.List(c.Request.Context(), in.Q, in.Offset, in.Limit)
		},
	})

	RegisterAction(ez, Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ domain.Caller, _ *struct{}) (*domain.User, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.S.Get(c.Request.Context(), id)
		},
	})

	RegisterAction(ez, Action[service.UserUpdate, *domain.User]{
		Method: http.MethodPatch,
		Path:   "/users/:id",
		Binder: BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, caller domain.Caller, in *service.UserUpdate) (*domain.User, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.S.Update(c.Request.Context(), caller, id, *in)
		},
	})

	RegisterAction(ez, Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: BindNone,
		Auth:   true,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, caller domain.Caller, _ *struct{}) (struct{}, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.S.Delete(c.Request.Context(), caller, id)
		},
	})
}
