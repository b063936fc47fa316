package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-backoffice/internal/domain"
	"hotel-backoffice/internal/service"
)

// Admin mounts the back-office surface. The group it is mounted on already
// requires an admin caller; the role operations check again through the gate.
type Admin struct {
	Users *service.Users
	Roles *service.Roles
}

type roleIn struct {
	IsAdmin *bool `json:"is_admin"`
}

func (h Admin) MountAdmin(g *gin.RouterGroup) {
	ez := New(g)

	RegisterAction(ez, Action[userListQ, *service.UserList]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, _ domain.Caller, in *userListQ) (*service.UserList, error) {
			return h.Users.List(c.Request.Context(), in.Q, in.Offset, in.Limit)
		},
	})

	RegisterAction(ez, Action[struct{}, *domain.UserRole]{
		Method: http.MethodGet,
		Path:   "/users/:id/role",
		Binder: BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller domain.Caller, _ *struct{}) (*domain.UserRole, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Roles.Get(c.Request.Context(), caller, id)
		},
	})

	RegisterAction(ez, Action[roleIn, *domain.UserRole]{
		Method: http.MethodPut,
		Path:   "/users/:id/role",
		Binder: BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, caller domain.Caller, in *roleIn) (*domain.UserRole, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			if in.IsAdmin == nil {
				return nil, domain.Validation("is_admin is required")
			}
			return h.Roles.Set(c.Request.Context(), caller, id, *in.IsAdmin)
		},
	})

	RegisterAction(ez, Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/users/:id/role",
		Binder: BindNone,
		Auth:   true,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, caller domain.Caller, _ *struct{}) (struct{}, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.Roles.Remove(c.Request.Context(), caller, id)
		},
	})
}
