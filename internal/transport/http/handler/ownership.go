package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-backoffice/internal/domain"
	"hotel-backoffice/internal/service"
)

type Ownership struct{ S *service.Ownership }

func (Ownership) Priority() int { return 50 }

func (h Ownership) MountAPI(g *gin.RouterGroup) {
	ez := New(g)

	RegisterAction(ez, Action[service.OwnershipInput, *domain.Ownership]{
		Method: http.MethodPost,
		Path:   "/user-hotels",
		Binder: BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, caller domain.Caller, in *service.OwnershipInput) (*domain.Ownership, error) {
			return h.S.Assign(c.Request.Context(), caller, *in)
		},
	})

	RegisterAction(ez, Action[service.OwnershipInput, struct{}]{
		Method: http.MethodDelete,
		Path:   "/user-hotels",
		Binder: BindQuery,
		Auth:   true,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, caller domain.Caller, in *service.OwnershipInput) (struct{}, error) {
			return struct{}{}, h.S.Remove(c.Request.Context(), caller, *in)
		},
	})
}
