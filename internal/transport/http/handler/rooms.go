package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-backoffice/internal/domain"
	"hotel-backoffice/internal/service"
)

type Rooms struct{ S *service.Rooms }

func (Rooms) Priority() int { return 30 }

func (h Rooms) MountAPI(g *gin.RouterGroup) {
	ez := New(g)

	byHotel := func(param string) func(*gin.Context, domain.Caller, *struct{}) ([]domain.Room, error) {
		return func(c *gin.Context, _ domain.Caller, _ *struct{}) ([]domain.Room, error) {
			id, err := pathID(c, param)
			if err != nil {
				return nil, err
			}
			return h.S.ListByHotel(c.Request.Context(), id)
		}
	}
	RegisterAction(ez, Action[struct{}, []domain.Room]{
		Method: http.MethodGet, Path: "/hotels/:id/rooms", Binder: BindNone, Handler: byHotel("id"),
	})
	RegisterAction(ez, Action[struct{}, []domain.Room]{
		Method: http.MethodGet, Path: "/rooms/hotel/:hotel_id", Binder: BindNone, Handler: byHotel("hotel_id"),
	})

	RegisterAction(ez, Action[service.RoomInput, *domain.Room]{
		Method: http.MethodPost,
		Path:   "/rooms",
		Binder: BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, caller domain.Caller, in *service.RoomInput) (*domain.Room, error) {
			return h.S.Create(c.Request.Context(), caller, *in)
		},
	})

	RegisterAction(ez, Action[struct{}, *domain.Room]{
		Method: http.MethodGet,
		Path:   "/rooms/:id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ domain.Caller, _ *struct{}) (*domain.Room, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.S.Get(c.Request.Context(), id)
		},
	})

	RegisterAction(ez, Action[service.RoomUpdate, *domain.Room]{
		Method: http.MethodPatch,
		Path:   "/rooms/:id",
		Binder: BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, caller domain.Caller, in *service.RoomUpdate) (*domain.Room, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.S.Update(c.Request.Context(), caller, id, *in)
		},
	})

	RegisterAction(ez, Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/rooms/:id",
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
