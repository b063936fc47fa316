package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-backoffice/internal/domain"
	"hotel-backoffice/internal/service"
)

// Hotels mounts the hotel registry and its ownership listing.
type Hotels struct{ S *service.Hotels }

func (Hotels) Priority() int { return 20 }

type hotelSearchQ struct {
	Name          *string `form:"name"`
	Address       *string `form:"address"`
	CaseSensitive bool    `form:"case_sensitive"`
	Limit         int     `form:"limit"`
	Offset        int     `form:"offset"`
}

type ownersOut struct {
	HotelID int64   `json:"hotel_id"`
	UserIDs []int64 `json:"user_ids"`
}

func (h Hotels) MountAPI(g *gin.RouterGroup) {
	ez := New(g)

	search := func(c *gin.Context, _ domain.Caller, in *hotelSearchQ) ([]domain.Hotel, error) {
		return h.S.Search(c.Request.Context(), domain.HotelFilter{
			Name:          in.Name,
			Address:       in.Address,
			CaseSensitive: in.CaseSensitive,
			Limit:         in.Limit,
			Offset:        in.Offset,
		})
	}
	for _, p := range []string{"/hotels", "/hotels/search"} {
		RegisterAction(ez, Action[hotelSearchQ, []domain.Hotel]{
			Method:  http.MethodGet,
			Path:    p,
			Binder:  BindQuery,
			Handler: search,
		})
	}

	RegisterAction(ez, Action[struct{}, *domain.Hotel]{
		Method: http.MethodGet,
		Path:   "/hotels/:id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ domain.Caller, _ *struct{}) (*domain.Hotel, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.S.Get(c.Request.Context(), id)
		},
	})

	RegisterAction(ez, Action[service.HotelInput, *domain.Hotel]{
		Method: http.MethodPost,
		Path:   "/hotels",
		Binder: BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, caller domain.Caller, in *service.HotelInput) (*domain.Hotel, error) {
			return h.S.Create(c.Request.Context(), caller, *in)
		},
	})

	RegisterAction(ez, Action[service.HotelUpdate, *domain.Hotel]{
		Method: http.MethodPatch,
		Path:   "/hotels/:id",
		Binder: BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, caller domain.Caller, in *service.HotelUpdate) (*domain.Hotel, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.S.Update(c.Request.Context(), caller, id, *in)
		},
	})

	RegisterAction(ez, Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/hotels/:id",
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

	RegisterAction(ez, Action[struct{}, ownersOut]{
		Method: http.MethodGet,
		Path:   "/hotels/:id/owners",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ domain.Caller, _ *struct{}) (ownersOut, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return ownersOut{}, err
			}
			ids, err := h.S.Owners(c.Request.Context(), id)
			if err != nil {
				return ownersOut{}, err
			}
			return ownersOut{HotelID: id, UserIDs: ids}, nil
		},
	})
}
