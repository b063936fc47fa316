package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-backoffice/internal/domain"
	"hotel-backoffice/internal/service"
)

// Media mounts hotel images (uploaded bytes) and hotel pictures (references to
// objects already in storage).
type Media struct {
	Images   *service.Images
	Pictures *service.Pictures
}

func (Media) Priority() int { return 40 }

type pageQ struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

type pictureIn struct {
	UUID string `json:"uuid"`
}

func hotelAndChild(c *gin.Context, child string) (int64, int64, error) {
	hotelID, err := pathID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	childID, err := pathID(c, child)
	if err != nil {
		return 0, 0, err
	}
	return hotelID, childID, nil
}

func (h Media) MountAPI(g *gin.RouterGroup) {
	ez := New(g)

	RegisterAction(ez, Action[struct{}, *domain.HotelImage]{
		Method: http.MethodPost,
		Path:   "/hotels/:id/images/upload",
		Binder: BindNone,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, caller domain.Caller, _ *struct{}) (*domain.HotelImage, error) {
			hotelID, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			fh, err := c.FormFile("file")
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					return nil, err
				}
				return nil, domain.Validation("multipart field \"file\" is required")
			}
			f, err := fh.Open()
			if err != nil {
				return nil, domain.Internal("open upload", err)
			}
			defer f.Close()
			return h.Images.Upload(c.Request.Context(), caller, hotelID, service.Upload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Body:        f,
			})
		},
	})

	RegisterAction(ez, Action[pageQ, *service.ImagePage]{
		Method: http.MethodGet,
		Path:   "/hotels/:id/images",
		Binder: BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, _ domain.Caller, in *pageQ) (*service.ImagePage, error) {
			hotelID, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Images.List(c.Request.Context(), hotelID, in.Limit, in.Offset)
		},
	})

	RegisterAction(ez, Action[struct{}, *domain.HotelImage]{
		Method: http.MethodGet,
		Path:   "/hotels/:id/images/:image_id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ domain.Caller, _ *struct{}) (*domain.HotelImage, error) {
			hotelID, imageID, err := hotelAndChild(c, "image_id")
			if err != nil {
				return nil, err
			}
			return h.Images.Get(c.Request.Context(), hotelID, imageID)
		},
	})

	RegisterAction(ez, Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/hotels/:id/images/:image_id",
		Binder: BindNone,
		Auth:   true,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, caller domain.Caller, _ *struct{}) (struct{}, error) {
			hotelID, imageID, err := hotelAndChild(c, "image_id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.Images.Delete(c.Request.Context(), caller, hotelID, imageID)
		},
	})

	RegisterAction(ez, Action[pictureIn, *service.PictureView]{
		Method: http.MethodPost,
		Path:   "/hotels/:id/pictures",
		Binder: BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, caller domain.Caller, in *pictureIn) (*service.PictureView, error) {
			hotelID, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Pictures.Attach(c.Request.Context(), caller, hotelID, in.UUID)
		},
	})

	RegisterAction(ez, Action[struct{}, []service.PictureView]{
		Method: http.MethodGet,
		Path:   "/hotels/:id/pictures",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ domain.Caller, _ *struct{}) ([]service.PictureView, error) {
			hotelID, err := pathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Pictures.List(c.Request.Context(), hotelID)
		},
	})

	RegisterAction(ez, Action[struct{}, *service.PictureView]{
		Method: http.MethodGet,
		Path:   "/hotels/:id/pictures/:picture_id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ domain.Caller, _ *struct{}) (*service.PictureView, error) {
			hotelID, pictureID, err := hotelAndChild(c, "picture_id")
			if err != nil {
				return nil, err
			}
			return h.Pictures.Get(c.Request.Context(), hotelID, pictureID)
		},
	})

	RegisterAction(ez, Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/hotels/:id/pictures/:picture_id",
		Binder: BindNone,
		Auth:   true,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, caller domain.Caller, _ *struct{}) (struct{}, error) {
			hotelID, pictureID, err := hotelAndChild(c, "picture_id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.Pictures.Delete(c.Request.Context(), caller, hotelID, pictureID)
		},
	})
}
