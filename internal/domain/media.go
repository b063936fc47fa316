package domain

import (
	"context"
	"time"
)

type HotelImage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename   string    `gorm:"uniqueIndex;size:255;not null" json:"filename"`
	URL        string    `gorm:"size:1024;not null" json:"url"`
	HotelID    int64     `gorm:"not null;index" json:"hotel_id"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	Hotel *Hotel `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (HotelImage) TableName() string { return "hotel_image" }

type HotelPicture struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	HotelID   int64     `gorm:"not null;index" json:"hotel_id"`
	UUID      string    `gorm:"column:uuid;uniqueIndex;size:36;not null" json:"uuid"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Hotel *Hotel `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (HotelPicture) TableName() string { return "hotel_pictures" }

type ImageRepository interface {
	Create(ctx context.Context, img *HotelImage) error
	FindByID(ctx context.Context, id int64) (*HotelImage, error)
	ListByHotel(ctx context.Context, hotelID int64) ([]HotelImage, error)
	Delete(ctx context.Context, id int64) error
}

type PictureRepository interface {
	Create(ctx context.Context, p *HotelPicture) error
	FindByID(ctx context.Context, id int64) (*HotelPicture, error)
	ListByHotel(ctx context.Context, hotelID int64) ([]HotelPicture, error)
	Delete(ctx context.Context, id int64) error
}
