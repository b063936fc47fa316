package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Ratings and prices render as JSON numbers, as clients expect.
func init() { decimal.MarshalJSONWithoutQuotes = true }

type Hotel struct {
	ID          int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string              `gorm:"size:255;not null;index" json:"name"`
	Address     string              `gorm:"size:255;not null" json:"address"`
	Description *string             `gorm:"type:text" json:"description"`
	Rating      decimal.NullDecimal `gorm:"type:decimal(2,1)" json:"rating"`
	Breakfast   bool                `gorm:"not null;default:false" json:"breakfast"`
}

func (Hotel) TableName() string { return "hotels" }

type HotelPatch struct {
	Name        *string
	Address     *string
	Description *string
	Rating      *decimal.Decimal
	Breakfast   *bool
}

func (p HotelPatch) Empty() bool {
	return p.Name == nil && p.Address == nil && p.Description == nil && p.Rating == nil && p.Breakfast == nil
}

// HotelFilter is AND-combined; nil fields do not filter.
type HotelFilter struct {
	Name          *string
	Address       *string
	CaseSensitive bool
	Limit         int
	Offset        int
}

type Room struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	HotelID      int64           `gorm:"not null;index" json:"hotel_id"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	NumberOfBeds int             `gorm:"not null" json:"number_of_beds"`

	Hotel *Hotel `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Room) TableName() string { return "rooms" }

type RoomPatch struct {
	Price        *decimal.Decimal
	NumberOfBeds *int
}

func (p RoomPatch) Empty() bool { return p.Price == nil && p.NumberOfBeds == nil }

type HotelRepository interface {
	Create(ctx context.Context, h *Hotel) error
	FindByID(ctx context.Context, id int64) (*Hotel, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Search(ctx context.Context, f HotelFilter) ([]Hotel, error)
	Update(ctx context.Context, id int64, p HotelPatch) (*Hotel, error)
	Delete(ctx context.Context, id int64) error
}

type RoomRepository interface {
	Create(ctx context.Context, r *Room) error
	FindByID(ctx context.Context, id int64) (*Room, error)
	ListByHotel(ctx context.Context, hotelID int64) ([]Room, error)
	Update(ctx context.Context, id int64, p RoomPatch) (*Room, error)
	Delete(ctx context.Context, id int64) error
}
