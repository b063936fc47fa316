package domain

import "context"

// Ownership links a user to a hotel they own. The composite key is the uniqueness rule.
type Ownership struct {
	UserID  int64 `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	HotelID int64 `gorm:"primaryKey;autoIncrement:false;index" json:"hotel_id"`

	User  *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Hotel *Hotel `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Ownership) TableName() string { return "user_hotels" }

type OwnershipRepository interface {
	Assign(ctx context.Context, userID, hotelID int64) error
	// Remove reports false when the pair did not exist.
	Remove(ctx context.Context, userID, hotelID int64) (bool, error)
	IsOwner(ctx context.Context, userID, hotelID int64) (bool, error)
	OwnersOf(ctx context.Context, hotelID int64) ([]int64, error)
}
