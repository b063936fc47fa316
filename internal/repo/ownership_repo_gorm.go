package repo

import (
	"context"

	"gorm.io/gorm"

	"hotel-backoffice/internal/domain"
)

type OwnershipRepo struct{ db *gorm.DB }

func NewOwnershipRepo(db *gorm.DB) *OwnershipRepo { return &OwnershipRepo{db: db} }

// Assign inserts the (user, hotel) row; the primary key turns a duplicate into Conflict.
func (r *OwnershipRepo) Assign(ctx context.Context, userID, hotelID int64) error {
	row := domain.Ownership{UserID: userID, HotelID: hotelID}
	err := r.db.WithContext(ctx).Omit("User", "Hotel").Create(&row).Error
	return translate(err, "ownership")
}

func (r *OwnershipRepo) Remove(ctx context.Context, userID, hotelID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND hotel_id = ?", userID, hotelID).
		Delete(&domain.Ownership{})
	if res.Error != nil {
		return false, translate(res.Error, "ownership")
	}
	return res.RowsAffected > 0, nil
}

func (r *OwnershipRepo) IsOwner(ctx context.Context, userID, hotelID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Ownership{}).
		Where("user_id = ? AND hotel_id = ?", userID, hotelID).
		Count(&n).Error
	if err != nil {
		return false, translate(err, "ownership")
	}
	return n > 0, nil
}

func (r *OwnershipRepo) OwnersOf(ctx context.Context, hotelID int64) ([]int64, error) {
	ids := make([]int64, 0)
	err := r.db.WithContext(ctx).Model(&domain.Ownership{}).
		Where("hotel_id = ?", hotelID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, translate(err, "ownership")
	}
	return ids, nil
}
