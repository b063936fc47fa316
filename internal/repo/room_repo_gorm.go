package repo

import (
	"context"

	"gorm.io/gorm"

	"hotel-backoffice/internal/domain"
)

type RoomRepo struct{ db *gorm.DB }

func NewRoomRepo(db *gorm.DB) *RoomRepo { return &RoomRepo{db: db} }

func (r *RoomRepo) Create(ctx context.Context, room *domain.Room) error {
	return translate(r.db.WithContext(ctx).Omit("Hotel").Create(room).Error, "room")
}

func (r *RoomRepo) FindByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, translate(err, "room")
	}
	return &room, nil
}

func (r *RoomRepo) ListByHotel(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	rooms := make([]domain.Room, 0)
	err := r.db.WithContext(ctx).Where("hotel_id = ?", hotelID).Order("id ASC").Find(&rooms).Error
	if err != nil {
		return nil, translate(err, "room")
	}
	return rooms, nil
}

func (r *RoomRepo) Update(ctx context.Context, id int64, p domain.RoomPatch) (*domain.Room, error) {
	cols := map[string]any{}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.NumberOfBeds != nil {
		cols["number_of_beds"] = *p.NumberOfBeds
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if len(cols) > 0 {
		err := r.db.WithContext(ctx).Model(&domain.Room{}).Where("id = ?", id).Updates(cols).Error
		if err != nil {
			return nil, translate(err, "room")
		}
	}
	return r.FindByID(ctx, id)
}

func (r *RoomRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Room{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "room")
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("room not found")
	}
	return nil
}
