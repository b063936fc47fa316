package repo

import (
	"context"

	"gorm.io/gorm"

	"hotel-backoffice/internal/domain"
)

type ImageRepo struct{ db *gorm.DB }

func NewImageRepo(db *gorm.DB) *ImageRepo { return &ImageRepo{db: db} }

func (r *ImageRepo) Create(ctx context.Context, img *domain.HotelImage) error {
	return translate(r.db.WithContext(ctx).Omit("Hotel").Create(img).Error, "image")
}

func (r *ImageRepo) FindByID(ctx context.Context, id int64) (*domain.HotelImage, error) {
	var img domain.HotelImage
	if err := r.db.WithContext(ctx).First(&img, "id = ?", id).Error; err != nil {
		return nil, translate(err, "image")
	}
	return &img, nil
}

func (r *ImageRepo) ListByHotel(ctx context.Context, hotelID int64) ([]domain.HotelImage, error) {
	imgs := make([]domain.HotelImage, 0)
	err := r.db.WithContext(ctx).Where("hotel_id = ?", hotelID).Order("id ASC").Find(&imgs).Error
	if err != nil {
		return nil, translate(err, "image")
	}
	return imgs, nil
}

func (r *ImageRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.HotelImage{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "image")
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("image not found")
	}
	return nil
}

type PictureRepo struct{ db *gorm.DB }

func NewPictureRepo(db *gorm.DB) *PictureRepo { return &PictureRepo{db: db} }

func (r *PictureRepo) Create(ctx context.Context, p *domain.HotelPicture) error {
	return translate(r.db.WithContext(ctx).Omit("Hotel").Create(p).Error, "picture")
}

func (r *PictureRepo) FindByID(ctx context.Context, id int64) (*domain.HotelPicture, error) {
	var p domain.HotelPicture
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "picture")
	}
	return &p, nil
}

func (r *PictureRepo) ListByHotel(ctx context.Context, hotelID int64) ([]domain.HotelPicture, error) {
	ps := make([]domain.HotelPicture, 0)
	err := r.db.WithContext(ctx).Where("hotel_id = ?", hotelID).Order("id ASC").Find(&ps).Error
	if err != nil {
		return nil, translate(err, "picture")
	}
	return ps, nil
}

func (r *PictureRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.HotelPicture{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "picture")
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("picture not found")
	}
	return nil
}
