package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"hotel-backoffice/internal/domain"
)

type HotelRepo struct{ db *gorm.DB }

func NewHotelRepo(db *gorm.DB) *HotelRepo { return &HotelRepo{db: db} }

func (r *HotelRepo) Create(ctx context.Context, h *domain.Hotel) error {
	return translate(r.db.WithContext(ctx).Create(h).Error, "hotel")
}

func (r *HotelRepo) FindByID(ctx context.Context, id int64) (*domain.Hotel, error) {
	var h domain.Hotel
	if err := r.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		return nil, translate(err, "hotel")
	}
	return &h, nil
}

func (r *HotelRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Hotel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, translate(err, "hotel")
	}
	return n > 0, nil
}

func (r *HotelRepo) Search(ctx context.Context, f domain.HotelFilter) ([]domain.Hotel, error) {
	q := r.db.WithContext(ctx).Model(&domain.Hotel{})
	if f.Name != nil && *f.Name != "" {
		q = r.contains(q, "name", *f.Name, f.CaseSensitive)
	}
	if f.Address != nil && *f.Address != "" {
		q = r.contains(q, "address", *f.Address, f.CaseSensitive)
	}
	hotels := make([]domain.Hotel, 0)
	if err := q.Order("id ASC").Limit(f.Limit).Offset(f.Offset).Find(&hotels).Error; err != nil {
		return nil, translate(err, "hotel")
	}
	return hotels, nil
}

// contains adds a substring predicate; the SQL differs per dialect because default
// LIKE case sensitivity differs (sqlite/mysql fold case, postgres does not).
func (r *HotelRepo) contains(q *gorm.DB, col, needle string, caseSensitive bool) *gorm.DB {
	pattern := "%" + escapeLike(needle) + "%"
	dialect := r.db.Dialector.Name()
	switch {
	case caseSensitive && dialect == "sqlite":
		return q.Where("instr("+col+", ?) > 0", needle)
	case caseSensitive && dialect == "mysql":
		return q.Where(col+" LIKE ? COLLATE utf8mb4_bin ESCAPE '!'", pattern)
	case caseSensitive:
		return q.Where(col+" LIKE ? ESCAPE '!'", pattern)
	case dialect == "postgres":
		return q.Where(col+" ILIKE ? ESCAPE '!'", pattern)
	default:
		return q.Where("LOWER("+col+") LIKE LOWER(?) ESCAPE '!'", pattern)
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func (r *HotelRepo) Update(ctx context.Context, id int64, p domain.HotelPatch) (*domain.Hotel, error) {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Address != nil {
		cols["address"] = *p.Address
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Rating != nil {
		cols["rating"] = *p.Rating
	}
	if p.Breakfast != nil {
		cols["breakfast"] = *p.Breakfast
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if len(cols) > 0 {
		err := r.db.WithContext(ctx).Model(&domain.Hotel{}).Where("id = ?", id).Updates(cols).Error
		if err != nil {
			return nil, translate(err, "hotel")
		}
	}
	return r.FindByID(ctx, id)
}

// Delete relies on ON DELETE CASCADE for rooms, images, pictures and ownerships.
func (r *HotelRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Hotel{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "hotel")
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("hotel not found")
	}
	return nil
}
