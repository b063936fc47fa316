package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-backoffice/internal/domain"
)

type RoleRepo struct{ db *gorm.DB }

func NewRoleRepo(db *gorm.DB) *RoleRepo { return &RoleRepo{db: db} }

func (r *RoleRepo) Get(ctx context.Context, userID int64) (*domain.UserRole, error) {
	var role domain.UserRole
	if err := r.db.WithContext(ctx).First(&role, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err, "role")
	}
	return &role, nil
}

// Upsert keeps the one-row-per-user invariant by conflicting on user_id.
func (r *RoleRepo) Upsert(ctx context.Context, userID int64, isAdmin bool) (*domain.UserRole, error) {
	role := domain.UserRole{UserID: userID, IsAdmin: isAdmin}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_admin"}),
	}).Create(&role).Error
	if err != nil {
		return nil, translate(err, "role")
	}
	return r.Get(ctx, userID)
}

func (r *RoleRepo) Delete(ctx context.Context, userID int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.UserRole{}, "user_id = ?", userID)
	if res.Error != nil {
		return translate(res.Error, "role")
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("role not found")
	}
	return nil
}

func (r *RoleRepo) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var role domain.UserRole
	err := r.db.WithContext(ctx).Select("is_admin").First(&role, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, translate(err, "role")
	}
	return role.IsAdmin, nil
}
