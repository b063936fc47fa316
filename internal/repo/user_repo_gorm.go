package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"hotel-backoffice/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// public omits the credential column from every read except FindCredentialsByPseudo.
func (r *UserRepo) public(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Omit("password_hash")
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error, "user")
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.public(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) FindByPseudo(ctx context.Context, pseudo string) (*domain.User, error) {
	var u domain.User
	if err := r.public(ctx).First(&u, "pseudo = ?", pseudo).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) FindCredentialsByPseudo(ctx context.Context, pseudo string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "pseudo = ?", pseudo).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	tx := r.public(ctx).Model(&domain.User{})
	if s := strings.TrimSpace(q); s != "" {
		like := "%" + escapeLike(s) + "%"
		tx = tx.Where("email LIKE ? ESCAPE '!' OR pseudo LIKE ? ESCAPE '!'", like, like)
	}
	// shared by Count and Find below
	tx = tx.Session(&gorm.Session{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "user")
	}
	users := make([]domain.User, 0)
	if err := tx.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, translate(err, "user")
	}
	return users, total, nil
}

func (r *UserRepo) Update(ctx context.Context, id int64, p domain.UserPatch) (*domain.User, error) {
	cols := map[string]any{}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Pseudo != nil {
		cols["pseudo"] = *p.Pseudo
	}
	if p.PasswordHash != nil {
		cols["password_hash"] = *p.PasswordHash
	}
	// existence first: MySQL reports zero affected rows for no-op updates
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if len(cols) > 0 {
		err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(cols).Error
		if err != nil {
			return nil, translate(err, "user")
		}
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("user not found")
	}
	return nil
}
