package repo

import (
	"context"

	"gorm.io/gorm"

	"hotel-backoffice/internal/domain"
)

// Store implements domain.Store over one *gorm.DB, which may itself be a transaction.
type Store struct{ db *gorm.DB }

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Users() domain.UserRepository       { return NewUserRepo(s.db) }
func (s *Store) Roles() domain.RoleRepository       { return NewRoleRepo(s.db) }
func (s *Store) Hotels() domain.HotelRepository     { return NewHotelRepo(s.db) }
func (s *Store) Rooms() domain.RoomRepository       { return NewRoomRepo(s.db) }
func (s *Store) Owners() domain.OwnershipRepository { return NewOwnershipRepo(s.db) }
func (s *Store) Images() domain.ImageRepository     { return NewImageRepo(s.db) }
func (s *Store) Pictures() domain.PictureRepository { return NewPictureRepo(s.db) }

func (s *Store) Transaction(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Migrate creates or updates every table together with its foreign keys.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}
