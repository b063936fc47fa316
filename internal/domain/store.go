package domain

import "context"

// Store hands out repositories bound to one connection or one transaction.
type Store interface {
	Users() UserRepository
	Roles() RoleRepository
	Hotels() HotelRepository
	Rooms() RoomRepository
	Owners() OwnershipRepository
	Images() ImageRepository
	Pictures() PictureRepository

	// Transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// Models lists every persisted entity, in dependency order, for migrations.
func Models() []any {
	return []any{
		&User{}, &UserRole{}, &Hotel{}, &Room{}, &Ownership{}, &HotelImage{}, &HotelPicture{},
	}
}
