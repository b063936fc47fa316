package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hotel-backoffice/internal/authz"
	"hotel-backoffice/internal/core/events"
	"hotel-backoffice/internal/domain"
)

type Rooms struct{ d Deps }

func NewRooms(d Deps) *Rooms { return &Rooms{d: d.withDefaults()} }

type RoomInput struct {
	HotelID      int64           `json:"hotel_id" validate:"required,gt=0"`
	Price        decimal.Decimal `json:"price"`
	NumberOfBeds int             `json:"number_of_beds" validate:"gt=0"`
}

type RoomUpdate struct {
	Price        *decimal.Decimal `json:"price"`
	NumberOfBeds *int             `json:"number_of_beds" validate:"omitempty,gt=0"`
}

func validPrice(p decimal.Decimal) error {
	if p.IsNegative() || !p.Equal(p.Truncate(2)) {
		return domain.Validation("price must be non-negative with at most two decimals")
	}
	if p.GreaterThanOrEqual(decimal.New(1, 8)) {
		return domain.Validation("price is too large")
	}
	return nil
}

func (s *Rooms) Create(ctx context.Context, caller domain.Caller, in RoomInput) (*domain.Room, error) {
	if err := s.d.Gate.Authorize(ctx, caller, authz.Rule{Resource: authz.ResRoom, Action: authz.ActCreate}, authz.Target{HotelID: in.HotelID}); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if err := validPrice(in.Price); err != nil {
		return nil, err
	}
	ok, err := s.d.Store.Hotels().Exists(ctx, in.HotelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("hotel not found")
	}
	r := &domain.Room{HotelID: in.HotelID, Price: in.Price, NumberOfBeds: in.NumberOfBeds}
	if err := s.d.Store.Rooms().Create(ctx, r); err != nil {
		return nil, err
	}
	s.d.Log.Info("room created", zap.Int64("room_id", r.ID), zap.Int64("hotel_id", r.HotelID))
	s.d.publish(ctx, events.RoomCreated, caller.UserID, map[string]any{"room_id": r.ID, "hotel_id": r.HotelID})
	return r, nil
}

func (s *Rooms) Get(ctx context.Context, id int64) (*domain.Room, error) {
	return s.d.Store.Rooms().FindByID(ctx, id)
}

func (s *Rooms) ListByHotel(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	ok, err := s.d.Store.Hotels().Exists(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("hotel not found")
	}
	return s.d.Store.Rooms().ListByHotel(ctx, hotelID)
}

func (s *Rooms) Update(ctx context.Context, caller domain.Caller, id int64, in RoomUpdate) (*domain.Room, error) {
	room, err := s.d.Store.Rooms().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.d.Gate.Authorize(ctx, caller, authz.Rule{Resource: authz.ResRoom, Action: authz.ActUpdate}, authz.Target{HotelID: room.HotelID}); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if in.Price != nil {
		if err := validPrice(*in.Price); err != nil {
			return nil, err
		}
	}
	updated, err := s.d.Store.Rooms().Update(ctx, id, domain.RoomPatch{Price: in.Price, NumberOfBeds: in.NumberOfBeds})
	if err != nil {
		return nil, err
	}
	s.d.publish(ctx, events.RoomUpdated, caller.UserID, map[string]any{"room_id": id, "hotel_id": room.HotelID})
	return updated, nil
}

func (s *Rooms) Delete(ctx context.Context, caller domain.Caller, id int64) error {
	room, err := s.d.Store.Rooms().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.d.Gate.Authorize(ctx, caller, authz.Rule{Resource: authz.ResRoom, Action: authz.ActDelete}, authz.Target{HotelID: room.HotelID}); err != nil {
		return err
	}
	if err := s.d.Store.Rooms().Delete(ctx, id); err != nil {
		return err
	}
	s.d.Log.Info("room deleted", zap.Int64("room_id", id), zap.Int64("hotel_id", room.HotelID))
	s.d.publish(ctx, events.RoomDeleted, caller.UserID, map[string]any{"room_id": id, "hotel_id": room.HotelID})
	return nil
}
