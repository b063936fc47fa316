package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"hotel-backoffice/internal/authz"
	"hotel-backoffice/internal/core/events"
	"hotel-backoffice/internal/domain"
)

type Ownership struct{ d Deps }

func NewOwnership(d Deps) *Ownership { return &Ownership{d: d.withDefaults()} }

type OwnershipInput struct {
	UserID  int64 `json:"user_id" form:"user_id" validate:"required,gt=0"`
	HotelID int64 `json:"hotel_id" form:"hotel_id" validate:"required,gt=0"`
}

// Assign links user to hotel. The pair is unique: a second assign is Conflict.
func (s *Ownership) Assign(ctx context.Context, caller domain.Caller, in OwnershipInput) (*domain.Ownership, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	rule := authz.Rule{Resource: authz.ResOwnership, Action: authz.ActCreate}
	if err := s.d.Gate.Authorize(ctx, caller, rule, authz.Target{HotelID: in.HotelID, UserID: in.UserID}); err != nil {
		return nil, err
	}
	if err := s.d.Store.Owners().Assign(ctx, in.UserID, in.HotelID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("user already owns this hotel")
		}
		return nil, err
	}
	s.d.Log.Info("ownership assigned", zap.Int64("user_id", in.UserID), zap.Int64("hotel_id", in.HotelID))
	s.d.publish(ctx, events.OwnershipAssigned, caller.UserID, map[string]any{"user_id": in.UserID, "hotel_id": in.HotelID})
	return &domain.Ownership{UserID: in.UserID, HotelID: in.HotelID}, nil
}

// Remove unlinks user from hotel; an absent pair is NotFound.
func (s *Ownership) Remove(ctx context.Context, caller domain.Caller, in OwnershipInput) error {
	if err := check(in); err != nil {
		return err
	}
	rule := authz.Rule{Resource: authz.ResOwnership, Action: authz.ActDelete}
	if err := s.d.Gate.Authorize(ctx, caller, rule, authz.Target{HotelID: in.HotelID, UserID: in.UserID}); err != nil {
		return err
	}
	removed, err := s.d.Store.Owners().Remove(ctx, in.UserID, in.HotelID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.NotFound("ownership not found")
	}
	s.d.Log.Info("ownership removed", zap.Int64("user_id", in.UserID), zap.Int64("hotel_id", in.HotelID))
	s.d.publish(ctx, events.OwnershipRemoved, caller.UserID, map[string]any{"user_id": in.UserID, "hotel_id": in.HotelID})
	return nil
}

func (s *Ownership) IsOwner(ctx context.Context, userID, hotelID int64) (bool, error) {
	return s.d.Store.Owners().IsOwner(ctx, userID, hotelID)
}
