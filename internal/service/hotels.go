package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hotel-backoffice/internal/authz"
	"hotel-backoffice/internal/core/events"
	"hotel-backoffice/internal/domain"
)

var maxRating = decimal.RequireFromString("9.9")

type Hotels struct {
	d  Deps
	pg Pagination
}

func NewHotels(d Deps, pg Pagination) *Hotels {
	return &Hotels{d: d.withDefaults(), pg: pg.normalized()}
}

type HotelInput struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Address     string           `json:"address" validate:"required,max=255"`
	Description *string          `json:"description"`
	Rating      *decimal.Decimal `json:"rating"`
	Breakfast   bool             `json:"breakfast"`
}

type HotelUpdate struct {
	Name        *string          `json:"name" validate:"omitempty,max=255"`
	Address     *string          `json:"address" validate:"omitempty,max=255"`
	Description *string          `json:"description"`
	Rating      *decimal.Decimal `json:"rating"`
	Breakfast   *bool            `json:"breakfast"`
}

// validRating accepts 0.0 through 9.9 with at most one fractional digit.
func validRating(r decimal.Decimal) error {
	if r.IsNegative() || r.GreaterThan(maxRating) || !r.Equal(r.Truncate(1)) {
		return domain.Validation("rating must be between 0.0 and 9.9 with one decimal place")
	}
	return nil
}

// Create stores the hotel and makes the caller its first owner in one transaction.
func (s *Hotels) Create(ctx context.Context, caller domain.Caller, in HotelInput) (*domain.Hotel, error) {
	if err := s.d.Gate.Authorize(ctx, caller, authz.Rule{Resource: authz.ResHotel, Action: authz.ActCreate}, authz.Target{}); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	if err := check(in); err != nil {
		return nil, err
	}
	h := &domain.Hotel{Name: in.Name, Address: in.Address, Description: in.Description, Breakfast: in.Breakfast}
	if in.Rating != nil {
		if err := validRating(*in.Rating); err != nil {
			return nil, err
		}
		h.Rating = decimal.NewNullDecimal(*in.Rating)
	}

	err := s.d.Store.Transaction(ctx, func(tx domain.Store) error {
		if err := tx.Hotels().Create(ctx, h); err != nil {
			return err
		}
		return tx.Owners().Assign(ctx, caller.UserID, h.ID)
	})
	if err != nil {
		return nil, err
	}
	s.d.Log.Info("hotel created", zap.Int64("hotel_id", h.ID), zap.Int64("owner", caller.UserID))
	s.d.publish(ctx, events.HotelCreated, caller.UserID, map[string]any{"hotel_id": h.ID})
	return h, nil
}

func (s *Hotels) Get(ctx context.Context, id int64) (*domain.Hotel, error) {
	return s.d.Store.Hotels().FindByID(ctx, id)
}

// Search applies AND-combined substring filters; Limit 0 means the default page size.
func (s *Hotels) Search(ctx context.Context, f domain.HotelFilter) ([]domain.Hotel, error) {
	limit, offset, err := s.pg.window(f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	f.Limit, f.Offset = limit, offset
	return s.d.Store.Hotels().Search(ctx, f)
}

// Update is owner-gated; a hotel that does not exist has no owners, so the
// caller sees Forbidden rather than NotFound.
func (s *Hotels) Update(ctx context.Context, caller domain.Caller, id int64, in HotelUpdate) (*domain.Hotel, error) {
	if err := s.d.Gate.Authorize(ctx, caller, authz.Rule{Resource: authz.ResHotel, Action: authz.ActUpdate}, authz.Target{HotelID: id}); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	p := domain.HotelPatch{Description: in.Description, Breakfast: in.Breakfast, Rating: in.Rating}
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			return nil, domain.Validation("name must not be empty")
		}
		p.Name = &n
	}
	if in.Address != nil {
		a := strings.TrimSpace(*in.Address)
		if a == "" {
			return nil, domain.Validation("address must not be empty")
		}
		p.Address = &a
	}
	if p.Rating != nil {
		if err := validRating(*p.Rating); err != nil {
			return nil, err
		}
	}
	h, err := s.d.Store.Hotels().Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.d.Log.Info("hotel updated", zap.Int64("hotel_id", id), zap.Int64("actor", caller.UserID))
	s.d.publish(ctx, events.HotelUpdated, caller.UserID, map[string]any{"hotel_id": id})
	return h, nil
}

// Delete removes the hotel; rooms, images, pictures and ownerships cascade in the
// store. Stored image objects are removed after commit, best effort.
func (s *Hotels) Delete(ctx context.Context, caller domain.Caller, id int64) error {
	if err := s.d.Gate.Authorize(ctx, caller, authz.Rule{Resource: authz.ResHotel, Action: authz.ActDelete}, authz.Target{HotelID: id}); err != nil {
		return err
	}
	var orphans []string
	err := s.d.Store.Transaction(ctx, func(tx domain.Store) error {
		imgs, err := tx.Images().ListByHotel(ctx, id)
		if err != nil {
			return err
		}
		for _, img := range imgs {
			orphans = append(orphans, img.Filename)
		}
		return tx.Hotels().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	if s.d.Objects != nil {
		for _, key := range orphans {
			if err := s.d.Objects.Delete(ctx, key); err != nil {
				s.d.Log.Warn("orphan image object not removed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	s.d.Log.Info("hotel deleted", zap.Int64("hotel_id", id), zap.Int("images", len(orphans)), zap.Int64("actor", caller.UserID))
	s.d.publish(ctx, events.HotelDeleted, caller.UserID, map[string]any{"hotel_id": id})
	return nil
}

// Owners lists the user ids owning hotel id.
func (s *Hotels) Owners(ctx context.Context, id int64) ([]int64, error) {
	ok, err := s.d.Store.Hotels().Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("hotel not found")
	}
	return s.d.Store.Owners().OwnersOf(ctx, id)
}
