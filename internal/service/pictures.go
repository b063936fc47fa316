package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hotel-backoffice/internal/authz"
	"hotel-backoffice/internal/core/events"
	"hotel-backoffice/internal/domain"
)

// Pictures attach objects that already live in the object store, by uuid.
type Pictures struct{ d Deps }

func NewPictures(d Deps) *Pictures { return &Pictures{d: d.withDefaults()} }

type PictureView struct {
	domain.HotelPicture
	URL string `json:"url"`
}

func (s *Pictures) view(p domain.HotelPicture) PictureView {
	v := PictureView{HotelPicture: p}
	if s.d.Objects != nil {
		v.URL = s.d.Objects.URL(p.UUID)
	}
	return v
}

func (s *Pictures) Attach(ctx context.Context, caller domain.Caller, hotelID int64, rawUUID string) (*PictureView, error) {
	rule := authz.Rule{Resource: authz.ResPicture, Action: authz.ActCreate}
	if err := s.d.Gate.Authorize(ctx, caller, rule, authz.Target{HotelID: hotelID}); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(strings.TrimSpace(rawUUID))
	if err != nil {
		return nil, domain.Validation("uuid is not a valid UUID")
	}
	ok, err := s.d.Store.Hotels().Exists(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("hotel not found")
	}
	p := domain.HotelPicture{HotelID: hotelID, UUID: id.String()}
	if err := s.d.Store.Pictures().Create(ctx, &p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("picture already attached")
		}
		return nil, err
	}
	s.d.Log.Info("picture attached", zap.Int64("picture_id", p.ID), zap.Int64("hotel_id", hotelID))
	s.d.publish(ctx, events.PictureAttached, caller.UserID, map[string]any{"picture_id": p.ID, "hotel_id": hotelID})
	v := s.view(p)
	return &v, nil
}

func (s *Pictures) Get(ctx context.Context, hotelID, pictureID int64) (*PictureView, error) {
	p, err := s.d.Store.Pictures().FindByID(ctx, pictureID)
	if err != nil {
		return nil, err
	}
	if p.HotelID != hotelID {
		return nil, domain.NotFound("picture not found")
	}
	v := s.view(*p)
	return &v, nil
}

func (s *Pictures) List(ctx context.Context, hotelID int64) ([]PictureView, error) {
	ok, err := s.d.Store.Hotels().Exists(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("hotel not found")
	}
	ps, err := s.d.Store.Pictures().ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	out := make([]PictureView, 0, len(ps))
	for _, p := range ps {
		out = append(out, s.view(p))
	}
	return out, nil
}

// Delete drops the row only; the object may be shared and is left in place.
func (s *Pictures) Delete(ctx context.Context, caller domain.Caller, hotelID, pictureID int64) error {
	rule := authz.Rule{Resource: authz.ResPicture, Action: authz.ActDelete}
	if err := s.d.Gate.Authorize(ctx, caller, rule, authz.Target{HotelID: hotelID}); err != nil {
		return err
	}
	if _, err := s.Get(ctx, hotelID, pictureID); err != nil {
		return err
	}
	if err := s.d.Store.Pictures().Delete(ctx, pictureID); err != nil {
		return err
	}
	s.d.Log.Info("picture deleted", zap.Int64("picture_id", pictureID), zap.Int64("hotel_id", hotelID))
	s.d.publish(ctx, events.PictureDeleted, caller.UserID, map[string]any{"picture_id": pictureID, "hotel_id": hotelID})
	return nil
}
