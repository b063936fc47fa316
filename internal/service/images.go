package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hotel-backoffice/internal/authz"
	"hotel-backoffice/internal/core/events"
	"hotel-backoffice/internal/domain"
)

// sniffLen covers every signature mimetype inspects for image formats.
const sniffLen = 3072

// maxNameBytes bounds the client part of an object key; the tail is kept.
const maxNameBytes = 200

type Images struct {
	d  Deps
	pg Pagination
}

func NewImages(d Deps, pg Pagination) *Images {
	return &Images{d: d.withDefaults(), pg: pg.normalized()}
}

type Upload struct {
	Filename    string
	ContentType string // as declared by the client, may be empty
	Size        int64  // -1 when unknown
	Body        io.Reader
}

// Upload stores the bytes under a fresh key then records the metadata row. A row
// that cannot be written takes the stored object with it.
func (s *Images) Upload(ctx context.Context, caller domain.Caller, hotelID int64, up Upload) (*domain.HotelImage, error) {
	rule := authz.Rule{Resource: authz.ResImage, Action: authz.ActCreate}
	if err := s.d.Gate.Authorize(ctx, caller, rule, authz.Target{HotelID: hotelID}); err != nil {
		return nil, err
	}
	ok, err := s.d.Store.Hotels().Exists(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("hotel not found")
	}

	declared := strings.ToLower(strings.TrimSpace(up.ContentType))
	if declared != "" && !strings.HasPrefix(declared, "image/") {
		return nil, domain.Validation("file is not an image")
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, domain.Validation("could not read upload")
	}
	head = head[:n]
	if n == 0 {
		return nil, domain.Validation("file is empty")
	}
	mt := mimetype.Detect(head)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, domain.Validation("file is not an image")
	}
	body := io.MultiReader(bytes.NewReader(head), up.Body)

	key := uuid.NewString() + "_" + cleanFilename(up.Filename, mt.Extension())
	url, err := s.d.Objects.Put(ctx, key, body, up.Size, mt.String())
	if err != nil {
		return nil, domain.Internal("store image", err)
	}

	img := &domain.HotelImage{Filename: key, URL: url, HotelID: hotelID}
	if err := s.d.Store.Images().Create(ctx, img); err != nil {
		if derr := s.d.Objects.Delete(ctx, key); derr != nil {
			s.d.Log.Error("stored image left without row", zap.String("key", key), zap.Error(derr))
		}
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("image filename already exists")
		}
		return nil, err
	}
	s.d.Log.Info("image uploaded", zap.Int64("image_id", img.ID), zap.Int64("hotel_id", hotelID), zap.String("type", mt.String()))
	s.d.publish(ctx, events.ImageUploaded, caller.UserID, map[string]any{"image_id": img.ID, "hotel_id": hotelID})
	return img, nil
}

// cleanFilename keeps the base name only, with path and control characters
// replaced, so keys stay flat in the bucket.
func cleanFilename(name, ext string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '/' || r == '?' || r == '#' || r == '%' {
			return '_'
		}
		if r == ' ' {
			return '-'
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		name = "upload" + ext
	}
	if len(name) > maxNameBytes {
		i := len(name) - maxNameBytes
		for i < len(name) && !utf8.RuneStart(name[i]) {
			i++
		}
		name = name[i:]
	}
	return name
}

// Get returns the image only if it belongs to hotelID.
func (s *Images) Get(ctx context.Context, hotelID, imageID int64) (*domain.HotelImage, error) {
	img, err := s.d.Store.Images().FindByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if img.HotelID != hotelID {
		return nil, domain.NotFound("image not found")
	}
	return img, nil
}

type ImagePage struct {
	Items  []domain.HotelImage `json:"items"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// List pages over the hotel's full image list.
func (s *Images) List(ctx context.Context, hotelID int64, limit, offset int) (*ImagePage, error) {
	limit, offset, err := s.pg.window(limit, offset)
	if err != nil {
		return nil, err
	}
	ok, err := s.d.Store.Hotels().Exists(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("hotel not found")
	}
	all, err := s.d.Store.Images().ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	page := &ImagePage{Items: []domain.HotelImage{}, Total: len(all), Limit: limit, Offset: offset}
	if offset < len(all) {
		end := min(offset+limit, len(all))
		page.Items = all[offset:end]
	}
	return page, nil
}

// Delete is admin-only. The row is deleted inside a transaction that commits only
// after the stored object is gone, so a failing object store leaves the row intact.
func (s *Images) Delete(ctx context.Context, caller domain.Caller, hotelID, imageID int64) error {
	rule := authz.Rule{Resource: authz.ResImage, Action: authz.ActDelete}
	if err := s.d.Gate.Authorize(ctx, caller, rule, authz.Target{HotelID: hotelID}); err != nil {
		return err
	}
	err := s.d.Store.Transaction(ctx, func(tx domain.Store) error {
		img, err := tx.Images().FindByID(ctx, imageID)
		if err != nil {
			return err
		}
		if img.HotelID != hotelID {
			return domain.NotFound("image not found")
		}
		if err := tx.Images().Delete(ctx, imageID); err != nil {
			return err
		}
		if err := s.d.Objects.Delete(ctx, img.Filename); err != nil {
			return domain.Internal("delete stored image", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.d.Log.Info("image deleted", zap.Int64("image_id", imageID), zap.Int64("hotel_id", hotelID), zap.Int64("actor", caller.UserID))
	s.d.publish(ctx, events.ImageDeleted, caller.UserID, map[string]any{"image_id": imageID, "hotel_id": hotelID})
	return nil
}
