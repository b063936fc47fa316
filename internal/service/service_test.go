package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"hotel-backoffice/internal/core/auth"
	"hotel-backoffice/internal/core/events"
	"hotel-backoffice/internal/core/objectstore"
	"hotel-backoffice/internal/core/redisx"
	"hotel-backoffice/internal/domain"
	"hotel-backoffice/internal/repo"
	"hotel-backoffice/internal/repo/repotest"
	"hotel-backoffice/internal/service"
)

// flakyObjects fails Delete on demand.
type flakyObjects struct {
	*objectstore.Memory
	failDelete bool
}

func (f *flakyObjects) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return errors.New("object store unavailable")
	}
	return f.Memory.Delete(ctx, key)
}

type env struct {
	store   *repo.Store
	objects *flakyObjects
	events  *events.Recorder
	redis   *miniredis.Miniredis
	svc     *service.Services
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := &redisx.Client{RDB: redis.NewClient(&redis.Options{Addr: mr.Addr()}), Prefix: "test"}
	t.Cleanup(func() { _ = rc.Close() })

	e := &env{
		store:   repotest.Store(t),
		objects: &flakyObjects{Memory: objectstore.NewMemory("")},
		events:  &events.Recorder{},
		redis:   mr,
	}
	e.svc = service.New(
		service.Deps{Store: e.store, Objects: e.objects, Events: e.events},
		service.AuthDeps{
			JWT:      auth.NewJWTer("0123456789abcdef0123", "hotel-backoffice", time.Hour),
			Denylist: redisx.NewDenylist(rc),
		},
		service.Pagination{DefaultLimit: 10, MaxLimit: 100},
	)
	return e
}

var ctx = context.Background()

func (e *env) register(t *testing.T, pseudo string) domain.Caller {
	t.Helper()
	u, err := e.svc.Users.Register(ctx, service.RegisterInput{
		Email: pseudo + "@x.com", Pseudo: pseudo, Password: "pw-" + pseudo,
	})
	if err != nil {
		t.Fatalf("register %s: %v", pseudo, err)
	}
	return domain.Caller{UserID: u.ID, Pseudo: u.Pseudo}
}

func (e *env) admin(t *testing.T, pseudo string) domain.Caller {
	t.Helper()
	c := e.register(t, pseudo)
	if _, err := e.svc.Roles.Promote(ctx, pseudo); err != nil {
		t.Fatalf("promote: %v", err)
	}
	return c
}

func (e *env) hotel(t *testing.T, owner domain.Caller, name string) *domain.Hotel {
	t.Helper()
	h, err := e.svc.Hotels.Create(ctx, owner, service.HotelInput{Name: name, Address: "addr"})
	if err != nil {
		t.Fatalf("create hotel: %v", err)
	}
	return h
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

func (e *env) upload(t *testing.T, c domain.Caller, hotelID int64) *domain.HotelImage {
	t.Helper()
	img, err := e.svc.Images.Upload(ctx, c, hotelID, service.Upload{
		Filename: "room 1.png", ContentType: "image/png", Size: int64(len(pngBytes)), Body: bytes.NewReader(pngBytes),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return img
}

func wantKind(t *testing.T, err error, k domain.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("want %s error, got nil", k)
	}
	if got := domain.KindOf(err); got != k {
		t.Fatalf("want %s, got %s (%v)", k, got, err)
	}
}

func readAll(t *testing.T, r io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return b
}

// slowUsers blocks FindByPseudo until release is closed or ctx ends.
type slowUsers struct {
	domain.UserRepository
	entered chan struct{}
	once    sync.Once
	release chan struct{}
}

func (u *slowUsers) FindByPseudo(ctx context.Context, pseudo string) (*domain.User, error) {
	u.once.Do(func() { close(u.entered) })
	select {
	case <-u.release:
		return u.UserRepository.FindByPseudo(ctx, pseudo)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// conflictImages refuses every metadata row as a duplicate.
type conflictImages struct{ domain.ImageRepository }

func (conflictImages) Create(context.Context, *domain.HotelImage) error {
	return domain.Conflict("image filename already exists")
}

// wrapStore swaps individual repositories of an underlying store.
type wrapStore struct {
	*repo.Store
	users  domain.UserRepository
	images domain.ImageRepository
}

func (w wrapStore) Users() domain.UserRepository {
	if w.users != nil {
		return w.users
	}
	return w.Store.Users()
}

func (w wrapStore) Images() domain.ImageRepository {
	if w.images != nil {
		return w.images
	}
	return w.Store.Images()
}
