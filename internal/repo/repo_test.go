package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hotel-backoffice/internal/domain"
	"hotel-backoffice/internal/repo"
	"hotel-backoffice/internal/repo/repotest"
)

func strp(s string) *string { return &s }

func mustUser(t *testing.T, s domain.Store, email, pseudo string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, Pseudo: pseudo, PasswordHash: "hash-" + pseudo}
	if err := s.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func mustHotel(t *testing.T, s domain.Store, name, addr string) *domain.Hotel {
	t.Helper()
	h := &domain.Hotel{Name: name, Address: addr}
	if err := s.Hotels().Create(context.Background(), h); err != nil {
		t.Fatalf("create hotel: %v", err)
	}
	return h
}

func TestUserUniqueAndHashHidden(t *testing.T) {
	s := repotest.Store(t)
	ctx := context.Background()
	u := mustUser(t, s, "a@x.com", "a")

	if err := s.Users().Create(ctx, &domain.User{Email: "a@x.com", Pseudo: "b", PasswordHash: "h"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("dup email: %v", err)
	}
	if err := s.Users().Create(ctx, &domain.User{Email: "b@x.com", Pseudo: "a", PasswordHash: "h"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("dup pseudo: %v", err)
	}
	_, total, err := s.Users().List(ctx, "", 0, 10)
	if err != nil || total != 1 {
		t.Fatalf("list total=%d err=%v", total, err)
	}

	pub, err := s.Users().FindByID(ctx, u.ID)
	if err != nil || pub.PasswordHash != "" {
		t.Fatalf("public read leaked hash: %+v %v", pub, err)
	}
	raw, err := s.Users().FindCredentialsByPseudo(ctx, "a")
	if err != nil || raw.PasswordHash != "hash-a" {
		t.Fatalf("credential read: %+v %v", raw, err)
	}
	if _, err := s.Users().FindByPseudo(ctx, "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing pseudo: %v", err)
	}
}

func TestUserUpdateAndDelete(t *testing.T) {
	s := repotest.Store(t)
	ctx := context.Background()
	u := mustUser(t, s, "a@x.com", "a")
	mustUser(t, s, "b@x.com", "b")

	got, err := s.Users().Update(ctx, u.ID, domain.UserPatch{Email: strp("new@x.com")})
	if err != nil || got.Email != "new@x.com" || got.Pseudo != "a" {
		t.Fatalf("update: %+v %v", got, err)
	}
	if _, err := s.Users().Update(ctx, u.ID, domain.UserPatch{Pseudo: strp("b")}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("update to taken pseudo: %v", err)
	}
	if _, err := s.Users().Update(ctx, 999, domain.UserPatch{Pseudo: strp("z")}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
	if err := s.Users().Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Users().Delete(ctx, u.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestUserListSearchAndPaging(t *testing.T) {
	s := repotest.Store(t)
	ctx := context.Background()
	mustUser(t, s, "ann@x.com", "ann")
	mustUser(t, s, "bob@y.com", "bob")
	mustUser(t, s, "anna@y.com", "anna")

	items, total, err := s.Users().List(ctx, "ann", 0, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(items) != 1 || items[0].Pseudo != "ann" {
		t.Fatalf("total=%d items=%+v", total, items)
	}
}

func TestUserListTreatsWildcardsLiterally(t *testing.T) {
	s := repotest.Store(t)
	ctx := context.Background()
	mustUser(t, s, "ann@x.com", "ann")
	mustUser(t, s, "a_b@x.com", "a_b")
	mustUser(t, s, "50%off@x.com", "promo")

	for q, want := range map[string]string{"_": "a_b", "%": "promo"} {
		items, total, err := s.Users().List(ctx, q, 0, 10)
		if err != nil {
			t.Fatalf("list %q: %v", q, err)
		}
		if total != 1 || len(items) != 1 || items[0].Pseudo != want {
			t.Fatalf("q=%q total=%d items=%+v", q, total, items)
		}
	}
}

// race runs fn n times concurrently and returns every result.
func race(n int, fn func() error) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn()
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func exactlyOneWins(t *testing.T, errs []error) {
	t.Helper()
	won := 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case !errors.Is(err, domain.ErrConflict):
			t.Fatalf("loser got %v, want conflict", err)
		}
	}
	if won != 1 {
		t.Fatalf("%d winners, want 1", won)
	}
}

func TestConcurrentWritesOnSameKey(t *testing.T) {
	s := repotest.Store(t)
	ctx := context.Background()
	u := mustUser(t, s, "a@x.com", "a")
	h := mustHotel(t, s, "H", "addr")

	exactlyOneWins(t, race(8, func() error { return s.Owners().Assign(ctx, u.ID, h.ID) }))
	exactlyOneWins(t, race(8, func() error {
		return s.Users().Create(ctx, &domain.User{Email: uuid.NewString() + "@x.com", Pseudo: "same", PasswordHash: "h"})
	}))
}

func TestRoleUpsertOneRowPerUser(t *testing.T) {
	db := repotest.Open(t)
	s := repo.NewStore(db)
	ctx := context.Background()
	u := mustUser(t, s, "a@x.com", "a")

	if ok, err := s.Roles().IsAdmin(ctx, u.ID); err != nil || ok {
		t.Fatalf("no row should mean non-admin: %v %v", ok, err)
	}
	if _, err := s.Roles().Upsert(ctx, u.ID, true); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	r, err := s.Roles().Upsert(ctx, u.ID, false)
	if err != nil || r.IsAdmin {
		t.Fatalf("second upsert: %+v %v", r, err)
	}
	var n int64
	if err := db.Model(&domain.UserRole{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("role rows: %d %v", n, err)
	}
	if _, err := s.Roles().Upsert(ctx, 999, true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("role for missing user: %v", err)
	}
	if err := s.Roles().Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete role: %v", err)
	}
	if err := s.Roles().Delete(ctx, u.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delete absent role: %v", err)
	}
}

func TestOwnershipLifecycle(t *testing.T) {
	s := repotest.Store(t)
	ctx := context.Background()
	u := mustUser(t, s, "a@x.com", "a")
	h := mustHotel(t, s, "H", "addr")

	if err := s.Owners().Assign(ctx, u.ID, h.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.Owners().Assign(ctx, u.ID, h.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate assign: %v", err)
	}
	if ok, _ := s.Owners().IsOwner(ctx, u.ID, h.ID); !ok {
		t.Fatalf("isOwner after assign")
	}
	ids, err := s.Owners().OwnersOf(ctx, h.ID)
	if err != nil || len(ids) != 1 || ids[0] != u.ID {
		t.Fatalf("owners: %v %v", ids, err)
	}
	removed, err := s.Owners().Remove(ctx, u.ID, h.ID)
	if err != nil || !removed {
		t.Fatalf("remove: %v %v", removed, err)
	}
	if ok, _ := s.Owners().IsOwner(ctx, u.ID, h.ID); ok {
		t.Fatalf("isOwner after remove")
	}
	removed, err = s.Owners().Remove(ctx, u.ID, h.ID)
	if err != nil || removed {
		t.Fatalf("remove absent: %v %v", removed, err)
	}
	if err := s.Owners().Assign(ctx, u.ID, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("assign to missing hotel: %v", err)
	}
}

func TestHotelDeleteCascades(t *testing.T) {
	s := repotest.Store(t)
	ctx := context.Background()
	u := mustUser(t, s, "a@x.com", "a")
	h := mustHotel(t, s, "H", "addr")
	_ = s.Owners().Assign(ctx, u.ID, h.ID)

	room := &domain.Room{HotelID: h.ID, Price: decimal.RequireFromString("99.50"), NumberOfBeds: 2}
	if err := s.Rooms().Create(ctx, room); err != nil {
		t.Fatalf("room: %v", err)
	}
	img := &domain.HotelImage{HotelID: h.ID, Filename: "k_a.png", URL: "memory://objects/k_a.png"}
	if err := s.Images().Create(ctx, img); err != nil {
		t.Fatalf("image: %v", err)
	}
	pic := &domain.HotelPicture{HotelID: h.ID, UUID: "2b1c7c52-4d0f-4b8e-9a43-8f3c0e6b1d2a"}
	if err := s.Pictures().Create(ctx, pic); err != nil {
		t.Fatalf("picture: %v", err)
	}

	if err := s.Hotels().Delete(ctx, h.ID); err != nil {
		t.Fatalf("delete hotel: %v", err)
	}
	if _, err := s.Rooms().FindByID(ctx, room.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("room survived: %v", err)
	}
	if _, err := s.Images().FindByID(ctx, img.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("image survived: %v", err)
	}
	if _, err := s.Pictures().FindByID(ctx, pic.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("picture survived: %v", err)
	}
	if ok, _ := s.Owners().IsOwner(ctx, u.ID, h.ID); ok {
		t.Fatalf("ownership survived")
	}
	if err := s.Hotels().Delete(ctx, h.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestUserDeleteCascadesRoleAndOwnership(t *testing.T) {
	s := repotest.Store(t)
	ctx := context.Background()
	u := mustUser(t, s, "a@x.com", "a")
	h := mustHotel(t, s, "H", "addr")
	_ = s.Owners().Assign(ctx, u.ID, h.ID)
	_, _ = s.Roles().Upsert(ctx, u.ID, true)

	if err := s.Users().Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if ok, _ := s.Owners().IsOwner(ctx, u.ID, h.ID); ok {
		t.Fatalf("ownership survived user delete")
	}
	if _, err := s.Roles().Get(ctx, u.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("role survived user delete: %v", err)
	}
	if _, err := s.Hotels().FindByID(ctx, h.ID); err != nil {
		t.Fatalf("hotel should survive its owner: %v", err)
	}
}

func TestHotelSearch(t *testing.T) {
	s := repotest.Store(t)
	ctx := context.Background()
	mustHotel(t, s, "Grand Paris", "1 Rue A, Paris")
	mustHotel(t, s, "grand lyon", "2 Rue B, Lyon")
	mustHotel(t, s, "Petit 100%", "3 Rue C, Paris")

	search := func(f domain.HotelFilter) []string {
		t.Helper()
		if f.Limit == 0 {
			f.Limit = 10
		}
		hs, err := s.Hotels().Search(ctx, f)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		names := make([]string, 0, len(hs))
		for _, h := range hs {
			names = append(names, h.Name)
		}
		return names
	}

	if got := search(domain.HotelFilter{Name: strp("GRAND")}); len(got) != 2 || got[0] != "Grand Paris" {
		t.Fatalf("insensitive: %v", got)
	}
	if got := search(domain.HotelFilter{Name: strp("Grand"), CaseSensitive: true}); len(got) != 1 {
		t.Fatalf("sensitive: %v", got)
	}
	if got := search(domain.HotelFilter{Name: strp("grand"), Address: strp("paris")}); len(got) != 1 || got[0] != "Grand Paris" {
		t.Fatalf("AND filters: %v", got)
	}
	if got := search(domain.HotelFilter{Name: strp("%")}); len(got) != 1 || got[0] != "Petit 100%" {
		t.Fatalf("literal percent: %v", got)
	}
	if got := search(domain.HotelFilter{Limit: 2, Offset: 1}); len(got) != 2 || got[0] != "grand lyon" {
		t.Fatalf("paging: %v", got)
	}
}

func TestHotelUpdatePartial(t *testing.T) {
	s := repotest.Store(t)
	ctx := context.Background()
	h := mustHotel(t, s, "H", "addr")
	r := decimal.RequireFromString("4.5")
	got, err := s.Hotels().Update(ctx, h.ID, domain.HotelPatch{Rating: &r})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "H" || !got.Rating.Valid || !got.Rating.Decimal.Equal(r) {
		t.Fatalf("partial update: %+v", got)
	}
	if _, err := s.Hotels().Update(ctx, 999, domain.HotelPatch{Name: strp("x")}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing hotel: %v", err)
	}
}

func TestTransactionRollsBack(t *testing.T) {
	s := repotest.Store(t)
	ctx := context.Background()
	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx domain.Store) error {
		if err := tx.Hotels().Create(ctx, &domain.Hotel{Name: "H", Address: "a"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("tx err: %v", err)
	}
	hs, _ := s.Hotels().Search(ctx, domain.HotelFilter{Limit: 10})
	if len(hs) != 0 {
		t.Fatalf("rolled back hotel persisted: %+v", hs)
	}
}

func TestImageFilenameUnique(t *testing.T) {
	s := repotest.Store(t)
	ctx := context.Background()
	h := mustHotel(t, s, "H", "addr")
	a := &domain.HotelImage{HotelID: h.ID, Filename: "same.png", URL: "u"}
	if err := s.Images().Create(ctx, a); err != nil {
		t.Fatalf("first: %v", err)
	}
	b := &domain.HotelImage{HotelID: h.ID, Filename: "same.png", URL: "u"}
	if err := s.Images().Create(ctx, b); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("dup filename: %v", err)
	}
	if err := s.Images().Create(ctx, &domain.HotelImage{HotelID: 999, Filename: "x.png", URL: "u"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing hotel: %v", err)
	}
}
