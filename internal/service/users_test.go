package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel-backoffice/internal/core/auth"
	"hotel-backoffice/internal/core/events"
	"hotel-backoffice/internal/domain"
	"hotel-backoffice/internal/service"
	"hotel-backoffice/pkg/utils"
)

func TestRegisterHashesSecret(t *testing.T) {
	e := newEnv(t)
	e.register(t, "a")
	raw, err := e.store.Users().FindCredentialsByPseudo(ctx, "a")
	if err != nil {
		t.Fatalf("raw lookup: %v", err)
	}
	if raw.PasswordHash == "pw-a" || !utils.CheckPassword("pw-a", raw.PasswordHash) {
		t.Fatalf("stored secret is not a verifying hash: %q", raw.PasswordHash)
	}
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	e := newEnv(t)
	e.register(t, "a")
	_, err := e.svc.Users.Register(ctx, service.RegisterInput{Email: "a@x.com", Pseudo: "other", Password: "pw"})
	wantKind(t, err, domain.KindConflict)
	_, err = e.svc.Users.Register(ctx, service.RegisterInput{Email: "other@x.com", Pseudo: "a", Password: "pw"})
	wantKind(t, err, domain.KindConflict)

	list, err := e.svc.Users.List(ctx, "", 0, 10)
	if err != nil || list.Total != 1 {
		t.Fatalf("partial rows created: %+v %v", list, err)
	}
}

func TestRegisterValidates(t *testing.T) {
	e := newEnv(t)
	for _, in := range []service.RegisterInput{
		{Email: "not-an-email", Pseudo: "a", Password: "pw"},
		{Email: "a@x.com", Pseudo: "  ", Password: "pw"},
		{Email: "a@x.com", Pseudo: "a", Password: ""},
	} {
		_, err := e.svc.Users.Register(ctx, in)
		wantKind(t, err, domain.KindValidation)
	}
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	e := newEnv(t)
	e.register(t, "a")

	_, errWrong := e.svc.Users.Login(ctx, "a", "nope")
	_, errUnknown := e.svc.Users.Login(ctx, "ghost", "nope")
	wantKind(t, errWrong, domain.KindUnauthorized)
	wantKind(t, errUnknown, domain.KindUnauthorized)
	if errWrong.Error() != errUnknown.Error() {
		t.Fatalf("messages differ: %q vs %q", errWrong, errUnknown)
	}
}

func TestLoginResolveLogout(t *testing.T) {
	e := newEnv(t)
	me := e.register(t, "a")

	tok, err := e.svc.Users.Login(ctx, "a", "pw-a")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok.TokenType != "bearer" || tok.ExpiresIn <= 0 || tok.ExpiresIn > int64(time.Hour/time.Second) {
		t.Fatalf("token: %+v", tok)
	}
	caller, claims, err := e.svc.Users.Resolve(ctx, tok.AccessToken)
	if err != nil || caller != me {
		t.Fatalf("resolve: %+v %v", caller, err)
	}

	if err := e.svc.Users.Logout(ctx, claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, _, err = e.svc.Users.Resolve(ctx, tok.AccessToken)
	wantKind(t, err, domain.KindUnauthorized)

	_, _, err = e.svc.Users.Resolve(ctx, "garbage")
	wantKind(t, err, domain.KindUnauthorized)
}

func TestResolveFailsForDeletedUser(t *testing.T) {
	e := newEnv(t)
	me := e.register(t, "a")
	tok, _ := e.svc.Users.Login(ctx, "a", "pw-a")
	if err := e.svc.Users.Delete(ctx, me, me.UserID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, _, err := e.svc.Users.Resolve(ctx, tok.AccessToken)
	wantKind(t, err, domain.KindUnauthorized)
}

func TestUserSelfServiceOnly(t *testing.T) {
	e := newEnv(t)
	a := e.register(t, "a")
	b := e.register(t, "b")
	root := e.admin(t, "root")

	wantKind(t, e.svc.Users.Delete(ctx, b, a.UserID), domain.KindForbidden)
	wantKind(t, e.svc.Users.Delete(ctx, root, a.UserID), domain.KindForbidden)

	pw := "rotated"
	if _, err := e.svc.Users.Update(ctx, a, a.UserID, service.UserUpdate{Password: &pw}); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, err := e.svc.Users.Login(ctx, "a", "pw-a"); domain.KindOf(err) != domain.KindUnauthorized {
		t.Fatalf("old password still works: %v", err)
	}
	if _, err := e.svc.Users.Login(ctx, "a", "rotated"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
	taken := "b"
	_, err := e.svc.Users.Update(ctx, a, a.UserID, service.UserUpdate{Pseudo: &taken})
	wantKind(t, err, domain.KindConflict)
	_, err = e.svc.Users.Update(ctx, b, a.UserID, service.UserUpdate{Pseudo: &taken})
	wantKind(t, err, domain.KindForbidden)
}

func TestUserEventsPublished(t *testing.T) {
	e := newEnv(t)
	a := e.register(t, "a")
	_ = e.svc.Users.Delete(ctx, a, a.UserID)
	got := e.events.Types()
	if len(got) != 2 || got[0] != events.UserCreated || got[1] != events.UserDeleted {
		t.Fatalf("events: %v", got)
	}
}

func TestRolesAdminOnly(t *testing.T) {
	e := newEnv(t)
	a := e.register(t, "a")
	b := e.register(t, "b")
	root := e.admin(t, "root")

	_, err := e.svc.Roles.Set(ctx, a, b.UserID, true)
	wantKind(t, err, domain.KindForbidden)
	_, err = e.svc.Roles.Set(ctx, a, a.UserID, true)
	wantKind(t, err, domain.KindForbidden)

	r, err := e.svc.Roles.Set(ctx, root, b.UserID, true)
	if err != nil || !r.IsAdmin {
		t.Fatalf("admin set: %+v %v", r, err)
	}
	if err := e.svc.Roles.RequireAdmin(ctx, b); err != nil {
		t.Fatalf("b should be admin now: %v", err)
	}
	if err := e.svc.Roles.Remove(ctx, root, b.UserID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, err := e.svc.Roles.Get(ctx, root, b.UserID)
	if err != nil || got.IsAdmin {
		t.Fatalf("role after remove: %+v %v", got, err)
	}
	_, err = e.svc.Roles.Set(ctx, root, 9999, true)
	wantKind(t, err, domain.KindNotFound)
}

func TestResolveSurvivesOtherCallerCancelling(t *testing.T) {
	e := newEnv(t)
	me := e.register(t, "a")
	slow := &slowUsers{
		UserRepository: e.store.Users(),
		entered:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	users := service.NewUsers(
		service.Deps{Store: wrapStore{Store: e.store, users: slow}},
		service.AuthDeps{JWT: auth.NewJWTer("0123456789abcdef0123", "hotel-backoffice", time.Hour)},
	)
	tok, err := users.Login(ctx, "a", "pw-a")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	ctxA, cancelA := context.WithCancel(ctx)
	errA := make(chan error, 1)
	go func() {
		_, _, err := users.Resolve(ctxA, tok.AccessToken)
		errA <- err
	}()
	<-slow.entered

	type result struct {
		caller domain.Caller
		err    error
	}
	resB := make(chan result, 1)
	go func() {
		c, _, err := users.Resolve(ctx, tok.AccessToken)
		resB <- result{c, err}
	}()
	time.Sleep(20 * time.Millisecond) // let B join the in-flight lookup

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: %v", err)
	}
	close(slow.release)
	r := <-resB
	if r.err != nil || r.caller != me {
		t.Fatalf("second caller: %+v %v", r.caller, r.err)
	}
}
