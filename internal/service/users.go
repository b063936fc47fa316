package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"hotel-backoffice/internal/authz"
	"hotel-backoffice/internal/core/auth"
	"hotel-backoffice/internal/core/events"
	"hotel-backoffice/internal/core/redisx"
	"hotel-backoffice/internal/domain"
	"hotel-backoffice/pkg/utils"
)

// errBadCredentials is shared by both login failure paths so they cannot be told apart.
var errBadCredentials = domain.Unauthorized("incorrect pseudo or password")

// resolveTimeout bounds the shared caller lookup in Resolve.
const resolveTimeout = 5 * time.Second

type AuthDeps struct {
	JWT      *auth.JWTer
	Denylist redisx.Denylist
}

type Users struct {
	d    Deps
	jwt  *auth.JWTer
	deny redisx.Denylist
	sf   singleflight.Group
}

func NewUsers(d Deps, a AuthDeps) *Users {
	d = d.withDefaults()
	if a.Denylist == nil {
		a.Denylist = redisx.NopDenylist{}
	}
	return &Users{d: d, jwt: a.JWT, deny: a.Denylist}
}

type RegisterInput struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=191"`
	Pseudo   string `json:"pseudo" form:"pseudo" validate:"required,max=64"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}

func (s *Users) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Pseudo = strings.TrimSpace(in.Pseudo)
	if err := check(in); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, domain.Validation(err.Error())
	}
	u := &domain.User{Email: in.Email, Pseudo: in.Pseudo, PasswordHash: hash}
	if err := s.d.Store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("email or pseudo already registered")
		}
		return nil, err
	}
	u.PasswordHash = ""
	s.d.Log.Info("user registered", zap.Int64("user_id", u.ID))
	s.d.publish(ctx, events.UserCreated, u.ID, map[string]any{"user_id": u.ID})
	return u, nil
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login checks the secret and issues a bearer token whose subject is the pseudo.
// Unknown pseudo and wrong secret return the same error after the same work.
func (s *Users) Login(ctx context.Context, pseudo, password string) (*Token, error) {
	u, err := s.d.Store.Users().FindCredentialsByPseudo(ctx, strings.TrimSpace(pseudo))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		utils.BurnCompare(password)
		return nil, errBadCredentials
	case err != nil:
		return nil, err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, errBadCredentials
	}
	tok, claims, err := s.jwt.Issue(u.Pseudo)
	if err != nil {
		return nil, domain.Internal("issue token", err)
	}
	return &Token{
		AccessToken: tok,
		TokenType:   "bearer",
		ExpiresIn:   int64(claims.ExpiresIn(time.Now()).Seconds()),
	}, nil
}

// Resolve turns a bearer token back into the caller it was issued to.
func (s *Users) Resolve(ctx context.Context, token string) (domain.Caller, *auth.Claims, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return domain.Caller{}, nil, domain.Unauthorized("could not validate credentials")
	}
	revoked, err := s.deny.Revoked(ctx, claims.ID)
	if err != nil {
		s.d.Log.Warn("denylist lookup failed", zap.Error(err))
		return domain.Caller{}, nil, domain.Internal("token check failed", err)
	}
	if revoked {
		return domain.Caller{}, nil, domain.Unauthorized("token revoked")
	}

	// concurrent requests for the same user share one lookup; it runs detached so
	// one caller going away does not fail the others, and each waits on its own ctx
	ch := s.sf.DoChan(claims.Pseudo(), func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()
		return s.d.Store.Users().FindByPseudo(lctx, claims.Pseudo())
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return domain.Caller{}, nil, ctx.Err()
	case res = <-ch:
	}
	v, err := res.Val, res.Err
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Caller{}, nil, domain.Unauthorized("could not validate credentials")
	}
	if err != nil {
		return domain.Caller{}, nil, err
	}
	u := v.(*domain.User)
	return domain.Caller{UserID: u.ID, Pseudo: u.Pseudo}, claims, nil
}

func (s *Users) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return domain.Unauthorized("authentication required")
	}
	if err := s.deny.Revoke(ctx, claims.ID, claims.ExpiresIn(time.Now())); err != nil {
		return domain.Internal("revoke token", err)
	}
	return nil
}

func (s *Users) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.d.Store.Users().FindByID(ctx, id)
}

func (s *Users) GetByPseudo(ctx context.Context, pseudo string) (*domain.User, error) {
	return s.d.Store.Users().FindByPseudo(ctx, pseudo)
}

type UserList struct {
	Items []domain.User `json:"items"`
	Total int64         `json:"total"`
}

func (s *Users) List(ctx context.Context, q string, offset, limit int) (*UserList, error) {
	if offset < 0 || limit < 0 {
		return nil, domain.Validation("offset and limit must not be negative")
	}
	if limit == 0 || limit > 1000 {
		limit = 100
	}
	items, total, err := s.d.Store.Users().List(ctx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	return &UserList{Items: items, Total: total}, nil
}

type UserUpdate struct {
	Email    *string `json:"email" validate:"omitempty,email,max=191"`
	Pseudo   *string `json:"pseudo" validate:"omitempty,max=64"`
	Password *string `json:"password" validate:"omitempty,max=72"`
}

// Update applies the given fields to the caller's own account; a new password is re-hashed.
func (s *Users) Update(ctx context.Context, caller domain.Caller, id int64, in UserUpdate) (*domain.User, error) {
	if err := s.d.Gate.Authorize(ctx, caller, authz.Rule{Resource: authz.ResUser, Action: authz.ActUpdate}, authz.Target{UserID: id}); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	var p domain.UserPatch
	if in.Email != nil {
		e := strings.TrimSpace(*in.Email)
		if e == "" {
			return nil, domain.Validation("email must not be empty")
		}
		p.Email = &e
	}
	if in.Pseudo != nil {
		ps := strings.TrimSpace(*in.Pseudo)
		if ps == "" {
			return nil, domain.Validation("pseudo must not be empty")
		}
		p.Pseudo = &ps
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, domain.Validation("password must not be empty")
		}
		h, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, domain.Validation(err.Error())
		}
		p.PasswordHash = &h
	}
	u, err := s.d.Store.Users().Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("email or pseudo already registered")
		}
		return nil, err
	}
	s.d.Log.Info("user updated", zap.Int64("user_id", id), zap.Bool("password_rotated", p.PasswordHash != nil))
	s.d.publish(ctx, events.UserUpdated, caller.UserID, map[string]any{"user_id": id})
	return u, nil
}

// Delete removes the caller's own account; ownerships and role cascade.
func (s *Users) Delete(ctx context.Context, caller domain.Caller, id int64) error {
	if err := s.d.Gate.Authorize(ctx, caller, authz.Rule{Resource: authz.ResUser, Action: authz.ActDelete}, authz.Target{UserID: id}); err != nil {
		return err
	}
	if err := s.d.Store.Users().Delete(ctx, id); err != nil {
		return err
	}
	s.d.Log.Info("user deleted", zap.Int64("user_id", id))
	s.d.publish(ctx, events.UserDeleted, caller.UserID, map[string]any{"user_id": id})
	return nil
}
