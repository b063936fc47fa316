package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"hotel-backoffice/internal/authz"
	"hotel-backoffice/internal/core/events"
	"hotel-backoffice/internal/domain"
)

type Roles struct{ d Deps }

func NewRoles(d Deps) *Roles { return &Roles{d: d.withDefaults()} }

var (
	ruleRoleRead   = authz.Rule{Resource: authz.ResUserRole, Action: authz.ActRead}
	ruleRoleUpdate = authz.Rule{Resource: authz.ResUserRole, Action: authz.ActUpdate}
	ruleRoleDelete = authz.Rule{Resource: authz.ResUserRole, Action: authz.ActDelete}
)

// RequireAdmin is the admin surface's entry check.
func (s *Roles) RequireAdmin(ctx context.Context, caller domain.Caller) error {
	return s.d.Gate.Authorize(ctx, caller, ruleRoleRead, authz.Target{})
}

// Get returns the stored role, or a non-admin placeholder when the user has none.
func (s *Roles) Get(ctx context.Context, caller domain.Caller, userID int64) (*domain.UserRole, error) {
	if err := s.d.Gate.Authorize(ctx, caller, ruleRoleRead, authz.Target{UserID: userID}); err != nil {
		return nil, err
	}
	if _, err := s.d.Store.Users().FindByID(ctx, userID); err != nil {
		return nil, err
	}
	role, err := s.d.Store.Roles().Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.UserRole{UserID: userID}, nil
	}
	return role, err
}

func (s *Roles) Set(ctx context.Context, caller domain.Caller, userID int64, isAdmin bool) (*domain.UserRole, error) {
	if err := s.d.Gate.Authorize(ctx, caller, ruleRoleUpdate, authz.Target{UserID: userID}); err != nil {
		return nil, err
	}
	return s.set(ctx, caller.UserID, userID, isAdmin)
}

func (s *Roles) set(ctx context.Context, actor, userID int64, isAdmin bool) (*domain.UserRole, error) {
	if _, err := s.d.Store.Users().FindByID(ctx, userID); err != nil {
		return nil, err
	}
	role, err := s.d.Store.Roles().Upsert(ctx, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	s.d.Log.Info("role set", zap.Int64("user_id", userID), zap.Bool("is_admin", isAdmin), zap.Int64("actor", actor))
	s.d.publish(ctx, events.RoleAssigned, actor, map[string]any{"user_id": userID, "is_admin": isAdmin})
	return role, nil
}

func (s *Roles) Remove(ctx context.Context, caller domain.Caller, userID int64) error {
	if err := s.d.Gate.Authorize(ctx, caller, ruleRoleDelete, authz.Target{UserID: userID}); err != nil {
		return err
	}
	if err := s.d.Store.Roles().Delete(ctx, userID); err != nil {
		return err
	}
	s.d.Log.Info("role removed", zap.Int64("user_id", userID), zap.Int64("actor", caller.UserID))
	s.d.publish(ctx, events.RoleRemoved, caller.UserID, map[string]any{"user_id": userID})
	return nil
}

// Promote grants admin to pseudo without a caller. Only the operator CLI uses it.
func (s *Roles) Promote(ctx context.Context, pseudo string) (*domain.UserRole, error) {
	u, err := s.d.Store.Users().FindByPseudo(ctx, pseudo)
	if err != nil {
		return nil, err
	}
	return s.set(ctx, 0, u.ID, true)
}
