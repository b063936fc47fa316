package authz

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"hotel-backoffice/internal/domain"
)

var decisions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hotel_authz_decisions_total",
		Help: "Authorization gate decisions by rule and result",
	},
	[]string{"resource", "action", "result"},
)

func init() { prometheus.MustRegister(decisions) }

const (
	resultAllow   = "allow"
	resultDeny    = "deny"
	resultAnon    = "unauthenticated"
	resultFailure = "error"
)

// Facts are the two predicates the gate combines.
type Facts interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	IsOwner(ctx context.Context, userID, hotelID int64) (bool, error)
}

// Target identifies the resource being acted on. HotelID is set for hotel-scoped
// resources, UserID for user-scoped ones.
type Target struct {
	HotelID int64
	UserID  int64
}

type Gate struct {
	policy Policy
	facts  Facts
	log    *zap.Logger
}

func NewGate(p Policy, f Facts, l *zap.Logger) *Gate {
	if l == nil {
		l = zap.NewNop()
	}
	return &Gate{policy: p, facts: f, log: l.Named("authz")}
}

func (g *Gate) Policy() Policy { return g.policy }

// Authorize returns nil when caller may perform rule on target. Errors are
// Unauthorized for anonymous callers, Forbidden for denials and Internal when
// a fact lookup fails.
func (g *Gate) Authorize(ctx context.Context, caller domain.Caller, rule Rule, target Target) error {
	strategy, ok := g.policy.Strategy(rule)
	if !ok {
		g.count(rule, resultDeny)
		g.log.Warn("no policy for rule", zap.Stringer("rule", rule))
		return domain.Forbidden("forbidden")
	}
	if caller.Anonymous() {
		g.count(rule, resultAnon)
		return domain.Unauthorized("authentication required")
	}

	allowed, err := g.decide(ctx, strategy, caller, target)
	if err != nil {
		g.count(rule, resultFailure)
		return domain.Internal("authorization check failed", err)
	}
	if !allowed {
		g.count(rule, resultDeny)
		g.log.Debug("denied",
			zap.Stringer("rule", rule),
			zap.String("strategy", string(strategy)),
			zap.Int64("caller", caller.UserID),
			zap.Int64("hotel_id", target.HotelID),
			zap.Int64("user_id", target.UserID),
		)
		return domain.Forbidden("forbidden")
	}
	g.count(rule, resultAllow)
	return nil
}

func (g *Gate) decide(ctx context.Context, s Strategy, caller domain.Caller, t Target) (bool, error) {
	switch s {
	case Authenticated:
		return true, nil
	case Self:
		return t.UserID != 0 && t.UserID == caller.UserID, nil
	case Owner:
		return g.owner(ctx, caller, t)
	case Admin:
		return g.facts.IsAdmin(ctx, caller.UserID)
	case OwnerOrAdmin:
		ok, err := g.owner(ctx, caller, t)
		if err != nil || ok {
			return ok, err
		}
		return g.facts.IsAdmin(ctx, caller.UserID)
	}
	return false, nil
}

func (g *Gate) owner(ctx context.Context, caller domain.Caller, t Target) (bool, error) {
	if t.HotelID == 0 {
		return false, nil
	}
	return g.facts.IsOwner(ctx, caller.UserID, t.HotelID)
}

func (g *Gate) count(r Rule, result string) {
	decisions.WithLabelValues(r.Resource, r.Action, result).Inc()
}

// StoreFacts reads both predicates from the relational store.
type StoreFacts struct{ Store domain.Store }

func (f StoreFacts) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return f.Store.Roles().IsAdmin(ctx, userID)
}

func (f StoreFacts) IsOwner(ctx context.Context, userID, hotelID int64) (bool, error) {
	return f.Store.Owners().IsOwner(ctx, userID, hotelID)
}
