package authz

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy names how a rule decides.
type Strategy string

const (
	Authenticated Strategy = "authenticated"
	Owner         Strategy = "owner"
	Admin         Strategy = "admin"
	OwnerOrAdmin  Strategy = "owner_or_admin"
	Self          Strategy = "self"
)

func (s Strategy) valid() bool {
	switch s {
	case Authenticated, Owner, Admin, OwnerOrAdmin, Self:
		return true
	}
	return false
}

const (
	ResHotel     = "hotel"
	ResRoom      = "room"
	ResImage     = "hotel_image"
	ResPicture   = "hotel_picture"
	ResUser      = "user"
	ResUserRole  = "user_role"
	ResOwnership = "ownership"

	ActRead   = "read"
	ActCreate = "create"
	ActUpdate = "update"
	ActDelete = "delete"
)

type Rule struct {
	Resource string
	Action   string
}

func (r Rule) String() string { return r.Resource + ":" + r.Action }

func ParseRule(s string) (Rule, error) {
	res, act, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || res == "" || act == "" {
		return Rule{}, fmt.Errorf("authz: rule %q is not resource:action", s)
	}
	return Rule{Resource: strings.ToLower(res), Action: strings.ToLower(act)}, nil
}

// Policy maps each gated mutation to exactly one strategy.
type Policy map[Rule]Strategy

func DefaultPolicy() Policy {
	return Policy{
		{ResHotel, ActCreate}: Authenticated,
		{ResHotel, ActUpdate}: Owner,
		{ResHotel, ActDelete}: Owner,

		{ResRoom, ActCreate}: Authenticated,
		{ResRoom, ActUpdate}: Authenticated,
		{ResRoom, ActDelete}: Authenticated,

		{ResImage, ActCreate}: Authenticated,
		{ResImage, ActDelete}: Admin,

		{ResPicture, ActCreate}: Authenticated,
		{ResPicture, ActDelete}: Authenticated,

		{ResUser, ActUpdate}: Self,
		{ResUser, ActDelete}: Self,

		{ResUserRole, ActRead}:   Admin,
		{ResUserRole, ActUpdate}: Admin,
		{ResUserRole, ActDelete}: Admin,

		{ResOwnership, ActCreate}: OwnerOrAdmin,
		{ResOwnership, ActDelete}: OwnerOrAdmin,
	}
}

// Apply returns a copy of p with overrides ("resource:action" -> strategy) applied.
// Overrides may only retarget rules that already exist.
func (p Policy) Apply(overrides map[string]string) (Policy, error) {
	out := make(Policy, len(p))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range overrides {
		r, err := ParseRule(k)
		if err != nil {
			return nil, err
		}
		if _, ok := out[r]; !ok {
			return nil, fmt.Errorf("authz: unknown rule %q", k)
		}
		s := Strategy(strings.ToLower(strings.TrimSpace(v)))
		if !s.valid() {
			return nil, fmt.Errorf("authz: unknown strategy %q for %s", v, k)
		}
		out[r] = s
	}
	return out, nil
}

func (p Policy) Strategy(r Rule) (Strategy, bool) {
	s, ok := p[r]
	return s, ok
}

// Describe lists the table as "resource:action=strategy", sorted, for startup logs.
func (p Policy) Describe() []string {
	out := make([]string, 0, len(p))
	for r, s := range p {
		out = append(out, r.String()+"="+string(s))
	}
	sort.Strings(out)
	return out
}
