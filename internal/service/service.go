// Package service holds the registries and flows behind the HTTP surface. Every
// mutating method asks the authorization gate before touching storage and
// publishes an event once the change has committed.
package service

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"hotel-backoffice/internal/authz"
	"hotel-backoffice/internal/core/events"
	"hotel-backoffice/internal/core/objectstore"
	"hotel-backoffice/internal/domain"
)

type Deps struct {
	Store   domain.Store
	Gate    *authz.Gate
	Objects objectstore.Store
	Events  events.Publisher
	Log     *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Gate == nil {
		d.Gate = authz.NewGate(authz.DefaultPolicy(), authz.StoreFacts{Store: d.Store}, d.Log)
	}
	return d
}

// Services bundles every registry built over the same dependencies.
type Services struct {
	Users     *Users
	Roles     *Roles
	Hotels    *Hotels
	Rooms     *Rooms
	Ownership *Ownership
	Images    *Images
	Pictures  *Pictures
}

func New(d Deps, auth AuthDeps, pg Pagination) *Services {
	d = d.withDefaults()
	pg = pg.normalized()
	return &Services{
		Users:     NewUsers(d, auth),
		Roles:     NewRoles(d),
		Hotels:    NewHotels(d, pg),
		Rooms:     NewRooms(d),
		Ownership: NewOwnership(d),
		Images:    NewImages(d, pg),
		Pictures:  NewPictures(d),
	}
}

type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

func (p Pagination) normalized() Pagination {
	if p.DefaultLimit <= 0 {
		p.DefaultLimit = 10
	}
	if p.MaxLimit < p.DefaultLimit {
		p.MaxLimit = 100
	}
	return p
}

// window validates limit/offset; a zero limit means the default.
func (p Pagination) window(limit, offset int) (int, int, error) {
	if limit == 0 {
		limit = p.DefaultLimit
	}
	if limit < 1 || limit > p.MaxLimit {
		return 0, 0, domain.Validation(fmt.Sprintf("limit must be between 1 and %d", p.MaxLimit))
	}
	if offset < 0 {
		return 0, 0, domain.Validation("offset must not be negative")
	}
	return limit, offset, nil
}

func (d Deps) publish(ctx context.Context, typ string, actor int64, data map[string]any) {
	if err := d.Events.Publish(ctx, events.New(typ, actor, data)); err != nil {
		d.Log.Warn("event publish failed", zap.String("type", typ), zap.Error(err))
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// check runs struct validation and reports the first failing field.
func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
		fe := ves[0]
		if fe.Param() != "" {
			return domain.Validation(fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
		return domain.Validation(fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
	}
	return domain.Validation(err.Error())
}
