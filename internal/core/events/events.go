package events

import (
	"context"
	"sync"
	"time"
)

// Event types published after a mutation commits.
const (
	UserCreated       = "user.created"
	UserUpdated       = "user.updated"
	UserDeleted       = "user.deleted"
	HotelCreated      = "hotel.created"
	HotelUpdated      = "hotel.updated"
	HotelDeleted      = "hotel.deleted"
	RoomCreated       = "room.created"
	RoomUpdated       = "room.updated"
	RoomDeleted       = "room.deleted"
	ImageUploaded     = "image.uploaded"
	ImageDeleted      = "image.deleted"
	PictureAttached   = "picture.attached"
	PictureDeleted    = "picture.deleted"
	OwnershipAssigned = "ownership.assigned"
	OwnershipRemoved  = "ownership.removed"
	RoleAssigned      = "role.assigned"
	RoleRemoved       = "role.removed"
)

type Event struct {
	Type    string         `json:"type"`
	ActorID int64          `json:"actor_id,omitempty"`
	At      time.Time      `json:"at"`
	Data    map[string]any `json:"data,omitempty"`
}

func New(typ string, actor int64, data map[string]any) Event {
	return Event{Type: typ, ActorID: actor, At: time.Now().UTC(), Data: data}
}

// Publisher is fire-and-forget from the caller's point of view: services log
// a returned error and carry on.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
