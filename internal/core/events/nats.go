package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"hotel-backoffice/internal/core/config"
)

type NATS struct {
	conn   *nats.Conn
	prefix string
	srv    *server.Server
}

// Open returns Nop when events are disabled (no url and not embedded).
func Open(c config.NATS, l *zap.Logger) (Publisher, func(), error) {
	url := c.URL
	var srv *server.Server
	if url == "" {
		if !c.Embedded {
			return Nop{}, func() {}, nil
		}
		var err error
		srv, err = startEmbedded()
		if err != nil {
			return nil, nil, err
		}
		url = srv.ClientURL()
	}

	nc, err := nats.Connect(url,
		nats.Name("hotel-backoffice"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if l != nil && err != nil {
				l.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			if l != nil {
				l.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
			}
		}),
	)
	if err != nil {
		if srv != nil {
			srv.Shutdown()
		}
		return nil, nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	if l != nil {
		l.Info("nats connected", zap.String("url", url), zap.Bool("embedded", srv != nil))
	}
	p := &NATS{conn: nc, prefix: c.SubjectPrefix, srv: srv}
	return p, p.Close, nil
}

func startEmbedded() (*server.Server, error) {
	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   server.RANDOM_PORT,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedded nats: %w", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded nats not ready after 5s")
	}
	return ns, nil
}

// Subject is prefix + "." + event type, e.g. "hotel.hotel.created".
func (p *NATS) Subject(typ string) string {
	if p.prefix == "" {
		return typ
	}
	return p.prefix + "." + typ
}

func (p *NATS) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.Subject(e.Type), b)
}

func (p *NATS) Close() {
	_ = p.conn.FlushTimeout(2 * time.Second)
	p.conn.Close()
	if p.srv != nil {
		p.srv.Shutdown()
	}
}
