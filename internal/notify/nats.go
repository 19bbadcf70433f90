package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// subjectPrefix is the root of every subject this package publishes to.
const subjectPrefix = "tasksched.schedule"

// NATSPublisher forwards ScheduleFired, ScheduleAdvanced, and
// ScheduleDeleted events to a NATS subject, best-effort. It is never on the
// engine's critical fire path: publish failures are returned to the caller,
// which logs and swallows them (see natsFanout in cmd/tasksched/serve.go).
type NATSPublisher struct {
	conn *nats.Conn
	mu   sync.RWMutex
}

// NewNATSPublisher connects to url and returns a ready publisher. A failed
// initial connection is returned as an error. Once connected, the client
// library's own reconnect loop handles disconnects, and publishing while
// disconnected returns an error and drops the event.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	p := &NATSPublisher{}

	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.ReconnectJitter(500*time.Millisecond, 2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("notify: NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("notify: NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: connect to NATS: %w", err)
	}

	p.conn = conn
	return p, nil
}

// PublishFired publishes a ScheduleFired event.
func (p *NATSPublisher) PublishFired(ctx context.Context, evt ScheduleFired) error {
	return p.publish(ctx, subjectPrefix+".fired", evt)
}

// PublishAdvanced publishes a ScheduleAdvanced event.
func (p *NATSPublisher) PublishAdvanced(ctx context.Context, evt ScheduleAdvanced) error {
	return p.publish(ctx, subjectPrefix+".advanced", evt)
}

// PublishDeleted publishes a ScheduleDeleted event.
func (p *NATSPublisher) PublishDeleted(ctx context.Context, evt ScheduleDeleted) error {
	return p.publish(ctx, subjectPrefix+".deleted", evt)
}

func (p *NATSPublisher) publish(_ context.Context, subject string, evt any) error {
	p.mu.RLock()
	conn := p.conn
	p.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return fmt.Errorf("notify: NATS not connected")
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}

	if err := conn.Publish(subject, data); err != nil {
		return fmt.Errorf("notify: publish to %s: %w", subject, err)
	}
	return nil
}

// Close closes the underlying NATS connection. It is safe to call more than
// once.
func (p *NATSPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}
