package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Conn is the subset of *nats.Conn the relay uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

type envelope struct {
	Source string    `json:"source"`
	Event  Event     `json:"event"`
	SentAt time.Time `json:"sentAt"`
}

// NATSRelay forwards local events to a NATS subject and replays events from other
// instances into a local publisher, so websocket subscribers see changes made on
// any node.
type NATSRelay struct {
	conn    Conn
	subject string
	nodeID  string
	logger  zerolog.Logger
}

func NewNATSRelay(conn Conn, subject string, logger zerolog.Logger) *NATSRelay {
	return &NATSRelay{
		conn:    conn,
		subject: subject,
		nodeID:  uuid.NewString(),
		logger:  logger.With().Str("component", "nats_relay").Logger(),
	}
}

func (r *NATSRelay) Publish(_ context.Context, event Event) {
	payload, err := r.encode(event)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to encode event")
		return
	}
	if err := r.conn.Publish(r.subject, payload); err != nil {
		r.logger.Warn().Err(err).Str("kind", string(event.Kind)).Msg("failed to publish event to nats")
	}
}

// Forward subscribes to the subject and republishes remote events into local
// until ctx is done.
func (r *NATSRelay) Forward(ctx context.Context, local Publisher) error {
	sub, err := r.conn.Subscribe(r.subject, func(msg *nats.Msg) {
		r.handle(ctx, msg.Data, local)
	})
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			r.logger.Warn().Err(err).Msg("failed to drain nats subscription")
		}
	}()
	return nil
}

func (r *NATSRelay) encode(event Event) ([]byte, error) {
	return json.Marshal(envelope{Source: r.nodeID, Event: event, SentAt: time.Now().UTC()})
}

func (r *NATSRelay) handle(ctx context.Context, data []byte, local Publisher) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.logger.Warn().Err(err).Msg("invalid event payload")
		return
	}
	if env.Source == r.nodeID {
		return
	}
	local.Publish(ctx, env.Event)
}
