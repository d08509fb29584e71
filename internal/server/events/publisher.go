// Package events publishes domain events to NATS so downstream consumers
// (e.g. a notification worker) can react to account and record activity.
// Publishing is fire-and-forget; a failed publish never fails the request.
package events

import (
	"context"
	"encoding/json"

	"github.com/ebalakin/costmate/internal/logging"
	"github.com/nats-io/nats.go"
)

// Event subjects.
const (
	UserSignedUp  = "costmate.user.signedup"
	RecordCreated = "costmate.record.created"
	FriendAdded   = "costmate.friend.added"
)

// UserPayload accompanies UserSignedUp.
type UserPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// RecordPayload accompanies RecordCreated.
type RecordPayload struct {
	RecordID     string   `json:"record_id"`
	CreatorID    string   `json:"creator_id"`
	CompanionIDs []string `json:"companion_ids,omitempty"`
}

// FriendPayload accompanies FriendAdded.
type FriendPayload struct {
	PersonID string `json:"person_id"`
	FriendID string `json:"friend_id"`
}

// Publisher emits a domain event on the given subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any)
}

// NatsPublisher publishes events over a NATS connection.
type NatsPublisher struct {
	nc     *nats.Conn
	logger logging.Logger
}

// NewNatsPublisher connects to the NATS server at url.
func NewNatsPublisher(url string, logger logging.Logger) (*NatsPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{nc: nc, logger: logger}, nil
}

func (p *NatsPublisher) Publish(ctx context.Context, subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error(ctx, "marshal event", "subject", subject, "err", err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Warn(ctx, "publish event", "subject", subject, "err", err)
	}
}

// Close drains the underlying connection.
func (p *NatsPublisher) Close() {
	p.nc.Close()
}

// NoopPublisher discards all events. Used when no NATS URL is configured and
// in tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, payload any) {}
