package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Notifier publishes portal events for downstream consumers (email digests,
// realtime clients). Implementations must be safe to call on every request.
type Notifier interface {
	HourLogReviewed(ctx context.Context, memberID, hourLogID uint, action string)
	WaiverGranted(ctx context.Context, memberID uint, totalHours float64)
}

type natsNotifier struct {
	conn        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
}

// NewNATSNotifier constructs a notifier backed by NATS. A nil connection
// yields a no-op notifier so the pipeline works without a broker.
func NewNATSNotifier(conn *nats.Conn, subjectBase string, logger zerolog.Logger) Notifier {
	if subjectBase == "" {
		subjectBase = "portal"
	}

	return &natsNotifier{
		conn:        conn,
		subjectBase: subjectBase,
		logger:      logger.With().Str("component", "notifier").Logger(),
	}
}

type portalEvent struct {
	Type       string  `json:"type"`
	MemberID   uint    `json:"member_id"`
	HourLogID  uint    `json:"hour_log_id,omitempty"`
	Action     string  `json:"action,omitempty"`
	TotalHours float64 `json:"total_hours,omitempty"`
	SentAt     string  `json:"sent_at"`
}

func (n *natsNotifier) HourLogReviewed(_ context.Context, memberID, hourLogID uint, action string) {
	n.publish("volunteer.reviewed", portalEvent{
		Type:      "hour_log_reviewed",
		MemberID:  memberID,
		HourLogID: hourLogID,
		Action:    action,
	})
}

func (n *natsNotifier) WaiverGranted(_ context.Context, memberID uint, totalHours float64) {
	n.publish("volunteer.waiver_granted", portalEvent{
		Type:       "waiver_granted",
		MemberID:   memberID,
		TotalHours: totalHours,
	})
}

func (n *natsNotifier) publish(subject string, event portalEvent) {
	if n.conn == nil {
		return
	}

	event.SentAt = time.Now().UTC().Format(time.RFC3339)

	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn().Err(err).Str("subject", subject).Msg("failed to marshal portal event")
		return
	}

	if err := n.conn.Publish(n.subjectBase+"."+subject, payload); err != nil {
		n.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish portal event")
	}
}
