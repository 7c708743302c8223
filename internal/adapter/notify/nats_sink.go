package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"convosense/internal/domain/analysis"
)

// NATSSink publishes progress notifications to a per-session NATS subject.
// Delivery is fire-and-forget: publish errors are logged and dropped, never
// surfaced to the pipeline.
type NATSSink struct {
	conn *nats.Conn
}

// NewNATSSink creates a progress sink over the given NATS connection.
func NewNATSSink(conn *nats.Conn) *NATSSink {
	return &NATSSink{conn: conn}
}

// SubjectFor returns the NATS subject carrying one session's events.
func SubjectFor(sessionID string) string {
	return fmt.Sprintf("analysis.%s.events", sessionID)
}

// Notify publishes one event for the session.
func (s *NATSSink) Notify(sessionID string, kind analysis.EventKind, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type": string(kind),
		"time": time.Now().UTC(),
	}
	for k, v := range payload {
		event[k] = v
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to encode %s event for session %s: %v", kind, sessionID, err)
		return
	}

	if err := s.conn.Publish(SubjectFor(sessionID), data); err != nil {
		log.Printf("Failed to publish %s event for session %s: %v", kind, sessionID, err)
	}
}
