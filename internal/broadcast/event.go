// Package broadcast fans sale events out to terminal, role and user channels.
//
// Delivery is at-most-once and best-effort: the sale engine publishes after
// its transaction commits and never fails an operation because a publish
// failed. Payloads carry the full current sale snapshot so a late-joining
// subscriber resynchronizes from the most recent event alone.
package broadcast

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the sale transaction engine.
const (
	EventSaleStarted     = "sale_started"
	EventSaleItemAdded   = "sale_item_added"
	EventSaleItemRemoved = "sale_item_removed"
	EventSaleCompleted   = "sale_completed"
	EventStockAlert      = "stock_alert"
	EventDashboardSync   = "dashboard_sync"
)

// Event is one broadcast message.
type Event struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload"`
}

// NewEvent constructs an Event with a fresh identifier.
func NewEvent(eventType string, payload map[string]any) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		At:      time.Now().UTC(),
		Payload: payload,
	}
}

// TerminalTopic names the echo channel for one terminal.
func TerminalTopic(terminalID string) string {
	return fmt.Sprintf("terminal:%s", terminalID)
}

// RoleTopic names the channel shared by every user holding role.
func RoleTopic(role string) string {
	return fmt.Sprintf("role:%s", role)
}

// UserTopic names the channel for a single user.
func UserTopic(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}
