package services

import (
	"sort"
	"time"

	"github.com/mealbridge/foodshare-backend/internal/models"
)

// DefaultDedupeWindow is how far apart an optimistic message's client
// timestamp and its confirmed counterpart's server timestamp may be while
// still being the same message. Covers clock skew between client submission
// and server timestamp assignment.
const DefaultDedupeWindow = 5 * time.Second

// MergedMessage is one entry of the reconciled chat view. Confirmed entries
// come from the subscription feed; pending entries are optimistic messages
// not yet superseded.
type MergedMessage struct {
	ID         string                 `json:"id"`
	Text       string                 `json:"text"`
	Sender     string                 `json:"sender"`
	SenderName string                 `json:"senderName,omitempty"`
	SenderRole string                 `json:"senderRole,omitempty"`
	Timestamp  models.FlexTime        `json:"timestamp"`
	Read       bool                   `json:"read"`
	Pending    bool                   `json:"pending"`
	State      models.OptimisticState `json:"state,omitempty"`
}

// Reconcile merges confirmed messages with the pending optimistic set into
// one duplicate-free view, ordered ascending by normalized timestamp.
// A pending message is dropped once a confirmed message exists with the
// same sender and text whose timestamp lies within the tolerance window of
// the pending message's local timestamp; the confirmed entry wins. The
// function is pure: reapplying it with the same inputs yields the same
// output, and a superseded pending message never reappears no matter how
// often it is reprocessed.
func Reconcile(confirmed []*models.ChatMessage, pending []*models.OptimisticMessage, tolerance time.Duration) []MergedMessage {
	if tolerance <= 0 {
		tolerance = DefaultDedupeWindow
	}
	tolMillis := tolerance.Milliseconds()

	merged := make([]MergedMessage, 0, len(confirmed)+len(pending))
	seen := make(map[string]bool, len(confirmed)+len(pending))

	for _, c := range confirmed {
		id := c.ID.Hex()
		if seen[id] {
			continue
		}
		seen[id] = true
		merged = append(merged, MergedMessage{
			ID:         id,
			Text:       c.Text,
			Sender:     c.Sender,
			SenderName: c.SenderName,
			SenderRole: c.SenderRole,
			Timestamp:  c.Timestamp,
			Read:       c.Read,
		})
	}

	for _, p := range pending {
		if seen[p.LocalID] || superseded(p, confirmed, tolMillis) {
			continue
		}
		seen[p.LocalID] = true
		merged = append(merged, MergedMessage{
			ID:         p.LocalID,
			Text:       p.Text,
			Sender:     p.Sender,
			SenderName: p.SenderName,
			SenderRole: p.SenderRole,
			Timestamp:  p.Timestamp,
			Pending:    true,
			State:      p.State,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}

func superseded(p *models.OptimisticMessage, confirmed []*models.ChatMessage, tolMillis int64) bool {
	for _, c := range confirmed {
		if c.Sender != p.Sender || c.Text != p.Text {
			continue
		}
		delta := int64(c.Timestamp) - int64(p.Timestamp)
		if delta < 0 {
			delta = -delta
		}
		if delta <= tolMillis {
			return true
		}
	}
	return false
}
