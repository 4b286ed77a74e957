package amqp

import (
	"encoding/json"
	"time"
)

// LedgerRefreshMessage announces that a user's cached ledger was synced
// with upstream. Consumers interested in the data re-read it themselves;
// the message carries only counters.
type LedgerRefreshMessage struct {
	UserID     string    `json:"user_id"`
	NewItems   int       `json:"new_items"`
	TotalItems int       `json:"total_items"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewLedgerRefreshMessage(userID string, newItems, totalItems int) *LedgerRefreshMessage {
	return &LedgerRefreshMessage{
		UserID:     userID,
		NewItems:   newItems,
		TotalItems: totalItems,
		Timestamp:  time.Now(),
	}
}

func (m *LedgerRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerRefreshMessageFromJSON(data []byte) (*LedgerRefreshMessage, error) {
	var msg LedgerRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
