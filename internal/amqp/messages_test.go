package amqp

import (
	"testing"
	"time"
)

func TestLedgerRefreshMessageJSON(t *testing.T) {
	msg := NewLedgerRefreshMessage("user_1", 3, 42)
	if msg.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	got, err := LedgerRefreshMessageFromJSON(body)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if got.UserID != "user_1" || got.NewItems != 3 || got.TotalItems != 42 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if !got.Timestamp.Truncate(time.Second).Equal(msg.Timestamp.Truncate(time.Second)) {
		t.Fatalf("timestamp mismatch: %v vs %v", got.Timestamp, msg.Timestamp)
	}
}

func TestLedgerRefreshMessageFromJSONInvalid(t *testing.T) {
	if _, err := LedgerRefreshMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
