package amqp

import (
	"testing"
	"time"
)

func TestRolloverNoticeMessageRoundTrip(t *testing.T) {
	msg := NewRolloverNoticeMessage(3, "2024-04-15")
	if msg.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := RolloverNoticeMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Count != 3 || got.Date != "2024-04-15" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Timestamp.Equal(msg.Timestamp.Truncate(0)) && got.Timestamp.Format(time.RFC3339) != msg.Timestamp.Format(time.RFC3339) {
		t.Fatalf("timestamp mismatch: %v vs %v", got.Timestamp, msg.Timestamp)
	}
}

func TestRolloverNoticeMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := RolloverNoticeMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected error")
	}
}
