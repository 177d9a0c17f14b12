package amqp

import (
	"encoding/json"
	"time"
)

// RolloverNoticeMessage announces that reconciliation materialized
// recurring bills for the current month. Consumers use it to raise the
// one-time UI alert.
type RolloverNoticeMessage struct {
	Count     int       `json:"count"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRolloverNoticeMessage(count int, date string) *RolloverNoticeMessage {
	return &RolloverNoticeMessage{
		Count:     count,
		Date:      date,
		Timestamp: time.Now(),
	}
}

func (m *RolloverNoticeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RolloverNoticeMessageFromJSON(data []byte) (*RolloverNoticeMessage, error) {
	var msg RolloverNoticeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
