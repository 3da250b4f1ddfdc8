package amqp

import (
	"encoding/json"
	"time"
)

// CostRecordedMessage announces that a cost record was persisted.
// It carries only the id and enough context for downstream consumers
// (notifications, exports) to decide whether to fetch the full record.
type CostRecordedMessage struct {
	ID        int64     `json:"id"`
	Sum       float64   `json:"sum"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

func NewCostRecordedMessage(id int64, sum float64, currency string) *CostRecordedMessage {
	return &CostRecordedMessage{
		ID:        id,
		Sum:       sum,
		Currency:  currency,
		Timestamp: time.Now(),
	}
}

func (m *CostRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func CostRecordedMessageFromJSON(data []byte) (*CostRecordedMessage, error) {
	var msg CostRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
