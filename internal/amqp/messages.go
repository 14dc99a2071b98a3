package amqp

import (
	"encoding/json"
	"time"

	"livrocaixa/internal/core"
)

// ActivityMessage announces a ledger mutation confirmed by the finance API.
type ActivityMessage struct {
	ID            int64     `json:"id"`
	Action        string    `json:"action"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	Description   string    `json:"description,omitempty"`
	Kind          string    `json:"kind,omitempty"`
	AmountCents   int64     `json:"amount_cents"`
	RequestID     string    `json:"request_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewActivityMessage(a core.Activity) ActivityMessage {
	return ActivityMessage{
		ID:            a.ID,
		Action:        a.Action,
		TransactionID: a.TransactionID,
		Description:   a.Description,
		Kind:          string(a.Kind),
		AmountCents:   a.AmountCents,
		RequestID:     a.RequestID,
		OccurredAt:    a.CreatedAt,
		Timestamp:     time.Now(),
	}
}

func (m ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
