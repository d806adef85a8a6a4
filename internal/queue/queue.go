package queue

import "context"

// TxEvent is the notification published after a transaction commits.
type TxEvent struct {
	Tx        string   `json:"tx"`
	TxID      uint     `json:"txId"`
	TxType    string   `json:"txType"`
	Realm     string   `json:"realm"`
	Principal string   `json:"principal"`
	Documents []string `json:"documents"`
	Time      int64    `json:"time"`
}

// Queue publishes committed transaction events to downstream consumers.
// Publishing is best-effort; the transaction is already durable.
type Queue interface {
	Publish(ctx context.Context, event *TxEvent) error
}

// Noop drops every event.
type Noop struct{}

var _ Queue = (*Noop)(nil)

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Publish(ctx context.Context, event *TxEvent) error {
	return nil
}
