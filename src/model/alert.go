package model

import "time"

// ExitAlert is emitted when an exit rule fires for an order.
type ExitAlert struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
