package repository

import "time"

// Failure represents a fetch_failures row.
type Failure struct {
	ID         string    `json:"id" yaml:"id"`
	Unit       string    `json:"unit" yaml:"unit"`
	Operation  string    `json:"operation" yaml:"operation"`
	Message    string    `json:"message" yaml:"message"`
	OccurredAt time.Time `json:"occurred_at" yaml:"occurred_at"`
}
