package model

import "time"

// Record is one persisted reading row.
type Record struct {
	Id         int64     `json:"id"`
	TimeStamp  time.Time `json:"timestamp"`
	Unit       string    `json:"unit_of_measurement"`
	Value      string    `json:"value"`
	Valid      bool      `json:"valid"`
	Error      *string   `json:"error,omitempty"`
	Identifier string    `json:"identifier"`
	Slug       string    `json:"slug"`
}

type Records []Record
