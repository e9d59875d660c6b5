package model

import "time"

// CallStatus describes how an upstream call ended.
type CallStatus string

const (
	CallOK            CallStatus = "ok"
	CallUpstreamError CallStatus = "upstream_error"
	CallParseError    CallStatus = "parse_error"
	CallMalformed     CallStatus = "malformed"
)

// CallRecord describes one request sent to the text-generation API.
type CallRecord struct {
	ID         string     `json:"id"`
	Topic      string     `json:"topic"`
	Difficulty string     `json:"difficulty"`
	Requested  int        `json:"requested"`
	Returned   int        `json:"returned"`
	Status     CallStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// UsageReport is the JSON structure printed by the usage command.
type UsageReport struct {
	Count int          `json:"count"`
	Calls []CallRecord `json:"calls,omitempty"`
}
