package models

import (
	"time"
)

// OpenEvent is one observed fetch of the tracking pixel for an email.
// Events are immutable once written; the append-only log file is the
// durable source of truth and the in-memory index is derived from it.
type OpenEvent struct {
	EmailID    string    `json:"emailId"`
	ObservedAt time.Time `json:"observedAt"`
	SourceIP   string    `json:"sourceIp,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	Referrer   string    `json:"referrer,omitempty"`
	ProxyFetch bool      `json:"isProxyFetch"`
}

// OpenSummary aggregates the events of a single email. FirstOpened and
// LastOpened are nil when the email was never opened.
type OpenSummary struct {
	Opened      bool       `json:"opened"`
	OpenCount   int        `json:"openCount"`
	FirstOpened *time.Time `json:"firstOpened"`
	LastOpened  *time.Time `json:"lastOpened"`
}
