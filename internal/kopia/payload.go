// Package kopia decodes Kopia webhook notification payloads. Kopia's
// notification profiles can POST either a JSON document or a plain-text
// "Key: value" report, and the key spelling varies between profile templates,
// so decoding is alias- and type-tolerant: unknown fields are ignored and
// missing fields stay nil.
package kopia

import (
	"time"
)

// Payload is a decoded webhook body before it is stamped into a ledger event.
type Payload struct {
	SourcePath      string
	Status          string
	StartTime       *time.Time
	EndTime         *time.Time
	DurationSeconds *float64
	SizeBytes       *int64
	Files           *int64
	Directories     *int64
	Error           *string
}

// Empty reports whether no recognized field was present in the body.
func (p Payload) Empty() bool {
	return p.SourcePath == "" &&
		p.Status == "" &&
		p.StartTime == nil &&
		p.EndTime == nil &&
		p.DurationSeconds == nil &&
		p.SizeBytes == nil &&
		p.Files == nil &&
		p.Directories == nil &&
		p.Error == nil
}
