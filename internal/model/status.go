package model

import "strings"

// Backup run status constants.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
	StatusUnknown = "unknown"
)

// statusAliases maps the spellings Kopia notification profiles emit to the
// canonical constants.
var statusAliases = map[string]string{
	"ok":        StatusSuccess,
	"succeeded": StatusSuccess,
	"completed": StatusSuccess,
	"warn":      StatusWarning,
	"warnings":  StatusWarning,
	"failed":    StatusError,
	"fatal":     StatusError,
}

// NormalizeStatus lowercases a reported status and folds known aliases onto
// the canonical constants. Empty input becomes StatusUnknown; unrecognized
// values pass through lowercased.
func NormalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StatusUnknown
	}
	if canonical, ok := statusAliases[s]; ok {
		return canonical
	}
	return s
}
