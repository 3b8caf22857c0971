package kopia

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNoFields is returned when a body parses but carries none of the known
// payload fields.
var ErrNoFields = errors.New("payload contains no recognized fields")

// Decode parses a webhook body into a Payload. JSON bodies (by content type)
// are decoded as an object; anything else goes through the plain-text
// "Key: value" parser.
func Decode(contentType string, body []byte) (Payload, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return Payload{}, errors.New("empty payload")
	}

	var fields map[string]any
	if isJSON(contentType) {
		if err := json.Unmarshal(body, &fields); err != nil {
			return Payload{}, fmt.Errorf("invalid JSON payload: %w", err)
		}
	} else {
		fields = parsePlainText(string(body))
	}

	p := fromFields(fields)
	if p.Empty() {
		return Payload{}, ErrNoFields
	}
	return p, nil
}

func isJSON(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mediaType) == "application/json"
}

// lineRe matches one "Key: value" report line. Keys are word sequences so
// "Source Path: /tank/media" normalizes to source_path.
var lineRe = regexp.MustCompile(`^([A-Za-z][A-Za-z ]*?)\s*:\s*(.*)$`)

func parsePlainText(text string) map[string]any {
	fields := make(map[string]any)
	for _, line := range strings.Split(text, "\n") {
		m := lineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(m[1])), " ", "_")
		if value := strings.TrimSpace(m[2]); value != "" {
			fields[key] = value
		}
	}
	return fields
}

// Key aliases across Kopia's JSON and plain-text profile templates.
var (
	sourceKeys   = []string{"path", "sourcePath", "source_path", "source"}
	statusKeys   = []string{"status"}
	startKeys    = []string{"startTime", "start_time"}
	endKeys      = []string{"endTime", "end_time"}
	durationKeys = []string{"duration"}
	sizeKeys     = []string{"size", "total_size"}
	fileKeys     = []string{"files"}
	dirKeys      = []string{"directories", "dirs"}
	errorKeys    = []string{"error", "error_message"}
)

func fromFields(fields map[string]any) Payload {
	p := Payload{
		SourcePath:      lookupString(fields, sourceKeys),
		Status:          lookupString(fields, statusKeys),
		StartTime:       parseTime(lookup(fields, startKeys)),
		EndTime:         parseTime(lookup(fields, endKeys)),
		DurationSeconds: parseDurationSeconds(lookup(fields, durationKeys)),
		SizeBytes:       parseSizeBytes(lookup(fields, sizeKeys)),
		Files:           parseCount(lookup(fields, fileKeys)),
		Directories:     parseCount(lookup(fields, dirKeys)),
	}
	if msg := lookupString(fields, errorKeys); msg != "" {
		p.Error = &msg
	}
	return p
}

func lookup(fields map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func lookupString(fields map[string]any, keys []string) string {
	v := lookup(fields, keys)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

// timeLayouts are tried in order. Kopia emits RFC 3339; the plain-text
// templates sometimes use a space-separated variant.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseTime(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseDurationSeconds accepts a number of seconds or a Go-style duration
// string ("2m13s").
func parseDurationSeconds(v any) *float64 {
	switch d := v.(type) {
	case float64:
		return &d
	case string:
		s := strings.TrimSpace(d)
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			return &secs
		}
		if dur, err := time.ParseDuration(s); err == nil {
			secs := dur.Seconds()
			return &secs
		}
	}
	return nil
}

var sizeUnits = map[string]float64{
	"b":   1,
	"kb":  1 << 10,
	"kib": 1 << 10,
	"mb":  1 << 20,
	"mib": 1 << 20,
	"gb":  1 << 30,
	"gib": 1 << 30,
	"tb":  1 << 40,
	"tib": 1 << 40,
}

var sizeRe = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*([A-Za-z]+)$`)

// parseSizeBytes accepts a byte count (number or numeric string) or a
// human-readable size like "1.5 GiB".
func parseSizeBytes(v any) *int64 {
	switch s := v.(type) {
	case float64:
		n := int64(s)
		return &n
	case string:
		str := strings.TrimSpace(s)
		if n, err := strconv.ParseInt(str, 10, 64); err == nil {
			return &n
		}
		if m := sizeRe.FindStringSubmatch(str); m != nil {
			if unit, ok := sizeUnits[strings.ToLower(m[2])]; ok {
				value, err := strconv.ParseFloat(m[1], 64)
				if err == nil {
					n := int64(value * unit)
					return &n
				}
			}
		}
	}
	return nil
}

func parseCount(v any) *int64 {
	switch c := v.(type) {
	case float64:
		n := int64(c)
		return &n
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(c), 10, 64); err == nil {
			return &n
		}
	}
	return nil
}
