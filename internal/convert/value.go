// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/forward-convert/pkg/types"
)

// truthy reports whether a raw JSON value counts as set. Panel exports use
// null, "", 0 and false interchangeably for "not configured".
func truthy(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return false
	}
	switch v[0] {
	case 'n', 'f':
		return false
	case 't', '{', '[':
		return true
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return true
		}
		return s != ""
	}
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		// Out of range literals parse to ±Inf, which is still set.
		return true
	}
	return f != 0
}

// render returns the text form of a raw value as it appears inside dest
// strings and synthesized names: strings unquoted, numbers in plain decimal,
// anything else as compact JSON.
func render(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
		return string(v)
	}
	if isNumber(v) {
		return formatNumber(v)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return string(v)
	}
	return buf.String()
}

// isNumber reports whether v (already trimmed) is a JSON number literal.
func isNumber(v json.RawMessage) bool {
	if len(v) == 0 {
		return false
	}
	switch v[0] {
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	}
	return false
}

// formatNumber prints a JSON number the way the panel's web client would:
// 8220.0 and 8.22e3 both become 8220, very large or very small magnitudes
// use exponent form without zero padding.
func formatNumber(v json.RawMessage) string {
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil || math.IsInf(f, 0) {
		return string(v)
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}

// recordID reads the id field. Absent and null are the only "unknown" ids.
func recordID(v json.RawMessage) types.RecordID {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return types.RecordID{}
	}
	return types.RecordID{Text: render(v), Valid: true}
}
