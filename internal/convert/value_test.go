// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/forward-convert/pkg/types"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", false},
		{"null", false},
		{"false", false},
		{`""`, false},
		{"0", false},
		{"-0", false},
		{"0.0", false},
		{"0e10", false},
		{"true", true},
		{`"0"`, true},
		{`" "`, true},
		{"1", true},
		{"-1", true},
		{"1e400", true},
		{"{}", true},
		{"[]", true},
		{" 8220 ", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, truthy(json.RawMessage(tt.raw)))
		})
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"1.2.3.4"`, "1.2.3.4"},
		{`"中"`, "中"},
		{"8220", "8220"},
		{"8220.0", "8220"},
		{"8.22e3", "8220"},
		{"-5", "-5"},
		{"0.5", "0.5"},
		{"1e21", "1e+21"},
		{"1.5e-7", "1.5e-7"},
		{"true", "true"},
		{`{ "a" : 1 }`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, render(json.RawMessage(tt.raw)))
		})
	}
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, types.RecordID{}, recordID(nil))
	assert.Equal(t, types.RecordID{}, recordID(json.RawMessage("null")))
	assert.Equal(t, types.RecordID{Text: "0", Valid: true}, recordID(json.RawMessage("0")))
	assert.Equal(t, types.RecordID{Text: "abc", Valid: true}, recordID(json.RawMessage(`"abc"`)))
	assert.Equal(t, "unknown", recordID(nil).String())
	assert.Equal(t, "11714", recordID(json.RawMessage("11714")).String())
}
