// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert maps Xiandan panel forward exports onto Nyanpass rules.
//
// The conversion is all-or-nothing: the first record that cannot be mapped
// fails the whole document and no output is produced. The package keeps no
// state and is safe for concurrent use.
package convert

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/forward-convert/pkg/types"
)

const (
	// namePrefix is prepended to the record id when a rule has no remark.
	namePrefix = "转发_"
	// fallbackName is used when neither remark nor id is available.
	fallbackName = "转发"

	destFields   = "remoteIp/remoteHost 或 remotePort"
	listenFields = "internetPort/localPort"
)

// Converter transforms a Xiandan export into Nyanpass NDJSON. The local
// RuleConverter and the remote HTTP client both implement it.
type Converter interface {
	Convert(raw []byte) (string, error)
}

// RuleConverter converts documents in-process.
type RuleConverter struct{}

// Convert implements Converter.
func (RuleConverter) Convert(raw []byte) (string, error) {
	return Convert(raw)
}

// Convert parses raw as a Xiandan export and returns one Nyanpass rule per
// line. An empty "forwards" array yields an empty string.
func Convert(raw []byte) (string, error) {
	recs, err := Decode(raw)
	if err != nil {
		return "", err
	}
	out, err := ConvertRecords(recs)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := Encode(&b, out); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ConvertValue accepts either document text ([]byte, string, json.RawMessage)
// or an already-decoded value such as map[string]any, which is re-encoded
// before conversion.
func ConvertValue(v any) (string, error) {
	switch x := v.(type) {
	case []byte:
		return Convert(x)
	case json.RawMessage:
		return Convert(x)
	case string:
		return Convert([]byte(x))
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrParse, err)
	}
	return Convert(raw)
}

// Decode parses a Xiandan export and returns its forward records in order.
// Keys are matched case-sensitively. Elements that are not objects decode to
// an empty record and fail later on their missing fields.
func Decode(raw []byte) ([]types.SourceRecord, error) {
	var doc json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	top, ok := object(doc)
	if !ok {
		return nil, ErrSchema
	}
	forwards, ok := top["forwards"]
	if !ok || !isArray(forwards) {
		return nil, ErrSchema
	}

	var items []json.RawMessage
	if err := json.Unmarshal(forwards, &items); err != nil {
		return nil, ErrSchema
	}

	recs := make([]types.SourceRecord, len(items))
	for i, item := range items {
		fields, ok := object(item)
		if !ok {
			continue
		}
		recs[i] = types.SourceRecord{
			ID:           fields["id"],
			RemoteIP:     fields["remoteIp"],
			RemoteHost:   fields["remoteHost"],
			RemotePort:   fields["remotePort"],
			InternetPort: fields["internetPort"],
			LocalPort:    fields["localPort"],
			Remark:       fields["remark"],
		}
	}
	return recs, nil
}

// ConvertRecords maps every record in order. It stops at the first failure
// and returns a *FieldError carrying the record's index.
func ConvertRecords(recs []types.SourceRecord) ([]types.TargetRecord, error) {
	out := make([]types.TargetRecord, 0, len(recs))
	for i, rec := range recs {
		t, err := MapRecord(rec)
		if err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				fe.Index = i
			}
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// MapRecord converts a single record.
//
// Precedence: remoteIp over remoteHost, internetPort over localPort. A field
// only counts when it is truthy, so "" or 0 fall through to the next one.
func MapRecord(rec types.SourceRecord) (types.TargetRecord, error) {
	id := recordID(rec.ID)

	host := rec.RemoteIP
	if !truthy(host) {
		host = rec.RemoteHost
	}
	if !truthy(host) || !truthy(rec.RemotePort) {
		return types.TargetRecord{}, &FieldError{ID: id, Fields: destFields, Err: ErrMissingDestination}
	}

	listen := rec.InternetPort
	if !truthy(listen) {
		listen = rec.LocalPort
	}
	if !truthy(listen) {
		return types.TargetRecord{}, &FieldError{ID: id, Fields: listenFields, Err: ErrMissingListenPort}
	}

	return types.TargetRecord{
		Dest:       []string{render(host) + ":" + render(rec.RemotePort)},
		ListenPort: listenPort(listen),
		Name:       resolveName(rec.Remark, id),
	}, nil
}

// listenPort passes the value through unchanged, except that numbers are
// written in the same plain form as in dest (22240.0 and 2.224e4 become 22240).
func listenPort(v json.RawMessage) json.RawMessage {
	v = bytes.TrimSpace(v)
	if isNumber(v) {
		return json.RawMessage(formatNumber(v))
	}
	return v
}

// resolveName picks the remark, then "转发_<id>", then the bare fallback.
func resolveName(remark json.RawMessage, id types.RecordID) string {
	if truthy(remark) {
		return render(remark)
	}
	if strings.TrimSpace(id.Text) == "" {
		return fallbackName
	}
	return strings.TrimSpace(namePrefix + id.Text)
}

// Encode writes recs as NDJSON: one compact object per line, separated by a
// single newline with none after the last line. HTML characters are not
// escaped so names round-trip as typed.
func Encode(w io.Writer, recs []types.TargetRecord) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, r := range recs {
		buf.Reset()
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding rule %d: %w", i, err)
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))); err != nil {
			return err
		}
	}
	return nil
}

// object decodes v as a JSON object with case-sensitive keys.
func object(v json.RawMessage) (map[string]json.RawMessage, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || v[0] != '{' {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(v, &m); err != nil {
		return nil, false
	}
	return m, true
}

func isArray(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '['
}
