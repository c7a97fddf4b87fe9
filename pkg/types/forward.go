// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// SourceRecord is one element of the Xiandan panel's "forwards" array.
// Fields stay raw so that presence, null and zero can be told apart and so
// that values pass through to the output without coercion. The export
// carries many more fields (state, speedLimit, balanceList, ...); only the
// ones that feed a Nyanpass rule are decoded.
type SourceRecord struct {
	// ID is the panel's rule identifier, used only in diagnostics and names.
	ID json.RawMessage `json:"id,omitempty"`

	// RemoteIP is the upstream address. Preferred over RemoteHost.
	RemoteIP json.RawMessage `json:"remoteIp,omitempty"`

	// RemoteHost is the upstream hostname, used when RemoteIP is empty.
	RemoteHost json.RawMessage `json:"remoteHost,omitempty"`

	// RemotePort is the upstream port.
	RemotePort json.RawMessage `json:"remotePort,omitempty"`

	// InternetPort is the public port on the relay. Preferred over LocalPort.
	InternetPort json.RawMessage `json:"internetPort,omitempty"`

	// LocalPort is the relay's local listen port.
	LocalPort json.RawMessage `json:"localPort,omitempty"`

	// Remark is the user-facing rule name.
	Remark json.RawMessage `json:"remark,omitempty"`
}

// TargetRecord is one Nyanpass rule, written as a single NDJSON line.
// Field order here is the field order on the wire.
type TargetRecord struct {
	// Dest holds exactly one "<host>:<port>" entry.
	Dest []string `json:"dest"`

	// ListenPort is copied verbatim from the source record.
	ListenPort json.RawMessage `json:"listen_port"`

	// Name is the display name shown in the Nyanpass panel.
	Name string `json:"name"`
}

// RecordID identifies a source record in error messages. A missing or null
// id is not the same as id 0, so validity is tracked separately.
type RecordID struct {
	Text  string
	Valid bool
}

// String returns the id text, or "unknown" when the record carried no id.
func (id RecordID) String() string {
	if !id.Valid {
		return "unknown"
	}
	return id.Text
}
