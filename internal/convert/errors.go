// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"

	"github.com/pdiddy/forward-convert/pkg/types"
)

// Failure classes. Messages are shown to panel users verbatim, so they stay
// in the panel's language.
var (
	// ErrParse wraps the JSON parser's error when the input is not JSON.
	ErrParse = errors.New("转换失败: JSON 解析失败")

	// ErrSchema is returned when the document has no "forwards" array.
	ErrSchema = errors.New("无效的咸蛋面板JSON格式：缺少 forwards 数组")

	// ErrMissingDestination marks a record without a usable host or remote port.
	ErrMissingDestination = errors.New("missing remoteIp/remoteHost or remotePort")

	// ErrMissingListenPort marks a record without internetPort or localPort.
	ErrMissingListenPort = errors.New("missing internetPort/localPort")
)

// FieldError reports the first record that could not be mapped.
type FieldError struct {
	// Index is the 0-based position of the record in "forwards".
	Index int

	// ID is the record's id, "unknown" when absent.
	ID types.RecordID

	// Fields names the missing field group as shown to the user.
	Fields string

	// Err is ErrMissingDestination or ErrMissingListenPort.
	Err error
}

func (e *FieldError) Error() string {
	return "转换失败: 缺少 " + e.Fields + "（id=" + e.ID.String() + "）"
}

func (e *FieldError) Unwrap() error { return e.Err }
