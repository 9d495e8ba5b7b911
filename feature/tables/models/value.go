package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind discriminates the shapes a row cell may hold.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindFile
)

// FileRef points at an object held in external storage. Only the reference
// travels through sync; the bytes live behind the files feature.
type FileRef struct {
	FileID int64  `json:"fileId"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// Value is the tagged union of cell shapes: a scalar (string, number,
// boolean), null, or a file reference. The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	file FileRef
}

func NullValue() Value            { return Value{kind: KindNull} }
func StringValue(s string) Value  { return Value{kind: KindString, str: s} }
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }
func FileValue(ref FileRef) Value { return Value{kind: KindFile, file: ref} }

// Kind returns the discriminator.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is the null shape.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload; zero when the kind differs.
func (v Value) AsString() string { return v.str }

// AsNumber returns the numeric payload; zero when the kind differs.
func (v Value) AsNumber() float64 { return v.num }

// AsBool returns the boolean payload; false when the kind differs.
func (v Value) AsBool() bool { return v.b }

// AsFile returns the file reference and whether the value holds one.
func (v Value) AsFile() (FileRef, bool) { return v.file, v.kind == KindFile }

// MarshalJSON renders the wire shape the clients exchange: bare scalars,
// null, or the {fileId, name, type} object. Output is deterministic, which
// the content key derivation depends on.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	case KindFile:
		return json.Marshal(v.file)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}

// UnmarshalJSON discriminates on the leading JSON token.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty cell value")
	}

	switch data[0] {
	case 'n':
		*v = NullValue()
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
		return nil
	case '{':
		var ref FileRef
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		*v = FileValue(ref)
		return nil
	case '[':
		return fmt.Errorf("array cell values are not supported")
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = NumberValue(n)
		return nil
	}
}
