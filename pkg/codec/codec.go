// Package codec implements the row codec: encoding typed column
// values into a Record payload and decoding them back, per the
// per-type layout fixed in the schema package.
package codec

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/arrowdb/lsmdb/pkg/schema"
)

// Encode concatenates the encoded form of each value in schema.Columns
// order. values[i] is the textual literal for Columns[i]; callers are
// expected to have already validated each value against its column
// (see schema.Column.Validate).
func Encode(s schema.Schema, values []string) ([]byte, error) {
	var out []byte
	for i, col := range s.Columns {
		var v string
		if i < len(values) {
			v = values[i]
		}
		enc, err := encodeOne(col, v)
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}

func encodeOne(col schema.Column, value string) ([]byte, error) {
	switch col.Type {
	case schema.Integer, schema.Timestamp:
		n, err := strconv.ParseInt(schema.Unquote(value), 10, 64)
		if err != nil {
			n = 0
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(n))
		return buf, nil

	case schema.Float:
		f, err := strconv.ParseFloat(schema.Unquote(value), 64)
		if err != nil {
			f = 0
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(f))
		return buf, nil

	case schema.Boolean:
		clean := schema.Unquote(value)
		b := byte(0)
		if clean == "true" || clean == "1" {
			b = 1
		}
		return []byte{b}, nil

	case schema.Varchar:
		clean := schema.Unquote(value)
		if col.MaxLen > 0 && len(clean) > col.MaxLen {
			clean = clean[:col.MaxLen]
		}
		buf := make([]byte, 4+col.MaxLen)
		binary.BigEndian.PutUint32(buf[:4], uint32(len(clean)))
		copy(buf[4:], clean)
		return buf, nil

	default:
		return nil, nil
	}
}

// Decode splits payload back into textual values, one per column in
// schema order. Decoding is tolerant: if fewer bytes remain than a
// column's nominal width requires, the column decodes to its type's
// zero value and the offset still advances by the nominal width, so
// every later column keeps parsing at its canonical offset.
func Decode(s schema.Schema, payload []byte) []string {
	values := make([]string, len(s.Columns))
	offset := 0
	for i, col := range s.Columns {
		val, consumed := decodeOne(col, payload, offset)
		values[i] = val
		offset += consumed
	}
	return values
}

// decodeOne returns the decoded textual value for col starting at
// offset within payload, plus the number of bytes the caller should
// advance by (always the column's nominal width, even on a short read).
func decodeOne(col schema.Column, payload []byte, offset int) (string, int) {
	width := col.Width()

	switch col.Type {
	case schema.Integer, schema.Timestamp:
		if offset+8 <= len(payload) {
			n := int64(binary.BigEndian.Uint64(payload[offset : offset+8]))
			return strconv.FormatInt(n, 10), width
		}
		return "0", width

	case schema.Float:
		if offset+8 <= len(payload) {
			bits := binary.BigEndian.Uint64(payload[offset : offset+8])
			return strconv.FormatFloat(math.Float64frombits(bits), 'g', -1, 64), width
		}
		return "0", width

	case schema.Boolean:
		if offset+1 <= len(payload) {
			if payload[offset] == 1 {
				return "true", width
			}
			return "false", width
		}
		return "false", width

	case schema.Varchar:
		if offset+width <= len(payload) {
			n := int(binary.BigEndian.Uint32(payload[offset : offset+4]))
			dataStart := offset + 4
			if n <= col.MaxLen && dataStart+n <= len(payload) {
				return string(payload[dataStart : dataStart+n]), width
			}
		}
		return "", width

	default:
		return "", width
	}
}
