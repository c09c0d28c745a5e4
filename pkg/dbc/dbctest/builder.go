// Package dbctest builds WDBC tables in memory for tests.
package dbctest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Faultbox/mapgen/pkg/dbc"
)

// Builder assembles a WDBC table readable by dbc.Parse.
type Builder struct {
	fieldCount int
	records    bytes.Buffer
	strs       bytes.Buffer
	offsets    map[string]uint32
	count      int
}

// NewBuilder creates a builder for records of fieldCount 32-bit fields.
func NewBuilder(fieldCount int) *Builder {
	b := &Builder{fieldCount: fieldCount, offsets: map[string]uint32{"": 0}}
	b.strs.WriteByte(0)
	return b
}

// Add appends a record. Strings are stored in the string block and
// referenced by offset; integers and float32 values are stored in place.
// Missing trailing fields are zero.
func (b *Builder) Add(fields ...any) error {
	if len(fields) > b.fieldCount {
		return fmt.Errorf("%w: %d values for %d fields", dbc.ErrRecordSize, len(fields), b.fieldCount)
	}
	values := make([]uint32, b.fieldCount)
	for f, field := range fields {
		var v uint32
		switch val := field.(type) {
		case string:
			v = b.intern(val)
		case float32:
			v = math.Float32bits(val)
		case int:
			v = uint32(val)
		case int32:
			v = uint32(val)
		case uint32:
			v = val
		default:
			return fmt.Errorf("unsupported field type %T", val)
		}
		values[f] = v
	}
	binary.Write(&b.records, binary.LittleEndian, values)
	b.count++
	return nil
}

func (b *Builder) intern(s string) uint32 {
	if off, ok := b.offsets[s]; ok {
		return off
	}
	off := uint32(b.strs.Len())
	b.strs.WriteString(s)
	b.strs.WriteByte(0)
	b.offsets[s] = off
	return off
}

const headerSize = 20

// Bytes returns the encoded table.
func (b *Builder) Bytes() []byte {
	le := binary.LittleEndian
	out := make([]byte, headerSize, headerSize+b.records.Len()+b.strs.Len())
	copy(out, dbc.Magic)
	le.PutUint32(out[4:], uint32(b.count))
	le.PutUint32(out[8:], uint32(b.fieldCount))
	le.PutUint32(out[12:], uint32(b.fieldCount*4))
	le.PutUint32(out[16:], uint32(b.strs.Len()))
	out = append(out, b.records.Bytes()...)
	return append(out, b.strs.Bytes()...)
}
