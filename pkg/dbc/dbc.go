// Package dbc reads WDBC client database tables.
//
// A WDBC file is a 20-byte header (magic, record count, field count, record
// size, string block size) followed by fixed-width records of 32-bit fields
// and a trailing block of NUL-terminated strings referenced by offset.
package dbc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

// Magic is the four-byte tag every WDBC file starts with.
const Magic = "WDBC"

const headerSize = 20

// DBC format errors.
var (
	ErrInvalidMagic = errors.New("invalid DBC magic: expected 'WDBC'")
	ErrTruncated    = errors.New("truncated DBC data")
	ErrRecordSize   = errors.New("DBC field count and record size do not match")
)

// File is a parsed table.
type File struct {
	recordCount uint32
	fieldCount  uint32
	recordSize  uint32
	records     []byte
	strings     []byte
}

// Parse parses a WDBC table from raw bytes.
func Parse(data []byte) (*File, error) {
	if len(data) < headerSize {
		return nil, ErrTruncated
	}
	if string(data[0:4]) != Magic {
		return nil, ErrInvalidMagic
	}

	le := binary.LittleEndian
	f := &File{
		recordCount: le.Uint32(data[4:]),
		fieldCount:  le.Uint32(data[8:]),
		recordSize:  le.Uint32(data[12:]),
	}
	stringSize := uint64(le.Uint32(data[16:]))

	if uint64(f.fieldCount)*4 != uint64(f.recordSize) {
		return nil, fmt.Errorf("%w: %d fields, %d bytes per record", ErrRecordSize, f.fieldCount, f.recordSize)
	}

	recordBytes := uint64(f.recordCount) * uint64(f.recordSize)
	if uint64(len(data)-headerSize) < recordBytes+stringSize {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, recordBytes+stringSize, len(data)-headerSize)
	}

	body := data[headerSize:]
	f.records = body[:recordBytes]
	f.strings = body[recordBytes : recordBytes+stringSize]
	return f, nil
}

// ParseFile parses a WDBC table from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading DBC file: %w", err)
	}
	return Parse(data)
}

// RecordCount returns the number of records.
func (f *File) RecordCount() int { return int(f.recordCount) }

// FieldCount returns the number of 32-bit fields per record.
func (f *File) FieldCount() int { return int(f.fieldCount) }

// StringSize returns the size of the string block in bytes.
func (f *File) StringSize() int { return len(f.strings) }

// Record returns record i. It panics if i is out of range.
func (f *File) Record(i int) Record {
	if i < 0 || i >= int(f.recordCount) {
		panic(fmt.Sprintf("dbc: record %d out of range [0,%d)", i, f.recordCount))
	}
	start := i * int(f.recordSize)
	return Record{file: f, data: f.records[start : start+int(f.recordSize)]}
}

// MaxID returns the largest value of field 0 across all records.
func (f *File) MaxID() uint32 {
	var maxID uint32
	for i := 0; i < f.RecordCount(); i++ {
		if id := f.Record(i).Uint32(0); id > maxID {
			maxID = id
		}
	}
	return maxID
}

// Record is one fixed-width row.
type Record struct {
	file *File
	data []byte
}

// Uint32 returns field as an unsigned integer. Fields past the record width read as zero.
func (r Record) Uint32(field int) uint32 {
	off := field * 4
	if field < 0 || off+4 > len(r.data) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.data[off:])
}

// Int32 returns field as a signed integer.
func (r Record) Int32(field int) int32 {
	return int32(r.Uint32(field))
}

// Float32 returns field as a float.
func (r Record) Float32(field int) float32 {
	return math.Float32frombits(r.Uint32(field))
}

// String returns the string referenced by field. Offsets outside the string block yield "".
func (r Record) String(field int) string {
	off := int(r.Uint32(field))
	strs := r.file.strings
	if off >= len(strs) {
		return ""
	}
	end := bytes.IndexByte(strs[off:], 0)
	if end < 0 {
		return string(strs[off:])
	}
	return string(strs[off : off+end])
}
