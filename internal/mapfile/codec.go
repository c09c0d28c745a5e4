package mapfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// encoder appends little-endian values and keeps the first error.
type encoder struct {
	buf []byte
	err error
}

func (e *encoder) put(v any) {
	if e.err != nil {
		return
	}
	e.buf, e.err = binary.Append(e.buf, binary.LittleEndian, v)
}

// MarshalBinary encodes the file.
func (f *File) MarshalBinary() ([]byte, error) {
	h := f.Layout()
	e := &encoder{buf: make([]byte, 0, h.TotalSize())}

	e.put(&h)

	e.put(mustFourCC(AreaMagic))
	e.put(f.Area.Flags())
	e.put(f.Area.Area)
	if f.Area.Grid != nil {
		e.put(f.Area.Grid)
	}

	f.Height.encode(e)

	if l := f.Liquid; l != nil {
		e.put(mustFourCC(LiquidMagic))
		e.put(l.Flags())
		e.put(l.Type)
		e.put([4]uint8{l.OffsetX, l.OffsetY, l.Width, l.Height})
		e.put(l.Level)
		if !l.NoType {
			if l.Entries == nil || l.CellFlags == nil {
				return nil, fmt.Errorf("%w: liquid type grids missing", ErrLayout)
			}
			e.put(l.Entries)
			e.put(l.CellFlags)
		}
		if !l.NoHeight {
			if len(l.Heights) != int(l.Width)*int(l.Height) {
				return nil, fmt.Errorf("%w: liquid box %dx%d has %d heights", ErrLayout, l.Width, l.Height, len(l.Heights))
			}
			e.put(l.Heights)
		}
	}

	e.put(&f.Holes)

	if e.err != nil {
		return nil, e.err
	}
	if uint32(len(e.buf)) != h.TotalSize() {
		return nil, fmt.Errorf("%w: wrote %d bytes, header declares %d", ErrLayout, len(e.buf), h.TotalSize())
	}
	return e.buf, nil
}

// encode writes the height header and the grids of the selected encoding.
func (h *HeightSection) encode(e *encoder) {
	e.put(mustFourCC(HeightMagic))
	e.put(h.Flags())
	e.put(h.Min)
	e.put(h.Max)

	var coarse, fine any
	missing := false
	switch h.Encoding {
	case HeightUint8:
		coarse, fine = h.Coarse8, h.Fine8
		missing = h.Coarse8 == nil || h.Fine8 == nil
	case HeightUint16:
		coarse, fine = h.Coarse16, h.Fine16
		missing = h.Coarse16 == nil || h.Fine16 == nil
	case HeightFloat:
		coarse, fine = h.Coarse, h.Fine
		missing = h.Coarse == nil || h.Fine == nil
	default:
		return
	}
	if missing {
		if e.err == nil {
			e.err = fmt.Errorf("%w: %s height grids missing", ErrLayout, h.Encoding)
		}
		return
	}
	e.put(coarse)
	e.put(fine)
}

// WriteTo writes the encoded file to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	data, err := f.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// WriteFile writes the file to path, creating the parent directory if needed.
func (f *File) WriteFile(path string) error {
	data, err := f.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// decoder reads little-endian values from a section and keeps the first error.
type decoder struct {
	data []byte
	pos  int
	err  error
}

func (d *decoder) get(v any) {
	if d.err != nil {
		return
	}
	n, err := binary.Decode(d.data[d.pos:], binary.LittleEndian, v)
	if err != nil {
		d.err = fmt.Errorf("%w at byte %d", ErrTruncated, d.pos)
		return
	}
	d.pos += n
}

func (d *decoder) tag(want string) {
	var tag [4]byte
	d.get(&tag)
	if d.err == nil && string(tag[:]) != want {
		d.err = fmt.Errorf("%w: expected %q, got %q", ErrInvalidMagic, want, tag[:])
	}
}

// section returns a decoder over the byte range of one section.
func section(data []byte, offset, size uint32) (*decoder, error) {
	end := uint64(offset) + uint64(size)
	if offset < HeaderSize || end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: section %d+%d outside %d bytes", ErrTruncated, offset, size, len(data))
	}
	return &decoder{data: data[offset:end]}, nil
}

// Read decodes a map file.
func Read(data []byte) (*File, error) {
	var h Header
	if _, err := binary.Decode(data, binary.LittleEndian, &h); err != nil {
		return nil, ErrTruncated
	}
	if string(h.Magic[:]) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, h.Magic[:])
	}
	if (h.LiquidOffset == 0) != (h.LiquidSize == 0) {
		return nil, fmt.Errorf("%w: liquid offset %d size %d", ErrLayout, h.LiquidOffset, h.LiquidSize)
	}

	f := &File{VersionMagic: h.VersionMagic, BuildNumber: h.BuildNumber}

	d, err := section(data, h.AreaOffset, h.AreaSize)
	if err != nil {
		return nil, fmt.Errorf("area: %w", err)
	}
	if err := f.Area.decode(d); err != nil {
		return nil, fmt.Errorf("area: %w", err)
	}

	if d, err = section(data, h.HeightOffset, h.HeightSize); err != nil {
		return nil, fmt.Errorf("height: %w", err)
	}
	if err := f.Height.decode(d); err != nil {
		return nil, fmt.Errorf("height: %w", err)
	}

	if h.LiquidOffset != 0 {
		if d, err = section(data, h.LiquidOffset, h.LiquidSize); err != nil {
			return nil, fmt.Errorf("liquid: %w", err)
		}
		f.Liquid = &LiquidSection{}
		if err := f.Liquid.decode(d); err != nil {
			return nil, fmt.Errorf("liquid: %w", err)
		}
	}

	if d, err = section(data, h.HolesOffset, h.HolesSize); err != nil {
		return nil, fmt.Errorf("holes: %w", err)
	}
	d.get(&f.Holes)
	if d.err != nil {
		return nil, fmt.Errorf("holes: %w", d.err)
	}

	if got := f.Layout(); got != h {
		return nil, fmt.Errorf("%w: header does not match decoded sections", ErrLayout)
	}
	return f, nil
}

// ReadFile decodes a map file from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map file: %w", err)
	}
	return Read(data)
}

func (a *AreaSection) decode(d *decoder) error {
	var flags uint16
	d.tag(AreaMagic)
	d.get(&flags)
	d.get(&a.Area)
	if flags&AreaNoArea == 0 {
		a.Grid = new([Cells][Cells]uint16)
		d.get(a.Grid)
	}
	return d.err
}

func (h *HeightSection) decode(d *decoder) error {
	var flags uint32
	d.tag(HeightMagic)
	d.get(&flags)
	d.get(&h.Min)
	d.get(&h.Max)
	h.Encoding = encodingFromFlags(flags)

	switch h.Encoding {
	case HeightUint8:
		h.Coarse8 = new([CoarseSize][CoarseSize]uint8)
		h.Fine8 = new([FineSize][FineSize]uint8)
		d.get(h.Coarse8)
		d.get(h.Fine8)
	case HeightUint16:
		h.Coarse16 = new([CoarseSize][CoarseSize]uint16)
		h.Fine16 = new([FineSize][FineSize]uint16)
		d.get(h.Coarse16)
		d.get(h.Fine16)
	case HeightFloat:
		h.Coarse = new([CoarseSize][CoarseSize]float32)
		h.Fine = new([FineSize][FineSize]float32)
		d.get(h.Coarse)
		d.get(h.Fine)
	}
	return d.err
}

func (l *LiquidSection) decode(d *decoder) error {
	var flags uint16
	var box [4]uint8
	d.tag(LiquidMagic)
	d.get(&flags)
	d.get(&l.Type)
	d.get(&box)
	d.get(&l.Level)
	l.OffsetX, l.OffsetY, l.Width, l.Height = box[0], box[1], box[2], box[3]
	l.NoType = flags&LiquidNoType != 0
	l.NoHeight = flags&LiquidNoHeight != 0

	if !l.NoType {
		l.Entries = new([Cells][Cells]uint16)
		l.CellFlags = new([Cells][Cells]uint8)
		d.get(l.Entries)
		d.get(l.CellFlags)
	}
	if !l.NoHeight {
		l.Heights = make([]float32, int(l.Width)*int(l.Height))
		d.get(l.Heights)
	}
	return d.err
}
