package mapfile

// HeightEncoding selects how the height grids are stored.
type HeightEncoding uint8

// Height encodings.
const (
	// HeightFlat stores no grid; every sample equals Min.
	HeightFlat HeightEncoding = iota
	HeightUint8
	HeightUint16
	HeightFloat
)

// String returns the encoding name.
func (e HeightEncoding) String() string {
	switch e {
	case HeightFlat:
		return "flat"
	case HeightUint8:
		return "uint8"
	case HeightUint16:
		return "uint16"
	case HeightFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Flags returns the on-disk flag bits of the encoding.
func (e HeightEncoding) Flags() uint32 {
	switch e {
	case HeightFlat:
		return HeightNoHeight
	case HeightUint8:
		return HeightAsInt8
	case HeightUint16:
		return HeightAsInt16
	default:
		return 0
	}
}

// encodingFromFlags is the inverse of Flags.
func encodingFromFlags(flags uint32) HeightEncoding {
	switch {
	case flags&HeightNoHeight != 0:
		return HeightFlat
	case flags&HeightAsInt8 != 0:
		return HeightUint8
	case flags&HeightAsInt16 != 0:
		return HeightUint16
	default:
		return HeightFloat
	}
}

// MaxValue returns the largest quantized value for integer encodings.
func (e HeightEncoding) MaxValue() float32 {
	switch e {
	case HeightUint8:
		return 255
	case HeightUint16:
		return 65535
	default:
		return 0
	}
}

// sampleSize returns bytes per stored sample.
func (e HeightEncoding) sampleSize() uint32 {
	switch e {
	case HeightUint8:
		return 1
	case HeightUint16:
		return 2
	case HeightFloat:
		return 4
	default:
		return 0
	}
}

// HeightSection stores the coarse (129x129) and fine (128x128) height grids.
// Only the grids matching Encoding are set.
type HeightSection struct {
	Encoding HeightEncoding
	Min, Max float32

	Coarse8  *[CoarseSize][CoarseSize]uint8
	Fine8    *[FineSize][FineSize]uint8
	Coarse16 *[CoarseSize][CoarseSize]uint16
	Fine16   *[FineSize][FineSize]uint16
	Coarse   *[CoarseSize][CoarseSize]float32
	Fine     *[FineSize][FineSize]float32
}

// Flags returns the on-disk flags.
func (h *HeightSection) Flags() uint32 {
	return h.Encoding.Flags()
}

// Size returns the encoded size in bytes.
func (h *HeightSection) Size() uint32 {
	samples := uint32(CoarseSize*CoarseSize + FineSize*FineSize)
	return HeightHeaderSize + samples*h.Encoding.sampleSize()
}

// Scale returns the quantization factor of integer encodings, or 0.
func (h *HeightSection) Scale() float32 {
	if h.Max == h.Min {
		return 0
	}
	return h.Encoding.MaxValue() / (h.Max - h.Min)
}

// CoarseAt reconstructs the coarse sample at (x, y).
func (h *HeightSection) CoarseAt(x, y int) float32 {
	switch h.Encoding {
	case HeightUint8:
		return h.dequantize(float32(h.Coarse8[y][x]))
	case HeightUint16:
		return h.dequantize(float32(h.Coarse16[y][x]))
	case HeightFloat:
		return h.Coarse[y][x]
	default:
		return h.Min
	}
}

// FineAt reconstructs the fine sample at (x, y).
func (h *HeightSection) FineAt(x, y int) float32 {
	switch h.Encoding {
	case HeightUint8:
		return h.dequantize(float32(h.Fine8[y][x]))
	case HeightUint16:
		return h.dequantize(float32(h.Fine16[y][x]))
	case HeightFloat:
		return h.Fine[y][x]
	default:
		return h.Min
	}
}

func (h *HeightSection) dequantize(raw float32) float32 {
	return h.Min + raw/h.Scale()
}
