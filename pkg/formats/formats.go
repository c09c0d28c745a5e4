// Package formats provides parsers for World of Warcraft client terrain file formats.
//
// Both supported formats are chunk streams: a four-byte tag stored reversed
// on disk, a little-endian u32 payload size, then the payload.
//
//   - ADT: one terrain tile of 16x16 cells (adt.go)
//   - WDT: the 64x64 tile index of a map (wdt.go)
package formats
