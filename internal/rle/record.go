// Package rle implements C1: the run-length encoded BWT record format
// and its codec, per spec.md §3/§4.1/§6. A segment file is an ordered
// sequence of 32-bit little-endian packed records: bit 31 is a
// continuation flag, bits 30..8 are a 23-bit length, bits 7..0 are the
// symbol. A segment carries a sidecar ".meta" file with total size,
// total runs, and per-symbol size/run counts.
package rle

import "encoding/binary"

const (
	continuationBit uint32 = 0x80000000
	lengthMask       uint32 = 0x7FFFFF00
	lengthShift             = 8
	charMask         uint32 = 0xFF

	// MaxRunLength is the largest length representable in a single
	// record (23 bits), per spec.md §6.
	MaxRunLength = 0x7FFFFF

	recordSize = 4 // bytes
)

// Record is one packed 32-bit record as it appears on disk.
type Record struct {
	Continuation bool
	Length       uint32 // 1..MaxRunLength
	Symbol       byte
}

// Pack encodes r into its 32-bit little-endian wire form.
func (r Record) Pack() uint32 {
	v := (r.Length << lengthShift) & lengthMask
	v |= uint32(r.Symbol) & charMask
	if r.Continuation {
		v |= continuationBit
	}
	return v
}

// Unpack decodes a 32-bit wire value into a Record.
func Unpack(v uint32) Record {
	return Record{
		Continuation: v&continuationBit != 0,
		Length:       (v & lengthMask) >> lengthShift,
		Symbol:       byte(v & charMask),
	}
}

// WriteRecord appends r's little-endian wire bytes to buf.
func WriteRecord(buf []byte, r Record) []byte {
	var tmp [recordSize]byte
	binary.LittleEndian.PutUint32(tmp[:], r.Pack())
	return append(buf, tmp[:]...)
}

// ReadRecord decodes the record at the start of buf, returning it and
// the number of bytes consumed (always recordSize).
func ReadRecord(buf []byte) (Record, int) {
	v := binary.LittleEndian.Uint32(buf[:recordSize])
	return Unpack(v), recordSize
}

// SplitLength breaks a logical run length into the 23-bit-capped
// record lengths needed to encode it, per spec.md §6: a run of length
// L > 2^23-1 is encoded as ceil(L / (2^23-1)) records, all but the
// last with the continuation bit set.
func SplitLength(length uint64) []uint32 {
	if length == 0 {
		return nil
	}
	var parts []uint32
	for length > MaxRunLength {
		parts = append(parts, MaxRunLength)
		length -= MaxRunLength
	}
	parts = append(parts, uint32(length))
	return parts
}
