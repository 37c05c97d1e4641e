package bitvector

import "github.com/dgryski/go-farm"

// DebugChecksum returns a fast, non-cryptographic hash of a Dense
// bit-vector's backing words, used only in -v=2 debug logging (see
// internal/alphabet, which logs the observed-symbol table's checksum
// whenever it changes) to make it cheap to tell two bit-vectors apart
// in a log stream without printing their full contents.
func DebugChecksum(d *Dense) uint64 {
	buf := make([]byte, len(d.words)*8)
	for i, w := range d.words {
		for b := 0; b < 8; b++ {
			buf[i*8+b] = byte(w >> (8 * b))
		}
	}
	return farm.Hash64(buf)
}
