// Package scanner implements the bounded sliding-buffer pattern matcher
// used to search one memory region for a fixed-width needle.
package scanner

import (
	"bytes"
	"fmt"

	"github.com/coldforge/vmscan/internal/vmerr"
)

// DefaultPageSize is the per-iteration read size used when the caller
// doesn't override it. It matches the BUFFER_SIZE constant of the tool
// this package reimplements.
const DefaultPageSize = 4096

// MaxNeedleLen is the widest needle this scanner supports; it bounds the
// sliding buffer's extra headroom.
const MaxNeedleLen = 8

// Reader is the minimal interface Scan needs from its source: repeated
// possibly-short reads, with io.EOF-free zero-length reads signaling a
// clean end of region (matching how reads against /proc/<pid>/mem behave
// once a mapping's backing pages run out).
type Reader interface {
	Read(p []byte) (int, error)
}

// Scan finds every offset o in [0, (end-start)-len(needle)] such that the
// len(needle) bytes at r's current position plus o equal needle, and calls
// emit(start+o) for each, in ascending order. Overlapping matches are all
// reported.
//
// r must already be positioned at start. Scan reads at most pageSize bytes
// per iteration into a buffer of capacity pageSize+len(needle)-1, so peak
// memory is bounded regardless of end-start.
//
// Scan tolerates short reads from r. A zero-length read with a nil error is
// treated as a clean end of region and stops the scan without error.
func Scan(r Reader, start, end uintptr, needle []byte, pageSize int, emit func(addr uintptr)) error {
	if len(needle) == 0 || len(needle) > MaxNeedleLen {
		return fmt.Errorf("%w: unsupported needle length %d", vmerr.ErrScan, len(needle))
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if end < start {
		return fmt.Errorf("%w: end %#x precedes start %#x", vmerr.ErrScan, end, start)
	}

	regionLen := uint64(end - start)
	if regionLen == 0 {
		return nil
	}

	buf := make([]byte, pageSize+len(needle)-1)
	bufOff := 0 // valid bytes currently in buf
	readOff := 0
	var fileOff uint64 // bytes consumed from the region so far

	for fileOff < regionLen {
		toRead := regionLen - fileOff
		if room := uint64(len(buf) - bufOff); toRead > room {
			toRead = room
		}
		if toRead > uint64(pageSize) {
			toRead = uint64(pageSize)
		}

		n, err := r.Read(buf[bufOff : bufOff+int(toRead)])
		if err != nil {
			return fmt.Errorf("%w: %v", vmerr.ErrScan, err)
		}
		if n == 0 {
			// Clean end of region (e.g. an unmapped tail page): stop without
			// scanning a partial trailing window further than what we have.
			break
		}

		baseAddr := start + uintptr(fileOff) - uintptr(bufOff)
		fileOff += uint64(n)
		bufOff += n

		for bufOff-readOff >= len(needle) {
			idx := bytes.Index(buf[readOff:bufOff], needle)
			if idx < 0 {
				// No match in the remaining window. Keep the trailing
				// len(needle)-1 bytes as a possible prefix of a
				// boundary-straddling match and stop scanning this buffer.
				delta := bufOff - len(needle) + 1
				if delta > readOff {
					readOff = delta
				}
				break
			}

			matchAt := readOff + idx
			emit(baseAddr + uintptr(matchAt))
			readOff = matchAt + 1
		}

		copy(buf[0:], buf[readOff:bufOff])
		bufOff -= readOff
		readOff = 0
	}

	return nil
}
