// Package memwindow opens a seekable byte-addressed view onto a traced
// process's virtual address space via /proc/<pid>/mem.
package memwindow

import (
	"fmt"
	"io"
	"os"

	"github.com/coldforge/vmscan/internal/vmerr"
)

// Window is an open, seekable handle onto a process's memory. A Window is
// either read-only or write-only, matching how /proc/<pid>/mem behaves best
// in practice: callers open one Window per driver invocation and close it
// before detaching.
type Window struct {
	f *os.File
}

// Open opens /proc/<pid>/mem read-only (write=false) or write-only
// (write=true).
func Open(pid int, write bool) (*Window, error) {
	path := fmt.Sprintf("/proc/%d/mem", pid)

	flags := os.O_RDONLY
	if write {
		flags = os.O_WRONLY
	}

	f, err := os.OpenFile(path, flags, 0) //nolint:gosec // path is built from a validated pid
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", vmerr.ErrIO, path, err)
	}
	return &Window{f: f}, nil
}

// Seek positions the window at addr. Errors are always surfaced as
// vmerr.ErrIO since a failed seek here always means the target's memory
// is unreachable, never a benign condition.
func (w *Window) Seek(addr uintptr) error {
	if _, err := w.f.Seek(int64(addr), io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %#x: %v", vmerr.ErrIO, addr, err)
	}
	return nil
}

// Read reads into p starting at the window's current position. Short reads
// are returned to the caller unmodified — unreadable regions and region
// boundaries routinely produce them, and the scanner is responsible for
// tolerating that.
func (w *Window) Read(p []byte) (int, error) {
	return w.f.Read(p)
}

// Write writes p starting at the window's current position.
func (w *Window) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

// Close releases the underlying file descriptor.
func (w *Window) Close() error {
	return w.f.Close()
}
