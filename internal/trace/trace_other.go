//go:build !linux

package trace

import "fmt"

// Session is a placeholder on non-Linux hosts; vmscan requires ptrace,
// which this package only implements for Linux.
type Session struct{}

// Attach always fails on non-Linux hosts.
func Attach(pid int) (*Session, error) {
	return nil, fmt.Errorf("process attachment requires Linux (got unsupported host)")
}

// PID always returns 0 on non-Linux hosts.
func (s *Session) PID() int { return 0 }

// Close is a no-op on non-Linux hosts.
func (s *Session) Close() error { return nil }

// Closed always reports true on non-Linux hosts.
func (s *Session) Closed() bool { return true }
