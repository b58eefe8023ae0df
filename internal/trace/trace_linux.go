//go:build linux

// Package trace wraps ptrace attach/wait/detach into a Session whose
// release is guaranteed on every exit path: every Attach that succeeds
// must be matched by exactly one effective Close, even on an internal
// error or a signal, so Close is built to be safely callable more than
// once and from more than one goroutine.
package trace

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/coldforge/vmscan/internal/vmerr"
)

// Session represents ownership of a stopped target process. While a
// Session is open, the target is guaranteed to be stopped; once Close
// returns (successfully or not), the target has been asked to resume.
type Session struct {
	pid    int
	once   sync.Once
	closed bool
	mu     sync.Mutex
}

// Attach issues PTRACE_ATTACH against pid and blocks until the target has
// stopped. On any failure it returns a wrapped vmerr.ErrAttach and no
// Session. If PTRACE_ATTACH succeeded but the wait fails, a best-effort
// PTRACE_DETACH is issued before returning, so no attachment is left behind.
func Attach(pid int) (*Session, error) {
	if err := unix.PtraceAttach(pid); err != nil {
		return nil, fmt.Errorf("%w: ptrace(ATTACH, %d): %v", vmerr.ErrAttach, pid, err)
	}

	var status unix.WaitStatus
	if _, err := unix.Wait4(pid, &status, 0, nil); err != nil {
		_ = unix.PtraceDetach(pid)
		return nil, fmt.Errorf("%w: waitpid(%d): %v", vmerr.ErrAttach, pid, err)
	}

	return &Session{pid: pid}, nil
}

// PID returns the traced process id.
func (s *Session) PID() int { return s.pid }

// Close issues PTRACE_DETACH, allowing the target to resume. It is
// idempotent: the second and later calls are no-ops returning nil, so a
// deferred Close racing a signal-handler Close never double-detaches or
// reports a spurious second failure.
func (s *Session) Close() error {
	var detachErr error
	s.once.Do(func() {
		if err := unix.PtraceDetach(s.pid); err != nil {
			detachErr = fmt.Errorf("%w: ptrace(DETACH, %d): %v", vmerr.ErrDetach, s.pid, err)
		}
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	})
	return detachErr
}

// Closed reports whether Close has already run.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
