package memwindow

import (
	"os"
	"runtime"
	"testing"
	"unsafe"
)

// TestOpenSelf reads a known byte pattern out of the test process's own
// memory via /proc/self/mem, since every Linux runner supports that without
// ptrace privileges.
func TestOpenSelf(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("requires /proc/self/mem, linux-only")
	}

	marker := []byte("vmscan-memwindow-marker-AAAA")

	win, err := Open(os.Getpid(), false)
	if err != nil {
		t.Skipf("opening /proc/self/mem: %v (likely sandboxed without ptrace_scope access)", err)
	}
	defer win.Close()

	addr := uintptr(unsafe.Pointer(&marker[0]))
	if err := win.Seek(addr); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	buf := make([]byte, len(marker))
	if _, err := win.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf) != string(marker) {
		t.Errorf("Read back %q, want %q", buf, marker)
	}
}

func TestOpenInvalidPid(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only")
	}
	if _, err := Open(1<<30-1, false); err == nil {
		t.Error("Open(nonexistent pid): expected error, got nil")
	}
}
