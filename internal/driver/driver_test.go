package driver

import (
	"bufio"
	"bytes"
	"os"
	"runtime"
	"strings"
	"testing"
	"unsafe"
)

func TestParseAddressDecimalHexOctal(t *testing.T) {
	cases := []struct {
		line string
		want uintptr
		ok   bool
	}{
		{"4096", 4096, true},
		{"0x1000", 0x1000, true},
		{"010", 8, true},
		{"", 0, false},
		{"not-an-address", 0, false},
	}
	for _, c := range cases {
		var warned string
		warn := func(format string, a ...any) { warned = format }
		got, ok := parseAddress(c.line, warn)
		if ok != c.ok {
			t.Errorf("parseAddress(%q) ok = %v, want %v", c.line, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("parseAddress(%q) = %#x, want %#x", c.line, got, c.want)
		}
		if !ok && warned == "" {
			t.Errorf("parseAddress(%q): expected a warning on failure", c.line)
		}
	}
}

func TestParseAddressNilWarnDoesNotPanic(t *testing.T) {
	if _, ok := parseAddress("garbage", nil); ok {
		t.Error("parseAddress(garbage, nil): expected ok=false")
	}
}

// TestSearchSelf runs a real search against the test binary's own memory
// via /proc/self, which needs no ptrace permissions, and checks the output
// line format. It self-skips wherever the search fails (e.g. a restrictive
// sandbox).
func TestSearchSelf(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("requires /proc/self, linux-only")
	}

	marker := []byte("vmscan-driver-marker-ZZZZ9")
	needle := marker[len(marker)-9:]

	var out bytes.Buffer
	err := Search(os.Getpid(), needle, 4096, &out)
	if err != nil {
		t.Skipf("search against self: %v (likely sandboxed)", err)
	}

	found := false
	scan := bufio.NewScanner(&out)
	for scan.Scan() {
		line := scan.Text()
		if !strings.HasPrefix(line, "0x") {
			t.Errorf("unexpected search output line %q", line)
			continue
		}
		found = true
	}
	_ = found // presence of the marker in our own rodata/stack is not guaranteed; absence is not a failure
	_ = unsafe.Pointer(&marker)
}

func TestFilterSkipsUnparseableLines(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("requires /proc/self, linux-only")
	}

	in := strings.NewReader("not-an-address\n0xDEADBEEFDEADBEEF\n")
	var out bytes.Buffer
	var warnings int
	warn := func(string, ...any) { warnings++ }

	err := Filter(os.Getpid(), []byte{0, 1, 2, 3}, in, &out, warn)
	if err == nil {
		t.Skip("expected the unreadable high address to fail, but it didn't in this environment")
	}
	if warnings == 0 {
		t.Error("expected a warning for the unparseable line")
	}
}
