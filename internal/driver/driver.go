// Package driver composes region enumeration, the memory window, and the
// streaming matcher into the three user-visible modes: search, filter, and
// write.
package driver

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/coldforge/vmscan/internal/ioutil"
	"github.com/coldforge/vmscan/internal/memwindow"
	"github.com/coldforge/vmscan/internal/procfs"
	"github.com/coldforge/vmscan/internal/scanner"
	"github.com/coldforge/vmscan/internal/vmerr"
)

// WarnFunc receives a skip-with-warning diagnostic, e.g. for an
// unparseable candidate-address line. Drivers never treat these as fatal.
type WarnFunc func(format string, args ...any)

func noopWarn(string, ...any) {}

// Search enumerates pid's writable regions and streams each through the
// matcher, writing one "0x<hex>\n" line per match to out in ascending
// address order. Regions without WRITE are skipped: the workflow this tool
// supports is "find it, then mutate it", so read-only/shared/exec-only
// regions only cost time and produce false leads.
func Search(pid int, needle []byte, pageSize int, out io.Writer) error {
	regions, err := procfs.Regions(pid)
	if err != nil {
		return err
	}

	win, err := memwindow.Open(pid, false)
	if err != nil {
		return err
	}
	defer win.Close()

	writer := bufio.NewWriter(out)
	defer writer.Flush()

	for _, region := range regions {
		if !region.Flags.Has(procfs.Write) {
			continue
		}
		if region.Size() == 0 {
			continue
		}

		if err := win.Seek(region.Start); err != nil {
			return err
		}

		scanErr := scanner.Scan(win, region.Start, region.End, needle, pageSize, func(addr uintptr) {
			fmt.Fprintf(writer, "0x%x\n", addr)
		})
		if scanErr != nil {
			return scanErr
		}
	}

	return writer.Flush()
}

// Filter reads one candidate address per line from in, seeks the target's
// memory to that address, and re-emits the address to out iff the bytes
// there still equal needle. Order is preserved. A line that doesn't parse
// as an unsigned integer is skipped with a warning (never fatal); an
// address that can't be read is a fatal scan error, since the caller is
// re-checking an address search already claimed was valid memory.
func Filter(pid int, needle []byte, in io.Reader, out io.Writer, warn WarnFunc) error {
	if warn == nil {
		warn = noopWarn
	}

	win, err := memwindow.Open(pid, false)
	if err != nil {
		return err
	}
	defer win.Close()

	writer := bufio.NewWriter(out)
	defer writer.Flush()

	scan := bufio.NewScanner(in)
	for scan.Scan() {
		addr, ok := parseAddress(scan.Text(), warn)
		if !ok {
			continue
		}

		if err := win.Seek(addr); err != nil {
			return fmt.Errorf("%w: filter %#x: %v", vmerr.ErrScan, addr, err)
		}

		buf, err := ioutil.ReadFull(win, len(needle))
		if err != nil {
			return fmt.Errorf("%w: filter %#x: %v", vmerr.ErrScan, addr, err)
		}

		if bytes.Equal(buf, needle) {
			fmt.Fprintf(writer, "0x%x\n", addr)
		}
	}
	if err := scan.Err(); err != nil {
		return fmt.Errorf("%w: reading candidate addresses: %v", vmerr.ErrIO, err)
	}

	return writer.Flush()
}

// Write reads one candidate address per line from in and writes value to
// each, stopping on the first I/O error. A line that doesn't parse as an
// unsigned integer is skipped without a warning.
func Write(pid int, value []byte, in io.Reader) error {
	win, err := memwindow.Open(pid, true)
	if err != nil {
		return err
	}
	defer win.Close()

	scan := bufio.NewScanner(in)
	for scan.Scan() {
		addr, ok := parseAddress(scan.Text(), noopWarn)
		if !ok {
			continue
		}

		if err := win.Seek(addr); err != nil {
			return fmt.Errorf("%w: write %#x: %v", vmerr.ErrIO, addr, err)
		}
		if err := ioutil.WriteFull(win, value); err != nil {
			return fmt.Errorf("%w: write %#x: %v", vmerr.ErrIO, addr, err)
		}
	}
	if err := scan.Err(); err != nil {
		return fmt.Errorf("%w: reading candidate addresses: %v", vmerr.ErrIO, err)
	}

	return nil
}

// parseAddress parses a candidate-address line with strtoul-style
// semantics: decimal, 0x-hex, or 0-octal. A line that doesn't parse yields
// (0, false) after warning, matching the spec's recommendation to skip
// rather than abort. A nil warn is treated as a no-op.
func parseAddress(line string, warn WarnFunc) (uintptr, bool) {
	if warn == nil {
		warn = noopWarn
	}
	v, err := strconv.ParseUint(line, 0, 64)
	if err != nil {
		warn("skipping unparseable address line %q: %v", line, err)
		return 0, false
	}
	return uintptr(v), true
}

