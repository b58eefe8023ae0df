// Package procfs parses a process's /proc/<pid>/maps table into an ordered
// list of virtual memory regions.
package procfs

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/coldforge/vmscan/internal/vmerr"
)

// Flags is a bitwise combination of region access/sharing capabilities.
type Flags uint8

// Flag bits, matching the r/w/x/s positions of a maps-table flags field.
const (
	Read Flags = 1 << iota
	Write
	Execute
	Shared
)

// Has reports whether all bits in want are set in f.
func (f Flags) Has(want Flags) bool { return f&want == want }

// Region is a single contiguous, page-aligned mapping in a process's
// virtual address space.
type Region struct {
	Start uintptr
	End   uintptr
	Flags Flags
	Path  string
}

// Size returns the region's length in bytes.
func (r Region) Size() uintptr { return r.End - r.Start }

// Regions reads and parses /proc/<pid>/maps, returning regions in ascending
// start-address order (the order the kernel already produces them in). On
// any parse failure the whole call fails and no partial list is returned.
func Regions(pid int) ([]Region, error) {
	path := fmt.Sprintf("/proc/%d/maps", pid)

	f, err := os.Open(path) //nolint:gosec // path is built from a validated pid
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", vmerr.ErrEnum, path, err)
	}
	defer f.Close()

	var regions []Region

	scanner := bufio.NewScanner(f)
	// maps lines are short; the default token buffer is generous enough,
	// but guard against pathological /proc entries anyway.
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		region, parseErr := parseLine(line)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", vmerr.ErrEnum, path, lineNo, parseErr)
		}
		regions = append(regions, region)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", vmerr.ErrEnum, path, err)
	}

	return regions, nil
}

// parseLine parses one maps-table record:
//
//	start-end flags offset dev inode [whitespace] path
//
// flags is a 4-character string [r-][w-][x-][sp]; any character other than
// the positive letter means the capability is absent. path may be empty.
func parseLine(line string) (Region, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Region{}, fmt.Errorf("expected at least 5 fields, got %d", len(fields))
	}

	start, end, err := parseRange(fields[0])
	if err != nil {
		return Region{}, err
	}

	flags, err := parseFlags(fields[1])
	if err != nil {
		return Region{}, err
	}

	var path string
	if idx := pathFieldIndex(line); idx >= 0 {
		path = strings.TrimLeft(line[idx:], " ")
	}

	return Region{Start: start, End: end, Flags: flags, Path: path}, nil
}

// parseRange parses the "start-end" address range field.
func parseRange(field string) (start, end uintptr, err error) {
	parts := strings.SplitN(field, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed range %q", field)
	}

	s, err := strconv.ParseUint(parts[0], 16, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed start address %q: %w", parts[0], err)
	}
	e, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed end address %q: %w", parts[1], err)
	}
	if e < s {
		return 0, 0, fmt.Errorf("end %x precedes start %x", e, s)
	}

	return uintptr(s), uintptr(e), nil
}

// parseFlags converts the maps flags string (e.g. "rw-p") to Flags bits.
func parseFlags(field string) (Flags, error) {
	if len(field) != 4 {
		return 0, fmt.Errorf("malformed flags %q", field)
	}

	var flags Flags
	if field[0] == 'r' {
		flags |= Read
	}
	if field[1] == 'w' {
		flags |= Write
	}
	if field[2] == 'x' {
		flags |= Execute
	}
	if field[3] == 's' {
		flags |= Shared
	}
	return flags, nil
}

// pathFieldIndex returns the byte offset in line where the (possibly empty)
// trailing path field begins, i.e. just past the 5th whitespace-delimited
// field. Returns -1 if no whitespace follows the 5th field (including
// when the line has fewer than 5 fields).
func pathFieldIndex(line string) int {
	fieldsSeen := 0
	inField := false
	for i, r := range line {
		isSpace := r == ' ' || r == '\t'
		if !isSpace && !inField {
			inField = true
			fieldsSeen++
		} else if isSpace && inField {
			inField = false
			if fieldsSeen == 5 {
				return i
			}
		}
	}
	return -1
}
