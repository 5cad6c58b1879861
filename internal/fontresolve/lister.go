package fontresolve

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Entry is one face reported by the host font-listing facility.
type Entry struct {
	Families []string // localized names, first is canonical
	Styles   []string
	Path     string
	Index    int // face index inside a collection (.ttc/.otc)
}

// HasFamily reports whether any of the entry's family names equals name (case-insensitive).
func (e Entry) HasFamily(name string) bool {
	for _, f := range e.Families {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// Lister queries the host for installed fonts.
// Implementations must not assume fixed filesystem locations.
type Lister interface {
	List(ctx context.Context) ([]Entry, error)
}

// fcListFormat asks fc-list for one tab-separated line per face.
const fcListFormat = "%{family}\t%{style}\t%{file}\t%{index}\n"

// defaultListTimeout bounds a single fc-list invocation.
const defaultListTimeout = 5 * time.Second

// FCList lists fonts through fontconfig's fc-list.
type FCList struct {
	Bin     string        // defaults to "fc-list"
	Timeout time.Duration // defaults to 5s
}

// List runs fc-list and parses its output.
func (l *FCList) List(ctx context.Context) ([]Entry, error) {
	bin := l.Bin
	if bin == "" {
		bin = "fc-list"
	}
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = defaultListTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "--format="+fcListFormat) // #nosec G204 -- bin is configuration, not user content
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFontList, bin, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrFontList, bin, err, strings.TrimSpace(stderr.String()))
	}

	return parseFCList(stdout.Bytes()), nil
}

// LookPath reports whether the fc-list binary is available.
func (l *FCList) LookPath() (string, bool) {
	bin := l.Bin
	if bin == "" {
		bin = "fc-list"
	}
	p, err := exec.LookPath(bin)
	return p, err == nil
}

// parseFCList parses fc-list output produced with fcListFormat.
// Malformed lines are skipped.
func parseFCList(out []byte) []Entry {
	var entries []Entry
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}

		path := strings.TrimSpace(fields[2])
		if path == "" {
			continue
		}

		e := Entry{
			Families: splitNames(fields[0]),
			Styles:   splitNames(fields[1]),
			Path:     path,
		}
		if len(fields) > 3 {
			if idx, err := strconv.Atoi(strings.TrimSpace(fields[3])); err == nil && idx >= 0 {
				e.Index = idx
			}
		}
		if len(e.Families) == 0 {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// splitNames splits fontconfig's comma-separated localized names.
// Commas escaped as "\," stay part of the name.
func splitNames(s string) []string {
	var names []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == ',':
			cur.WriteByte(',')
			i++
		case s[i] == ',':
			if n := strings.TrimSpace(cur.String()); n != "" {
				names = append(names, n)
			}
			cur.Reset()
		default:
			cur.WriteByte(s[i])
		}
	}
	if n := strings.TrimSpace(cur.String()); n != "" {
		names = append(names, n)
	}
	return names
}

// StaticLister returns a fixed list of entries. Useful for hosts without
// fontconfig where the caller already knows the candidates.
type StaticLister []Entry

// List returns the static entries.
func (s StaticLister) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []Entry(s), nil
}
