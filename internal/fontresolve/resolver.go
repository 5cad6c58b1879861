// Package fontresolve locates a CJK-capable font on the host at runtime.
//
// Font locations differ between operating systems and even between versions
// of the same system, so no path is hardcoded. A Lister queries the host's
// font-discovery facility (fontconfig's fc-list by default) and the Resolver
// selects the first entry whose family matches one of the required names.
//
// The first successful resolution is memoized for the lifetime of the
// Resolver. Pass the Resolver explicitly to the components that draw text.
package fontresolve

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultFamilies lists acceptable CJK families in priority order.
var DefaultFamilies = []string{
	"PingFang SC",
	"Noto Sans CJK SC",
	"Source Han Sans SC",
	"Noto Sans SC",
	"WenQuanYi Zen Hei",
}

// DefaultProbe is the rune a resolved font must cover.
const DefaultProbe = "测"

// Resolver resolves and caches a font Handle. Safe for concurrent use.
type Resolver struct {
	lister   Lister
	families []string
	probe    string
	fontPath string
	boldPath string
	logger   *zap.Logger
	mu       sync.Mutex
	handle   *Handle
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLister replaces the host font-listing facility.
func WithLister(l Lister) Option {
	return func(r *Resolver) { r.lister = l }
}

// WithFamilies sets the acceptable family names in priority order.
func WithFamilies(families ...string) Option {
	return func(r *Resolver) {
		if len(families) > 0 {
			r.families = families
		}
	}
}

// WithProbe sets the text every resolved font must cover.
// An empty probe disables the capability check.
func WithProbe(probe string) Option {
	return func(r *Resolver) { r.probe = probe }
}

// WithFontFile bypasses discovery and loads the given file (and optional bold file).
func WithFontFile(path, boldPath string) Option {
	return func(r *Resolver) {
		r.fontPath = path
		r.boldPath = boldPath
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver backed by fc-list unless overridden.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		lister:   &FCList{},
		families: DefaultFamilies,
		probe:    DefaultProbe,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Static returns a Resolver that always yields h without querying the host.
func Static(h *Handle) *Resolver {
	r := New()
	r.handle = h
	return r
}

// Resolve returns the cached handle, resolving it on first use.
// Concurrent callers block until the first resolution finishes.
// Failures are not cached, so a later call may succeed after fonts are installed.
func (r *Resolver) Resolve(ctx context.Context) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handle != nil {
		return r.handle, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		h   *Handle
		err error
	)
	if r.fontPath != "" {
		h, err = r.resolveFile()
	} else {
		h, err = r.resolveHost(ctx)
	}
	if err != nil {
		return nil, err
	}

	r.handle = h
	r.logger.Debug("font resolved",
		zap.String("family", h.Family),
		zap.String("path", h.Path),
		zap.Int("index", h.Index),
		zap.Bool("bold", h.HasBold()),
	)
	return h, nil
}

// resolveFile loads an explicitly configured font file.
func (r *Resolver) resolveFile() (*Handle, error) {
	regular := Entry{Families: []string{r.fontPath}, Path: r.fontPath}
	var bold *Entry
	if r.boldPath != "" {
		bold = &Entry{Families: []string{r.boldPath}, Path: r.boldPath}
	}

	h, err := loadHandle(familyFromPath(r.fontPath), regular, bold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontNotFound, err)
	}
	if r.probe != "" && !h.CoversAll(r.probe) {
		return nil, fmt.Errorf("%w: %s lacks glyphs for %q", ErrFontNotFound, r.fontPath, r.probe)
	}
	return h, nil
}

// resolveHost queries the lister and picks the first acceptable family.
func (r *Resolver) resolveHost(ctx context.Context) (*Handle, error) {
	entries, err := r.lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontNotFound, err)
	}

	for _, family := range r.families {
		matches := filterFamily(entries, family)
		if len(matches) == 0 {
			continue
		}

		regular, bold := pickStyles(matches)
		h, err := loadHandle(family, regular, bold)
		if err != nil {
			r.logger.Warn("skipping unreadable font",
				zap.String("family", family),
				zap.String("path", regular.Path),
				zap.Error(err),
			)
			continue
		}
		if r.probe != "" && !h.CoversAll(r.probe) {
			r.logger.Debug("skipping font without required glyphs",
				zap.String("family", family),
				zap.String("path", regular.Path),
			)
			continue
		}
		return h, nil
	}

	return nil, fmt.Errorf("%w: none of %s installed (%d fonts listed)",
		ErrFontNotFound, strings.Join(r.families, ", "), len(entries))
}

func filterFamily(entries []Entry, family string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.HasFamily(family) {
			out = append(out, e)
		}
	}
	return out
}

// pickStyles chooses the regular and bold faces among entries of one family.
// Order of preference follows the listing order for equal scores.
func pickStyles(entries []Entry) (Entry, *Entry) {
	regular := entries[0]
	bestRegular := -1
	var bold *Entry
	bestBold := -1

	for i := range entries {
		e := entries[i]
		if s := styleScore(e.Styles, regularStyles); s > bestRegular {
			bestRegular = s
			regular = e
		}
		if s := styleScore(e.Styles, boldStyles); s > bestBold {
			bestBold = s
			bold = &entries[i]
		}
	}
	if bestBold < 0 {
		bold = nil
	}
	return regular, bold
}

// Styles in decreasing preference; titles prefer Semibold.
var (
	regularStyles = []string{"regular", "normal", "book", "w3", "medium"}
	boldStyles    = []string{"semibold", "bold", "demibold", "w6", "heavy", "black"}
)

// styleScore returns a higher score for earlier entries of prefs; -1 if none match.
func styleScore(styles, prefs []string) int {
	best := -1
	for _, s := range styles {
		ls := strings.ToLower(strings.TrimSpace(s))
		for i, p := range prefs {
			if ls == p {
				if score := len(prefs) - i; score > best {
					best = score
				}
			}
		}
	}
	return best
}

func familyFromPath(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}
