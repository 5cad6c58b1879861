package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// outputFlags holds artifact placement flags.
type outputFlags struct {
	path      string // file for a single cover, directory for a batch
	baseDir   string // run directories are created here
	noHistory bool
}

// fontFlags holds font discovery flags for the template backend.
type fontFlags struct {
	path     string
	boldPath string
	families []string
	noCheck  bool
}

// complianceFlags holds size ceiling flags.
type complianceFlags struct {
	maxBytes int64
	jpegMin  int
}

// textFlags holds the text drawn by the template backend.
type textFlags struct {
	title    string
	subtitle string
	items    []string
	date     string
}

// markupFlags holds headless browser flags.
type markupFlags struct {
	timeout   string
	scale     float64
	style     string
	css       string // stylesheet file appended to the style
	assetPath string
}

// templateFlags holds all flags for the template command.
type templateFlags struct {
	common     commonFlags
	output     outputFlags
	font       fontFlags
	compliance complianceFlags
	text       textFlags
	template   string
	color      string
}

// htmlFlags holds all flags for the html command.
type htmlFlags struct {
	common     commonFlags
	output     outputFlags
	compliance complianceFlags
	markup     markupFlags
	workers    int
	watch      bool
}

// historyFlags holds flags for the history command.
type historyFlags struct {
	common commonFlags
	limit  int
	path   string
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addOutputFlags adds output flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.path, "output", "o", "", "output file (directory for several inputs)")
	fs.StringVar(&f.baseDir, "base-dir", "", "directory holding run directories")
	fs.BoolVar(&f.noHistory, "no-history", false, "do not record the cover in the history ledger")
}

// addFontFlags adds font flags to a FlagSet.
func addFontFlags(fs *flag.FlagSet, f *fontFlags) {
	fs.StringVar(&f.path, "font", "", "font file, skips discovery")
	fs.StringVar(&f.boldPath, "bold-font", "", "bold font file (with --font)")
	fs.StringSliceVar(&f.families, "font-family", nil, "acceptable font families in priority order")
	fs.BoolVar(&f.noCheck, "no-font-check", false, "accept fonts without CJK glyphs")
}

// addComplianceFlags adds compliance flags to a FlagSet.
func addComplianceFlags(fs *flag.FlagSet, f *complianceFlags) {
	fs.Int64Var(&f.maxBytes, "max-bytes", 0, "size ceiling in bytes (0 = config or 5 MiB)")
	fs.IntVar(&f.jpegMin, "jpeg-min", 0, "lowest JPEG quality tried (0 = config or 60)")
}

// addTextFlags adds cover text flags to a FlagSet.
func addTextFlags(fs *flag.FlagSet, f *textFlags) {
	fs.StringVar(&f.title, "title", "", "cover title (required)")
	fs.StringVar(&f.subtitle, "subtitle", "", "cover subtitle")
	fs.StringArrayVar(&f.items, "item", nil, "list row (repeatable, list template)")
	fs.StringVar(&f.date, "date", "", "date line: \"auto\", \"auto:FORMAT\", or a preset")
}

// addMarkupFlags adds markup flags to a FlagSet.
func addMarkupFlags(fs *flag.FlagSet, f *markupFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "render timeout (e.g., 30s, 1m)")
	fs.Float64Var(&f.scale, "scale", 0, "device scale factor (0 = config or 1)")
	fs.StringVar(&f.style, "style", "", "stylesheet name for Markdown input")
	fs.StringVar(&f.css, "css", "", "extra stylesheet file")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory of custom styles and templates")
}

// newTemplateFlagSet registers the template command flags into f.
// Completion builds its flag list from the same set.
func newTemplateFlagSet(f *templateFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("template", flag.ContinueOnError)

	fs.StringVar(&f.template, "template", "", "template: gradient, minimal, list, bold")
	fs.StringVar(&f.color, "color", "", "color scheme: warm, cool, green, neutral")

	addCommonFlags(fs, &f.common)
	addOutputFlags(fs, &f.output)
	addFontFlags(fs, &f.font)
	addComplianceFlags(fs, &f.compliance)
	addTextFlags(fs, &f.text)
	return fs
}

// parseTemplateFlags parses flags for the template command.
func parseTemplateFlags(args []string) (*templateFlags, []string, error) {
	f := &templateFlags{}
	fs := newTemplateFlagSet(f)
	fs.Usage = func() { printTemplateUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

func newHTMLFlagSet(f *htmlFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)

	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel browsers (0 = auto)")
	fs.BoolVar(&f.watch, "watch", false, "re-render when the input changes")

	addCommonFlags(fs, &f.common)
	addOutputFlags(fs, &f.output)
	addComplianceFlags(fs, &f.compliance)
	addMarkupFlags(fs, &f.markup)
	return fs
}

// parseHTMLFlags parses flags for the html command.
func parseHTMLFlags(args []string) (*htmlFlags, []string, error) {
	f := &htmlFlags{}
	fs := newHTMLFlagSet(f)
	fs.Usage = func() { printHTMLUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

func newHistoryFlagSet(f *historyFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.IntVarP(&f.limit, "limit", "n", defaultHistoryLimit, "number of entries to show")
	fs.StringVar(&f.path, "db", "", "ledger file (default: <baseDir>/history.db)")
	addCommonFlags(fs, &f.common)
	return fs
}

// parseHistoryFlags parses flags for the history command.
func parseHistoryFlags(args []string) (*historyFlags, []string, error) {
	f := &historyFlags{}
	fs := newHistoryFlagSet(f)
	fs.Usage = func() { printHistoryUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

func newDoctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	addCommonFlags(fs, &f.common)
	return fs
}

// parseDoctorFlags parses flags for the doctor command.
func parseDoctorFlags(args []string) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := newDoctorFlagSet(f)
	fs.Usage = func() { printDoctorUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return f, nil
}

func newConfigFlagSet(f *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	addCommonFlags(fs, f)
	return fs
}

// parseConfigFlags parses flags for the config command.
func parseConfigFlags(args []string) (*commonFlags, error) {
	f := &commonFlags{}
	fs := newConfigFlagSet(f)
	fs.Usage = func() { printConfigUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return f, nil
}
