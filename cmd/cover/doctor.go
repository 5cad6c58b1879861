package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	cover "github.com/alnah/go-cover"
	"github.com/alnah/go-cover/internal/fileutil"
	"github.com/alnah/go-cover/internal/fontresolve"
	"github.com/alnah/go-cover/internal/history"
)

// Doctor status values.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorTimeout bounds the external commands run by doctor.
const doctorTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo  `json:"chrome"`
	Fonts    fontInfo    `json:"fonts"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	History  historyInfo `json:"history"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// fontInfo holds font discovery results.
type fontInfo struct {
	FCList     bool   `json:"fc_list"`
	FCListPath string `json:"fc_list_path,omitempty"`
	Found      bool   `json:"found"`
	Family     string `json:"family,omitempty"`
	Path       string `json:"path,omitempty"`
	Bold       bool   `json:"bold"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempDir      string `json:"temp_dir"`
	TempWritable bool   `json:"temp_writable"`
}

// historyInfo holds artifact ledger results.
type historyInfo struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
	Exists  bool   `json:"exists"`
	Entries int    `json:"entries"`
}

// doctorDeps holds the host lookups used by doctor.
type doctorDeps struct {
	lookChrome  func() (string, bool)
	lookFCList  func() (string, bool)
	fonts       cover.FontSource
	getenv      func(string) string
	tempDir     string
	historyPath string // empty when history is disabled
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	f, err := parseDoctorFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}
	setupLogger(env, &f.common)

	deps, err := defaultDeps(&f.common, env)
	if err != nil {
		reportError(env, err)
		return exitCodeFor(err)
	}

	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()
	result := runDoctor(ctx, deps)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// defaultDeps returns host lookups, resolving fonts as the template
// command would with the current configuration.
func defaultDeps(common *commonFlags, env *Environment) (*doctorDeps, error) {
	cfg, err := loadConfig(common, loadEnvConfig(env.Getenv, env.Logger))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g, err := cover.NewGenerator(generatorOptions(cfg, env)...)
	if err != nil {
		return nil, err
	}

	var ledger string
	if cfg.History.IsEnabled() {
		ledger = historyPath(cfg)
	}

	fc := &fontresolve.FCList{}
	return &doctorDeps{
		lookChrome:  launcher.LookPath,
		lookFCList:  fc.LookPath,
		fonts:       g.Fonts(),
		getenv:      env.Getenv,
		tempDir:     os.TempDir(),
		historyPath: ledger,
	}, nil
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, p *doctorDeps) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  p.getenv("ROD_NO_SANDBOX"),
			BrowserBin: p.getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(ctx, result, p)
	checkFonts(ctx, result, p)
	checkEnvironment(result, p)
	checkSystem(result, p)
	checkHistory(ctx, result, p)

	if !result.Chrome.Found && !result.Fonts.Found {
		result.Errors = append(result.Errors, "Neither backend can run: install Chrome or a CJK font")
	}

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkChrome detects Chrome/Chromium for the html command.
func checkChrome(ctx context.Context, result *doctorResult, p *doctorDeps) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = p.lookChrome()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found, html covers unavailable. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if !fileutil.FileExists(chromePath) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Chrome not found at %s, html covers unavailable", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.CommandContext(ctx, chromePath, "--version").Output() // #nosec G204 -- detected browser path
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	// Sandbox status: disabled if ROD_NO_SANDBOX=1
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkFonts verifies a CJK-capable font resolves for the template command.
func checkFonts(ctx context.Context, result *doctorResult, p *doctorDeps) {
	result.Fonts.FCListPath, result.Fonts.FCList = p.lookFCList()

	h, err := p.fonts.Resolve(ctx)
	if err != nil {
		msg := fmt.Sprintf("No usable font, template covers unavailable: %v", err)
		if !result.Fonts.FCList {
			msg += " (fc-list not installed, use --font or COVER_FONT)"
		}
		result.Warnings = append(result.Warnings, msg)
		return
	}

	result.Fonts.Found = true
	result.Fonts.Family = h.Family
	result.Fonts.Path = h.Path
	result.Fonts.Bold = h.HasBold()
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, p *doctorDeps) {
	result.Env.Container, result.Env.ContainerHint = isContainer(p.getenv)

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if p.getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	// Warn if container/CI without sandbox disabled
	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	// Explicit override (highest priority)
	if getenv("COVER_CONTAINER") == "1" {
		return true, "COVER_CONTAINER=1"
	}
	// Docker
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used for inline markup is writable.
func checkSystem(result *doctorResult, p *doctorDeps) {
	result.System.TempDir = p.tempDir
	if err := fileutil.DirWritable(p.tempDir); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", p.tempDir))
		return
	}
	result.System.TempWritable = true
}

// checkHistory reports the ledger's entry count. A missing ledger is created
// by the first recorded cover; an unreadable one only costs the history.
func checkHistory(ctx context.Context, result *doctorResult, p *doctorDeps) {
	if p.historyPath == "" {
		return
	}
	result.History.Enabled = true
	result.History.Path = p.historyPath
	if !fileutil.FileExists(p.historyPath) {
		return
	}

	store, err := history.Open(p.historyPath)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("History ledger unreadable, covers will not be recorded: %v", err))
		return
	}
	defer func() { _ = store.Close() }()

	n, err := store.Count(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("History ledger unreadable, covers will not be recorded: %v", err))
		return
	}
	result.History.Exists = true
	result.History.Entries = n
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "cover doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium (html)")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Fonts (template)")
	if r.Fonts.FCList {
		fmt.Fprintf(w, "  [OK] fc-list: %s\n", r.Fonts.FCListPath)
	} else {
		fmt.Fprintln(w, "  [WARN] fc-list: not found")
	}
	if r.Fonts.Found {
		fmt.Fprintf(w, "  [OK] Font: %s (%s)\n", r.Fonts.Family, r.Fonts.Path)
		if !r.Fonts.Bold {
			fmt.Fprintln(w, "  [OK] Bold: regular face reused")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Font: none resolved")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "History")
	switch {
	case !r.History.Enabled:
		fmt.Fprintln(w, "  [OK] Ledger: disabled")
	case r.History.Exists:
		fmt.Fprintf(w, "  [OK] Ledger: %s (%d entries)\n", r.History.Path, r.History.Entries)
	default:
		fmt.Fprintf(w, "  [OK] Ledger: %s (created with the first cover)\n", r.History.Path)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
