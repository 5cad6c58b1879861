package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	cover "github.com/alnah/go-cover"
	"github.com/alnah/go-cover/internal/assets"
	"github.com/alnah/go-cover/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Sentinel errors for CLI operations.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrNoInput        = errors.New("no input specified")
	ErrOutputRequired = errors.New("output path required")
	ErrReadInput      = errors.New("failed to read input file")
	ErrReadCSS        = errors.New("failed to read CSS file")
)

func main() {
	// Existing variables win over .env entries; a missing file is fine.
	_ = godotenv.Load()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches a command and returns the process exit code.
// args[0] is the program name.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]

	var err error
	switch cmd {
	case "template":
		err = runTemplateCmd(ctx, rest, env)
	case "html":
		err = runHTMLCmd(ctx, rest, env)
	case "history":
		err = runHistoryCmd(ctx, rest, env)
	case "config":
		err = runConfigCmd(rest, env)
	case "doctor":
		return runDoctorCmd(ctx, rest, env)
	case "completion":
		err = runCompletion(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "cover %s\n", Version)
		return ExitSuccess
	case "help", "--help", "-h":
		runHelp(rest, env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		reportError(env, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// hasVerboseFlag reports whether -v or --verbose appears before any "--".
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

// setupLogger replaces the environment logger according to the common flags.
func setupLogger(env *Environment, f *commonFlags) {
	env.Logger = newLogger(env.Stderr, f.quiet, f.verbose)
}

// reportError prints the failing stage, the error and any hint.
func reportError(env *Environment, err error) {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(env.Stderr, "interrupted")
		return
	}
	fmt.Fprintf(env.Stderr, "error [%s]: %v%s\n", stageFor(err), err, hintFor(err))
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, cover.ErrFontNotFound):
		return hints.ForFontNotFound()
	case errors.Is(err, cover.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, cover.ErrRenderTimeout):
		return hints.ForTimeout()
	case errors.Is(err, cover.ErrSizeCompliance):
		return hints.ForSizeCompliance()
	case errors.Is(err, cover.ErrUnknownTemplate):
		return hints.ForUnknownTemplate(cover.Templates())
	case errors.Is(err, cover.ErrUnknownColorScheme):
		return hints.ForUnknownColorScheme(cover.ColorSchemes())
	case errors.Is(err, cover.ErrAssetNotFound), errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, cover.ErrInvalidMarkup):
		return hints.ForMarkupSource()
	case errors.Is(err, cover.ErrWriteArtifact):
		return hints.ForOutputDirectory()
	}
	return ""
}
