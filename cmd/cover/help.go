package main

import (
	"fmt"
	"io"
	"strings"

	cover "github.com/alnah/go-cover"
	"github.com/alnah/go-cover/internal/assets"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cover <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  template   Render a built-in template cover")
	fmt.Fprintln(w, "  html       Render HTML or Markdown files in a headless browser")
	fmt.Fprintln(w, "  history    List recently written covers")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check Chrome, fonts and the temp directory")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'cover help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags shared by every command.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
}

// printOutputUsage prints output and compliance flags.
func printOutputUsage(w io.Writer) {
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "      --base-dir <dir>      Directory holding run directories (default: covers)")
	fmt.Fprintln(w, "      --no-history          Do not record the cover in the history ledger")
	fmt.Fprintln(w, "      --max-bytes <n>       Size ceiling in bytes (default: 5242880)")
	fmt.Fprintln(w, "      --jpeg-min <n>        Lowest JPEG quality tried (default: 60)")
	fmt.Fprintln(w)
}

// printTemplateUsage prints usage for the template command.
func printTemplateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cover template --title <s> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Render a %dx%d cover from a built-in template.\n", cover.Width, cover.Height)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Template:")
	fmt.Fprintf(w, "      --template <s>        %s (default: %s)\n", strings.Join(cover.Templates(), ", "), cover.DefaultTemplate)
	fmt.Fprintf(w, "      --color <s>           %s (default: %s)\n", strings.Join(cover.ColorSchemes(), ", "), cover.DefaultColorScheme)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Text:")
	fmt.Fprintln(w, "      --title <s>           Cover title (required)")
	fmt.Fprintln(w, "      --subtitle <s>        Cover subtitle")
	fmt.Fprintln(w, "      --item <s>            List row, repeatable (list template)")
	fmt.Fprintln(w, "      --date <s>            Date appended to the subtitle: \"auto\", \"auto:FORMAT\"")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, HH, mm, ss")
	fmt.Fprintln(w, "                            Presets: iso, cn, us, long, compact")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Font:")
	fmt.Fprintln(w, "      --font <path>         Font file, skips discovery")
	fmt.Fprintln(w, "      --bold-font <path>    Bold font file (with --font)")
	fmt.Fprintln(w, "      --font-family <s>     Acceptable families in priority order (comma-separated)")
	fmt.Fprintln(w, "      --no-font-check       Accept fonts without CJK glyphs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: <base-dir>/<run>/cover.png)")
	printOutputUsage(w)
	printCommonUsage(w)
}

// printHTMLUsage prints usage for the html command.
func printHTMLUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cover html <file.html|file.md>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Render markup in a headless browser at %dx%d.\n", cover.Width, cover.Height)
	fmt.Fprintln(w, "Several inputs render in parallel; each cover is <output>/<stem>.png.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  file      .html, .htm, .md or .markdown")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Markup:")
	fmt.Fprintln(w, "  -t, --timeout <d>         Render timeout (default: 30s)")
	fmt.Fprintln(w, "      --scale <f>           Device scale factor, up to 4 (default: 1)")
	fmt.Fprintf(w, "      --style <name>        Stylesheet for Markdown: %s (default: %s)\n", strings.Join(assets.StyleNames(), ", "), assets.DefaultStyleName)
	fmt.Fprintln(w, "      --css <file>          Extra stylesheet file")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles/ and templates/ directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel browsers (0 = auto)")
	fmt.Fprintln(w, "      --watch               Re-render a single input when it changes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -o, --output <path>       Output file for one input (required),")
	fmt.Fprintln(w, "                            directory for several (default: <base-dir>/<run>)")
	printOutputUsage(w)
	printCommonUsage(w)
}

// printHistoryUsage prints usage for the history command.
func printHistoryUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cover history [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List recently written covers, newest first.")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  -n, --limit <n>           Number of entries (default: %d)\n", defaultHistoryLimit)
	fmt.Fprintln(w, "      --db <path>           Ledger file (default: <base-dir>/history.db)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cover doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, font discovery and the temp directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print results as JSON")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cover config [--config <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML.")
	fmt.Fprintln(w, "Environment: COVER_CONFIG, COVER_TIMEOUT, COVER_FONT, COVER_BASE_DIR, COVER_WORKERS")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "template":
		printTemplateUsage(env.Stdout)
	case "html":
		printHTMLUsage(env.Stdout)
	case "history":
		printHistoryUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: cover version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: cover help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
