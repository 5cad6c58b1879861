package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	cover "github.com/alnah/go-cover"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

var shells = []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFloat
	flagEnum // has predefined values
	flagFile // file, optionally filtered by FileGlob
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags, "*.a,*.b"; empty means any file
	Repeat   bool     // may be given more than once
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Args        []string // fixed positional words
	TakesFiles  bool     // accepts file arguments
	FilePattern string   // glob for file arguments
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsFile   bool
	IsDir    bool
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"template": {Values: cover.Templates()},
	"color":    {Values: cover.ColorSchemes()},

	"config":    {FileGlob: "*.yaml,*.yml"},
	"css":       {FileGlob: "*.css"},
	"font":      {FileGlob: "*.ttf,*.otf,*.ttc"},
	"bold-font": {FileGlob: "*.ttf,*.otf,*.ttc"},
	"db":        {FileGlob: "*.db"},
	"output":    {IsFile: true},

	"base-dir":   {IsDir: true},
	"asset-path": {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet,
// enriched with flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
		case "stringArray", "stringSlice":
			fd.Repeat = true
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "" || meta.IsFile:
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags come from the same FlagSets the commands parse.
func getCommands() []commandDef {
	cmds := []commandDef{
		{
			Name:  "template",
			Desc:  "Render a built-in template cover",
			Flags: extractFlagsFromFlagSet(newTemplateFlagSet(&templateFlags{})),
		},
		{
			Name:        "html",
			Desc:        "Render HTML or Markdown files in a headless browser",
			Flags:       extractFlagsFromFlagSet(newHTMLFlagSet(&htmlFlags{})),
			TakesFiles:  true,
			FilePattern: "*.html,*.htm,*.md,*.markdown",
		},
		{
			Name:  "history",
			Desc:  "List recently written covers",
			Flags: extractFlagsFromFlagSet(newHistoryFlagSet(&historyFlags{})),
		},
		{
			Name:  "config",
			Desc:  "Print the effective configuration",
			Flags: extractFlagsFromFlagSet(newConfigFlagSet(&commonFlags{})),
		},
		{
			Name:  "doctor",
			Desc:  "Check Chrome, fonts and the temp directory",
			Flags: extractFlagsFromFlagSet(newDoctorFlagSet(&doctorFlags{})),
		},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
		{Name: "completion", Desc: "Generate shell completion script", Args: shells},
	}
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	for i := range cmds {
		if cmds[i].Name == "help" {
			cmds[i].Args = names
		}
	}
	return cmds
}

// GenerateCompletion writes shell completion script to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var b strings.Builder
	cmds := getCommands()

	switch shell {
	case ShellBash:
		generateBash(&b, cmds)
	case ShellZsh:
		generateZsh(&b, cmds)
	case ShellFish:
		generateFish(&b, cmds)
	case ShellPowerShell:
		generatePowerShell(&b, cmds)
	default:
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedShell, shell, strings.Join(shells, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: completion takes a single shell name", ErrUsage)
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# bash completion for cover\n\n")
	b.WriteString("shopt -s extglob\n\n")
	b.WriteString("_cover_completions() {\n")
	b.WriteString("    local cur prev\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(b, "        COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("        return 0\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${COMP_WORDS[1]}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(b, "    %s)\n", c.Name)
		if len(c.Flags) > 0 {
			b.WriteString("        case \"$prev\" in\n")
			for _, f := range c.Flags {
				if f.Type == flagBool {
					continue
				}
				fmt.Fprintf(b, "        %s)\n", strings.Join(flagSpellings(f), "|"))
				fmt.Fprintf(b, "            %s\n", bashValueReply(f))
				b.WriteString("            return 0\n")
				b.WriteString("            ;;\n")
			}
			b.WriteString("        esac\n")
			b.WriteString("        if [[ \"$cur\" == -* ]]; then\n")
			fmt.Fprintf(b, "            COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(flagWords(c.Flags), " "))
			b.WriteString("            return 0\n")
			b.WriteString("        fi\n")
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(b, "        COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(c.Args, " "))
		case c.TakesFiles:
			fmt.Fprintf(b, "        COMPREPLY=( %s )\n", bashFileGen(c.FilePattern))
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -o filenames -F _cover_completions cover\n")
}

func bashValueReply(f flagDef) string {
	switch f.Type {
	case flagEnum:
		return fmt.Sprintf("COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )", strings.Join(f.Values, " "))
	case flagDir:
		return "COMPREPLY=( $(compgen -d -- \"$cur\") )"
	case flagFile:
		return fmt.Sprintf("COMPREPLY=( %s )", bashFileGen(f.FileGlob))
	default:
		return "COMPREPLY=()"
	}
}

func bashFileGen(glob string) string {
	exts := globExts(glob)
	if len(exts) == 0 {
		return "$(compgen -f -- \"$cur\")"
	}
	return fmt.Sprintf("$(compgen -f -X '!*.@(%s)' -- \"$cur\")", strings.Join(exts, "|"))
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

func generateZsh(b *strings.Builder, cmds []commandDef) {
	b.WriteString("#compdef cover\n\n")
	b.WriteString("_cover() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe -t commands 'cover command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    local cmd=${words[2]}\n")
	b.WriteString("    shift words\n")
	b.WriteString("    (( CURRENT-- ))\n\n")
	b.WriteString("    case $cmd in\n")

	for _, c := range cmds {
		var specs []string
		for _, f := range c.Flags {
			specs = append(specs, zshFlagSpec(f))
		}
		switch {
		case len(c.Args) > 0:
			specs = append(specs, fmt.Sprintf("'1:argument:(%s)'", strings.Join(c.Args, " ")))
		case c.TakesFiles:
			specs = append(specs, fmt.Sprintf("'*:file:%s'", zshFileAction(c.FilePattern)))
		}

		fmt.Fprintf(b, "        %s)\n", c.Name)
		if len(specs) == 0 {
			b.WriteString("            return 0\n")
		} else {
			b.WriteString("            _arguments -s \\\n")
			for i, s := range specs {
				sep := " \\"
				if i == len(specs)-1 {
					sep = ""
				}
				fmt.Fprintf(b, "                %s%s\n", s, sep)
			}
		}
		b.WriteString("            ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _cover cover\n")
}

func zshFlagSpec(f flagDef) string {
	action := ""
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagDir:
		action = ":directory:_files -/"
	case flagFile:
		action = ":file:" + zshFileAction(f.FileGlob)
	default:
		action = ":value: "
	}

	desc := "[" + zshEscape(f.Desc) + "]"
	switch {
	case f.Repeat:
		return fmt.Sprintf("'*--%s%s%s'", f.Long, desc, action)
	case f.Short != "":
		return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
	default:
		return fmt.Sprintf("'--%s%s%s'", f.Long, desc, action)
	}
}

func zshFileAction(glob string) string {
	exts := globExts(glob)
	if len(exts) == 0 {
		return "_files"
	}
	return fmt.Sprintf("_files -g \"*.(%s)\"", strings.Join(exts, "|"))
}

func zshEscape(s string) string {
	return strings.NewReplacer(
		"'", `'\''`,
		"[", `\[`,
		"]", `\]`,
		":", `\:`,
	).Replace(s)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func generateFish(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# fish completion for cover\n\n")
	b.WriteString("function __fish_cover_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_cover_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c cover -f\n\n")

	for _, c := range cmds {
		fmt.Fprintf(b, "complete -c cover -n __fish_cover_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}

	for _, c := range cmds {
		cond := fmt.Sprintf("-n '__fish_cover_using_command %s'", c.Name)
		b.WriteString("\n")
		for _, f := range c.Flags {
			parts := []string{"complete -c cover", cond}
			if f.Short != "" {
				parts = append(parts, "-s "+f.Short)
			}
			parts = append(parts, "-l "+f.Long)
			switch f.Type {
			case flagBool:
			case flagEnum:
				parts = append(parts, fmt.Sprintf("-x -a '%s'", strings.Join(f.Values, " ")))
			case flagDir:
				parts = append(parts, "-x -a '(__fish_complete_directories)'")
			case flagFile:
				parts = append(parts, "-r -F")
				if a := fishSuffixArgs(f.FileGlob); a != "" {
					parts = append(parts, "-a "+a)
				}
			default:
				parts = append(parts, "-x")
			}
			parts = append(parts, fmt.Sprintf("-d '%s'", fishEscape(f.Desc)))
			b.WriteString(strings.Join(parts, " ") + "\n")
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(b, "complete -c cover %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		case c.TakesFiles:
			fmt.Fprintf(b, "complete -c cover %s -F -a %s\n", cond, fishSuffixArgs(c.FilePattern))
		}
	}
}

func fishSuffixArgs(glob string) string {
	exts := globExts(glob)
	if len(exts) == 0 {
		return ""
	}
	calls := make([]string, len(exts))
	for i, e := range exts {
		calls[i] = fmt.Sprintf("(__fish_complete_suffix .%s)", e)
	}
	return "\"" + strings.Join(calls, " ") + "\""
}

func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func generatePowerShell(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# powershell completion for cover\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName cover -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $elements = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })\n")
	b.WriteString("    $commands = [ordered]@{\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "        '%s' = '%s'\n", c.Name, psEscape(c.Desc))
	}
	b.WriteString("    }\n\n")
	b.WriteString("    if ($elements.Count -lt 2 -or ($elements.Count -eq 2 -and $wordToComplete)) {\n")
	b.WriteString("        $commands.GetEnumerator() | Where-Object { $_.Key -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $prev = if ($wordToComplete) { $elements[-2] } else { $elements[-1] }\n")
	b.WriteString("    $flags = @{}\n")
	b.WriteString("    $values = @{}\n")
	b.WriteString("    $words = @()\n\n")
	b.WriteString("    switch ($elements[1]) {\n")

	for _, c := range cmds {
		fmt.Fprintf(b, "        '%s' {\n", c.Name)
		for _, f := range c.Flags {
			fmt.Fprintf(b, "            $flags['--%s'] = '%s'\n", f.Long, psEscape(f.Desc))
			if f.Type == flagEnum {
				for _, name := range flagSpellings(f) {
					fmt.Fprintf(b, "            $values['%s'] = @(%s)\n", name, psList(f.Values))
				}
			}
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(b, "            $words = @(%s)\n", psList(c.Args))
		}
		b.WriteString("        }\n")
	}

	b.WriteString("    }\n\n")
	b.WriteString("    if ($values.ContainsKey($prev)) {\n")
	b.WriteString("        $values[$prev] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n")
	b.WriteString("    if ($wordToComplete -like '-*') {\n")
	b.WriteString("        $flags.GetEnumerator() | Where-Object { $_.Key -like \"$wordToComplete*\" } | Sort-Object Key | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterName', $_.Value)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n")
	b.WriteString("    $words | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
}

func psEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func psList(vals []string) string {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = "'" + psEscape(v) + "'"
	}
	return strings.Join(quoted, ", ")
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// flagSpellings returns "--long" and, when set, "-s".
func flagSpellings(f flagDef) []string {
	if f.Short == "" {
		return []string{"--" + f.Long}
	}
	return []string{"--" + f.Long, "-" + f.Short}
}

func flagWords(flags []flagDef) []string {
	var words []string
	for _, f := range flags {
		words = append(words, flagSpellings(f)...)
	}
	return words
}

// globExts turns "*.yaml,*.yml" into [yaml yml].
func globExts(glob string) []string {
	var exts []string
	for _, g := range strings.Split(glob, ",") {
		if e := strings.TrimPrefix(strings.TrimSpace(g), "*."); e != "" && e != "*" {
			exts = append(exts, e)
		}
	}
	return exts
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cover completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(cover completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(cover completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    cover completion fish > ~/.config/fish/completions/cover.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    cover completion powershell | Out-String | Invoke-Expression")
}
