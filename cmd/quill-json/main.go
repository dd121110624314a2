// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

// quill-json validates and pretty-prints JSON documents from the
// command line. It reads one document, reformats it, and writes the
// result:
//
//	quill-json data.json              # pretty-print to stdout
//	quill-json data.json out.json     # write the result to a file
//	curl -s api/things | quill-json   # stdin when no infile is given
//
// Formatting is 4-space indentation by default; --indent, --tab, and
// --compact select other layouts, --sort-keys orders object members,
// and --no-ensure-ascii emits non-ASCII characters raw instead of as
// \uXXXX escapes. Output going to a terminal is syntax-highlighted
// unless --no-color is given.
//
// Exit status is 0 on success, 1 when the input is not valid JSON,
// and 2 for usage errors.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/quill-format/quill/lib/jsontext"
	"github.com/quill-format/quill/lib/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// formatOptions is the subset of flag state that shapes the output
// text, separated from the I/O concerns so it can be exercised
// directly in tests.
type formatOptions struct {
	sortKeys    bool
	indentWidth int
	tab         bool
	compact     bool
	ensureASCII bool
}

// reformat decodes one JSON document and re-encodes it under the
// requested layout. Member order from the source is preserved unless
// sorting is requested.
func reformat(input string, options formatOptions) (string, error) {
	decoder := jsontext.NewDecoder(jsontext.DecoderOptions{
		ObjectPairsHook: func(pairs []jsontext.Member) (any, error) {
			return jsontext.Object(pairs), nil
		},
	})
	value, err := decoder.Decode(input)
	if err != nil {
		return "", err
	}

	encoderOptions := jsontext.EncoderOptions{
		SortKeys:   options.sortKeys,
		RawUnicode: !options.ensureASCII,
	}
	switch {
	case options.compact:
		encoderOptions.Separators = &jsontext.Separators{Item: ",", Key: ":"}
	case options.tab:
		encoderOptions.Indent = jsontext.IndentText("\t")
	default:
		encoderOptions.Indent = jsontext.IndentSpaces(options.indentWidth)
	}
	return jsontext.NewEncoder(encoderOptions).Encode(value)
}

func run(args []string) int {
	var options formatOptions
	var noColor, forceColor bool

	flagSet := pflag.NewFlagSet("quill-json", pflag.ContinueOnError)
	flagSet.SetOutput(os.Stderr)
	flagSet.BoolVar(&options.sortKeys, "sort-keys", false, "sort object members by key")
	flagSet.IntVar(&options.indentWidth, "indent", 4, "spaces of indentation per level")
	flagSet.BoolVar(&options.tab, "tab", false, "indent with tabs instead of spaces")
	flagSet.BoolVar(&options.compact, "compact", false, "single line, no redundant whitespace")
	noEnsureASCII := flagSet.Bool("no-ensure-ascii", false, "emit non-ASCII characters raw instead of \\uXXXX escapes")
	flagSet.BoolVar(&noColor, "no-color", false, "never colorize output")
	flagSet.BoolVar(&forceColor, "color", false, "colorize output even when not a terminal")
	showVersion := flagSet.Bool("version", false, "print version and exit")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: quill-json [flags] [infile [outfile]]\n\nFlags:\n%s", flagSet.FlagUsages())
	}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			flagSet.Usage()
			return 0
		}
		return 2
	}
	if help, _ := flagSet.GetBool("help"); help {
		flagSet.Usage()
		return 0
	}
	if *showVersion {
		fmt.Printf("quill-json %s\n", version.Info())
		return 0
	}
	options.ensureASCII = !*noEnsureASCII
	if options.tab && options.compact {
		fmt.Fprintln(os.Stderr, "quill-json: --tab and --compact are mutually exclusive")
		return 2
	}

	positional := flagSet.Args()
	if len(positional) > 2 {
		fmt.Fprintf(os.Stderr, "quill-json: unexpected argument: %s\n", positional[2])
		return 2
	}
	inPath, outPath := "-", "-"
	if len(positional) > 0 {
		inPath = positional[0]
	}
	if len(positional) > 1 {
		outPath = positional[1]
	}

	input, err := readInput(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "quill-json: %v\n", err)
		return 1
	}

	output, err := reformat(input, options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "quill-json: %v\n", err)
		return 1
	}
	output += "\n"

	if outPath != "-" {
		if err := os.WriteFile(outPath, []byte(output), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "quill-json: %v\n", err)
			return 1
		}
		return 0
	}

	if colorize(noColor, forceColor) {
		// Highlighting failure falls back to plain output; the
		// document itself is already known good.
		if err := quick.Highlight(os.Stdout, output, "json", "terminal256", "monokai"); err == nil {
			return 0
		}
	}
	if _, err := io.WriteString(os.Stdout, output); err != nil {
		fmt.Fprintf(os.Stderr, "quill-json: %v\n", err)
		return 1
	}
	return 0
}

// readInput loads the whole document from the named file, or from
// stdin when the name is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// colorize decides whether stdout gets syntax highlighting: only a
// terminal that advertises color support, unless the flags force the
// decision one way or the other.
func colorize(noColor, forceColor bool) bool {
	if noColor {
		return false
	}
	if forceColor {
		return true
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}
