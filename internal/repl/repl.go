// Package repl implements the interactive query loop: read a term pattern,
// print its matching bindings, repeat until the user quits.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gargoilxd/pie/internal/engine"
	"github.com/gargoilxd/pie/internal/term"
)

const prompt = "> "

// Run drives the query loop: read a line from in, echo prompt to out,
// terminate on "quit"/"exit" (case-insensitive), skip blank lines, parse
// the rest as a term and print e.Query's formatted result indented by
// three spaces; parse errors go to errOut without terminating the loop.
func Run(ctx context.Context, e *engine.Engine, in io.Reader, out, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)

		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			return nil
		}
		if line == "" {
			continue
		}

		pattern, err := term.Parse(line)
		if err != nil {
			fmt.Fprintf(errOut, "  Error: %v\n\n", err)
			continue
		}

		results := e.Query(ctx, pattern)
		formatted := engine.FormatQueryResult(pattern, results)
		fmt.Fprintf(out, "   %s\n", strings.ReplaceAll(formatted, "\n", "\n   "))
	}
}
