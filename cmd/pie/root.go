// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PIE Contributors

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gargoilxd/pie/internal/config"
	"github.com/gargoilxd/pie/internal/engine"
	"github.com/gargoilxd/pie/internal/loader"
	"github.com/gargoilxd/pie/internal/logging"
	"github.com/gargoilxd/pie/internal/repl"
	"github.com/gargoilxd/pie/internal/term"
	"github.com/gargoilxd/pie/pkg/errutil"
)

// defaultFile is the knowledge base path used when none is given.
const defaultFile = "./examples/default.txt"

const fileFormatHelp = `
FILE FORMAT:
  Facts:    parent(anna, bob).
  Rules:    parent(x?, y?) & parent(y?, z?) -> grandparent(x?, z?).
  Comments: Lines starting with #
`

type rootFlags struct {
	file  string
	debug bool
	query bool
	prove string
}

// NewRootCmd builds the "pie [path]" root command: loads a knowledge base
// and either runs the one-shot infer, enters the REPL (--query), or
// proves a single fact (--prove).
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "pie [path]",
		Short: "A forward/backward Horn-clause inference engine",
		Long:  "Usage: pie <path> [OPTIONS]" + fileFormatHelp,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.file = args[0]
			}
			return runRoot(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "path to knowledge base file")
	cmd.Flags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug mode")
	cmd.Flags().BoolVarP(&flags.query, "query", "q", false, "enter interactive query mode, type 'quit' to exit")
	cmd.Flags().StringVarP(&flags.prove, "prove", "p", "", "prove a specific fact")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewDumpCmd())

	return cmd
}

func runRoot(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return oops.Code("CONFIG_LOAD_ERROR").Wrap(err)
	}
	if flags.debug {
		cfg.LogLevel = slog.LevelDebug
	}
	logger := logging.Setup("pie", version, cfg.LogFormat, cfg.LogLevel, os.Stderr)

	path := flags.file
	if path == "" {
		path = defaultFile
	}
	kbase, err := loader.LoadFile(path)
	if err != nil {
		errutil.LogError(logger, "failed to load knowledge base file", err)
		return oops.Code("LOADER_IO_ERROR").With("path", path).Wrapf(err, "loading %q", path)
	}

	e := engine.New(kbase, cfg.EngineOptions(logger))
	ctx := cmd.Context()

	switch {
	case flags.query:
		cmd.Println("PIE 0.1.0")
		cmd.Println("Type 'quit' to exit.")
		if err := e.Infer(ctx); err != nil {
			return err
		}
		return repl.Run(ctx, e, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())

	case flags.prove != "":
		fact, err := term.Parse(flags.prove)
		if err != nil {
			return oops.Code("TERM_PARSE_ERROR").With("fact", flags.prove).Wrapf(err, "parsing --prove fact")
		}
		proven, err := e.Prove(ctx, fact)
		if err != nil {
			return err
		}
		cmd.Println(fmt.Sprintf("%s is %t", fact.String(), proven))
		return nil

	default:
		if err := e.Infer(ctx); err != nil {
			return err
		}
		memory := kbase.WorkingMemory()
		if len(memory) == 0 {
			cmd.Println("No new facts")
			return nil
		}
		cmd.Println("New facts:")
		for _, f := range memory {
			cmd.Println("  " + f.String())
		}
		return nil
	}
}
