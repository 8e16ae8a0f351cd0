// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PIE Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gargoilxd/pie/internal/engine"
	"github.com/gargoilxd/pie/internal/kb"
	"github.com/gargoilxd/pie/internal/loader"
)

// kbDump is the YAML-serializable view of a KnowledgeBase snapshot:
// axiomatic facts, derived working memory, and rule count, rendered for
// inspection.
type kbDump struct {
	AxiomaticFacts []string `yaml:"axiomatic_facts"`
	WorkingMemory  []string `yaml:"working_memory"`
	RuleCount      int      `yaml:"rule_count"`
}

// NewDumpCmd builds "pie dump", serializing the loaded (and optionally
// inferred) knowledge base to YAML.
func NewDumpCmd() *cobra.Command {
	var file, format string
	var runInfer bool

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump the knowledge base as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDump(cmd, file, format, runInfer)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", defaultFile, "path to knowledge base file")
	cmd.Flags().StringVar(&format, "format", "yaml", "output format (only 'yaml' is supported)")
	cmd.Flags().BoolVar(&runInfer, "infer", false, "run infer() before dumping")
	return cmd
}

func runDump(cmd *cobra.Command, file, format string, runInfer bool) error {
	if format != "yaml" {
		return oops.Code("UNSUPPORTED_FORMAT").With("format", format).Errorf("only 'yaml' is supported")
	}

	kbase, err := loader.LoadFile(file)
	if err != nil {
		return oops.Code("LOADER_IO_ERROR").With("path", file).Wrapf(err, "loading %q", file)
	}
	if runInfer {
		e := engine.New(kbase, engine.Options{})
		if err := e.Infer(cmd.Context()); err != nil {
			return err
		}
	}

	dump := toDump(kbase)
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer enc.Close()
	if err := enc.Encode(dump); err != nil {
		return oops.Code("DUMP_ENCODE_ERROR").Wrapf(err, "encoding knowledge base dump")
	}
	return nil
}

func toDump(kbase *kb.KnowledgeBase) kbDump {
	facts := kbase.Facts()
	memory := kbase.WorkingMemory()
	axiomatic := make([]string, 0, len(facts)-len(memory))
	memorySet := make(map[string]bool, len(memory))
	for _, f := range memory {
		memorySet[f.String()] = true
	}
	for _, f := range facts {
		if !memorySet[f.String()] {
			axiomatic = append(axiomatic, f.String())
		}
	}
	workingMemory := make([]string, len(memory))
	for i, f := range memory {
		workingMemory[i] = f.String()
	}
	return kbDump{
		AxiomaticFacts: axiomatic,
		WorkingMemory:  workingMemory,
		RuleCount:      len(kbase.Rules()),
	}
}
