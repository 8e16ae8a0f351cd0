// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PIE Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gargoilxd/pie/internal/kb"
	"github.com/gargoilxd/pie/internal/term"
)

func TestDumpCmdProperties(t *testing.T) {
	cmd := NewDumpCmd()
	assert.Equal(t, "dump", cmd.Use)
}

func TestDumpCmdRejectsUnsupportedFormat(t *testing.T) {
	cmd := NewDumpCmd()
	cmd.SetArgs([]string{"--format", "json"})
	require.Error(t, cmd.Execute())
}

func TestDumpCmdEncodesAxiomaticFactsAndRuleCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.txt")
	require.NoError(t, os.WriteFile(path, []byte("has_ammo.\nplayer_nearby.\nhas_ammo & player_nearby -> should_attack.\n"), 0o644))

	cmd := NewDumpCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--file", path})

	require.NoError(t, cmd.Execute())

	var dump kbDump
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &dump))
	assert.ElementsMatch(t, []string{"has_ammo", "player_nearby"}, dump.AxiomaticFacts)
	assert.Empty(t, dump.WorkingMemory)
	assert.Equal(t, 1, dump.RuleCount)
}

func TestDumpCmdWithInferPopulatesWorkingMemory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.txt")
	require.NoError(t, os.WriteFile(path, []byte("has_ammo.\nplayer_nearby.\nhas_ammo & player_nearby -> should_attack.\n"), 0o644))

	cmd := NewDumpCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--file", path, "--infer"})

	require.NoError(t, cmd.Execute())

	var dump kbDump
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &dump))
	assert.Contains(t, dump.WorkingMemory, "should_attack")
}

func TestDumpCmdMissingFileIsError(t *testing.T) {
	cmd := NewDumpCmd()
	cmd.SetArgs([]string{"--file", filepath.Join(t.TempDir(), "nope.txt")})
	require.Error(t, cmd.Execute())
}

func TestToDumpSplitsAxiomaticAndWorkingMemory(t *testing.T) {
	k := kb.New()
	fact, err := term.Parse("has_ammo")
	require.NoError(t, err)
	k.AddAxiomaticFact(fact)
	derived, err := term.Parse("should_attack")
	require.NoError(t, err)
	k.AddFact(derived)

	dump := toDump(k)
	assert.Equal(t, []string{"has_ammo"}, dump.AxiomaticFacts)
	assert.Equal(t, []string{"should_attack"}, dump.WorkingMemory)
}
