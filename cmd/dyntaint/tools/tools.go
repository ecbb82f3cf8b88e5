// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tools contains utility types and functions for the dyntaint tool frontends.
package tools

import (
	"flag"
	"fmt"
	"os"

	"github.com/awslabs/ar-dyntaint/analysis/config"
)

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath *string
	Verbose    *bool
	Arch       *string
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// This is useful for creating sub-commands that have the flags -config, -verbose and -arch but need other flags
// in addition.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := cmd.String("config", "", "config file path for the taint engine")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard output")
	arch := cmd.String("arch", "", "architecture of the code (x86 or x86-64), overrides the config")
	return UnparsedCommonFlags{
		FlagSet:    cmd,
		ConfigPath: configPath,
		Verbose:    verbose,
		Arch:       arch,
	}
}

// CommonFlags represents a parsed CLI sub-command flags.
// E.g., for the command `dyntaint run ...`, "run" is the sub-command.
type CommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath string
	Verbose    bool
	Arch       string
}

// Parse parses args and returns the parsed common flags
func (u UnparsedCommonFlags) Parse(args []string) (CommonFlags, error) {
	if err := u.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %w", u.FlagSet.Name(), args, err)
	}
	return CommonFlags{
		FlagSet:    u.FlagSet,
		ConfigPath: *u.ConfigPath,
		Verbose:    *u.Verbose,
		Arch:       *u.Arch,
	}, nil
}

// NewCommonFlags returns a parsed flag set with a given name.
// Returns an error if args are invalid.
// Prints cmdUsage along with flag docs as the --help message.
func NewCommonFlags(name string, args []string, cmdUsage string) (CommonFlags, error) {
	flags := NewUnparsedCommonFlags(name)
	SetUsage(flags.FlagSet, cmdUsage)
	return flags.Parse(args)
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// LoadConfig loads the config file from configPath, or returns the default config if configPath is empty. The
// command-line flags override the options of the config.
func LoadConfig(flags CommonFlags) (*config.Config, error) {
	cfg := config.NewDefault()
	if flags.ConfigPath != "" {
		config.SetGlobalConfig(flags.ConfigPath)
		c, err := config.LoadGlobal()
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", flags.ConfigPath, err)
		}
		cfg = c
	}
	if flags.Verbose {
		cfg.LogLevel = int(config.DebugLevel)
	}
	if flags.Arch != "" {
		cfg.Arch = flags.Arch
		if _, err := cfg.Architecture(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
