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

// Package run implements the dyntaint run command, which propagates taint through raw machine code.
package run

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/awslabs/ar-dyntaint/analysis"
	"github.com/awslabs/ar-dyntaint/analysis/config"
	"github.com/awslabs/ar-dyntaint/analysis/taint"
	"github.com/awslabs/ar-dyntaint/analysis/tracer"
	"github.com/awslabs/ar-dyntaint/cmd/dyntaint/tools"
	"github.com/awslabs/ar-dyntaint/internal/formatutil"
)

// Usage for the run command
const Usage = ` Propagate taint through raw machine code.
Usage:
  dyntaint run [options] <code file>
  dyntaint run [options] -hex <code bytes>
Examples:
  % dyntaint run -config config.yaml code.bin
  % dyntaint run -arch x86 -hex "8d 04 06"
`

// Flags represents the parsed flags of the run command
type Flags struct {
	tools.CommonFlags
	hex  string
	base uint64
}

// NewFlags returns the parsed flags for the run command with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("run")
	hexCode := flags.FlagSet.String("hex", "", "code given as hexadecimal bytes instead of a file")
	base := flags.FlagSet.Uint64("base", 0, "address of the first instruction, overrides code-base in the config")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, hex: *hexCode, base: *base}, nil
}

// ReadCode returns the code designated by the flags: the -hex bytes, or the content of the file argument
func ReadCode(flags Flags) ([]byte, error) {
	if flags.hex != "" {
		b, err := hex.DecodeString(strings.NewReplacer(" ", "", "\n", "", "\t", "").Replace(flags.hex))
		if err != nil {
			return nil, fmt.Errorf("invalid hex code: %w", err)
		}
		return b, nil
	}
	if flags.FlagSet.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one code file, got %d arguments", flags.FlagSet.NArg())
	}
	b, err := os.ReadFile(flags.FlagSet.Arg(0))
	if err != nil {
		return nil, fmt.Errorf("could not read code: %w", err)
	}
	return b, nil
}

// Run runs the tracer over the code with flags, printing every step on the standard output.
func Run(flags Flags) error {
	cfg, err := tools.LoadConfig(flags.CommonFlags)
	if err != nil {
		return err
	}
	if flags.base != 0 {
		cfg.CodeBase = flags.base
	}
	code, err := ReadCode(flags)
	if err != nil {
		return err
	}
	logger := config.NewLogGroup(cfg)
	logger.Infof(formatutil.Faint("dyntaint run - " + analysis.Version))

	t, err := tracer.New(cfg, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := t.Run(ctx, code, cfg.CodeBase)
	if res != nil {
		PrintSteps(os.Stdout, t, res.Steps)
		PrintState(os.Stdout, t)
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	if cfg.ReportTaint {
		if _, err := t.WriteReport(cfg.ReportsDir); err != nil {
			return err
		}
	}
	return nil
}

// PrintSteps prints each step with the taint of its destinations
func PrintSteps(w io.Writer, t *tracer.Tracer, steps []tracer.Step) {
	for _, step := range steps {
		if step.Unsupported != nil {
			fmt.Fprintf(w, "%s  %-32s %s\n", formatutil.Hex(step.Address), step.Text, formatutil.Yellow("unsupported"))
			continue
		}
		var effects []string
		seen := map[string]bool{}
		for _, p := range step.Propagations {
			loc := t.Location(p.Destination)
			if seen[loc] {
				continue
			}
			seen[loc] = true
			effects = append(effects, fmt.Sprintf("%s=%s", loc, formatutil.Taint(destinationTaint(t, p))))
		}
		fmt.Fprintf(w, "%s  %-32s %s\n", formatutil.Hex(step.Address), step.Text, strings.Join(effects, " "))
	}
}

// destinationTaint is the taint of the destination after the last propagation into it
func destinationTaint(t *tracer.Tracer, p taint.Propagation) bool {
	b, err := t.Engine.IsTainted(p.Destination)
	return err == nil && b
}

// PrintState prints the tainted registers and memory ranges
func PrintState(w io.Writer, t *tracer.Tracer) {
	report := t.Report()
	fmt.Fprintf(w, "%s %s\n", formatutil.Bold("Tainted registers:"), strings.Join(report.TaintedRegisters, ", "))
	var ranges []string
	for _, m := range t.Engine.TaintedRanges() {
		ranges = append(ranges, m.String())
	}
	fmt.Fprintf(w, "%s %s\n", formatutil.Bold("Tainted memory:"), strings.Join(ranges, ", "))
	if t.Flows != nil {
		for _, f := range t.Flows.Flows() {
			fmt.Fprintf(w, "  %s -> %s\n", f.From, f.To)
		}
		for _, c := range t.Flows.CyclicComponents() {
			fmt.Fprintf(w, "  %s %s\n", formatutil.Yellow("cycle:"), strings.Join(c, ", "))
		}
	}
}
