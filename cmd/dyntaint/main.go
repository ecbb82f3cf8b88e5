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

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-dyntaint/analysis"
	"github.com/awslabs/ar-dyntaint/cmd/dyntaint/cli"
	"github.com/awslabs/ar-dyntaint/cmd/dyntaint/run"
	"github.com/awslabs/ar-dyntaint/cmd/dyntaint/tools"
)

const usage = `dyntaint: dynamic taint propagation for machine code
Usage:
  dyntaint [tool] [options] <code file>
Tools:
  - run: propagates taint through raw machine code and prints the taint state
  - cli: interactive terminal-like interface to the taint engine
Examples:
  Run the interactive CLI: dyntaint cli -config config.yaml
  Propagate taint through code: dyntaint run -config config.yaml code.bin
  Propagate taint through bytes: dyntaint run -arch x86 -hex "8d 04 06"`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "cli":
		flags, err := tools.NewCommonFlags("cli", args, cli.Usage)
		if err != nil {
			errExit(err)
		}
		if err := cli.Run(flags); err != nil {
			errExit(err)
		}
	case "run":
		flags, err := run.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := run.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
