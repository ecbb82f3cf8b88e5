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

// Package cli implements the interactive dyntaint CLI.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/awslabs/ar-dyntaint/analysis"
	"github.com/awslabs/ar-dyntaint/analysis/config"
	"github.com/awslabs/ar-dyntaint/analysis/tracer"
	"github.com/awslabs/ar-dyntaint/cmd/dyntaint/tools"
	"github.com/awslabs/ar-dyntaint/internal/formatutil"
	"golang.org/x/term"
)

// Usage for CLI
const Usage = `Interactive CLI for manipulating taint and processing instructions one at a time.
Usage:
  dyntaint cli [options]`

type commandFunc func(tt *term.Terminal, c *tracer.Tracer, command Command) bool

var commands = map[string]commandFunc{
	cmdAssignName:  cmdAssign,
	cmdExecName:    cmdExec,
	cmdExitName:    cmdExit,
	cmdFlowsName:   cmdFlows,
	cmdMemName:     cmdMem,
	cmdModeName:    cmdMode,
	cmdRegsName:    cmdRegs,
	cmdResetName:   cmdReset,
	cmdSetRegName:  cmdSetReg,
	cmdStateName:   cmdState,
	cmdTaintName:   cmdTaint,
	cmdTaintedName: cmdTainted,
	cmdUnionName:   cmdUnion,
	cmdUntaintName: cmdUntaint,
}

// Run runs a simple CLI-based stdin-stdout server to manipulate the taint engine.
func Run(flags tools.CommonFlags) error {
	cfg, err := tools.LoadConfig(flags)
	if err != nil {
		return err
	}
	state.ConfigPath = flags.ConfigPath
	state.NextAddress = cfg.CodeBase
	logger := config.NewLogGroup(cfg)
	t, err := tracer.New(cfg, logger)
	if err != nil {
		return err
	}
	fmt.Println(formatutil.Faint("dyntaint cli - " + analysis.Version))
	return run(t)
}

// run implements the command line tool, calling interpret for each command until the exit command is input
func run(c *tracer.Tracer) error {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("could not set terminal in raw mode: %w", err)
	}
	state.TermWidth, _, _ = term.GetSize(int(os.Stdin.Fd()))
	defer term.Restore(int(os.Stdin.Fd()), oldState)
	tt := term.NewTerminal(os.Stdin, "> ")
	c.Logger.SetAllOutput(tt)
	c.Logger.SetAllFlags(0) // no prefix
	tt.AutoCompleteCallback = autoComplete
	// Capture ctrl+c and exit by returning
	captureChan := make(chan os.Signal, 1)
	signal.Notify(captureChan, os.Interrupt)
	go exitOnReceive(captureChan, tt, oldState)
	// the infinite loop terminates when interpret returns true
	for {
		command, err := tt.ReadLine()
		if err != nil {
			return nil
		}
		if interpret(tt, c, strings.TrimSpace(command)) {
			return nil
		}
	}
}

// interpret returns true to stop
func interpret(tt *term.Terminal, c *tracer.Tracer, command string) bool {
	if command == "" {
		return false
	}
	cmd := ParseCommand(command)

	if cmd.Name == "" {
		return false
	}

	if f, ok := commands[cmd.Name]; ok {
		return f(tt, c, cmd)
	}
	if cmd.Name == cmdHelpName {
		cmdHelp(tt, c, cmd)
	} else {
		WriteErr(tt, "Command name %q not recognized.", cmd.Name)
		cmdHelp(tt, c, cmd)
	}
	return false
}

// autoComplete completes command names when tab is pressed on the first word
func autoComplete(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' || strings.Contains(line[:pos], " ") {
		return "", 0, false
	}
	var match string
	for name := range commands {
		if strings.HasPrefix(name, line[:pos]) {
			if match != "" {
				return "", 0, false
			}
			match = name
		}
	}
	if match == "" {
		return "", 0, false
	}
	return match + " " + line[pos:], len(match) + 1, true
}

func exitOnReceive(c chan os.Signal, tt *term.Terminal, oldState *term.State) {
	for range c {
		writeFmt(tt, formatutil.Red("Caught SIGINT, exiting!"))
		term.Restore(int(os.Stdin.Fd()), oldState)
		os.Exit(0)
	}
}
