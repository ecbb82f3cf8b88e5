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

package cli

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/awslabs/ar-dyntaint/analysis/taint"
	"github.com/awslabs/ar-dyntaint/analysis/tracer"
	runcmd "github.com/awslabs/ar-dyntaint/cmd/dyntaint/run"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/term"
)

// serverState stores state information about the terminal. Not used to store taint information.
type serverState struct {
	ConfigPath string

	TermWidth int

	// NextAddress is the address used by exec when no address is given
	NextAddress uint64
}

var state = serverState{}

const (
	cmdAssignName  = "assign"
	cmdExecName    = "exec"
	cmdExitName    = "exit"
	cmdFlowsName   = "flows"
	cmdHelpName    = "help"
	cmdMemName     = "mem"
	cmdModeName    = "mode"
	cmdRegsName    = "regs"
	cmdResetName   = "reset"
	cmdSetRegName  = "setreg"
	cmdStateName   = "state"
	cmdTaintName   = "taint"
	cmdTaintedName = "tainted?"
	cmdUnionName   = "union"
	cmdUntaintName = "untaint"
)

func writeCmdHelp(tt *term.Terminal, name string, args string, help string) {
	writeFmt(tt, "\t- %s%s%s %s: %s\n", tt.Escape.Blue, name, tt.Escape.Reset, args, help)
}

// Help command
func cmdHelp(tt *term.Terminal, c *tracer.Tracer, _ Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdHelpName, "", "print help message")
		return false
	}
	writeFmt(tt, "Commands:\n")
	writeCmdHelp(tt, cmdHelpName, "", "print this message")
	names := maps.Keys(commands)
	slices.Sort(names)
	for _, name := range names {
		commands[name](tt, nil, Command{})
	}
	return false
}

func cmdExit(tt *term.Terminal, c *tracer.Tracer, _ Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdExitName, "", "exit the program")
		return false
	}
	return true
}

// cmdState prints information about the current state of the tool
func cmdState(tt *term.Terminal, c *tracer.Tracer, _ Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdStateName, "", "print information about the current state")
		return false
	}
	mode := "off"
	if c.Engine.Enabled() {
		mode = "on"
	}
	configPath := state.ConfigPath
	if configPath == "" {
		configPath = "none (defaults)"
	}
	writeFmt(tt, "Config path        : %s\n", configPath)
	writeFmt(tt, "Architecture       : %s\n", c.Arch.Name)
	writeFmt(tt, "Taint propagation  : %s\n", mode)
	writeFmt(tt, "# instructions     : %d\n", c.Processed())
	writeFmt(tt, "# tainted registers: %d\n", len(c.Engine.TaintedRegisters()))
	writeFmt(tt, "# tainted bytes    : %d\n", len(c.Engine.TaintedMemory()))
	writeFmt(tt, "Next exec address  : %#x\n", state.NextAddress)
	writeFmt(tt, "Flow tracking      : %t\n", c.Flows != nil)
	return false
}

func cmdReset(tt *term.Terminal, c *tracer.Tracer, _ Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdResetName, "", "clear all taint and reload the seeds of the config")
		return false
	}
	if err := c.Reset(); err != nil {
		WriteErr(tt, "Could not reload the config: %s", err)
		return false
	}
	state.NextAddress = c.Config.CodeBase
	WriteSuccess(tt, "Taint state reset.")
	return false
}

func cmdMode(tt *term.Terminal, c *tracer.Tracer, command Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdModeName, "[on|off]", "turn taint propagation on or off")
		return false
	}
	if len(command.Args) == 0 {
		writeFmt(tt, "Taint propagation is %s\n", map[bool]string{true: "on", false: "off"}[c.Engine.Enabled()])
		return false
	}
	switch command.Args[0] {
	case "on":
		c.Engine.Enable()
	case "off":
		c.Engine.Disable()
	default:
		WriteErr(tt, "mode should be on or off, not %q", command.Args[0])
		return false
	}
	WriteSuccess(tt, "Taint propagation turned %s.", command.Args[0])
	return false
}

// locations parses exactly n location arguments
func locations(tt *term.Terminal, c *tracer.Tracer, command Command, n int) ([]taint.Operand, bool) {
	if len(command.Args) != n {
		WriteErr(tt, "%s expects %d location(s), got %d", command.Name, n, len(command.Args))
		return nil, false
	}
	ops := make([]taint.Operand, n)
	for i, arg := range command.Args {
		op, err := ParseLocation(c.Engine, arg)
		if err != nil {
			WriteErr(tt, "%s", err)
			return nil, false
		}
		ops[i] = op
	}
	return ops, true
}

func setTaint(tt *term.Terminal, c *tracer.Tracer, command Command, tainted bool) {
	ops, ok := locations(tt, c, command, 1)
	if !ok {
		return
	}
	op := ops[0]
	var err error
	switch op.Kind {
	case taint.KindRegister:
		if tainted {
			err = c.Engine.TaintRegister(op.Register)
		} else {
			err = c.Engine.UntaintRegister(op.Register)
		}
	case taint.KindMemory:
		if tainted {
			err = c.Engine.TaintMemory(op.Memory)
		} else {
			err = c.Engine.UntaintMemory(op.Memory)
		}
	default:
		WriteErr(tt, "Immediates cannot be tainted.")
		return
	}
	if err != nil {
		WriteErr(tt, "%s", err)
		return
	}
	writeVerdict(tt, c.Location(op), tainted, "")
}

func cmdTaint(tt *term.Terminal, c *tracer.Tracer, command Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdTaintName, "LOC", "taint a register or memory range")
		return false
	}
	setTaint(tt, c, command, true)
	return false
}

func cmdUntaint(tt *term.Terminal, c *tracer.Tracer, command Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdUntaintName, "LOC", "untaint a register or memory range")
		return false
	}
	setTaint(tt, c, command, false)
	return false
}

func cmdTainted(tt *term.Terminal, c *tracer.Tracer, command Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdTaintedName, "LOC", "print whether a location is tainted")
		return false
	}
	ops, ok := locations(tt, c, command, 1)
	if !ok {
		return false
	}
	op := ops[0]
	b, err := c.Engine.IsTainted(op)
	if err != nil {
		WriteErr(tt, "%s", err)
		return false
	}
	detail := ""
	if op.Kind == taint.KindMemory && b {
		if detail, err = coverage(c.Engine, op.Memory); err != nil {
			WriteErr(tt, "%s", err)
			return false
		}
	}
	writeVerdict(tt, c.Location(op), b, detail)
	return false
}

func cmdRegs(tt *term.Terminal, c *tracer.Tracer, _ Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdRegsName, "", "list tainted registers and register values")
		return false
	}
	regs := c.Engine.TaintedRegisters()
	if len(regs) == 0 {
		WriteSuccess(tt, "No tainted register.")
	} else {
		writeFmt(tt, "Tainted registers:\n")
		writeEntries(tt, registerEntries(tt, regs, true), "  ")
	}
	values := c.Registers.Values()
	if len(values) > 0 {
		writeFmt(tt, "Register values:\n")
		names := maps.Keys(values)
		slices.Sort(names)
		for _, name := range names {
			writeFmt(tt, "  %-6s %#x\n", name, values[name])
		}
	}
	return false
}

func cmdMem(tt *term.Terminal, c *tracer.Tracer, _ Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdMemName, "", "list tainted memory ranges")
		return false
	}
	ranges := c.Engine.TaintedRanges()
	if len(ranges) == 0 {
		WriteSuccess(tt, "No tainted memory.")
		return false
	}
	writeRanges(tt, ranges)
	return false
}

func applyOperator(tt *term.Terminal, c *tracer.Tracer, command Command, f taint.Family) {
	ops, ok := locations(tt, c, command, 2)
	if !ok {
		return
	}
	b, err := c.Engine.Apply(f, ops[0], ops[1])
	if err != nil {
		WriteErr(tt, "%s", err)
		return
	}
	writeVerdict(tt, c.Location(ops[0]), b, "")
}

func cmdAssign(tt *term.Terminal, c *tracer.Tracer, command Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdAssignName, "DST SRC", "DST takes the taint of SRC")
		return false
	}
	applyOperator(tt, c, command, taint.Assignment)
	return false
}

func cmdUnion(tt *term.Terminal, c *tracer.Tracer, command Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdUnionName, "DST SRC", "DST is tainted if DST or SRC is tainted")
		return false
	}
	applyOperator(tt, c, command, taint.Union)
	return false
}

func cmdSetReg(tt *term.Terminal, c *tracer.Tracer, command Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdSetRegName, "REG VALUE", "set the concrete value of a register")
		return false
	}
	if len(command.Args) != 2 {
		WriteErr(tt, "setreg expects a register and a value")
		return false
	}
	v, err := ParseUint(command.Args[1])
	if err != nil {
		WriteErr(tt, "invalid value %q", command.Args[1])
		return false
	}
	if err := c.Registers.SetByName(command.Args[0], v); err != nil {
		WriteErr(tt, "%s", err)
		return false
	}
	WriteSuccess(tt, "%s = %#x", command.Args[0], v)
	return false
}

func cmdExec(tt *term.Terminal, c *tracer.Tracer, command Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdExecName, "HEX [--addr A]", "process the instructions given as hexadecimal bytes")
		return false
	}
	code, err := hex.DecodeString(strings.Join(command.Args, ""))
	if err != nil || len(code) == 0 {
		WriteErr(tt, "exec expects hexadecimal bytes")
		return false
	}
	addr := state.NextAddress
	if a, ok := command.NamedArgs["addr"]; ok {
		addr, err = ParseUint(a)
		if err != nil {
			WriteErr(tt, "invalid address %q", a)
			return false
		}
	}
	res, err := c.Run(context.Background(), code, addr)
	if res != nil {
		runcmd.PrintSteps(tt, c, res.Steps)
		var n int
		for _, s := range res.Steps {
			n += s.Length
		}
		state.NextAddress = addr + uint64(n)
	}
	if err != nil {
		WriteErr(tt, "%s", err)
	}
	return false
}

func cmdFlows(tt *term.Terminal, c *tracer.Tracer, command Command) bool {
	if c == nil {
		writeCmdHelp(tt, cmdFlowsName, "[LOC] [-c]", "list where tainted data flowed from LOC, or all flows")
		writeFmt(tt, "\t  Options:\n")
		writeFmt(tt, "\t    -c     list the cycles of the flow graph\n")
		return false
	}
	if c.Flows == nil {
		WriteErr(tt, "Flow tracking is off. Set track-flows in the config.")
		return false
	}
	if command.Flags["c"] {
		cycles := c.Flows.ElementaryCycles()
		for _, cycle := range cycles {
			writeFmt(tt, "  %s\n", strings.Join(cycle, " -> "))
		}
		WriteSuccess(tt, "(%d cycles)", len(cycles))
		return false
	}
	if len(command.Args) == 0 {
		for _, f := range c.Flows.Flows() {
			writeFmt(tt, "  %s -> %s\n", f.From, f.To)
		}
		WriteSuccess(tt, "(%d flows)", c.Flows.NumEdges())
		return false
	}
	ops, ok := locations(tt, c, command, 1)
	if !ok {
		return false
	}
	from := c.Location(ops[0])
	reached := c.FlowsFrom(from)
	if len(reached) == 0 {
		WriteSuccess(tt, "No flow from %s.", from)
		return false
	}
	writeFmt(tt, "%s flowed into:\n", from)
	for _, r := range reached {
		writeFmt(tt, "  %s\n", r)
	}
	return false
}
