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

/*
Package cli implements the dyntaint interactive CLI: a terminal application that lets you manipulate the taint state
of registers and memory directly, apply the taint operators, and process machine code instruction by instruction.

Usage:

	dyntaint cli [flags]

The flags are:

	-verbose=false
		verbose mode, overrides the log-level option specified in the config file
	-config config-file.yaml
		a configuration file for the taint engine. The seeds and register values of the config are loaded at start
		and by the reset command.
	-arch name
		the architecture, x86 or x86-64, overriding the config

# Locations

Commands take locations as arguments. A location is a register name (rax, eax, ah, ...), a single memory byte
[0x2000], a memory range [0x2000:4] of 4 bytes starting at 0x2000, or, for sources only, an immediate #5.
Registers are tracked per parent register: tainting al taints rax.

# Basic Commands

	help             print a list of the commands, with short help messages for each

	exit             exit exits the program gracefully

	state            show a summary of the state: architecture, mode, number of instructions processed

	reset            clear all taint, then reload the seeds and register values of the config

	mode [on|off]    turn the per-instruction taint propagation on or off, or print the current mode

# Taint State

	taint LOC        mark LOC as tainted

	untaint LOC      mark LOC as clean

	tainted? LOC     print whether LOC is tainted. For memory ranges, also print whether all bytes are tainted.

	regs             list the tainted registers and the concrete register values

	mem              list the tainted memory ranges

# Propagation

	assign DST SRC   apply the assignment operator: DST takes the taint of SRC

	union DST SRC    apply the union operator: DST is tainted if DST or SRC is tainted

	setreg REG VAL   set the concrete value of a register, used to compute the addresses of memory operands

	exec HEX [--addr A]
	                 decode and process the instructions given as hexadecimal bytes, at address A. Without --addr,
	                 the code is placed right after the previously executed code.

	flows [LOC]      list the locations that tainted data flowed into from LOC, or all flows. Requires the track-flows
	                 option in the config.
*/
package cli
