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
	"fmt"
	"strconv"
	"strings"

	"github.com/awslabs/ar-dyntaint/analysis/taint"
	"github.com/google/shlex"
)

// Command contains the parsed arguments and name of a command in the command-line tool
type Command struct {
	// Name is the name of the command (e.g. exit, taint, ...)
	Name string

	// Args contains all the non-named arguments (arguments without keys)
	Args []string

	// NamedArgs contains all the named arguments (arguments --key value)
	NamedArgs map[string]string

	// Flags contains all the flags (arguments -key)
	Flags map[string]bool
}

// ParseCommand parses a command of the form "command arg1 arg2 --name1 namedArg1 -flag1 arg3"
//   - the first string is the name of the command
//   - every string preceded by -- is a named argument, and the next string will be parsed as its value
//     A valid named argument MUST have a value.
//   - every string preceded by - but not -- is a flag,
//   - every other string will be a non named argument
func ParseCommand(cmd string) Command {
	command := Command{
		Name:      "",
		Args:      nil,
		NamedArgs: map[string]string{},
		Flags:     map[string]bool{},
	}

	tokens, err := shlex.Split(cmd)
	if err != nil {
		return command
	}

	flagCmdName := false
	flagArgName := false
	argName := ""

	for _, token := range tokens {
		if !flagCmdName {
			command.Name = token
			flagCmdName = true
		} else if name, foundNamed := strings.CutPrefix(token, "--"); foundNamed && !flagArgName {
			argName = name
			flagArgName = true
		} else if flag, foundFlag := strings.CutPrefix(token, "-"); foundFlag && !flagArgName {
			command.Flags[flag] = true
		} else if flagArgName {
			command.NamedArgs[argName] = token
			flagArgName = false
		} else {
			command.Args = append(command.Args, token)
		}
	}

	return command
}

// ParseUint parses a decimal or 0x-prefixed hexadecimal number
func ParseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 0, 64)
}

// ParseLocation parses a location of the engine: a register name, a memory range [addr] or [addr:size], or an
// immediate #value.
func ParseLocation(e *taint.Engine, s string) (taint.Operand, error) {
	switch {
	case strings.HasPrefix(s, "#"):
		v, err := ParseUint(s[1:])
		if err != nil {
			return taint.Operand{}, fmt.Errorf("invalid immediate %q", s)
		}
		return taint.ImmediateOperand(v), nil
	case strings.HasPrefix(s, "["):
		inner, ok := strings.CutSuffix(s[1:], "]")
		if !ok {
			return taint.Operand{}, fmt.Errorf("missing ] in %q", s)
		}
		addrStr, sizeStr, hasSize := strings.Cut(inner, ":")
		addr, err := ParseUint(strings.TrimSpace(addrStr))
		if err != nil {
			return taint.Operand{}, fmt.Errorf("invalid address in %q", s)
		}
		size := uint64(1)
		if hasSize {
			size, err = ParseUint(strings.TrimSpace(sizeStr))
			if err != nil {
				return taint.Operand{}, fmt.Errorf("invalid size in %q", s)
			}
		}
		m, err := e.NewMemoryAccess(addr, size)
		if err != nil {
			return taint.Operand{}, err
		}
		return taint.MemoryOperand(m), nil
	default:
		r, err := e.Arch.Lookup(s)
		if err != nil {
			return taint.Operand{}, err
		}
		return taint.RegisterOperand(r.ID), nil
	}
}
