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

package taint

import (
	"fmt"
)

// Instruction is the taint-relevant view of an instruction, as produced by a semantics layer.
type Instruction struct {
	// Address is the address of the instruction
	Address uint64

	// Text is the disassembly of the instruction, used for reporting only
	Text string

	// Move is true when the instruction copies its source into its destinations. A move with several sources
	// combines them like any other instruction.
	Move bool

	// Operands lists the operands with their roles, sources in the order they are read
	Operands []Operand
}

// Sources returns the source operands, in declaration order
func (inst *Instruction) Sources() []Operand {
	return inst.withRole(RoleSource)
}

// Destinations returns the destination operands, in declaration order
func (inst *Instruction) Destinations() []Operand {
	return inst.withRole(RoleDestination)
}

func (inst *Instruction) withRole(r Role) []Operand {
	var ops []Operand
	for _, op := range inst.Operands {
		if op.Role == r {
			ops = append(ops, op)
		}
	}
	return ops
}

// Propagation records one operator application performed while processing an instruction
type Propagation struct {
	Operator    Operator
	Destination Operand
	Source      Operand

	// SourceTainted is the taint of the source when the operator was applied
	SourceTainted bool

	// Tainted is the taint of the destination after the operator was applied
	Tainted bool
}

// ProcessInstruction propagates taint through inst. For every destination, an assignment from the source is applied
// if inst is a move with a single source; otherwise every source is unioned into the destination, in order.
//
// The operands are all checked before any update, so an error leaves the engine unchanged. When the engine is
// disabled, nothing happens and no propagation is returned.
func (e *Engine) ProcessInstruction(inst *Instruction) ([]Propagation, error) {
	if !e.enabled {
		return nil, nil
	}
	if err := e.checkInstruction(inst); err != nil {
		return nil, err
	}
	srcs := inst.Sources()
	dsts := inst.Destinations()
	if len(dsts) == 0 {
		return nil, nil
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("%w: destination without source at %#x", ErrMalformedInstruction, inst.Address)
	}
	family := Union
	if inst.Move && len(srcs) == 1 {
		family = Assignment
	}

	props := make([]Propagation, 0, len(dsts)*len(srcs))
	for _, dst := range dsts {
		for _, src := range srcs {
			srcTainted, err := e.IsTainted(src)
			if err != nil {
				return props, err
			}
			t, err := e.Apply(family, dst, src)
			if err != nil {
				return props, err
			}
			props = append(props, Propagation{
				Operator:      Operator{Family: family, Destination: dst.Kind, Source: src.Kind},
				Destination:   dst,
				Source:        src,
				SourceTainted: srcTainted,
				Tainted:       t,
			})
		}
	}
	return props, nil
}

func (e *Engine) checkInstruction(inst *Instruction) error {
	if inst == nil {
		return fmt.Errorf("%w: nil instruction", ErrMalformedInstruction)
	}
	for i, op := range inst.Operands {
		switch op.Role {
		case RoleStructural:
			continue
		case RoleSource:
		case RoleDestination:
			if op.Kind == KindImmediate {
				return fmt.Errorf("%w: immediate destination (operand %d) at %#x",
					ErrMalformedInstruction, i, inst.Address)
			}
		default:
			return fmt.Errorf("%w: operand %d at %#x has no role", ErrMalformedInstruction, i, inst.Address)
		}
		if err := e.CheckOperand(op); err != nil {
			return fmt.Errorf("operand %d at %#x: %w", i, inst.Address, err)
		}
	}
	return nil
}
