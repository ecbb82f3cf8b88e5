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

	"github.com/awslabs/ar-dyntaint/analysis/arch"
)

// Family is a family of propagation operators
type Family uint8

const (
	// Assignment operators replace the taint of the destination by the taint of the source
	Assignment Family = iota
	// Union operators set the taint of the destination to the OR of its taint and the taint of the source
	Union
)

func (f Family) String() string {
	if f == Union {
		return "Union"
	}
	return "Assignment"
}

// Operator identifies a propagation operator by its family and the kinds of its operands
type Operator struct {
	Family      Family
	Destination OperandKind
	Source      OperandKind
}

func (o Operator) String() string {
	return fmt.Sprintf("taint%s%s%s", o.Family, o.Destination, o.Source)
}

type operatorFunc func(e *Engine, dst Operand, src Operand) (bool, error)

// operators is the dispatch table of Apply
var operators = map[Operator]operatorFunc{
	{Assignment, KindRegister, KindRegister}: func(e *Engine, dst Operand, src Operand) (bool, error) {
		return e.TaintAssignmentRegisterRegister(dst.Register, src.Register)
	},
	{Assignment, KindRegister, KindMemory}: func(e *Engine, dst Operand, src Operand) (bool, error) {
		return e.TaintAssignmentRegisterMemory(dst.Register, src.Memory)
	},
	{Assignment, KindRegister, KindImmediate}: func(e *Engine, dst Operand, _ Operand) (bool, error) {
		return e.TaintAssignmentRegisterImmediate(dst.Register)
	},
	{Assignment, KindMemory, KindRegister}: func(e *Engine, dst Operand, src Operand) (bool, error) {
		return e.TaintAssignmentMemoryRegister(dst.Memory, src.Register)
	},
	{Assignment, KindMemory, KindMemory}: func(e *Engine, dst Operand, src Operand) (bool, error) {
		return e.TaintAssignmentMemoryMemory(dst.Memory, src.Memory)
	},
	{Assignment, KindMemory, KindImmediate}: func(e *Engine, dst Operand, _ Operand) (bool, error) {
		return e.TaintAssignmentMemoryImmediate(dst.Memory)
	},
	{Union, KindRegister, KindRegister}: func(e *Engine, dst Operand, src Operand) (bool, error) {
		return e.TaintUnionRegisterRegister(dst.Register, src.Register)
	},
	{Union, KindRegister, KindMemory}: func(e *Engine, dst Operand, src Operand) (bool, error) {
		return e.TaintUnionRegisterMemory(dst.Register, src.Memory)
	},
	{Union, KindRegister, KindImmediate}: func(e *Engine, dst Operand, _ Operand) (bool, error) {
		return e.TaintUnionRegisterImmediate(dst.Register)
	},
	{Union, KindMemory, KindRegister}: func(e *Engine, dst Operand, src Operand) (bool, error) {
		return e.TaintUnionMemoryRegister(dst.Memory, src.Register)
	},
	{Union, KindMemory, KindMemory}: func(e *Engine, dst Operand, src Operand) (bool, error) {
		return e.TaintUnionMemoryMemory(dst.Memory, src.Memory)
	},
	{Union, KindMemory, KindImmediate}: func(e *Engine, dst Operand, _ Operand) (bool, error) {
		return e.TaintUnionMemoryImmediate(dst.Memory)
	},
}

// Apply applies the operator of family f matching the kinds of dst and src, and returns the resulting taint of dst.
// Returns an error wrapping ErrMalformedInstruction if no operator exists for the operand kinds (e.g. an immediate
// destination).
func (e *Engine) Apply(f Family, dst Operand, src Operand) (bool, error) {
	op, ok := operators[Operator{Family: f, Destination: dst.Kind, Source: src.Kind}]
	if !ok {
		return false, fmt.Errorf("%w: no %s operator from %s to %s", ErrMalformedInstruction, f, src.Kind, dst.Kind)
	}
	return op(e, dst, src)
}

// Assign applies the assignment operator matching the kinds of dst and src
func (e *Engine) Assign(dst Operand, src Operand) (bool, error) {
	return e.Apply(Assignment, dst, src)
}

// Union applies the union operator matching the kinds of dst and src
func (e *Engine) Union(dst Operand, src Operand) (bool, error) {
	return e.Apply(Union, dst, src)
}

// Assignment operators

// TaintAssignmentRegisterRegister taints dst iff src is tainted
func (e *Engine) TaintAssignmentRegisterRegister(dst arch.RegID, src arch.RegID) (bool, error) {
	if _, err := e.Arch.Register(dst); err != nil {
		return false, err
	}
	t, err := e.registers.IsTainted(src)
	if err != nil {
		return false, err
	}
	return t, e.registers.Set(dst, t)
}

// TaintAssignmentRegisterMemory taints dst iff some byte of src is tainted
func (e *Engine) TaintAssignmentRegisterMemory(dst arch.RegID, src MemoryAccess) (bool, error) {
	t, err := e.IsMemoryTainted(src)
	if err != nil {
		return false, err
	}
	return t, e.registers.Set(dst, t)
}

// TaintAssignmentRegisterImmediate untaints dst
func (e *Engine) TaintAssignmentRegisterImmediate(dst arch.RegID) (bool, error) {
	return false, e.registers.Set(dst, false)
}

// TaintAssignmentMemoryRegister taints every byte of dst if src is tainted, otherwise untaints every byte of dst
func (e *Engine) TaintAssignmentMemoryRegister(dst MemoryAccess, src arch.RegID) (bool, error) {
	if err := e.checkAccess(dst); err != nil {
		return false, err
	}
	t, err := e.registers.IsTainted(src)
	if err != nil {
		return false, err
	}
	e.memory.SetRange(dst, t)
	return t, nil
}

// TaintAssignmentMemoryMemory taints every byte of dst if some byte of src is tainted, otherwise untaints every byte
// of dst
func (e *Engine) TaintAssignmentMemoryMemory(dst MemoryAccess, src MemoryAccess) (bool, error) {
	if err := e.checkAccess(dst); err != nil {
		return false, err
	}
	t, err := e.IsMemoryTainted(src)
	if err != nil {
		return false, err
	}
	e.memory.SetRange(dst, t)
	return t, nil
}

// TaintAssignmentMemoryImmediate untaints every byte of dst
func (e *Engine) TaintAssignmentMemoryImmediate(dst MemoryAccess) (bool, error) {
	if err := e.checkAccess(dst); err != nil {
		return false, err
	}
	e.memory.SetRange(dst, false)
	return false, nil
}

// Union operators. The destination is the only operand written.

// TaintUnionRegisterRegister sets the taint of dst to taint(dst) OR taint(src)
func (e *Engine) TaintUnionRegisterRegister(dst arch.RegID, src arch.RegID) (bool, error) {
	d, err := e.registers.IsTainted(dst)
	if err != nil {
		return false, err
	}
	s, err := e.registers.IsTainted(src)
	if err != nil {
		return false, err
	}
	t := d || s
	return t, e.registers.Set(dst, t)
}

// TaintUnionRegisterMemory sets the taint of dst to taint(dst) OR (some byte of src is tainted)
func (e *Engine) TaintUnionRegisterMemory(dst arch.RegID, src MemoryAccess) (bool, error) {
	d, err := e.registers.IsTainted(dst)
	if err != nil {
		return false, err
	}
	s, err := e.IsMemoryTainted(src)
	if err != nil {
		return false, err
	}
	t := d || s
	return t, e.registers.Set(dst, t)
}

// TaintUnionRegisterImmediate leaves dst unchanged and returns its taint
func (e *Engine) TaintUnionRegisterImmediate(dst arch.RegID) (bool, error) {
	return e.registers.IsTainted(dst)
}

// TaintUnionMemoryRegister sets every byte of dst to (some byte of dst is tainted) OR taint(src)
func (e *Engine) TaintUnionMemoryRegister(dst MemoryAccess, src arch.RegID) (bool, error) {
	d, err := e.IsMemoryTainted(dst)
	if err != nil {
		return false, err
	}
	s, err := e.registers.IsTainted(src)
	if err != nil {
		return false, err
	}
	t := d || s
	e.memory.SetRange(dst, t)
	return t, nil
}

// TaintUnionMemoryMemory sets every byte of dst to (some byte of dst is tainted) OR (some byte of src is tainted)
func (e *Engine) TaintUnionMemoryMemory(dst MemoryAccess, src MemoryAccess) (bool, error) {
	d, err := e.IsMemoryTainted(dst)
	if err != nil {
		return false, err
	}
	s, err := e.IsMemoryTainted(src)
	if err != nil {
		return false, err
	}
	t := d || s
	e.memory.SetRange(dst, t)
	return t, nil
}

// TaintUnionMemoryImmediate leaves dst unchanged and returns true if some byte of dst is tainted
func (e *Engine) TaintUnionMemoryImmediate(dst MemoryAccess) (bool, error) {
	return e.IsMemoryTainted(dst)
}
