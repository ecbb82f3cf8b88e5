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

// Engine is the taint engine of one analysis. It owns a register table and a memory set.
type Engine struct {
	// Arch is the architecture whose registers are tracked
	Arch *arch.Architecture

	registers *RegisterTable
	memory    *MemorySet

	// maxAddr is the largest address of the architecture's address space
	maxAddr uint64

	// enabled gates ProcessInstruction; the operators remain callable when the engine is disabled
	enabled bool
}

// NewEngine returns an enabled engine for architecture a, with nothing tainted.
func NewEngine(a *arch.Architecture) *Engine {
	maxAddr := ^uint64(0)
	if a.AddressBits < 64 {
		maxAddr = (uint64(1) << a.AddressBits) - 1
	}
	return &Engine{
		Arch:      a,
		registers: NewRegisterTable(a),
		memory:    NewMemorySet(),
		maxAddr:   maxAddr,
		enabled:   true,
	}
}

// Enable turns the instruction hook on
func (e *Engine) Enable() { e.enabled = true }

// Disable turns the instruction hook off
func (e *Engine) Disable() { e.enabled = false }

// SetEnabled sets the mode of the instruction hook
func (e *Engine) SetEnabled(b bool) { e.enabled = b }

// Enabled returns true if the instruction hook is on
func (e *Engine) Enabled() bool { return e.enabled }

// Reset untaints every register and every byte of memory. The mode is left unchanged.
func (e *Engine) Reset() {
	e.registers.Clear()
	e.memory.Clear()
}

// NewMemoryAccess returns a memory access checked against the engine's address space
func (e *Engine) NewMemoryAccess(addr uint64, size uint64) (MemoryAccess, error) {
	m := MemoryAccess{Address: addr, Size: size}
	if err := e.checkAccess(m); err != nil {
		return MemoryAccess{}, err
	}
	return m, nil
}

func (e *Engine) checkAccess(m MemoryAccess) error {
	return m.validate(e.maxAddr)
}

func (e *Engine) checkAddress(addr uint64) error {
	if addr > e.maxAddr {
		return fmt.Errorf("%w: address %#x", ErrAddressOverflow, addr)
	}
	return nil
}

// Registers

// TaintRegister taints reg, i.e. its parent register
func (e *Engine) TaintRegister(reg arch.RegID) error {
	return e.registers.Taint(reg)
}

// UntaintRegister untaints reg, i.e. its parent register
func (e *Engine) UntaintRegister(reg arch.RegID) error {
	return e.registers.Untaint(reg)
}

// IsRegisterTainted returns true if the parent of reg is tainted
func (e *Engine) IsRegisterTainted(reg arch.RegID) (bool, error) {
	return e.registers.IsTainted(reg)
}

// TaintedRegisters returns the tainted parent registers, ordered by id
func (e *Engine) TaintedRegisters() []arch.Register {
	ids := e.registers.Tainted()
	regs := make([]arch.Register, 0, len(ids))
	for _, id := range ids {
		// the table only stores parents of the engine's architecture
		r, _ := e.Arch.Register(id)
		regs = append(regs, r)
	}
	return regs
}

// Memory

// TaintAddress taints the byte at addr
func (e *Engine) TaintAddress(addr uint64) error {
	if err := e.checkAddress(addr); err != nil {
		return err
	}
	e.memory.Add(addr)
	return nil
}

// UntaintAddress untaints the byte at addr
func (e *Engine) UntaintAddress(addr uint64) error {
	if err := e.checkAddress(addr); err != nil {
		return err
	}
	e.memory.Remove(addr)
	return nil
}

// IsAddressTainted returns true if the byte at addr is tainted
func (e *Engine) IsAddressTainted(addr uint64) bool {
	return e.memory.Contains(addr)
}

// TaintMemory taints every byte of m
func (e *Engine) TaintMemory(m MemoryAccess) error {
	if err := e.checkAccess(m); err != nil {
		return err
	}
	e.memory.SetRange(m, true)
	return nil
}

// UntaintMemory untaints every byte of m
func (e *Engine) UntaintMemory(m MemoryAccess) error {
	if err := e.checkAccess(m); err != nil {
		return err
	}
	e.memory.SetRange(m, false)
	return nil
}

// IsMemoryTainted returns true if at least one byte of m is tainted
func (e *Engine) IsMemoryTainted(m MemoryAccess) (bool, error) {
	if err := e.checkAccess(m); err != nil {
		return false, err
	}
	return e.memory.Overlaps(m), nil
}

// IsMemoryFullyTainted returns true if every byte of m is tainted
func (e *Engine) IsMemoryFullyTainted(m MemoryAccess) (bool, error) {
	if err := e.checkAccess(m); err != nil {
		return false, err
	}
	return e.memory.Covers(m), nil
}

// TaintedMemory returns all the tainted addresses in increasing order
func (e *Engine) TaintedMemory() []uint64 {
	return e.memory.Addresses()
}

// TaintedRanges returns the tainted memory as maximal contiguous accesses
func (e *Engine) TaintedRanges() []MemoryAccess {
	return e.memory.Ranges()
}

// Operands

// IsTainted returns the taint of an operand of any kind. Immediates are never tainted.
func (e *Engine) IsTainted(op Operand) (bool, error) {
	switch op.Kind {
	case KindImmediate:
		return false, nil
	case KindRegister:
		return e.IsRegisterTainted(op.Register)
	case KindMemory:
		return e.IsMemoryTainted(op.Memory)
	default:
		return false, fmt.Errorf("%w: operand of kind %s", ErrMalformedInstruction, op.Kind)
	}
}

// CheckOperand returns an error if the operand cannot be used by the engine: unknown register, invalid memory access
// or invalid kind.
func (e *Engine) CheckOperand(op Operand) error {
	switch op.Kind {
	case KindImmediate:
		return nil
	case KindRegister:
		_, err := e.Arch.Register(op.Register)
		return err
	case KindMemory:
		return e.checkAccess(op.Memory)
	default:
		return fmt.Errorf("%w: operand of kind %s", ErrMalformedInstruction, op.Kind)
	}
}

// FormatOperand returns a human-readable representation of op, using register names of the engine's architecture.
func (e *Engine) FormatOperand(op Operand) string {
	if op.Kind == KindRegister {
		if r, err := e.Arch.Register(op.Register); err == nil {
			return r.Name
		}
	}
	return op.String()
}
