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
	"errors"
	"fmt"

	"github.com/awslabs/ar-dyntaint/analysis/arch"
)

var (
	// ErrInvalidAccess is returned for memory accesses of size zero
	ErrInvalidAccess = errors.New("invalid memory access")

	// ErrAddressOverflow is returned for memory accesses that do not fit in the address space
	ErrAddressOverflow = errors.New("memory access out of the address space")

	// ErrMalformedInstruction is returned when the operand list of an instruction cannot be propagated, e.g. a
	// destination without any source
	ErrMalformedInstruction = errors.New("malformed instruction semantics")
)

// OperandKind is the kind of an operand: immediate, register or memory
type OperandKind uint8

const (
	// KindInvalid is the kind of the zero Operand
	KindInvalid OperandKind = iota
	// KindImmediate is a constant operand. Immediates never carry taint.
	KindImmediate
	// KindRegister is a register operand
	KindRegister
	// KindMemory is a memory operand, denoting a range of bytes
	KindMemory
)

func (k OperandKind) String() string {
	switch k {
	case KindImmediate:
		return "Immediate"
	case KindRegister:
		return "Register"
	case KindMemory:
		return "Memory"
	default:
		return "Invalid"
	}
}

// Role is the role of an operand in an instruction
type Role uint8

const (
	// RoleSource is the role of operands read by an instruction
	RoleSource Role = iota + 1
	// RoleDestination is the role of operands written by an instruction
	RoleDestination
	// RoleStructural is the role of operands that do not take part in the data flow, e.g. segment overrides
	RoleStructural
)

func (r Role) String() string {
	switch r {
	case RoleSource:
		return "src"
	case RoleDestination:
		return "dst"
	case RoleStructural:
		return "structural"
	default:
		return "none"
	}
}

// MemoryAccess is a contiguous range of bytes [Address, Address+Size)
type MemoryAccess struct {
	Address uint64
	Size    uint64
}

// NewMemoryAccess returns a memory access of size bytes starting at addr. It returns an error if size is zero or if
// the range wraps around the 64-bit address space.
func NewMemoryAccess(addr uint64, size uint64) (MemoryAccess, error) {
	m := MemoryAccess{Address: addr, Size: size}
	if err := m.validate(^uint64(0)); err != nil {
		return MemoryAccess{}, err
	}
	return m, nil
}

// validate checks that the access is non-empty and that its last byte is at most maxAddr
func (m MemoryAccess) validate(maxAddr uint64) error {
	if m.Size == 0 {
		return fmt.Errorf("%w: %s has size 0", ErrInvalidAccess, m)
	}
	last := m.Address + (m.Size - 1)
	if last < m.Address || last > maxAddr {
		return fmt.Errorf("%w: %s", ErrAddressOverflow, m)
	}
	return nil
}

// Last returns the address of the last byte of the access
func (m MemoryAccess) Last() uint64 {
	return m.Address + m.Size - 1
}

// Contains returns true if addr is one of the bytes of the access
func (m MemoryAccess) Contains(addr uint64) bool {
	return addr >= m.Address && addr-m.Address < m.Size
}

func (m MemoryAccess) String() string {
	return fmt.Sprintf("[%#x:%d]", m.Address, m.Size)
}

// Operand is an instruction operand as seen by the taint engine.
// Only the field matching Kind is meaningful.
type Operand struct {
	Kind      OperandKind
	Role      Role
	Register  arch.RegID
	Memory    MemoryAccess
	Immediate uint64
}

// RegisterOperand returns a register operand
func RegisterOperand(reg arch.RegID) Operand {
	return Operand{Kind: KindRegister, Register: reg}
}

// MemoryOperand returns a memory operand
func MemoryOperand(access MemoryAccess) Operand {
	return Operand{Kind: KindMemory, Memory: access}
}

// ImmediateOperand returns an immediate operand
func ImmediateOperand(value uint64) Operand {
	return Operand{Kind: KindImmediate, Immediate: value}
}

// AsSource returns a copy of the operand with the source role
func (o Operand) AsSource() Operand {
	o.Role = RoleSource
	return o
}

// AsDestination returns a copy of the operand with the destination role
func (o Operand) AsDestination() Operand {
	o.Role = RoleDestination
	return o
}

// AsStructural returns a copy of the operand with the structural role
func (o Operand) AsStructural() Operand {
	o.Role = RoleStructural
	return o
}

func (o Operand) String() string {
	switch o.Kind {
	case KindImmediate:
		return fmt.Sprintf("#%#x", o.Immediate)
	case KindRegister:
		return fmt.Sprintf("reg(%d)", o.Register)
	case KindMemory:
		return o.Memory.String()
	default:
		return "<invalid>"
	}
}
