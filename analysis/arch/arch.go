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

package arch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidRegister is returned whenever a register identifier or name is not part of an architecture.
var ErrInvalidRegister = errors.New("invalid register")

// RegID is the identifier of an architectural register.
type RegID int

// Register is a reference to an architectural register: its identifier, its name and the window it occupies in its
// parent register.
type Register struct {
	ID     RegID
	Name   string
	Parent RegID
	// Offset is the bit offset of the register inside its parent
	Offset uint
	// Size is the size of the register in bits
	Size uint
}

// IsParent returns true when the register is the largest register of its family.
func (r Register) IsParent() bool {
	return r.ID == r.Parent
}

// Bytes returns the size of the register in bytes
func (r Register) Bytes() uint64 {
	return uint64(r.Size / 8)
}

func (r Register) String() string {
	return r.Name
}

// Architecture is a register file: the set of registers of a given processor mode, with their aliasing.
type Architecture struct {
	// Name is the name of the architecture, as used in config files
	Name string

	// AddressBits is the width of the address space
	AddressBits uint

	// StackPointer is the parent register used as stack pointer
	StackPointer RegID

	// InstructionPointer is the parent register holding the program counter
	InstructionPointer RegID

	registers map[RegID]Register
	byName    map[string]RegID
}

func newArchitecture(name string, addressBits uint, sp RegID, ip RegID) *Architecture {
	return &Architecture{
		Name:               name,
		AddressBits:        addressBits,
		StackPointer:       sp,
		InstructionPointer: ip,
		registers:          map[RegID]Register{},
		byName:             map[string]RegID{},
	}
}

// define adds a register family to the architecture. The first register of the family is the parent.
func (a *Architecture) define(parent Register, subs ...Register) {
	parent.Parent = parent.ID
	parent.Offset = 0
	a.add(parent)
	for _, sub := range subs {
		sub.Parent = parent.ID
		a.add(sub)
	}
}

func (a *Architecture) add(r Register) {
	a.registers[r.ID] = r
	a.byName[strings.ToLower(r.Name)] = r.ID
}

// Register returns the register with identifier id. Returns an error wrapping ErrInvalidRegister if the architecture
// does not define id.
func (a *Architecture) Register(id RegID) (Register, error) {
	r, ok := a.registers[id]
	if !ok {
		return Register{}, fmt.Errorf("%w: id %d is not a register of %s", ErrInvalidRegister, id, a.Name)
	}
	return r, nil
}

// Parent returns the parent register of the register with identifier id.
func (a *Architecture) Parent(id RegID) (Register, error) {
	r, err := a.Register(id)
	if err != nil {
		return Register{}, err
	}
	return a.registers[r.Parent], nil
}

// Lookup returns the register with the given name. Names are case-insensitive.
func (a *Architecture) Lookup(name string) (Register, error) {
	id, ok := a.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Register{}, fmt.Errorf("%w: %q is not a register of %s", ErrInvalidRegister, name, a.Name)
	}
	return a.registers[id], nil
}

// Registers returns all the registers of the architecture, ordered by identifier.
func (a *Architecture) Registers() []Register {
	regs := make([]Register, 0, len(a.registers))
	for _, r := range a.registers {
		regs = append(regs, r)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].ID < regs[j].ID })
	return regs
}

// Family returns the parent of id followed by every register that aliases into it, ordered by identifier.
func (a *Architecture) Family(id RegID) ([]Register, error) {
	p, err := a.Parent(id)
	if err != nil {
		return nil, err
	}
	var family []Register
	for _, r := range a.Registers() {
		if r.Parent == p.ID {
			family = append(family, r)
		}
	}
	return family, nil
}

// ByName returns the architecture with the given name. Recognized names are x86 and x86-64 (also x86_64, amd64).
func ByName(name string) (*Architecture, error) {
	switch strings.ToLower(name) {
	case "x86", "i386", "386":
		return X86(), nil
	case "x86-64", "x86_64", "amd64", "x64", "":
		return X86_64(), nil
	default:
		return nil, fmt.Errorf("unknown architecture %q", name)
	}
}
