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

package semantics

import (
	"errors"
	"fmt"

	"github.com/awslabs/ar-dyntaint/analysis/arch"
)

// ErrUnsupportedValue is returned when a register value cannot be stored in 64 bits
var ErrUnsupportedValue = errors.New("unsupported register value")

// RegisterReader provides the concrete values of registers, used to compute effective addresses.
type RegisterReader interface {
	RegisterValue(reg arch.RegID) (uint64, error)
}

// RegisterFile holds concrete register values, stored per parent register. Reading or writing a sub-register
// accesses the bits of the parent it overlaps.
type RegisterFile struct {
	arch   *arch.Architecture
	values map[arch.RegID]uint64
}

// NewRegisterFile returns a register file where all registers are zero
func NewRegisterFile(a *arch.Architecture) *RegisterFile {
	return &RegisterFile{arch: a, values: map[arch.RegID]uint64{}}
}

func mask(bits uint) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

func (f *RegisterFile) resolve(reg arch.RegID) (arch.Register, error) {
	r, err := f.arch.Register(reg)
	if err != nil {
		return r, err
	}
	if r.Offset+r.Size > 64 {
		return r, fmt.Errorf("%w: %s is %d bits wide", ErrUnsupportedValue, r, r.Size)
	}
	return r, nil
}

// Set writes v into reg. Only the bits of the parent covered by reg are modified.
func (f *RegisterFile) Set(reg arch.RegID, v uint64) error {
	r, err := f.resolve(reg)
	if err != nil {
		return err
	}
	m := mask(r.Size) << r.Offset
	old := f.values[r.Parent]
	f.values[r.Parent] = (old &^ m) | ((v << r.Offset) & m)
	return nil
}

// SetByName writes v into the register named name
func (f *RegisterFile) SetByName(name string, v uint64) error {
	r, err := f.arch.Lookup(name)
	if err != nil {
		return err
	}
	return f.Set(r.ID, v)
}

// Add adds delta to reg, wrapping around at the register width
func (f *RegisterFile) Add(reg arch.RegID, delta int64) error {
	v, err := f.RegisterValue(reg)
	if err != nil {
		return err
	}
	return f.Set(reg, v+uint64(delta))
}

// RegisterValue returns the value of reg
func (f *RegisterFile) RegisterValue(reg arch.RegID) (uint64, error) {
	r, err := f.resolve(reg)
	if err != nil {
		return 0, err
	}
	return (f.values[r.Parent] >> r.Offset) & mask(r.Size), nil
}

// Values returns the non-zero values of the parent registers, by register name
func (f *RegisterFile) Values() map[string]uint64 {
	res := make(map[string]uint64, len(f.values))
	for id, v := range f.values {
		if v == 0 {
			continue
		}
		if r, err := f.arch.Register(id); err == nil {
			res[r.Name] = v
		}
	}
	return res
}

// Reset sets all registers to zero
func (f *RegisterFile) Reset() {
	f.values = map[arch.RegID]uint64{}
}
