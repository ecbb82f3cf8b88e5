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
	"github.com/awslabs/ar-dyntaint/analysis/arch"
	"github.com/awslabs/ar-dyntaint/internal/funcutil"
)

// RegisterTable tracks the taint of the registers of an architecture at the granularity of parent registers.
type RegisterTable struct {
	arch *arch.Architecture

	// tainted maps parent register ids to their taint; untainted registers are not stored
	tainted map[arch.RegID]bool
}

// NewRegisterTable returns a register table where no register is tainted
func NewRegisterTable(a *arch.Architecture) *RegisterTable {
	return &RegisterTable{arch: a, tainted: map[arch.RegID]bool{}}
}

// Set sets the taint of the parent of reg to tainted.
func (t *RegisterTable) Set(reg arch.RegID, tainted bool) error {
	p, err := t.arch.Parent(reg)
	if err != nil {
		return err
	}
	if tainted {
		t.tainted[p.ID] = true
	} else {
		delete(t.tainted, p.ID)
	}
	return nil
}

// Taint marks the parent of reg as tainted
func (t *RegisterTable) Taint(reg arch.RegID) error {
	return t.Set(reg, true)
}

// Untaint marks the parent of reg as not tainted
func (t *RegisterTable) Untaint(reg arch.RegID) error {
	return t.Set(reg, false)
}

// IsTainted returns the taint of the parent of reg
func (t *RegisterTable) IsTainted(reg arch.RegID) (bool, error) {
	p, err := t.arch.Parent(reg)
	if err != nil {
		return false, err
	}
	return t.tainted[p.ID], nil
}

// Tainted returns the ids of the tainted parent registers, in increasing order
func (t *RegisterTable) Tainted() []arch.RegID {
	return funcutil.SetToOrderedSlice(t.tainted)
}

// Clear untaints all registers
func (t *RegisterTable) Clear() {
	t.tainted = map[arch.RegID]bool{}
}
