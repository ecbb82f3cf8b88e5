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
	"testing"

	"github.com/awslabs/ar-dyntaint/analysis/arch"
)

func TestProcessMove(t *testing.T) {
	e := newTestEngine()
	mustNot(t, e.TaintRegister(arch.RAX))
	mustNot(t, e.TaintRegister(arch.RBX))
	// mov rax, [0x3000]
	inst := &Instruction{
		Address: 0x400000,
		Move:    true,
		Operands: []Operand{
			RegisterOperand(arch.RAX).AsDestination(),
			MemoryOperand(mem(0x3000, 8)).AsSource(),
		},
	}
	props, err := e.ProcessInstruction(inst)
	mustNot(t, err)
	if len(props) != 1 {
		t.Fatalf("expected 1 propagation, got %d", len(props))
	}
	p := props[0]
	if p.Operator != (Operator{Assignment, KindRegister, KindMemory}) || p.Tainted || p.SourceTainted {
		t.Errorf("unexpected propagation %+v", p)
	}
	expectReg(t, e, arch.RAX, false)
	expectReg(t, e, arch.RBX, true)
}

func TestProcessCombine(t *testing.T) {
	e := newTestEngine()
	mustNot(t, e.TaintRegister(arch.EAX))
	// lea eax, [esi+eax]
	inst := &Instruction{
		Operands: []Operand{
			RegisterOperand(arch.EAX).AsDestination(),
			RegisterOperand(arch.ESI).AsSource(),
			RegisterOperand(arch.EAX).AsSource(),
		},
	}
	props, err := e.ProcessInstruction(inst)
	mustNot(t, err)
	if len(props) != 2 {
		t.Fatalf("expected 2 propagations, got %d", len(props))
	}
	if props[0].Source.Register != arch.ESI || props[1].Source.Register != arch.EAX {
		t.Errorf("sources should be applied in declaration order")
	}
	expectReg(t, e, arch.EAX, true)
	expectReg(t, e, arch.EBX, false)
}

func TestProcessCombineAccumulates(t *testing.T) {
	e := newTestEngine()
	mustNot(t, e.TaintMemory(mem(0x3000, 4)))
	// add [0x2000], ecx ; add [0x2000], [0x3000] as two sources
	inst := &Instruction{
		Operands: []Operand{
			MemoryOperand(mem(0x2000, 4)).AsDestination(),
			RegisterOperand(arch.ECX).AsSource(),
			MemoryOperand(mem(0x3000, 4)).AsSource(),
			ImmediateOperand(3).AsSource(),
		},
	}
	props, err := e.ProcessInstruction(inst)
	mustNot(t, err)
	if len(props) != 3 {
		t.Fatalf("expected 3 propagations, got %d", len(props))
	}
	if !props[2].Tainted {
		t.Errorf("union with an immediate should keep the accumulated taint")
	}
	expectMem(t, e, mem(0x2000, 4), true)
	expectReg(t, e, arch.RCX, false)
}

func TestProcessMoveSeveralSources(t *testing.T) {
	e := newTestEngine()
	mustNot(t, e.TaintRegister(arch.RCX))
	inst := &Instruction{
		Move: true,
		Operands: []Operand{
			RegisterOperand(arch.RAX).AsDestination(),
			RegisterOperand(arch.RBX).AsSource(),
			RegisterOperand(arch.RCX).AsSource(),
		},
	}
	props, err := e.ProcessInstruction(inst)
	mustNot(t, err)
	if len(props) != 2 {
		t.Fatalf("expected 2 propagations, got %d", len(props))
	}
	for i, p := range props {
		if p.Operator.Family != Union {
			t.Errorf("propagation %d: expected a union, got %s", i, p.Operator)
		}
	}
	if props[0].Tainted || !props[1].Tainted {
		t.Errorf("unexpected propagations %+v", props)
	}
	expectReg(t, e, arch.RAX, true)
	expectReg(t, e, arch.RBX, false)
}

func TestProcessDisabled(t *testing.T) {
	e := newTestEngine()
	mustNot(t, e.TaintRegister(arch.RBX))
	e.Disable()
	inst := &Instruction{
		Move:     true,
		Operands: []Operand{RegisterOperand(arch.RAX).AsDestination(), RegisterOperand(arch.RBX).AsSource()},
	}
	props, err := e.ProcessInstruction(inst)
	mustNot(t, err)
	if props != nil {
		t.Errorf("disabled engine should not propagate")
	}
	expectReg(t, e, arch.RAX, false)

	// operators stay available to callers
	mustResult(t, true)(e.Assign(RegisterOperand(arch.RAX), RegisterOperand(arch.RBX)))

	e.Enable()
	mustNot(t, e.UntaintRegister(arch.RAX))
	_, err = e.ProcessInstruction(inst)
	mustNot(t, err)
	expectReg(t, e, arch.RAX, true)
}

func TestProcessStructuralOperands(t *testing.T) {
	e := newTestEngine()
	mustNot(t, e.TaintRegister(arch.RSI))
	inst := &Instruction{
		Move: true,
		Operands: []Operand{
			RegisterOperand(arch.RAX).AsDestination(),
			RegisterOperand(arch.RSI).AsStructural(),
			MemoryOperand(mem(0x3000, 8)).AsSource(),
		},
	}
	props, err := e.ProcessInstruction(inst)
	mustNot(t, err)
	if len(props) != 1 {
		t.Fatalf("structural operands should be skipped, got %d propagations", len(props))
	}
	expectReg(t, e, arch.RAX, false)
}

func TestProcessMalformed(t *testing.T) {
	tests := []struct {
		name string
		inst *Instruction
		want error
	}{
		{
			name: "nil instruction",
			inst: nil,
			want: ErrMalformedInstruction,
		},
		{
			name: "combine without source",
			inst: &Instruction{Operands: []Operand{RegisterOperand(arch.RAX).AsDestination()}},
			want: ErrMalformedInstruction,
		},
		{
			name: "operand without role",
			inst: &Instruction{Move: true, Operands: []Operand{
				RegisterOperand(arch.RAX).AsDestination(),
				RegisterOperand(arch.RBX),
			}},
			want: ErrMalformedInstruction,
		},
		{
			name: "immediate destination",
			inst: &Instruction{Move: true, Operands: []Operand{
				ImmediateOperand(1).AsDestination(),
				RegisterOperand(arch.RBX).AsSource(),
			}},
			want: ErrMalformedInstruction,
		},
		{
			name: "unknown register",
			inst: &Instruction{Move: true, Operands: []Operand{
				MemoryOperand(mem(0x2000, 4)).AsDestination(),
				RegisterOperand(arch.RegID(10000)).AsSource(),
			}},
			want: arch.ErrInvalidRegister,
		},
		{
			name: "empty access",
			inst: &Instruction{Move: true, Operands: []Operand{
				RegisterOperand(arch.RAX).AsDestination(),
				MemoryOperand(mem(0x2000, 0)).AsSource(),
			}},
			want: ErrInvalidAccess,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			mustNot(t, e.TaintMemory(mem(0x2000, 4)))
			mustNot(t, e.TaintRegister(arch.RAX))
			_, err := e.ProcessInstruction(tt.inst)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			// no partial update
			expectReg(t, e, arch.RAX, true)
			expectMem(t, e, mem(0x2000, 4), true)
			if n := len(e.TaintedMemory()); n != 4 {
				t.Errorf("memory changed after a failed instruction: %d bytes tainted", n)
			}
		})
	}
}

func TestProcessNoDestination(t *testing.T) {
	e := newTestEngine()
	// cmp rax, rbx
	props, err := e.ProcessInstruction(&Instruction{Operands: []Operand{
		RegisterOperand(arch.RAX).AsSource(),
		RegisterOperand(arch.RBX).AsSource(),
	}})
	mustNot(t, err)
	if len(props) != 0 {
		t.Errorf("an instruction without destination should not propagate")
	}
}
