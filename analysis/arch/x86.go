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

import "fmt"

// Register identifiers of the x86 family. The same identifier denotes the same register in 32-bit and 64-bit mode,
// only the parent differs (EAX is a parent in 32-bit mode and a child of RAX in 64-bit mode).
const (
	RegInvalid RegID = iota

	RAX
	RBX
	RCX
	RDX
	RDI
	RSI
	RBP
	RSP
	RIP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15

	EAX
	EBX
	ECX
	EDX
	EDI
	ESI
	EBP
	ESP
	EIP
	R8D
	R9D
	R10D
	R11D
	R12D
	R13D
	R14D
	R15D

	AX
	BX
	CX
	DX
	DI
	SI
	BP
	SP
	IP
	R8W
	R9W
	R10W
	R11W
	R12W
	R13W
	R14W
	R15W

	AH
	BH
	CH
	DH

	AL
	BL
	CL
	DL
	DIL
	SIL
	BPL
	SPL
	R8B
	R9B
	R10B
	R11B
	R12B
	R13B
	R14B
	R15B

	XMM0
	XMM1
	XMM2
	XMM3
	XMM4
	XMM5
	XMM6
	XMM7
	XMM8
	XMM9
	XMM10
	XMM11
	XMM12
	XMM13
	XMM14
	XMM15

	ES
	CS
	SS
	DS
	FS
	GS
)

// legacy describes the four accumulator-style families (a, b, c, d) that have a high byte register.
var legacy = []struct {
	r64, r32, r16, hi, lo RegID
	name                  string
}{
	{RAX, EAX, AX, AH, AL, "a"},
	{RBX, EBX, BX, BH, BL, "b"},
	{RCX, ECX, CX, CH, CL, "c"},
	{RDX, EDX, DX, DH, DL, "d"},
}

// pointers describes the index and pointer families
var pointers = []struct {
	r64, r32, r16, lo RegID
	name              string
}{
	{RDI, EDI, DI, DIL, "di"},
	{RSI, ESI, SI, SIL, "si"},
	{RBP, EBP, BP, BPL, "bp"},
	{RSP, ESP, SP, SPL, "sp"},
}

var segments = []RegID{ES, CS, SS, DS, FS, GS}

var segmentNames = []string{"es", "cs", "ss", "ds", "fs", "gs"}

func defineSegments(a *Architecture) {
	for i, id := range segments {
		a.define(reg(id, segmentNames[i], 0, 16))
	}
}

func reg(id RegID, name string, offset uint, size uint) Register {
	return Register{ID: id, Name: name, Offset: offset, Size: size}
}

// X86_64 returns the register file of x86 in 64-bit mode.
func X86_64() *Architecture {
	a := newArchitecture("x86-64", 64, RSP, RIP)
	for _, f := range legacy {
		a.define(reg(f.r64, "r"+f.name+"x", 0, 64),
			reg(f.r32, "e"+f.name+"x", 0, 32),
			reg(f.r16, f.name+"x", 0, 16),
			reg(f.hi, f.name+"h", 8, 8),
			reg(f.lo, f.name+"l", 0, 8))
	}
	for _, f := range pointers {
		a.define(reg(f.r64, "r"+f.name, 0, 64),
			reg(f.r32, "e"+f.name, 0, 32),
			reg(f.r16, f.name, 0, 16),
			reg(f.lo, f.name+"l", 0, 8))
	}
	for i := RegID(0); i < 8; i++ {
		n := fmt.Sprintf("r%d", 8+i)
		a.define(reg(R8+i, n, 0, 64),
			reg(R8D+i, n+"d", 0, 32),
			reg(R8W+i, n+"w", 0, 16),
			reg(R8B+i, n+"b", 0, 8))
	}
	a.define(reg(RIP, "rip", 0, 64), reg(EIP, "eip", 0, 32), reg(IP, "ip", 0, 16))
	for i := RegID(0); i < 16; i++ {
		a.define(reg(XMM0+i, fmt.Sprintf("xmm%d", i), 0, 128))
	}
	defineSegments(a)
	return a
}

// X86 returns the register file of x86 in 32-bit protected mode.
func X86() *Architecture {
	a := newArchitecture("x86", 32, ESP, EIP)
	for _, f := range legacy {
		a.define(reg(f.r32, "e"+f.name+"x", 0, 32),
			reg(f.r16, f.name+"x", 0, 16),
			reg(f.hi, f.name+"h", 8, 8),
			reg(f.lo, f.name+"l", 0, 8))
	}
	for _, f := range pointers {
		a.define(reg(f.r32, "e"+f.name, 0, 32),
			reg(f.r16, f.name, 0, 16))
	}
	a.define(reg(EIP, "eip", 0, 32), reg(IP, "ip", 0, 16))
	for i := RegID(0); i < 8; i++ {
		a.define(reg(XMM0+i, fmt.Sprintf("xmm%d", i), 0, 128))
	}
	defineSegments(a)
	return a
}
