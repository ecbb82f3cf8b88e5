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
	"fmt"

	"github.com/awslabs/ar-dyntaint/analysis/arch"
	"golang.org/x/arch/x86/x86asm"
)

// registers maps the x86asm register names to the register identifiers of the architecture
var registers = map[x86asm.Reg]arch.RegID{
	x86asm.AL: arch.AL, x86asm.CL: arch.CL, x86asm.DL: arch.DL, x86asm.BL: arch.BL,
	x86asm.AH: arch.AH, x86asm.CH: arch.CH, x86asm.DH: arch.DH, x86asm.BH: arch.BH,
	x86asm.SPB: arch.SPL, x86asm.BPB: arch.BPL, x86asm.SIB: arch.SIL, x86asm.DIB: arch.DIL,

	x86asm.AX: arch.AX, x86asm.CX: arch.CX, x86asm.DX: arch.DX, x86asm.BX: arch.BX,
	x86asm.SP: arch.SP, x86asm.BP: arch.BP, x86asm.SI: arch.SI, x86asm.DI: arch.DI,

	x86asm.EAX: arch.EAX, x86asm.ECX: arch.ECX, x86asm.EDX: arch.EDX, x86asm.EBX: arch.EBX,
	x86asm.ESP: arch.ESP, x86asm.EBP: arch.EBP, x86asm.ESI: arch.ESI, x86asm.EDI: arch.EDI,

	x86asm.RAX: arch.RAX, x86asm.RCX: arch.RCX, x86asm.RDX: arch.RDX, x86asm.RBX: arch.RBX,
	x86asm.RSP: arch.RSP, x86asm.RBP: arch.RBP, x86asm.RSI: arch.RSI, x86asm.RDI: arch.RDI,

	x86asm.IP: arch.IP, x86asm.EIP: arch.EIP, x86asm.RIP: arch.RIP,

	x86asm.ES: arch.ES, x86asm.CS: arch.CS, x86asm.SS: arch.SS,
	x86asm.DS: arch.DS, x86asm.FS: arch.FS, x86asm.GS: arch.GS,
}

func init() {
	for i := 0; i < 8; i++ {
		registers[x86asm.R8B+x86asm.Reg(i)] = arch.R8B + arch.RegID(i)
		registers[x86asm.R8W+x86asm.Reg(i)] = arch.R8W + arch.RegID(i)
		registers[x86asm.R8L+x86asm.Reg(i)] = arch.R8D + arch.RegID(i)
		registers[x86asm.R8+x86asm.Reg(i)] = arch.R8 + arch.RegID(i)
	}
	for i := 0; i < 16; i++ {
		registers[x86asm.X0+x86asm.Reg(i)] = arch.XMM0 + arch.RegID(i)
	}
}

// Register returns the register of a corresponding to the decoder register r
func Register(a *arch.Architecture, r x86asm.Reg) (arch.RegID, error) {
	id, ok := registers[r]
	if !ok {
		return arch.RegInvalid, fmt.Errorf("%w: %s", ErrUnsupportedInstruction, r)
	}
	if _, err := a.Register(id); err != nil {
		return arch.RegInvalid, err
	}
	return id, nil
}
