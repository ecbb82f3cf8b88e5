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
	"github.com/awslabs/ar-dyntaint/analysis/taint"
	"golang.org/x/arch/x86/x86asm"
)

var (
	// ErrUnsupportedInstruction is returned for instructions whose data flow is not modelled
	ErrUnsupportedInstruction = errors.New("unsupported instruction")

	// ErrDecode is returned when the bytes do not start with a valid instruction
	ErrDecode = errors.New("could not decode instruction")
)

var moves = opSet(
	x86asm.MOV, x86asm.MOVZX, x86asm.MOVSX, x86asm.MOVSXD,
	x86asm.MOVAPS, x86asm.MOVUPS, x86asm.MOVDQA, x86asm.MOVDQU,
	x86asm.MOVD, x86asm.MOVQ, x86asm.MOVSS, x86asm.MOVSD_XMM,
)

var combines = opSet(
	x86asm.ADD, x86asm.ADC, x86asm.SUB, x86asm.SBB,
	x86asm.AND, x86asm.OR, x86asm.XOR,
	x86asm.PXOR, x86asm.XORPS, x86asm.PAND, x86asm.POR,
	x86asm.SHL, x86asm.SHR, x86asm.SAR, x86asm.ROL, x86asm.ROR,
	x86asm.CMOVA, x86asm.CMOVAE, x86asm.CMOVB, x86asm.CMOVBE, x86asm.CMOVE, x86asm.CMOVG, x86asm.CMOVGE,
	x86asm.CMOVL, x86asm.CMOVLE, x86asm.CMOVNE, x86asm.CMOVNO, x86asm.CMOVNP, x86asm.CMOVNS, x86asm.CMOVO,
	x86asm.CMOVP, x86asm.CMOVS,
)

var unary = opSet(x86asm.INC, x86asm.DEC, x86asm.NEG, x86asm.NOT, x86asm.BSWAP)

// zeroIdioms clear their destination when both operands are the same register
var zeroIdioms = opSet(x86asm.XOR, x86asm.SUB, x86asm.PXOR, x86asm.XORPS)

var noFlow = opSet(
	x86asm.NOP, x86asm.CMP, x86asm.TEST, x86asm.BT, x86asm.JMP, x86asm.RET, x86asm.HLT,
	x86asm.JA, x86asm.JAE, x86asm.JB, x86asm.JBE, x86asm.JCXZ, x86asm.JE, x86asm.JECXZ, x86asm.JG, x86asm.JGE,
	x86asm.JL, x86asm.JLE, x86asm.JNE, x86asm.JNO, x86asm.JNP, x86asm.JNS, x86asm.JO, x86asm.JP, x86asm.JRCXZ,
	x86asm.JS,
)

func opSet(ops ...x86asm.Op) map[x86asm.Op]bool {
	m := make(map[x86asm.Op]bool, len(ops))
	for _, op := range ops {
		m[op] = true
	}
	return m
}

// Supported returns true if the data flow of op is modelled
func Supported(op x86asm.Op) bool {
	switch op {
	case x86asm.LEA, x86asm.IMUL, x86asm.MUL, x86asm.DIV, x86asm.IDIV, x86asm.XCHG,
		x86asm.PUSH, x86asm.POP, x86asm.CALL:
		return true
	}
	return moves[op] || combines[op] || unary[op] || noFlow[op]
}

// Mode returns the decoding mode of the architecture
func Mode(a *arch.Architecture) (int, error) {
	switch a.AddressBits {
	case 32, 64:
		return int(a.AddressBits), nil
	}
	return 0, fmt.Errorf("%w: no decoding mode for %s", ErrDecode, a.Name)
}

// DecodeInst decodes the first instruction of code
func DecodeInst(a *arch.Architecture, code []byte) (x86asm.Inst, error) {
	mode, err := Mode(a)
	if err != nil {
		return x86asm.Inst{}, err
	}
	inst, err := x86asm.Decode(code, mode)
	if err != nil {
		return inst, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return inst, nil
}

// Decode decodes the instruction at the start of code, located at address pc, and translates it. It returns the
// translated instruction and the length of the decoded instruction. The length is also returned when the
// instruction is not supported, so that the caller can skip it.
func Decode(a *arch.Architecture, code []byte, pc uint64, regs RegisterReader) (*taint.Instruction, int, error) {
	inst, err := DecodeInst(a, code)
	if err != nil {
		return nil, 0, fmt.Errorf("at %#x: %w", pc, err)
	}
	ti, err := Translate(a, inst, pc, regs)
	return ti, inst.Len, err
}

// Translate returns the taint view of the decoded instruction inst located at pc. The values of regs are used to
// compute the addresses of memory operands. Segment bases are ignored, i.e. memory is flat.
func Translate(a *arch.Architecture, inst x86asm.Inst, pc uint64, regs RegisterReader) (*taint.Instruction, error) {
	t := &translator{
		arch: a,
		inst: inst,
		pc:   pc,
		regs: regs,
		out:  &taint.Instruction{Address: pc, Text: x86asm.IntelSyntax(inst, pc, nil)},
	}
	if err := t.translate(); err != nil {
		return nil, fmt.Errorf("%s at %#x: %w", t.out.Text, pc, err)
	}
	return t.out, nil
}

// StackDelta returns the change of the stack pointer caused by inst
func StackDelta(a *arch.Architecture, inst x86asm.Inst) int64 {
	switch inst.Op {
	case x86asm.PUSH:
		return -int64(stackSlot(a, inst))
	case x86asm.POP:
		return int64(stackSlot(a, inst))
	case x86asm.CALL:
		return -int64(a.AddressBits / 8)
	case x86asm.RET:
		d := int64(a.AddressBits / 8)
		if imm, ok := inst.Args[0].(x86asm.Imm); ok {
			d += int64(imm)
		}
		return d
	}
	return 0
}

func stackSlot(a *arch.Architecture, inst x86asm.Inst) uint64 {
	if inst.DataSize == 16 {
		return 2
	}
	return uint64(a.AddressBits / 8)
}

type translator struct {
	arch *arch.Architecture
	inst x86asm.Inst
	pc   uint64
	regs RegisterReader
	out  *taint.Instruction
}

func (t *translator) unsupported() error {
	return fmt.Errorf("%w: %s", ErrUnsupportedInstruction, t.inst.Op)
}

func (t *translator) args() []x86asm.Arg {
	var args []x86asm.Arg
	for _, arg := range t.inst.Args {
		if arg == nil {
			break
		}
		args = append(args, arg)
	}
	return args
}

func (t *translator) translate() error {
	op := t.inst.Op
	args := t.args()
	switch {
	case noFlow[op]:
		return nil
	case moves[op]:
		if len(args) != 2 {
			return t.unsupported()
		}
		return t.move(args[1], args[0])
	case zeroIdioms[op] && len(args) == 2 && sameRegister(args[0], args[1]):
		t.out.Move = true
		if err := t.use(args[0], taint.RoleDestination); err != nil {
			return err
		}
		t.push(taint.ImmediateOperand(0), taint.RoleSource)
		return nil
	case combines[op] && len(args) == 2:
		return t.combine(args[:1], args[1:])
	case combines[op] && len(args) == 1, unary[op] && len(args) == 1:
		return t.combine(args, args)
	}

	switch op {
	case x86asm.LEA:
		return t.lea(args)
	case x86asm.IMUL:
		switch len(args) {
		case 1:
			return t.wide(args[0], false)
		case 2:
			return t.combine(args[:1], args[1:])
		case 3:
			// the third operand is an immediate
			return t.move(args[1], args[0])
		}
	case x86asm.MUL:
		if len(args) == 1 {
			return t.wide(args[0], false)
		}
	case x86asm.DIV, x86asm.IDIV:
		if len(args) == 1 {
			return t.wide(args[0], true)
		}
	case x86asm.XCHG:
		if len(args) == 2 {
			return t.combine(args, args)
		}
	case x86asm.PUSH:
		if len(args) == 1 {
			return t.pushStack(args[0])
		}
	case x86asm.POP:
		if len(args) == 1 {
			return t.popStack(args[0])
		}
	case x86asm.CALL:
		return t.call()
	}
	return t.unsupported()
}

func sameRegister(a, b x86asm.Arg) bool {
	ra, ok1 := a.(x86asm.Reg)
	rb, ok2 := b.(x86asm.Reg)
	return ok1 && ok2 && ra == rb
}

func (t *translator) push(op taint.Operand, role taint.Role) {
	switch role {
	case taint.RoleDestination:
		op = op.AsDestination()
	case taint.RoleStructural:
		op = op.AsStructural()
	default:
		op = op.AsSource()
	}
	t.out.Operands = append(t.out.Operands, op)
}

// use appends the operand of arg with the given role. A segment override of a memory operand is appended as a
// structural operand.
func (t *translator) use(arg x86asm.Arg, role taint.Role) error {
	switch x := arg.(type) {
	case x86asm.Reg:
		id, err := Register(t.arch, x)
		if err != nil {
			return err
		}
		t.push(taint.RegisterOperand(id), role)
	case x86asm.Mem:
		if t.inst.MemBytes <= 0 {
			return fmt.Errorf("%w: unknown size of memory operand %s", ErrUnsupportedInstruction, x)
		}
		addr, err := t.address(x)
		if err != nil {
			return err
		}
		t.push(taint.MemoryOperand(taint.MemoryAccess{Address: addr, Size: uint64(t.inst.MemBytes)}), role)
		if x.Segment != 0 {
			seg, err := Register(t.arch, x.Segment)
			if err != nil {
				return err
			}
			t.push(taint.RegisterOperand(seg), taint.RoleStructural)
		}
	case x86asm.Imm:
		t.push(taint.ImmediateOperand(uint64(x)), role)
	case x86asm.Rel:
		t.push(taint.ImmediateOperand(t.next()+uint64(int64(x))), role)
	default:
		return fmt.Errorf("%w: operand %v", ErrUnsupportedInstruction, arg)
	}
	return nil
}

func (t *translator) next() uint64 {
	return t.pc + uint64(t.inst.Len)
}

func (t *translator) value(r x86asm.Reg) (uint64, error) {
	id, err := Register(t.arch, r)
	if err != nil {
		return 0, err
	}
	if t.regs == nil {
		return 0, nil
	}
	return t.regs.RegisterValue(id)
}

// address computes base + index*scale + disp, relative to the next instruction for rip-relative operands
func (t *translator) address(m x86asm.Mem) (uint64, error) {
	var ea uint64
	switch m.Base {
	case 0:
	case x86asm.RIP, x86asm.EIP:
		ea = t.next()
	default:
		v, err := t.value(m.Base)
		if err != nil {
			return 0, err
		}
		ea = v
	}
	if m.Index != 0 {
		v, err := t.value(m.Index)
		if err != nil {
			return 0, err
		}
		ea += v * uint64(m.Scale)
	}
	ea += uint64(m.Disp)
	bits := uint(t.inst.AddrSize)
	if bits == 0 {
		bits = t.arch.AddressBits
	}
	return ea & mask(bits), nil
}

func (t *translator) move(src, dst x86asm.Arg) error {
	t.out.Move = true
	if err := t.use(dst, taint.RoleDestination); err != nil {
		return err
	}
	return t.use(src, taint.RoleSource)
}

func (t *translator) combine(dsts, srcs []x86asm.Arg) error {
	for _, d := range dsts {
		if err := t.use(d, taint.RoleDestination); err != nil {
			return err
		}
	}
	for _, s := range srcs {
		if err := t.use(s, taint.RoleSource); err != nil {
			return err
		}
	}
	return nil
}

// lea reads no memory: the destination depends on the address registers only
func (t *translator) lea(args []x86asm.Arg) error {
	if len(args) != 2 {
		return t.unsupported()
	}
	m, ok := args[1].(x86asm.Mem)
	if !ok {
		return t.unsupported()
	}
	var srcs []x86asm.Arg
	if m.Base != 0 && m.Base != x86asm.RIP && m.Base != x86asm.EIP {
		srcs = append(srcs, m.Base)
	}
	if m.Index != 0 {
		srcs = append(srcs, m.Index)
	}
	if len(srcs) == 0 {
		addr, err := t.address(m)
		if err != nil {
			return err
		}
		return t.move(x86asm.Imm(addr), args[0])
	}
	return t.combine(args[:1], srcs)
}

func (t *translator) operandBytes(arg x86asm.Arg) (uint, error) {
	switch x := arg.(type) {
	case x86asm.Reg:
		id, err := Register(t.arch, x)
		if err != nil {
			return 0, err
		}
		r, err := t.arch.Register(id)
		if err != nil {
			return 0, err
		}
		return r.Size / 8, nil
	case x86asm.Mem:
		return uint(t.inst.MemBytes), nil
	}
	return 0, t.unsupported()
}

// wide handles the one-operand multiplications and divisions, which read and write the accumulator and data
// registers implicitly.
func (t *translator) wide(arg x86asm.Arg, division bool) error {
	size, err := t.operandBytes(arg)
	if err != nil {
		return err
	}
	var acc, data arch.RegID
	switch size {
	case 1:
		acc = arch.AX
	case 2:
		acc, data = arch.AX, arch.DX
	case 4:
		acc, data = arch.EAX, arch.EDX
	case 8:
		acc, data = arch.RAX, arch.RDX
	default:
		return t.unsupported()
	}
	t.push(taint.RegisterOperand(acc), taint.RoleDestination)
	if data != arch.RegInvalid {
		t.push(taint.RegisterOperand(data), taint.RoleDestination)
	}
	t.push(taint.RegisterOperand(acc), taint.RoleSource)
	if division && data != arch.RegInvalid {
		t.push(taint.RegisterOperand(data), taint.RoleSource)
	}
	return t.use(arg, taint.RoleSource)
}

func (t *translator) stackPointer() (uint64, error) {
	if t.regs == nil {
		return 0, nil
	}
	return t.regs.RegisterValue(t.arch.StackPointer)
}

func (t *translator) stackAccess(offset int64, size uint64) (taint.Operand, error) {
	sp, err := t.stackPointer()
	if err != nil {
		return taint.Operand{}, err
	}
	addr := (sp + uint64(offset)) & mask(t.arch.AddressBits)
	return taint.MemoryOperand(taint.MemoryAccess{Address: addr, Size: size}), nil
}

// pushStack moves arg into the slot below the stack pointer
func (t *translator) pushStack(arg x86asm.Arg) error {
	w := stackSlot(t.arch, t.inst)
	slot, err := t.stackAccess(-int64(w), w)
	if err != nil {
		return err
	}
	t.out.Move = true
	t.push(slot, taint.RoleDestination)
	return t.use(arg, taint.RoleSource)
}

// popStack moves the slot at the stack pointer into arg
func (t *translator) popStack(arg x86asm.Arg) error {
	w := stackSlot(t.arch, t.inst)
	slot, err := t.stackAccess(0, w)
	if err != nil {
		return err
	}
	t.out.Move = true
	if err := t.use(arg, taint.RoleDestination); err != nil {
		return err
	}
	t.push(slot, taint.RoleSource)
	return nil
}

// call writes the return address, an untainted constant, in the slot below the stack pointer
func (t *translator) call() error {
	w := uint64(t.arch.AddressBits / 8)
	slot, err := t.stackAccess(-int64(w), w)
	if err != nil {
		return err
	}
	t.out.Move = true
	t.push(slot, taint.RoleDestination)
	t.push(taint.ImmediateOperand(t.next()), taint.RoleSource)
	return nil
}
