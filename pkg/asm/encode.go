package asm

import (
	"fmt"
	"strings"
)

// Opcodes (top nibble of every instruction word).
const (
	OpJAL  uint16 = 0x0
	OpADDI uint16 = 0x1
	OpRR   uint16 = 0x2
	OpRI   uint16 = 0x3
	OpLW   uint16 = 0x4
	OpLB   uint16 = 0x5
	OpSW   uint16 = 0x6
	OpSB   uint16 = 0x7
	OpIMM  uint16 = 0x8
	OpBR   uint16 = 0x9
	OpSYS  uint16 = 0xA
	OpCLI  uint16 = 0xB
	OpSTI  uint16 = 0xC
	OpNOP  uint16 = 0xF
)

// NOPWord is the encoding of NOP, also used to fill .org gaps.
const NOPWord uint16 = OpNOP << 12

const (
	fnGETCC uint16 = 0x9
	fnSETCC uint16 = 0xA
)

var bareOps = map[string]uint16{
	"CLI": OpCLI,
	"STI": OpSTI,
	"NOP": OpNOP,
}

var regRegImmOps = map[string]uint16{
	"JAL":  OpJAL,
	"ADDI": OpADDI,
	"LW":   OpLW,
	"LB":   OpLB,
	"SW":   OpSW,
	"SB":   OpSB,
}

// aluOps holds the fn field of register-register ALU instructions.
var aluOps = map[string]uint16{
	"ADD": 0x0,
	"SUB": 0x1,
	"AND": 0x2,
	"XOR": 0x3,
	"ADC": 0x4,
	"SBC": 0x5,
	"CMP": 0x6,
	"SRL": 0x7,
	"SRA": 0x8,
}

// aluImmOps holds the fn field of register-immediate ALU instructions.
var aluImmOps = map[string]uint16{
	"RSUBI": 0x1,
	"ANDI":  0x2,
	"XORI":  0x3,
	"ADCI":  0x4,
	"RSCBI": 0x5,
	"RCMPI": 0x6,
}

var branchOps = map[string]uint16{
	"BR":   0x0,
	"BEQ":  0x2,
	"BC":   0x4,
	"BV":   0x6,
	"BLT":  0x8,
	"BLE":  0xA,
	"BLTU": 0xC,
	"BLEU": 0xE,
}

// Instruction is one decoded instruction. Each format of the ISA has its own
// implementation.
type Instruction interface {
	Word() uint16
	isInstruction()
}

// Bare is an operand-less instruction (CLI, STI, NOP).
type Bare struct {
	Op uint16
}

// RegRegImm is JAL, ADDI and the loads/stores: op | rd | rs | imm4.
type RegRegImm struct {
	Op, Rd, Rs uint16
	Imm4       uint16
}

// Imm12 is IMM: op | imm12.
type Imm12 struct {
	Value uint16
}

// ALU is a register-register operation: op | rd | rs | fn.
type ALU struct {
	Rd, Rs, Fn uint16
}

// ALUImm is a register-immediate operation: op | rd | fn | imm4.
type ALUImm struct {
	Rd, Fn, Imm4 uint16
}

// Branch is op | cond | disp8.
type Branch struct {
	Cond uint16
	Disp uint8
}

// SysCC is GETCC/SETCC: op | rd | rs | fn.
type SysCC struct {
	Rd, Rs, Fn uint16
}

func (i Bare) Word() uint16      { return i.Op << 12 }
func (i RegRegImm) Word() uint16 { return pack(i.Op, i.Rd, i.Rs, i.Imm4) }
func (i Imm12) Word() uint16     { return OpIMM<<12 | i.Value&0xFFF }
func (i ALU) Word() uint16       { return pack(OpRR, i.Rd, i.Rs, i.Fn) }
func (i ALUImm) Word() uint16    { return pack(OpRI, i.Rd, i.Fn, i.Imm4) }
func (i Branch) Word() uint16    { return OpBR<<12 | (i.Cond&0xF)<<8 | uint16(i.Disp) }
func (i SysCC) Word() uint16     { return pack(OpSYS, i.Rd, i.Rs, i.Fn) }

func (Bare) isInstruction()      {}
func (RegRegImm) isInstruction() {}
func (Imm12) isInstruction()     {}
func (ALU) isInstruction()       {}
func (ALUImm) isInstruction()    {}
func (Branch) isInstruction()    {}
func (SysCC) isInstruction()     {}

func pack(op, a, b, c uint16) uint16 {
	return op<<12 | (a&0xF)<<8 | (b&0xF)<<4 | c&0xF
}

// Encode assembles one instruction (comments and labels already removed)
// located at word address pc.
func Encode(text string, pc int, syms *SymbolTable) (uint16, error) {
	inst, err := Decode(text, pc, syms)
	if err != nil {
		return 0, err
	}
	return inst.Word(), nil
}

// Decode parses one instruction into its format-specific representation.
func Decode(text string, pc int, syms *SymbolTable) (Instruction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty instruction", ErrSyntax)
	}

	head, rest := splitMnemonic(text)
	mnemonic := strings.ToUpper(head)
	ops := splitOperands(rest)

	if op, ok := bareOps[mnemonic]; ok {
		if err := expectOperands(mnemonic, ops, 0); err != nil {
			return nil, err
		}
		return Bare{Op: op}, nil
	}

	if op, ok := regRegImmOps[mnemonic]; ok {
		if err := expectOperands(mnemonic, ops, 3); err != nil {
			return nil, err
		}
		rd, rs, err := parseRegPair(ops[0], ops[1])
		if err != nil {
			return nil, err
		}
		imm, err := parseImm4(ops[2], syms)
		if err != nil {
			return nil, err
		}
		return RegRegImm{Op: op, Rd: rd, Rs: rs, Imm4: imm}, nil
	}

	if mnemonic == "IMM" {
		if err := expectOperands(mnemonic, ops, 1); err != nil {
			return nil, err
		}
		v, err := Eval(ops[0], syms)
		if err != nil {
			return nil, err
		}
		if v < 0 || v > 0xFFF {
			return nil, fmt.Errorf("%w: IMM 12-bit value %d", ErrImmRange, v)
		}
		return Imm12{Value: uint16(v)}, nil
	}

	if fn, ok := aluOps[mnemonic]; ok {
		if err := expectOperands(mnemonic, ops, 2); err != nil {
			return nil, err
		}
		rd, rs, err := parseRegPair(ops[0], ops[1])
		if err != nil {
			return nil, err
		}
		return ALU{Rd: rd, Rs: rs, Fn: fn}, nil
	}

	if fn, ok := aluImmOps[mnemonic]; ok {
		if err := expectOperands(mnemonic, ops, 2); err != nil {
			return nil, err
		}
		rd, err := ParseRegister(ops[0])
		if err != nil {
			return nil, err
		}
		imm, err := parseImm4(ops[1], syms)
		if err != nil {
			return nil, err
		}
		return ALUImm{Rd: uint16(rd), Fn: fn, Imm4: imm}, nil
	}

	if cond, ok := branchOps[mnemonic]; ok {
		if err := expectOperands(mnemonic, ops, 1); err != nil {
			return nil, err
		}
		disp, err := branchDisplacement(ops[0], pc, syms)
		if err != nil {
			return nil, err
		}
		return Branch{Cond: cond, Disp: uint8(disp)}, nil
	}

	switch mnemonic {
	case "GETCC":
		if err := expectOperands(mnemonic, ops, 1); err != nil {
			return nil, err
		}
		rd, err := ParseRegister(ops[0])
		if err != nil {
			return nil, err
		}
		return SysCC{Rd: uint16(rd), Fn: fnGETCC}, nil
	case "SETCC":
		if err := expectOperands(mnemonic, ops, 1); err != nil {
			return nil, err
		}
		rs, err := ParseRegister(ops[0])
		if err != nil {
			return nil, err
		}
		return SysCC{Rs: uint16(rs), Fn: fnSETCC}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownMnemonic, mnemonic)
}

func splitOperands(s string) []string {
	var ops []string
	for _, op := range strings.Split(s, ",") {
		if op = strings.TrimSpace(op); op != "" {
			ops = append(ops, op)
		}
	}
	return ops
}

func expectOperands(mnemonic string, ops []string, n int) error {
	if len(ops) != n {
		return fmt.Errorf("%w: %s expects %d operands, got %d", ErrOperandCount, mnemonic, n, len(ops))
	}
	return nil
}

func parseRegPair(a, b string) (uint16, uint16, error) {
	rd, err := ParseRegister(a)
	if err != nil {
		return 0, 0, err
	}
	rs, err := ParseRegister(b)
	if err != nil {
		return 0, 0, err
	}
	return uint16(rd), uint16(rs), nil
}

// parseImm4 accepts anything in [-128, 127] and keeps the low four bits.
func parseImm4(tok string, syms *SymbolTable) (uint16, error) {
	v, err := Eval(tok, syms)
	if err != nil {
		return 0, err
	}
	if v < -128 || v > 127 {
		return 0, fmt.Errorf("%w: imm4 expression too large: %d", ErrImmRange, v)
	}
	return uint16(v) & 0xF, nil
}

// branchDisplacement resolves a branch operand to a signed word displacement
// relative to the instruction after pc. Label references (optionally with an
// offset) are converted from byte addresses; anything else is taken as the
// displacement itself.
func branchDisplacement(target string, pc int, syms *SymbolTable) (int, error) {
	var disp int
	resolved := false

	if name, offset, ok := splitSymbolRef(target); ok {
		if sym, found := syms.Lookup(name); found && sym.Kind == Label {
			targetByte := sym.Value
			if offset != "" {
				off, err := parseLiteral(offset)
				if err != nil {
					return 0, err
				}
				targetByte += off
			}
			diff := targetByte - (pc*2 + 2)
			if diff%2 != 0 {
				return 0, fmt.Errorf("%w: %s", ErrUnaligned, target)
			}
			disp, resolved = diff/2, true
		}
	}

	if !resolved {
		v, err := Eval(target, syms)
		if err != nil {
			return 0, err
		}
		disp = v
	}

	if disp < -128 || disp > 127 {
		return 0, fmt.Errorf("%w: %d", ErrBranchRange, disp)
	}
	return disp, nil
}
