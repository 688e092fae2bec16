package asm

import "testing"

// smallProgram is a counter loop.
const smallProgram = `
    IMM  #0
    ADDI t0, zero, 10
    ADDI t1, zero, 0
loop:
    ADD  t1, t0
    ADDI t0, t0, -1
    CMP  t0, zero
    BEQ  done
    BR   loop
done:
    BR   done
`

// mediumProgram exercises macros, constants, data words and .org gaps.
const mediumProgram = `
.equ STACK, 0x0200
.equ COUNT, 12

.macro PUSH reg
    ADDI sp, sp, -2
    SW   \reg, sp, 0
.endm

.macro POP reg
    LW   \reg, sp, 0
    ADDI sp, sp, 2
.endm

.macro CALL target
    JAL  lr, zero, 0
    BR   \target
.endm

.macro LI reg, value
    IMM  \value >> 4
    ADDI \reg, zero, \value & 0xF
.endm

start:
    LI   sp, STACK
    LI   a0, COUNT
    CALL double
    PUSH a0
    CALL triple
    POP  a1
    ADD  a0, a1
    SW   a0, gp, 0
halt:
    BR   halt

double:
    ADD  a0, a0
    JAL  zero, lr, 0

triple:
    PUSH a0
    CALL double
    POP  a1
    ADD  a0, a1
    JAL  zero, lr, 0

.org 0x0080
table:
    .word 0x1234
    .word table
    .word halt+2
    .word STACK & 0xFF
`

func BenchmarkAssemble_Small(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Assemble(smallProgram); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAssemble_Medium(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Assemble(mediumProgram); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEval(b *testing.B) {
	syms := NewSymbolTable()
	_ = syms.Define("table", 0x80, Label)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Eval("table+4 >> 1", syms); err != nil {
			b.Fatal(err)
		}
	}
}
