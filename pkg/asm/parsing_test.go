package asm_test

import (
	"strings"
	"testing"

	"its-hmny.dev/nand2tetris/pkg/asm"
)

func TestParserCombinedDestCompJump(t *testing.T) {
	// 'dest=comp;jump' is a valid single instruction per the Hack spec (e.g. a loop
	// counter increment that also branches); both fields must survive parsing.
	parser := asm.NewParser(strings.NewReader("D=D+1;JGT\n"))
	program, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}

	if len(program) != 1 {
		t.Fatalf("expected a single instruction, got %d", len(program))
	}

	inst, ok := program[0].(asm.CInstruction)
	if !ok {
		t.Fatalf("expected a 'CInstruction', got %T", program[0])
	}
	if inst.Dest != "D" || inst.Comp != "D+1" || inst.Jump != "JGT" {
		t.Fatalf("expected Dest='D' Comp='D+1' Jump='JGT', got %+v", inst)
	}
}

func TestParserDestOnly(t *testing.T) {
	parser := asm.NewParser(strings.NewReader("M=D\n"))
	program, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}

	inst := program[0].(asm.CInstruction)
	if inst.Dest != "M" || inst.Comp != "D" || inst.Jump != "" {
		t.Fatalf("expected Dest='M' Comp='D' Jump='', got %+v", inst)
	}
}

func TestParserJumpOnly(t *testing.T) {
	parser := asm.NewParser(strings.NewReader("0;JMP\n"))
	program, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}

	inst := program[0].(asm.CInstruction)
	if inst.Dest != "" || inst.Comp != "0" || inst.Jump != "JMP" {
		t.Fatalf("expected Dest='' Comp='0' Jump='JMP', got %+v", inst)
	}
}
