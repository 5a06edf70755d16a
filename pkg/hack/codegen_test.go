package hack_test

import (
	"fmt"
	"testing"

	"its-hmny.dev/nand2tetris/pkg/hack"
)

func TestAInstructions(t *testing.T) {
	test := func(table hack.SymbolTable, inst hack.AInstruction, idx uint16, expected string, fail bool) {
		codegen := hack.NewCodeGenerator(hack.Program{}, table)
		res, err := codegen.GenerateAInst(inst, idx)
		if len(res) == 16 && res != expected {
			t.Fail()
		}
		if err != nil && !fail {
			t.Fail()
		}
	}

	t.Run("Raw memory access", func(t *testing.T) {
		// This A Instruction reference correct raw location/address, to be correct a raw address
		// must be strictly below 2^15, since only 15 bits are available to index the Hack memory.
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.Raw, LocName: "38"}, 0, fmt.Sprintf("%016b", 38), false)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.Raw, LocName: "42"}, 0, fmt.Sprintf("%016b", 42), false)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.Raw, LocName: "64"}, 0, fmt.Sprintf("%016b", 64), false)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.Raw, LocName: "128"}, 0, fmt.Sprintf("%016b", 128), false)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.Raw, LocName: "32767"}, 0, fmt.Sprintf("%016b", 32767), false)
		// This are just some example of invalid (Out of Bounds) address that shouldn't be translated.
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.Raw, LocName: "32768"}, 0, "", true)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.Raw, LocName: "65538"}, 0, "", true)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.Raw, LocName: "66500"}, 0, "", true)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.Raw, LocName: "70000"}, 0, "", true)
	})

	t.Run("Hack built-in labels", func(t *testing.T) {
		// Named specific purpose registries
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.BuiltIn, LocName: "SP"}, 0, fmt.Sprintf("%016b", 0), false)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.BuiltIn, LocName: "LCL"}, 0, fmt.Sprintf("%016b", 1), false)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.BuiltIn, LocName: "ARG"}, 0, fmt.Sprintf("%016b", 2), false)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.BuiltIn, LocName: "THIS"}, 0, fmt.Sprintf("%016b", 3), false)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.BuiltIn, LocName: "THAT"}, 0, fmt.Sprintf("%016b", 4), false)
		// Named general purpose registers (R0 to R15)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.BuiltIn, LocName: "R0"}, 0, fmt.Sprintf("%016b", 0), false)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.BuiltIn, LocName: "R1"}, 0, fmt.Sprintf("%016b", 1), false)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.BuiltIn, LocName: "R9"}, 0, fmt.Sprintf("%016b", 9), false)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.BuiltIn, LocName: "R10"}, 0, fmt.Sprintf("%016b", 10), false)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.BuiltIn, LocName: "R15"}, 0, fmt.Sprintf("%016b", 15), false)
		// Memory mapped I/O address testing (SCREEN is a range but only the first byte is named)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.BuiltIn, LocName: "KBD"}, 0, fmt.Sprintf("%016b", 24576), false)
		test(hack.SymbolTable{}, hack.AInstruction{LocType: hack.BuiltIn, LocName: "SCREEN"}, 0, fmt.Sprintf("%016b", 16384), false)
	})

	t.Run("User-defined labels", func(t *testing.T) {
		table := hack.SymbolTable{
			"LOOP": {Address: 4, LastUse: hack.NotAVariable},
			"END":  {Address: 12, LastUse: hack.NotAVariable},
		}

		test(table, hack.AInstruction{LocType: hack.Label, LocName: "LOOP"}, 0, fmt.Sprintf("%016b", 4), false)
		test(table, hack.AInstruction{LocType: hack.Label, LocName: "END"}, 0, fmt.Sprintf("%016b", 12), false)
		// Labels not present in the Symbol Table should cause an error, they're never auto allocated.
		test(table, hack.AInstruction{LocType: hack.Label, LocName: "MISSING"}, 0, "", true)
	})

	t.Run("Variable allocation and recycling", func(t *testing.T) {
		table := hack.SymbolTable{
			"i": {Address: hack.Unresolved, LastUse: 2},
			"j": {Address: hack.Unresolved, LastUse: hack.NotAVariable},
		}
		codegen := hack.NewCodeGenerator(hack.Program{}, table)

		// 'i' gets allocated the first free slot, starting from 16
		res, err := codegen.GenerateAInst(hack.AInstruction{LocType: hack.Label, LocName: "i"}, 0)
		if err != nil || res != fmt.Sprintf("%016b", 16) {
			t.Fatalf("expected 'i' to resolve to 16, got %s (err: %v)", res, err)
		}
		// At 'i's last use its slot is recycled, so the next variable reuses address 16
		res, err = codegen.GenerateAInst(hack.AInstruction{LocType: hack.Label, LocName: "i"}, 2)
		if err != nil || res != fmt.Sprintf("%016b", 16) {
			t.Fatalf("expected 'i' to resolve to 16, got %s (err: %v)", res, err)
		}
		res, err = codegen.GenerateAInst(hack.AInstruction{LocType: hack.Label, LocName: "j"}, 3)
		if err != nil || res != fmt.Sprintf("%016b", 16) {
			t.Fatalf("expected 'j' to reuse recycled slot 16, got %s (err: %v)", res, err)
		}
	})
}

func TestCInstructions(t *testing.T) {
	test := func(inst hack.CInstruction, expected string, fail bool) {
		codegen := hack.NewCodeGenerator(hack.Program{}, hack.SymbolTable{})
		res, err := codegen.GenerateCInst(inst)
		if len(res) == 16 && res != expected {
			t.Fail()
		}
		if err != nil && !fail {
			t.Fail()
		}
	}

	t.Run("Comps and Jumps", func(t *testing.T) {
		// Basic constant and identities operations with jump directives
		test(hack.CInstruction{Comp: "M", Jump: ""}, "1111110000000000", false)
		test(hack.CInstruction{Comp: "A", Jump: ""}, "1110110000000000", false)
		test(hack.CInstruction{Comp: "0", Jump: "JGT"}, "1110101010000001", false)
		test(hack.CInstruction{Comp: "1", Jump: "JEQ"}, "1110111111000010", false)
		test(hack.CInstruction{Comp: "-1", Jump: "JEQ"}, "1110111010000010", false)
		test(hack.CInstruction{Comp: "D", Jump: "JGE"}, "1110001100000011", false)
		test(hack.CInstruction{Comp: "A", Jump: "JGE"}, "1110110000000011", false)
		// Binary and numerical negation operations with jump directives
		test(hack.CInstruction{Comp: "!A", Jump: "JLT"}, "1110110001000100", false)
		test(hack.CInstruction{Comp: "!M", Jump: "JNE"}, "1111110001000101", false)
		test(hack.CInstruction{Comp: "-D", Jump: "JNE"}, "1110001111000101", false)
		test(hack.CInstruction{Comp: "-A", Jump: "JLE"}, "1110110011000110", false)
		test(hack.CInstruction{Comp: "-M", Jump: "JLE"}, "1111110011000110", false)
		// Increment and decrement operations with jump directives
		test(hack.CInstruction{Comp: "D+1", Jump: "JMP"}, "1110011111000111", false)
		test(hack.CInstruction{Comp: "A+1", Jump: "JMP"}, "1110110111000111", false)
		test(hack.CInstruction{Comp: "M+1", Jump: ""}, "1111110111000000", false)
		test(hack.CInstruction{Comp: "D-1", Jump: ""}, "1110001110000000", false)
		test(hack.CInstruction{Comp: "A-1", Jump: "JGT"}, "1110110010000001", false)
		test(hack.CInstruction{Comp: "M-1", Jump: "JGT"}, "1111110010000001", false)
	})

	t.Run("Comps and Dests", func(t *testing.T) {
		// Register with register operations with dest directives
		test(hack.CInstruction{Comp: "D+A", Dest: ""}, "1110000010000000", false)
		test(hack.CInstruction{Comp: "D+M", Dest: ""}, "1111000010000000", false)
		test(hack.CInstruction{Comp: "D-A", Dest: "M"}, "1110010011001000", false)
		test(hack.CInstruction{Comp: "D-M", Dest: "M"}, "1111010011001000", false)
		test(hack.CInstruction{Comp: "A-D", Dest: "D"}, "1110000111010000", false)
		test(hack.CInstruction{Comp: "M-D", Dest: "D"}, "1111000111010000", false)
		// Bitwise register with register operations with dest directives
		test(hack.CInstruction{Comp: "D&A", Dest: "A"}, "1110000000100000", false)
		test(hack.CInstruction{Comp: "D&M", Dest: "A"}, "1111000000100000", false)
		test(hack.CInstruction{Comp: "D|A", Dest: "MD"}, "1110010101011000", false)
		test(hack.CInstruction{Comp: "D|M", Dest: "MD"}, "1111010101011000", false)
		// Basic constant and identities operations with dest directives
		test(hack.CInstruction{Comp: "M", Dest: "AM"}, "1111110000101000", false)
		test(hack.CInstruction{Comp: "A", Dest: "AM"}, "1110110000101000", false)
		test(hack.CInstruction{Comp: "0", Dest: "AD"}, "1110101010110000", false)
		test(hack.CInstruction{Comp: "1", Dest: "AD"}, "1110111111110000", false)
		test(hack.CInstruction{Comp: "-1", Dest: "AMD"}, "1110111010111000", false)
		test(hack.CInstruction{Comp: "D", Dest: "AMD"}, "1110001100111000", false)
		test(hack.CInstruction{Comp: "A", Dest: "AMD"}, "1110110000111000", false)
	})
}
