package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHackAssembler(t *testing.T) {
	test := func(source string, expected string) {
		dir := t.TempDir()
		input := filepath.Join(dir, "test.asm")
		output := filepath.Join(dir, "test.hack")

		if err := os.WriteFile(input, []byte(source), 0644); err != nil {
			t.Fatalf("Error writing input file %s: %v", input, err)
		}

		status := Handler([]string{input, output}, nil)
		if status != 0 {
			t.Fatalf("Unexpected exit status code: expected 0 got: %d", status)
		}

		compiledContent, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("Error reading output file %s: %v", output, err)
		}

		if string(compiledContent) != expected {
			t.Fatalf("Output does not match expected content, got:\n%s\nwant:\n%s", compiledContent, expected)
		}
	}

	t.Run("Add", func(t *testing.T) {
		source := "@2\nD=A\n@3\nD=D+A\n@0\nM=D\n"
		expected := "0000000000000010\n1110110000010000\n0000000000000011\n1110000010010000\n0000000000000000\n1110001100001000\n"
		test(source, expected)
	})

	t.Run("LabelsAndVariables", func(t *testing.T) {
		source := "@i\nM=0\n(LOOP)\n@i\nM=M+1\n@LOOP\n0;JMP\n"
		expected := "0000000000010000\n1110101010001000\n0000000000010000\n1111110111001000\n0000000000000010\n1110101010000111\n"
		test(source, expected)
	})

	t.Run("BuiltInAliasQuirk", func(t *testing.T) {
		// '@R10' (correctly spelled) fails the alias lookup and is treated as a freshly
		// allocated variable (address 16); '@R1O' (capital letter 'O') is the misspelling
		// that actually resolves to the built-in register 10 (address 10).
		source := "@R10\nD=A\n@R1O\nD=A\n"
		expected := "0000000000010000\n1110110000010000\n0000000000001010\n1110110000010000\n"
		test(source, expected)
	})

	t.Run("CombinedDestCompJump", func(t *testing.T) {
		// 'dest=comp;jump' assembles both fields into the same C-instruction word; dropping
		// either half during parsing would silently zero out its bits in the binary output.
		source := "D=D+1;JGT\n"
		expected := "1110011111010001\n"
		test(source, expected)
	})
}
