package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestJackCompiler(t *testing.T) {
	test := func(className string, source string, expected string) {
		dir := t.TempDir()
		input := filepath.Join(dir, className+".jack")
		output := filepath.Join(dir, className+".vm")

		if err := os.WriteFile(input, []byte(source), 0644); err != nil {
			t.Fatalf("Error writing input file %s: %v", input, err)
		}

		status := Handler([]string{input}, nil)
		if status != 0 {
			t.Fatalf("Unexpected exit status code: expected 0 got: %d", status)
		}

		compiled, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("Error reading output file %s: %v", output, err)
		}

		if string(compiled) != expected {
			t.Fatalf("Output does not match expected content, got:\n%s\nwant:\n%s", compiled, expected)
		}
	}

	t.Run("ReturnExpression", func(t *testing.T) {
		source := "class Main {\n    function int main() {\n        return 1 + 2;\n    }\n}\n"
		expected := "function Main.main 0\npush constant 1\npush constant 2\nadd\nreturn\n"
		test("Main", source, expected)
	})

	t.Run("FieldAndMethod", func(t *testing.T) {
		source := "class Counter {\n" +
			"    field int count;\n" +
			"    method void increment() {\n" +
			"        let count = count + 1;\n" +
			"        return;\n" +
			"    }\n" +
			"}\n"
		expected := "function Counter.increment 0\n" +
			"push argument 0\n" +
			"pop pointer 0\n" +
			"push this 0\n" +
			"push constant 1\n" +
			"add\n" +
			"pop this 0\n" +
			"push constant 0\n" +
			"return\n"
		test("Counter", source, expected)
	})
}
