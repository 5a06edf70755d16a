package jack_test

import (
	"strings"
	"testing"

	"its-hmny.dev/nand2tetris/pkg/jack"
)

func parseOne(t *testing.T, source string) jack.Program {
	t.Helper()
	parser := jack.NewParser(strings.NewReader(source))
	class, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return jack.Program{class.Name: class}
}

func TestTypeCheckerAccepts(t *testing.T) {
	test := func(name, source string) {
		t.Run(name, func(t *testing.T) {
			checker := jack.NewTypeChecker(parseOne(t, source))
			if ok, err := checker.Check(); !ok || err != nil {
				t.Fatalf("expected program to type check, got error: %v", err)
			}
		})
	}

	test("Matching return type", `
		class Main {
			function int main() {
				return 1 + 2;
			}
		}
	`)

	test("Bool conditions on if/while", `
		class Main {
			function void main() {
				if (1 < 2) {
					while (true) {
						return;
					}
				}
				return;
			}
		}
	`)

	test("Null assignable to an object-typed variable", `
		class Main {
			function void main() {
				var Main obj;
				let obj = null;
				return;
			}
		}
	`)

	test("Void function with no return expression", `
		class Main {
			function void main() {
				return;
			}
		}
	`)
}

func TestTypeCheckerRejects(t *testing.T) {
	test := func(name, source string) {
		t.Run(name, func(t *testing.T) {
			checker := jack.NewTypeChecker(parseOne(t, source))
			if ok, err := checker.Check(); ok || err == nil {
				t.Fatalf("expected program to fail type checking, got ok=%v err=%v", ok, err)
			}
		})
	}

	test("Mismatched return type", `
		class Main {
			function int main() {
				return true;
			}
		}
	`)

	test("Binary operator on mismatched operand types", `
		class Main {
			function int main() {
				return 1 + true;
			}
		}
	`)

	test("Non-bool while condition", `
		class Main {
			function void main() {
				while (1) {
					return;
				}
			}
		}
	`)

	test("Void function returning a value", `
		class Main {
			function void main() {
				return 1;
			}
		}
	`)

	test("Reference to an undeclared variable", `
		class Main {
			function int main() {
				return undeclared;
			}
		}
	`)
}
