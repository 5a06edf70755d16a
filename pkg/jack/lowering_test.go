package jack_test

import (
	"reflect"
	"testing"

	"its-hmny.dev/nand2tetris/pkg/jack"
	"its-hmny.dev/nand2tetris/pkg/utils"
	"its-hmny.dev/nand2tetris/pkg/vm"
)

func lowerClass(t *testing.T, class jack.Class) vm.Module {
	t.Helper()
	lowerer := jack.NewLowerer(jack.Program{class.Name: class})
	compiled, err := lowerer.Lowerer()
	if err != nil {
		t.Fatalf("unexpected lowering error: %v", err)
	}
	module, ok := compiled[class.Name]
	if !ok {
		t.Fatalf("expected module '%s' in compiled program, got %+v", class.Name, compiled)
	}
	return module
}

func checkOps(t *testing.T, got vm.Module, expected []vm.Operation) {
	t.Helper()
	if !reflect.DeepEqual([]vm.Operation(got), expected) {
		t.Fatalf("operations do not match, got:\n%+v\nwant:\n%+v", got, expected)
	}
}

func TestLowerConstructorPrelude(t *testing.T) {
	// A constructor allocates its own memory (one word per declared field) and sets the
	// 'this' pointer before running its body; this is the Jack convention for 'new'.
	class := jack.Class{
		Name: "Point",
		Fields: utils.NewOrderedMapFromList([]utils.MapEntry[string, jack.Variable]{
			{Key: "x", Value: jack.Variable{Name: "x", Type: jack.Field, DataType: jack.Int}},
			{Key: "y", Value: jack.Variable{Name: "y", Type: jack.Field, DataType: jack.Int}},
		}),
		Subroutines: utils.NewOrderedMapFromList([]utils.MapEntry[string, jack.Subroutine]{
			{Key: "new", Value: jack.Subroutine{
				Name: "new", Type: jack.Constructor, Return: jack.Object,
				Statements: []jack.Statement{
					jack.LetStmt{Lhs: jack.VarExpr{Var: "x"}, Rhs: jack.LiteralExpr{Type: jack.Int, Value: "0"}},
					jack.ReturnStmt{Expr: jack.VarExpr{Var: "this"}},
				},
			}},
		}),
	}

	module := lowerClass(t, class)
	checkOps(t, module, []vm.Operation{
		vm.FuncDecl{Name: "Point.new", NLocal: 0},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 2},
		vm.FuncCallOp{Name: "Memory.alloc", NArgs: 1},
		vm.MemoryOp{Operation: vm.Pop, Segment: vm.Pointer, Offset: 0},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 0},
		vm.MemoryOp{Operation: vm.Pop, Segment: vm.This, Offset: 0},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Pointer, Offset: 0},
		vm.ReturnOp{},
	})
}

func TestLowerExternalMethodCall(t *testing.T) {
	// 'do o.g()' calls a method on another object: the callee's class comes from the
	// variable's declared ClassName, and the variable itself is pushed as the 'this' arg.
	class := jack.Class{
		Name: "Main",
		Subroutines: utils.NewOrderedMapFromList([]utils.MapEntry[string, jack.Subroutine]{
			{Key: "main", Value: jack.Subroutine{
				Name: "main", Type: jack.Function, Return: jack.Void,
				Statements: []jack.Statement{
					jack.VarStmt{Vars: []jack.Variable{
						{Name: "o", Type: jack.Local, DataType: jack.Object, ClassName: "Other"},
					}},
					jack.DoStmt{FuncCall: jack.FuncCallExpr{IsExtCall: true, Var: "o", FuncName: "g"}},
					jack.ReturnStmt{},
				},
			}},
		}),
	}

	module := lowerClass(t, class)
	checkOps(t, module, []vm.Operation{
		vm.FuncDecl{Name: "Main.main", NLocal: 1},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Local, Offset: 0},
		vm.FuncCallOp{Name: "Other.g", NArgs: 1},
		vm.MemoryOp{Operation: vm.Pop, Segment: vm.Temp, Offset: 0},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 0},
		vm.ReturnOp{},
	})
}

func TestLowerArrayAssignmentOrdering(t *testing.T) {
	// 'let arr[0] = 42' must compute the target address (base + index) before the RHS
	// value is evaluated and stashed, since the RHS may itself reference 'arr'.
	class := jack.Class{
		Name: "Main",
		Subroutines: utils.NewOrderedMapFromList([]utils.MapEntry[string, jack.Subroutine]{
			{Key: "main", Value: jack.Subroutine{
				Name: "main", Type: jack.Function, Return: jack.Void,
				Statements: []jack.Statement{
					jack.VarStmt{Vars: []jack.Variable{
						{Name: "arr", Type: jack.Local, DataType: jack.Object, ClassName: "Array"},
					}},
					jack.LetStmt{
						Lhs: jack.ArrayExpr{Var: "arr", Index: jack.LiteralExpr{Type: jack.Int, Value: "0"}},
						Rhs: jack.LiteralExpr{Type: jack.Int, Value: "42"},
					},
					jack.ReturnStmt{},
				},
			}},
		}),
	}

	module := lowerClass(t, class)
	checkOps(t, module, []vm.Operation{
		vm.FuncDecl{Name: "Main.main", NLocal: 1},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 0},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Local, Offset: 0},
		vm.ArithmeticOp{Operation: vm.Add},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 42},
		vm.MemoryOp{Operation: vm.Pop, Segment: vm.Temp, Offset: 0},
		vm.MemoryOp{Operation: vm.Pop, Segment: vm.Pointer, Offset: 1},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Temp, Offset: 0},
		vm.MemoryOp{Operation: vm.Pop, Segment: vm.That, Offset: 0},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 0},
		vm.ReturnOp{},
	})
}
