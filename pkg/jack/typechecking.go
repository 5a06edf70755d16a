package jack

import "fmt"

// The TypeChecker walks a 'jack.Program' validating that every expression and
// statement obeys Jack's (loose) type system before any lowering is attempted.
//
// It shares its general shape with 'jack.Lowerer': same DFS traversal, same
// 'jack.ScopeTable' for variable resolution, but instead of producing VM
// operations it only cares about the 'jack.DataType' each expression evaluates
// to, bubbling up the first mismatch it finds as an error.
type TypeChecker struct {
	program Program
	scopes  ScopeTable // Keeps track of the scopes and declared variables inside each one

	class  string   // Name of the class currently being checked, used to resolve 'this'-less calls
	result DataType // Declared return type of the subroutine currently being checked
}

func NewTypeChecker(program Program) TypeChecker {
	return TypeChecker{program: program}
}

func (tc *TypeChecker) Check() (bool, error) {
	if tc.program == nil {
		return false, fmt.Errorf("the given 'program' is empty or nil")
	}

	for name, class := range tc.program {
		if _, err := tc.HandleClass(class); err != nil {
			return false, fmt.Errorf("error handling lowering of class '%s': %w", name, err)
		}
	}

	return true, nil
}

// Specialized function to type-check a 'jack.Class' and nested fields.
func (tc *TypeChecker) HandleClass(class Class) (bool, error) {
	tc.scopes.PushClassScope(class.Name) // Keep track of the current scope being processed
	defer tc.scopes.PopClassScope()      // Reset the function name after processing
	tc.class = class.Name

	for _, field := range class.Fields.Entries() {
		if _, err := tc.HandleVarStmt(VarStmt{Vars: []Variable{field}}); err != nil {
			return false, fmt.Errorf("error handling field '%s' in class '%s': %w", field.Name, class.Name, err)
		}
	}

	for _, subroutine := range class.Subroutines.Entries() {
		if _, err := tc.HandleSubroutine(subroutine); err != nil {
			return false, fmt.Errorf("error handling subroutine '%s' in class '%s': %w", subroutine.Name, class.Name, err)
		}
	}

	return true, nil
}

// Specialized function to type-check a 'jack.Subroutine' and nested fields.
func (tc *TypeChecker) HandleSubroutine(subroutine Subroutine) (bool, error) {
	tc.scopes.PushSubRoutineScope(subroutine.Name) // Keep track of the current subroutine function being processed
	defer tc.scopes.PopSubroutineScope()           // Reset the function name after processing

	prevResult := tc.result
	tc.result = subroutine.Return
	defer func() { tc.result = prevResult }()

	// We add to the current scope also all of the arguments of the subroutine
	for _, arg := range subroutine.Arguments {
		// Like this we're actually supporting shadowing of variables, so if a variable
		// with the same name is already present in the current scope, we just temporarily
		// override it with the most update one instead of returning an error (like Go does)
		tc.scopes.RegisterVariable(arg)
	}

	for _, stmt := range subroutine.Statements {
		if _, err := tc.HandleStatement(stmt); err != nil {
			return false, fmt.Errorf("error handling nested statement %T: %w", stmt, err)
		}
	}

	return true, nil
}

// Generalized function to type-check multiple statements types.
func (tc *TypeChecker) HandleStatement(stmt Statement) (bool, error) {
	switch tStmt := stmt.(type) {
	case DoStmt:
		return tc.HandleDoStmt(tStmt)
	case VarStmt:
		return tc.HandleVarStmt(tStmt)
	case LetStmt:
		return tc.HandleLetStmt(tStmt)
	case ReturnStmt:
		return tc.HandleReturnStmt(tStmt)
	case IfStmt:
		return tc.HandleIfStmt(tStmt)
	case WhileStmt:
		return tc.HandleWhileStmt(tStmt)
	default:
		return false, fmt.Errorf("unrecognized statement %T", stmt)
	}
}

// Specialized function to type-check a 'jack.DoStmt': only the call itself needs validating.
func (tc *TypeChecker) HandleDoStmt(stmt DoStmt) (bool, error) {
	if _, err := tc.HandleFuncCallExpr(stmt.FuncCall); err != nil {
		return false, err
	}
	return true, nil
}

// Specialized function to type-check a 'jack.VarStmt': registers every declared variable.
func (tc *TypeChecker) HandleVarStmt(stmt VarStmt) (bool, error) {
	for _, v := range stmt.Vars {
		tc.scopes.RegisterVariable(v)
	}
	return true, nil
}

// Specialized function to type-check a 'jack.LetStmt': Lhs and Rhs must agree on type.
func (tc *TypeChecker) HandleLetStmt(stmt LetStmt) (bool, error) {
	lhs, err := tc.HandleExpression(stmt.Lhs)
	if err != nil {
		return false, err
	}
	rhs, err := tc.HandleExpression(stmt.Rhs)
	if err != nil {
		return false, err
	}
	if !assignable(lhs, rhs) {
		return false, fmt.Errorf("cannot assign value of type '%s' to a variable of type '%s'", rhs, lhs)
	}
	return true, nil
}

// Specialized function to type-check a 'jack.ReturnStmt': the expression must match the
// subroutine's declared return type ('void' subroutines must not return a value).
func (tc *TypeChecker) HandleReturnStmt(stmt ReturnStmt) (bool, error) {
	if stmt.Expr == nil {
		if tc.result != Void {
			return false, fmt.Errorf("subroutine declared to return '%s' but returns no value", tc.result)
		}
		return true, nil
	}

	actual, err := tc.HandleExpression(stmt.Expr)
	if err != nil {
		return false, err
	}
	if !assignable(tc.result, actual) {
		return false, fmt.Errorf("subroutine declared to return '%s' but returns '%s'", tc.result, actual)
	}
	return true, nil
}

// Specialized function to type-check a 'jack.IfStmt': the condition must be a 'bool'.
func (tc *TypeChecker) HandleIfStmt(stmt IfStmt) (bool, error) {
	if err := tc.expectBool(stmt.Condition); err != nil {
		return false, err
	}
	for _, s := range stmt.ThenBlock {
		if _, err := tc.HandleStatement(s); err != nil {
			return false, err
		}
	}
	for _, s := range stmt.ElseBlock {
		if _, err := tc.HandleStatement(s); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Specialized function to type-check a 'jack.WhileStmt': the condition must be a 'bool'.
func (tc *TypeChecker) HandleWhileStmt(stmt WhileStmt) (bool, error) {
	if err := tc.expectBool(stmt.Condition); err != nil {
		return false, err
	}
	for _, s := range stmt.Block {
		if _, err := tc.HandleStatement(s); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (tc *TypeChecker) expectBool(expr Expression) error {
	dataType, err := tc.HandleExpression(expr)
	if err != nil {
		return err
	}
	if dataType != Bool {
		return fmt.Errorf("expected a 'bool' expression, got '%s'", dataType)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Expressions

// Generalized function to type-check every expression kind, returning the DataType it evaluates to.
func (tc *TypeChecker) HandleExpression(expr Expression) (DataType, error) {
	switch tExpr := expr.(type) {
	case VarExpr:
		return tc.HandleVarExpr(tExpr)
	case LiteralExpr:
		return tc.HandleLiteralExpr(tExpr)
	case ArrayExpr:
		return tc.HandleArrayExpr(tExpr)
	case UnaryExpr:
		return tc.HandleUnaryExpr(tExpr)
	case BinaryExpr:
		return tc.HandleBinaryExpr(tExpr)
	case FuncCallExpr:
		return tc.HandleFuncCallExpr(tExpr)
	default:
		return "", fmt.Errorf("unrecognized expression %T", expr)
	}
}

// Specialized function to type-check a 'jack.VarExpr': resolves the variable's declared type.
func (tc *TypeChecker) HandleVarExpr(expr VarExpr) (DataType, error) {
	_, variable, err := tc.scopes.ResolveVariable(expr.Var)
	if err != nil {
		return "", err
	}
	return variable.DataType, nil
}

// Specialized function to type-check a 'jack.LiteralExpr': its type is already known.
func (tc *TypeChecker) HandleLiteralExpr(expr LiteralExpr) (DataType, error) {
	return expr.Type, nil
}

// Specialized function to type-check a 'jack.ArrayExpr': the base must resolve to a
// variable and the index must be an 'int'; the element type itself is untyped in Jack.
func (tc *TypeChecker) HandleArrayExpr(expr ArrayExpr) (DataType, error) {
	if _, _, err := tc.scopes.ResolveVariable(expr.Var); err != nil {
		return "", err
	}
	index, err := tc.HandleExpression(expr.Index)
	if err != nil {
		return "", err
	}
	if index != Int {
		return "", fmt.Errorf("array index must be an 'int', got '%s'", index)
	}
	return Int, nil
}

// Specialized function to type-check a 'jack.UnaryExpr'.
func (tc *TypeChecker) HandleUnaryExpr(expr UnaryExpr) (DataType, error) {
	rhs, err := tc.HandleExpression(expr.Rhs)
	if err != nil {
		return "", err
	}

	switch expr.Type {
	case Minus:
		if rhs != Int {
			return "", fmt.Errorf("unary '-' requires an 'int' operand, got '%s'", rhs)
		}
		return Int, nil
	case BoolNot:
		if rhs != Bool {
			return "", fmt.Errorf("unary '~' requires a 'bool' operand, got '%s'", rhs)
		}
		return Bool, nil
	default:
		return "", fmt.Errorf("unrecognized unary operator '%s'", expr.Type)
	}
}

// Specialized function to type-check a 'jack.BinaryExpr'.
func (tc *TypeChecker) HandleBinaryExpr(expr BinaryExpr) (DataType, error) {
	lhs, err := tc.HandleExpression(expr.Lhs)
	if err != nil {
		return "", err
	}
	rhs, err := tc.HandleExpression(expr.Rhs)
	if err != nil {
		return "", err
	}

	switch expr.Type {
	case Plus, Minus, Divide, Multiply:
		if lhs != Int || rhs != Int {
			return "", fmt.Errorf("operator '%s' requires 'int' operands, got '%s' and '%s'", expr.Type, lhs, rhs)
		}
		return Int, nil
	case BoolOr, BoolAnd:
		if lhs != Bool || rhs != Bool {
			return "", fmt.Errorf("operator '%s' requires 'bool' operands, got '%s' and '%s'", expr.Type, lhs, rhs)
		}
		return Bool, nil
	case LessThan, GreatThan:
		if lhs != Int || rhs != Int {
			return "", fmt.Errorf("operator '%s' requires 'int' operands, got '%s' and '%s'", expr.Type, lhs, rhs)
		}
		return Bool, nil
	case Equal:
		if lhs != rhs && lhs != Object && rhs != Object {
			return "", fmt.Errorf("operator '=' requires operands of the same type, got '%s' and '%s'", lhs, rhs)
		}
		return Bool, nil
	default:
		return "", fmt.Errorf("unrecognized binary operator '%s'", expr.Type)
	}
}

// Specialized function to type-check a 'jack.FuncCallExpr': resolves the callee (either a
// method on a variable's class, or a function/constructor on the enclosing/named class)
// and validates the provided argument count, returning the callee's declared return type.
func (tc *TypeChecker) HandleFuncCallExpr(expr FuncCallExpr) (DataType, error) {
	className := tc.class

	if expr.IsExtCall {
		if _, variable, err := tc.scopes.ResolveVariable(expr.Var); err == nil {
			className = variable.ClassName
		} else {
			className = expr.Var // Static call on a named class, e.g. 'Math.abs(x)'
		}
	}

	class, exists := tc.program[className]
	if !exists {
		class, exists = StandardLibraryABI[className]
	}
	if !exists {
		return "", fmt.Errorf("undeclared class '%s'", className)
	}

	subroutine, exists := class.Subroutines.Get(expr.FuncName)
	if !exists {
		return "", fmt.Errorf("class '%s' has no subroutine '%s'", className, expr.FuncName)
	}

	if len(expr.Arguments) != len(subroutine.Arguments) {
		return "", fmt.Errorf("'%s.%s' expects %d arguments, got %d",
			className, expr.FuncName, len(subroutine.Arguments), len(expr.Arguments))
	}
	for _, arg := range expr.Arguments {
		if _, err := tc.HandleExpression(arg); err != nil {
			return "", err
		}
	}

	return subroutine.Return, nil
}

// assignable reports whether a value of type 'from' can be stored in a variable declared
// as 'to'. Jack's type system is loose: 'null' fits any object, and any object reference
// is considered compatible with a declared 'object'-typed slot regardless of class.
func assignable(to, from DataType) bool {
	if to == from {
		return true
	}
	if to == Object && from == Null {
		return true
	}
	if to == Object && from == Object {
		return true
	}
	return false
}
