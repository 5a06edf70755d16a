package jack

import (
	"fmt"
	"io"
)

// DumpXML writes a best-effort XML representation of 'class' to 'w'.
//
// This is a debug aid, not a certified pretty-printer: it walks the already-parsed
// 'jack.Class' (not the raw token stream) so it cannot reproduce the official
// nand2tetris analyzer's token-by-token output; it's meant to let a user inspect
// the shape the parser produced for a class, statement by statement.
func DumpXML(w io.Writer, class Class) error {
	fmt.Fprintf(w, "<class>\n")
	fmt.Fprintf(w, "  <identifier> %s </identifier>\n", class.Name)

	for name, field := range class.Fields.Entries() {
		fmt.Fprintf(w, "  <classVarDec> <keyword>%s</keyword> <type>%s</type> <identifier>%s</identifier> </classVarDec>\n",
			field.Type, field.DataType, name)
	}

	for name, sub := range class.Subroutines.Entries() {
		dumpSubroutine(w, name, sub, 1)
	}

	fmt.Fprintf(w, "</class>\n")
	return nil
}

func dumpSubroutine(w io.Writer, name string, sub Subroutine, depth int) {
	ind := indent(depth)
	fmt.Fprintf(w, "%s<subroutineDec> <keyword>%s</keyword> <type>%s</type> <identifier>%s</identifier>\n", ind, sub.Type, sub.Return, name)
	for argName, arg := range sub.Arguments {
		fmt.Fprintf(w, "%s  <parameter> <type>%s</type> <identifier>%s</identifier> </parameter>\n", ind, arg.DataType, argName)
	}
	fmt.Fprintf(w, "%s  <statements>\n", ind)
	for _, stmt := range sub.Statements {
		dumpStatement(w, stmt, depth+2)
	}
	fmt.Fprintf(w, "%s  </statements>\n", ind)
	fmt.Fprintf(w, "%s</subroutineDec>\n", ind)
}

func dumpStatement(w io.Writer, stmt Statement, depth int) {
	ind := indent(depth)
	switch s := stmt.(type) {
	case DoStmt:
		fmt.Fprintf(w, "%s<doStatement>\n", ind)
		dumpExpression(w, s.FuncCall, depth+1)
		fmt.Fprintf(w, "%s</doStatement>\n", ind)

	case VarStmt:
		fmt.Fprintf(w, "%s<varDec>", ind)
		for _, v := range s.Vars {
			fmt.Fprintf(w, " <identifier>%s</identifier>", v.Name)
		}
		fmt.Fprintf(w, " </varDec>\n")

	case LetStmt:
		fmt.Fprintf(w, "%s<letStatement>\n", ind)
		dumpExpression(w, s.Lhs, depth+1)
		dumpExpression(w, s.Rhs, depth+1)
		fmt.Fprintf(w, "%s</letStatement>\n", ind)

	case ReturnStmt:
		fmt.Fprintf(w, "%s<returnStatement>\n", ind)
		if s.Expr != nil {
			dumpExpression(w, s.Expr, depth+1)
		}
		fmt.Fprintf(w, "%s</returnStatement>\n", ind)

	case IfStmt:
		fmt.Fprintf(w, "%s<ifStatement>\n", ind)
		dumpExpression(w, s.Condition, depth+1)
		for _, st := range s.ThenBlock {
			dumpStatement(w, st, depth+1)
		}
		for _, st := range s.ElseBlock {
			dumpStatement(w, st, depth+1)
		}
		fmt.Fprintf(w, "%s</ifStatement>\n", ind)

	case WhileStmt:
		fmt.Fprintf(w, "%s<whileStatement>\n", ind)
		dumpExpression(w, s.Condition, depth+1)
		for _, st := range s.Block {
			dumpStatement(w, st, depth+1)
		}
		fmt.Fprintf(w, "%s</whileStatement>\n", ind)

	default:
		fmt.Fprintf(w, "%s<unknownStatement/>\n", ind)
	}
}

func dumpExpression(w io.Writer, expr Expression, depth int) {
	ind := indent(depth)
	switch e := expr.(type) {
	case VarExpr:
		fmt.Fprintf(w, "%s<identifier>%s</identifier>\n", ind, e.Var)

	case LiteralExpr:
		fmt.Fprintf(w, "%s<%sConstant>%s</%sConstant>\n", ind, e.Type, e.Value, e.Type)

	case ArrayExpr:
		fmt.Fprintf(w, "%s<arrayAccess>\n", ind)
		fmt.Fprintf(w, "%s  <identifier>%s</identifier>\n", ind, e.Var)
		dumpExpression(w, e.Index, depth+1)
		fmt.Fprintf(w, "%s</arrayAccess>\n", ind)

	case UnaryExpr:
		fmt.Fprintf(w, "%s<unaryOp> <symbol>%s</symbol>\n", ind, e.Type)
		dumpExpression(w, e.Rhs, depth+1)
		fmt.Fprintf(w, "%s</unaryOp>\n", ind)

	case BinaryExpr:
		fmt.Fprintf(w, "%s<expression>\n", ind)
		dumpExpression(w, e.Lhs, depth+1)
		fmt.Fprintf(w, "%s  <symbol>%s</symbol>\n", ind, e.Type)
		dumpExpression(w, e.Rhs, depth+1)
		fmt.Fprintf(w, "%s</expression>\n", ind)

	case FuncCallExpr:
		fmt.Fprintf(w, "%s<subroutineCall>\n", ind)
		if e.IsExtCall {
			fmt.Fprintf(w, "%s  <identifier>%s</identifier>\n", ind, e.Var)
		}
		fmt.Fprintf(w, "%s  <identifier>%s</identifier>\n", ind, e.FuncName)
		for _, arg := range e.Arguments {
			dumpExpression(w, arg, depth+1)
		}
		fmt.Fprintf(w, "%s</subroutineCall>\n", ind)

	default:
		fmt.Fprintf(w, "%s<unknownExpression/>\n", ind)
	}
}

func indent(depth int) string {
	buf := make([]byte, depth*2)
	for i := range buf {
		buf[i] = ' '
	}
	return string(buf)
}
