package jack

import "its-hmny.dev/nand2tetris/pkg/utils"

// ----------------------------------------------------------------------------
// Standard Library ABI

// StandardLibraryABI describes the signature (but not the body) of every class in the
// Jack OS, the fixed set of built-in classes every program can call into without
// having to provide its own '.vm' implementation for them (the real implementation
// ships as a handful of pre-compiled '.vm' files alongside the produced program).
//
// This is used purely by the type checker (and, for external calls, the lowerer) to
// validate/resolve calls made against these classes, exactly as it would for any
// other 'jack.Class' found while walking the Program.
var StandardLibraryABI = map[string]Class{
	"Math": stdClass("Math",
		stdFunc("abs", Int, stdArg("x", Int)),
		stdFunc("max", Int, stdArg("x", Int), stdArg("y", Int)),
		stdFunc("min", Int, stdArg("x", Int), stdArg("y", Int)),
		stdFunc("sqrt", Int, stdArg("x", Int)),
		stdFunc("multiply", Int, stdArg("x", Int), stdArg("y", Int)),
		stdFunc("divide", Int, stdArg("x", Int), stdArg("y", Int)),
	),

	"String": stdClass("String",
		stdCtor("new", "String", stdArg("maxLength", Int)),
		stdMethod("dispose", Void),
		stdMethod("length", Int),
		stdMethod("charAt", Char, stdArg("j", Int)),
		stdMethod("setCharAt", Void, stdArg("j", Int), stdArg("c", Char)),
		stdMethodObj("appendChar", "String", stdArg("c", Char)),
		stdMethod("eraseLastChar", Void),
		stdMethod("intValue", Int),
		stdMethod("setInt", Void, stdArg("n", Int)),
		stdFunc("newLine", Char),
		stdFunc("backSpace", Char),
		stdFunc("doubleQuote", Char),
	),

	"Array": stdClass("Array",
		stdCtorObj("new", "Array", stdArg("size", Int)),
		stdMethod("dispose", Void),
	),

	"Output": stdClass("Output",
		stdFunc("moveCursor", Void, stdArg("i", Int), stdArg("j", Int)),
		stdFunc("printChar", Void, stdArg("c", Char)),
		stdFuncObjArg("printString", Void, "s", "String"),
		stdFunc("printInt", Void, stdArg("i", Int)),
		stdFunc("println", Void),
		stdFunc("backSpace", Void),
	),

	"Screen": stdClass("Screen",
		stdFunc("clearScreen", Void),
		stdFunc("setColor", Void, stdArg("b", Bool)),
		stdFunc("drawPixel", Void, stdArg("x", Int), stdArg("y", Int)),
		stdFunc("drawLine", Void, stdArg("x1", Int), stdArg("y1", Int), stdArg("x2", Int), stdArg("y2", Int)),
		stdFunc("drawRectangle", Void, stdArg("x1", Int), stdArg("y1", Int), stdArg("x2", Int), stdArg("y2", Int)),
		stdFunc("drawCircle", Void, stdArg("x", Int), stdArg("y", Int), stdArg("r", Int)),
	),

	"Keyboard": stdClass("Keyboard",
		stdFunc("keyPressed", Char),
		stdFunc("readChar", Char),
		stdFuncObj("readLine", "String", stdFuncObjArgEntry("prompt", "String")),
		stdFunc("readInt", Int, stdFuncObjArgEntry("prompt", "String")),
	),

	"Memory": stdClass("Memory",
		stdFunc("peek", Int, stdArg("address", Int)),
		stdFunc("poke", Void, stdArg("address", Int), stdArg("value", Int)),
		stdFuncObj("alloc", "Array", stdFuncArgEntry("size", Int)),
		stdFuncObjArg("deAlloc", Void, "o", "Array"),
	),

	"Sys": stdClass("Sys",
		stdFunc("halt", Void),
		stdFunc("error", Void, stdArg("errorCode", Int)),
		stdFunc("wait", Void, stdArg("duration", Int)),
	),
}

// ----------------------------------------------------------------------------
// ABI construction helpers

// stdClass assembles a 'jack.Class' ABI entry (no fields, just callable subroutines).
func stdClass(name string, subroutines ...Subroutine) Class {
	entries := make([]utils.MapEntry[string, Subroutine], 0, len(subroutines))
	for _, sub := range subroutines {
		entries = append(entries, utils.MapEntry[string, Subroutine]{Key: sub.Name, Value: sub})
	}
	return Class{Name: name, Fields: utils.NewOrderedMap[string, Variable](), Subroutines: utils.NewOrderedMapFromList(entries)}
}

// stdArg declares a single parameter Variable for a standard library subroutine.
func stdArg(name string, dataType DataType) Variable {
	return Variable{Name: name, Type: Parameter, DataType: dataType}
}

// stdFunc declares a plain (stateless) standard library function, e.g. 'Math.abs'.
func stdFunc(name string, ret DataType, args ...Variable) Subroutine {
	return Subroutine{Name: name, Type: Function, Return: ret, Arguments: argMap(args)}
}

// stdFuncObjArgEntry/stdFuncArgEntry build a single Object/primitive-typed argument,
// used where 'stdFunc'/'stdFuncObj' need an argument list built one entry at a time.
func stdFuncObjArgEntry(name, className string) Variable {
	return Variable{Name: name, Type: Parameter, DataType: Object, ClassName: className}
}
func stdFuncArgEntry(name string, dataType DataType) Variable { return stdArg(name, dataType) }

// stdFuncObjArg declares a function taking a single Object-typed argument.
func stdFuncObjArg(name string, ret DataType, argName, argClass string) Subroutine {
	return stdFunc(name, ret, stdFuncObjArgEntry(argName, argClass))
}

// stdFuncObj declares a function returning an Object of the given class.
func stdFuncObj(name, retClass string, args ...Variable) Subroutine {
	return Subroutine{Name: name, Type: Function, Return: Object, Arguments: argMap(args)}
}

// stdMethod declares an instance method (implicit 'this' receiver, not part of 'Arguments').
func stdMethod(name string, ret DataType, args ...Variable) Subroutine {
	return Subroutine{Name: name, Type: Method, Return: ret, Arguments: argMap(args)}
}

// stdMethodObj declares an instance method returning an Object of the given class.
func stdMethodObj(name, retClass string, args ...Variable) Subroutine {
	return Subroutine{Name: name, Type: Method, Return: Object, Arguments: argMap(args)}
}

// stdCtor/stdCtorObj declare a constructor ('new'), always returning an Object of its own class.
func stdCtor(name, className string, args ...Variable) Subroutine {
	return Subroutine{Name: name, Type: Constructor, Return: Object, Arguments: argMap(args)}
}
func stdCtorObj(name, className string, args ...Variable) Subroutine {
	return stdCtor(name, className, args...)
}

func argMap(args []Variable) map[string]Variable {
	out := make(map[string]Variable, len(args))
	for _, arg := range args {
		out[arg.Name] = arg
	}
	return out
}
