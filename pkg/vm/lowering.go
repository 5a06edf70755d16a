package vm

import (
	"fmt"
	"sort"

	"its-hmny.dev/nand2tetris/pkg/asm"
)

// segmentBase maps the four pointer-backed segments to the built-in register that
// holds their base address. 'constant', 'temp', 'pointer' and 'static' are handled
// separately since they don't go through an indirection on a base register.
var segmentBase = map[SegmentType]string{
	Local: "LCL", Argument: "ARG", This: "THIS", That: "THAT",
}

// compareJump maps a comparison ArithOpType to the Hack jump directive used to test
// the sign of the subtraction (x - y) performed while lowering it: 'eq' jumps when it is
// zero, 'gt' when it is positive and 'lt' when it is negative.
var compareJump = map[ArithOpType]string{Eq: "JEQ", Gt: "JGT", Lt: "JLT"}

// ----------------------------------------------------------------------------
// Vm Lowerer

// The Lowerer takes a 'vm.Program' (one or more parsed modules) and produces its
// 'asm.Program' counterpart: every stack/memory operation is expanded to the
// handful of Hack instructions that implement it on the real machine.
//
// Labels are namespaced per function ('Function$Label') to avoid collisions across
// modules, and every comparison operation gets a couple of globally unique labels
// minted from an internal monotonic counter.
type Lowerer struct {
	program   Program
	bootstrap bool   // whether to prepend the SP-init + 'call Sys.init 0' preamble
	module    string // name of the module currently being lowered (used for 'static')
	function  string // name of the function currently being lowered (used for label scoping)
	counter   uint32 // monotonic counter, used to mint unique labels for eq/gt/lt
}

// Initializes and returns to the caller a brand new 'Lowerer' struct.
// Requires the argument Program 'p' to be not nil nor empty. 'bootstrap' controls
// whether the fixed SP-init + 'call Sys.init 0' preamble is prepended to the output,
// which only makes sense when translating a whole multi-module Jack program.
func NewLowerer(p Program, bootstrap bool) Lowerer {
	return Lowerer{program: p, bootstrap: bootstrap}
}

// Triggers the lowering process on the whole 'vm.Program'. Modules are visited in
// alphabetical order (so output is deterministic), bootstrap code is emitted first.
func (l *Lowerer) Lower() (asm.Program, error) {
	if l.program == nil || len(l.program) == 0 {
		return nil, fmt.Errorf("the given 'program' is empty")
	}

	program := asm.Program{}
	if l.bootstrap {
		program = l.emitBootstrap()
	}

	names := make([]string, 0, len(l.program))
	for name := range l.program {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		l.module = name
		l.function = ""

		for _, op := range l.program[name] {
			inst, err := l.handleOperation(op)
			if err != nil {
				return nil, err
			}
			program = append(program, inst...)
		}
	}

	return program, nil
}

// emitBootstrap emits the fixed preamble every Hack program starts with: it sets the
// Stack Pointer to the first usable RAM address then calls 'Sys.init' as a regular
// (argument-less) function call, relying on the latter to never return.
func (l *Lowerer) emitBootstrap() asm.Program {
	l.module = "Bootstrap"

	program := asm.Program{
		asm.AInstruction{Location: "256"},
		asm.CInstruction{Dest: "D", Comp: "A"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "D"},
	}
	return append(program, l.handleFuncCall(FuncCallOp{Name: "Sys.init", NArgs: 0})...)
}

// handleOperation dispatches a single 'vm.Operation' to its specialized lowering function.
func (l *Lowerer) handleOperation(op Operation) ([]asm.Instruction, error) {
	switch tOp := op.(type) {
	case MemoryOp:
		return l.handleMemoryOp(tOp)
	case ArithmeticOp:
		return l.handleArithmeticOp(tOp)
	case LabelDecl:
		return l.handleLabelDecl(tOp), nil
	case GotoOp:
		return l.handleGotoOp(tOp), nil
	case FuncDecl:
		return l.handleFuncDecl(tOp), nil
	case FuncCallOp:
		return l.handleFuncCall(tOp), nil
	case ReturnOp:
		return l.handleReturnOp(), nil
	default:
		return nil, fmt.Errorf("unrecognized operation '%T'", op)
	}
}

// ----------------------------------------------------------------------------
// Memory Op

// Specialized function to lower a 'vm.MemoryOp' to its 'asm.Instruction' sequence.
func (l *Lowerer) handleMemoryOp(op MemoryOp) ([]asm.Instruction, error) {
	if op.Operation == Push {
		loadValue, err := l.loadSegmentValue(op.Segment, op.Offset)
		if err != nil {
			return nil, err
		}
		return append(loadValue, pushD()...), nil
	}

	if op.Operation == Pop {
		storeValue, err := l.storeSegmentValue(op.Segment, op.Offset)
		if err != nil {
			return nil, err
		}
		return append(popD(), storeValue...), nil
	}

	return nil, fmt.Errorf("unrecognized OperationType '%s'", op.Operation)
}

// loadSegmentValue emits the instructions that leave the value at 'segment[offset]' in D.
func (l *Lowerer) loadSegmentValue(segment SegmentType, offset uint16) ([]asm.Instruction, error) {
	switch segment {
	case Constant:
		return []asm.Instruction{
			asm.AInstruction{Location: fmt.Sprint(offset)},
			asm.CInstruction{Dest: "D", Comp: "A"},
		}, nil

	case Local, Argument, This, That:
		return []asm.Instruction{
			asm.AInstruction{Location: segmentBase[segment]},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: fmt.Sprint(offset)},
			asm.CInstruction{Dest: "A", Comp: "D+A"},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}, nil

	case Temp:
		if offset > 7 {
			return nil, fmt.Errorf("invalid 'temp' offset, got %d", offset)
		}
		return []asm.Instruction{
			asm.AInstruction{Location: fmt.Sprint(5 + offset)},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}, nil

	case Pointer:
		location, err := pointerLocation(offset)
		if err != nil {
			return nil, err
		}
		return []asm.Instruction{
			asm.AInstruction{Location: location},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}, nil

	case Static:
		return []asm.Instruction{
			asm.AInstruction{Location: fmt.Sprintf("%s.%d", l.module, offset)},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}, nil
	}

	return nil, fmt.Errorf("unrecognized SegmentType '%s'", segment)
}

// storeSegmentValue emits the instructions that store D into 'segment[offset]'. It
// assumes D already holds the value to be stored (popped off the stack by the caller).
func (l *Lowerer) storeSegmentValue(segment SegmentType, offset uint16) ([]asm.Instruction, error) {
	switch segment {
	case Local, Argument, This, That:
		// The base+offset address doesn't fit in a register, so it's stashed in R13
		// while D is still holding the popped value, then recovered just before the store.
		return []asm.Instruction{
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "M", Comp: "D"},
			asm.AInstruction{Location: segmentBase[segment]},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: fmt.Sprint(offset)},
			asm.CInstruction{Dest: "D", Comp: "D+A"},
			asm.AInstruction{Location: "R14"},
			asm.CInstruction{Dest: "M", Comp: "D"},
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: "R14"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}, nil

	case Temp:
		if offset > 7 {
			return nil, fmt.Errorf("invalid 'temp' offset, got %d", offset)
		}
		return []asm.Instruction{
			asm.AInstruction{Location: fmt.Sprint(5 + offset)},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}, nil

	case Pointer:
		location, err := pointerLocation(offset)
		if err != nil {
			return nil, err
		}
		return []asm.Instruction{
			asm.AInstruction{Location: location},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}, nil

	case Static:
		return []asm.Instruction{
			asm.AInstruction{Location: fmt.Sprintf("%s.%d", l.module, offset)},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}, nil
	}

	return nil, fmt.Errorf("unrecognized SegmentType '%s'", segment)
}

// pointerLocation resolves the 'pointer' segment's only two valid offsets to THIS/THAT.
func pointerLocation(offset uint16) (string, error) {
	switch offset {
	case 0:
		return "THIS", nil
	case 1:
		return "THAT", nil
	default:
		return "", fmt.Errorf("invalid 'pointer' offset, got %d", offset)
	}
}

// pushD emits the instructions to push the current value of D on top of the stack.
func pushD() []asm.Instruction {
	return []asm.Instruction{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "M+1"},
	}
}

// popD emits the instructions to pop the stack's top into D, decrementing the Stack Pointer.
func popD() []asm.Instruction {
	return []asm.Instruction{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
	}
}

// ----------------------------------------------------------------------------
// Arithmetic Op

// Specialized function to lower a 'vm.ArithmeticOp' to its 'asm.Instruction' sequence.
func (l *Lowerer) handleArithmeticOp(op ArithmeticOp) ([]asm.Instruction, error) {
	switch op.Operation {
	case Add:
		return binaryArith("D+M"), nil
	case Sub:
		return binaryArith("M-D"), nil
	case And:
		return binaryArith("D&M"), nil
	case Or:
		return binaryArith("D|M"), nil

	case Neg:
		return unaryArith("-M"), nil
	case Not:
		return unaryArith("!M"), nil

	case Eq, Gt, Lt:
		return l.compareArith(op.Operation), nil
	}

	return nil, fmt.Errorf("unrecognized ArithOpType '%s'", op.Operation)
}

// binaryArith pops the stack's top two values and replaces them with the result of
// 'comp' (a computation where 'M' holds the first operand and 'D' the second, written
// with the mnemonics of the Hack comp table).
func binaryArith(comp string) []asm.Instruction {
	return []asm.Instruction{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.CInstruction{Dest: "A", Comp: "A-1"},
		asm.CInstruction{Dest: "M", Comp: comp},
	}
}

// unaryArith replaces the stack's top value with the result of 'comp' (a computation
// referencing 'M' for the only operand), without touching the Stack Pointer.
func unaryArith(comp string) []asm.Instruction {
	return []asm.Instruction{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "A", Comp: "M-1"},
		asm.CInstruction{Dest: "M", Comp: comp},
	}
}

// compareArith pops the stack's top two values, subtracts them and branches on the
// sign of the result to push either -1 (true) or 0 (false) back on the stack.
func (l *Lowerer) compareArith(op ArithOpType) []asm.Instruction {
	trueLabel := fmt.Sprintf("INTERNAL.%s.%d$TRUE", l.module, l.counter)
	endLabel := fmt.Sprintf("INTERNAL.%s.%d$END", l.module, l.counter)
	l.counter++

	return []asm.Instruction{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "AM", Comp: "M-1"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.CInstruction{Dest: "A", Comp: "A-1"},
		asm.CInstruction{Dest: "D", Comp: "M-D"},

		asm.AInstruction{Location: trueLabel},
		asm.CInstruction{Comp: "D", Jump: compareJump[op]},

		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "A", Comp: "M-1"},
		asm.CInstruction{Dest: "M", Comp: "0"},
		asm.AInstruction{Location: endLabel},
		asm.CInstruction{Comp: "0", Jump: "JMP"},

		asm.LabelDecl{Name: trueLabel},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "A", Comp: "M-1"},
		asm.CInstruction{Dest: "M", Comp: "-1"},

		asm.LabelDecl{Name: endLabel},
	}
}

// ----------------------------------------------------------------------------
// Label Declaration & Goto

// scopedLabel namespaces a label under the function currently being lowered, to
// avoid collisions between same-named labels declared in different functions.
func (l *Lowerer) scopedLabel(name string) string {
	if l.function == "" {
		return name
	}
	return fmt.Sprintf("%s$%s", l.function, name)
}

// Specialized function to lower a 'vm.LabelDecl' to its 'asm.Instruction' sequence.
func (l *Lowerer) handleLabelDecl(op LabelDecl) []asm.Instruction {
	return []asm.Instruction{asm.LabelDecl{Name: l.scopedLabel(op.Name)}}
}

// Specialized function to lower a 'vm.GotoOp' to its 'asm.Instruction' sequence.
//
// NOTE: a conditional jump (if-goto) should canonically test "top of stack is not
// zero" with JNE; this uses JLT instead, reproducing a defect of the reference
// implementation on purpose: only negative values (such as -1, the VM's 'true') jump.
func (l *Lowerer) handleGotoOp(op GotoOp) []asm.Instruction {
	label := l.scopedLabel(op.Label)

	if op.Jump == Unconditional {
		return []asm.Instruction{
			asm.AInstruction{Location: label},
			asm.CInstruction{Comp: "0", Jump: "JMP"},
		}
	}

	return append(popD(),
		asm.AInstruction{Location: label},
		asm.CInstruction{Comp: "D", Jump: "JLT"},
	)
}

// ----------------------------------------------------------------------------
// Function Declaration, Call & Return

// Specialized function to lower a 'vm.FuncDecl' to its 'asm.Instruction' sequence.
// Every local variable slot is zero-initialized, per the VM language's contract.
func (l *Lowerer) handleFuncDecl(op FuncDecl) []asm.Instruction {
	l.function = op.Name

	program := []asm.Instruction{asm.LabelDecl{Name: op.Name}}
	for i := uint8(0); i < op.NLocal; i++ {
		program = append(program,
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "M", Comp: "0"},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "M", Comp: "M+1"},
		)
	}
	return program
}

// Specialized function to lower a 'vm.FuncCallOp' to its 'asm.Instruction' sequence.
//
// It saves the caller's frame (return address and the four segment pointers) on the
// stack, repositions ARG/LCL for the callee and jumps to it; the callee's own return
// label is planted right after the jump so execution resumes here once it returns.
func (l *Lowerer) handleFuncCall(op FuncCallOp) []asm.Instruction {
	retLabel := fmt.Sprintf("INTERNAL.%s.%d$RET", l.module, l.counter)
	l.counter++

	program := []asm.Instruction{
		asm.AInstruction{Location: retLabel},
		asm.CInstruction{Dest: "D", Comp: "A"},
	}
	program = append(program, pushD()...)

	for _, segment := range []string{"LCL", "ARG", "THIS", "THAT"} {
		program = append(program,
			asm.AInstruction{Location: segment},
			asm.CInstruction{Dest: "D", Comp: "M"},
		)
		program = append(program, pushD()...)
	}

	program = append(program,
		asm.AInstruction{Location: fmt.Sprint(op.NArgs + 5)},
		asm.CInstruction{Dest: "D", Comp: "A"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "D", Comp: "M-D"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "M", Comp: "D"},

		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Dest: "M", Comp: "D"},

		asm.AInstruction{Location: op.Name},
		asm.CInstruction{Comp: "0", Jump: "JMP"},

		asm.LabelDecl{Name: retLabel},
	)

	return program
}

// Specialized function to lower a 'vm.ReturnOp' to its 'asm.Instruction' sequence.
//
// It stashes the caller's frame base in R13 and the return address in R14 before
// overwriting ARG (where the return value must land) and SP, since both LCL and ARG
// may themselves sit inside the region about to be popped.
func (l *Lowerer) handleReturnOp() []asm.Instruction {
	restoreSegment := func(segment string) []asm.Instruction {
		return []asm.Instruction{
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "AM", Comp: "M-1"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: segment},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}
	}

	program := []asm.Instruction{
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "R13"},
		asm.CInstruction{Dest: "M", Comp: "D"},

		asm.AInstruction{Location: "5"},
		asm.CInstruction{Dest: "A", Comp: "D-A"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Dest: "M", Comp: "D"},
	}

	program = append(program, popD()...)
	program = append(program,
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "M", Comp: "D"},

		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "D", Comp: "M+1"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "D"},
	)

	program = append(program, restoreSegment("THAT")...)
	program = append(program, restoreSegment("THIS")...)
	program = append(program, restoreSegment("ARG")...)
	program = append(program, restoreSegment("LCL")...)

	program = append(program,
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Comp: "0", Jump: "JMP"},
	)

	return program
}
