package asm

import (
	"fmt"
	"strconv"
	"strings"

	"its-hmny.dev/nand2tetris/pkg/hack"
)

// ----------------------------------------------------------------------------
// Built-in alias classification

// builtinAliasNames mirrors the Hack predefined symbol table but is kept as its own
// lowercase-keyed lookup, so that classifying an '@X' reference (built-in vs variable)
// can be done case-insensitively, exactly as the reference implementation does.
//
// NOTE: the "r1o" entry (a capital letter 'O', not the digit zero) is not a typo fixed
// here on purpose. It reproduces a quirk of the reference implementation where '@R10'
// fails to classify as the built-in register 10 and ends up tracked as an unbound
// variable instead, while the misspelled '@R1O' resolves correctly to register 10.
var builtinAliasNames = map[string]string{
	"r0": "R0", "r1": "R1", "r2": "R2", "r3": "R3", "r4": "R4",
	"r5": "R5", "r6": "R6", "r7": "R7", "r8": "R8", "r9": "R9",
	"r1o": "R10", "r11": "R11", "r12": "R12", "r13": "R13", "r14": "R14", "r15": "R15",
	"sp": "SP", "lcl": "LCL", "arg": "ARG", "this": "THIS", "that": "THAT",
	"screen": "SCREEN", "kbd": "KBD",
}

// ----------------------------------------------------------------------------
// Asm Lowerer

// The Lowerer takes an 'asm.Program' and produces its 'hack.Program' counterpart, alongside
// the 'hack.SymbolTable' built while resolving labels and variables.
//
// This mirrors the two-pass structure of the reference assembler: pass 1 (done here, in
// 'Lower') walks the statements to resolve every label to its instruction index and track
// every variable-like reference with a pending address and its last-use index; pass 2
// (performed later by 'hack.CodeGenerator') allocates variable memory slots and recycles
// them once their last use has been emitted.
type Lowerer struct{ program Program }

// Initializes and returns to the caller a brand new 'Lowerer' struct.
// Requires the argument Program to be not nil nor empty.
func NewLowerer(p Program) Lowerer {
	return Lowerer{program: p}
}

// Triggers the lowering process. It iterates instruction by instruction and recursively
// calls the specified helper function based on the instruction type (much like a recursive
// descend parser but for lowering), this means the AST is visited in DFS order.
func (l *Lowerer) Lower() (hack.Program, hack.SymbolTable, error) {
	if l.program == nil || len(l.program) == 0 {
		return nil, nil, fmt.Errorf("the given 'program' is empty")
	}

	table := hack.SymbolTable{}

	// Pass 1: resolve every label to its instruction index, and register every
	// variable-like '@X' reference with a pending address and its last-use index.
	idx := uint16(0)
	for _, stmt := range l.program {
		switch tStmt := stmt.(type) {
		case LabelDecl:
			// A label declaration always wins over whatever was previously tracked under the
			// same name (e.g. a variable reference seen earlier because of a forward jump).
			table[tStmt.Name] = hack.SymbolEntry{Address: idx, LastUse: hack.NotAVariable}

		case AInstruction:
			if isVariableReference(tStmt.Location) {
				entry, exists := table[tStmt.Location]
				if !exists {
					table[tStmt.Location] = hack.SymbolEntry{Address: hack.Unresolved, LastUse: idx}
				} else if entry.LastUse != hack.NotAVariable {
					// Not a label: bump the last-use index to the current instruction.
					entry.LastUse = idx
					table[tStmt.Location] = entry
				}
			}
			idx++

		case CInstruction:
			idx++

		default:
			return nil, nil, fmt.Errorf("unrecognized instruction '%T'", stmt)
		}
	}

	// Pass 2 (classification only): emit the instruction stream with labels stripped out,
	// leaving address allocation/recycling to 'hack.CodeGenerator'.
	converted := []hack.Instruction{}
	for _, stmt := range l.program {
		switch tStmt := stmt.(type) {
		case AInstruction:
			hackInst, err := l.HandleAInst(tStmt)
			if hackInst == nil || err != nil {
				return nil, nil, err
			}
			converted = append(converted, hackInst)

		case CInstruction:
			hackInst, err := l.HandleCInst(tStmt)
			if hackInst == nil || err != nil {
				return nil, nil, err
			}
			converted = append(converted, hackInst)

		case LabelDecl:
			continue // Already folded into the SymbolTable during pass 1
		}
	}

	return converted, table, nil
}

// isVariableReference reports whether an '@X' location should be tracked in the symbol
// table as a variable at all: raw numeric addresses and built-in aliases never are.
func isVariableReference(location string) bool {
	if _, err := strconv.ParseInt(location, 10, 16); err == nil {
		return false
	}
	_, isBuiltin := builtinAliasNames[strings.ToLower(location)]
	return !isBuiltin
}

// Specialized function to convert a 'asm.AInstruction' node to an 'hack.AInstruction'.
func (Lowerer) HandleAInst(inst AInstruction) (hack.Instruction, error) {
	// 1) If it can be parsed as an int we set the 'LocType' to 'Raw' accordingly
	if _, err := strconv.ParseInt(inst.Location, 10, 16); err == nil {
		return hack.AInstruction{LocType: hack.Raw, LocName: inst.Location}, nil
	}
	// 2) If its lowercased form matches a built-in alias we set 'LocType' to 'BuiltIn'
	if canonical, isBuiltin := builtinAliasNames[strings.ToLower(inst.Location)]; isBuiltin {
		return hack.AInstruction{LocType: hack.BuiltIn, LocName: canonical}, nil
	}
	// 3) Else it's a user defined label/variable and we set 'LocType' to 'Label' accordingly
	return hack.AInstruction{LocType: hack.Label, LocName: inst.Location}, nil
}

// Specialized function to convert a 'asm.CInstruction' node to an 'hack.CInstruction'.
func (Lowerer) HandleCInst(inst CInstruction) (hack.Instruction, error) {
	if inst.Comp == "" { // Pre-check: CInstruction.Comp should always be provided
		return nil, fmt.Errorf("'Comp' sub-instruction should always be provided")
	}

	// 'Dest' and 'Jump' are each optional and independent: any combination is passed through
	return hack.CInstruction{Dest: inst.Dest, Comp: inst.Comp, Jump: inst.Jump}, nil
}
