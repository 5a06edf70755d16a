package hack

// ----------------------------------------------------------------------------
// General information

// This section contains some general information about the Hack instruction set.
//
// We declare a shared 'Instruction' interface for both A and C instructions as well
// as defining some useful constants for runtime assertions during the codegen phase
// such as the 'MaxAddressableMemory' that defines the upper limit to Memory capacity.

// Just used to put together A and C instructions struct, use type switch to disambiguate.
type Instruction interface{}

// A fully resolved Hack program, ready for binary encoding. Label declarations
// are not represented here anymore: by the time a 'asm.Lowerer' produces this,
// labels have already been folded into a 'SymbolTable'.
type Program []Instruction

const MaxAddressableMemory uint16 = (1 << 15) // Memory size: an A Instruction address must be below this.

// ----------------------------------------------------------------------------
// Symbol Table

// Keeps track, for every user defined identifier (label or variable) referenced by an
// A Instruction, of its resolved memory address and the index of its last use in the
// program. The latter is needed to recycle variable memory slots once the variable is
// no longer going to be referenced again.
type SymbolTable map[string]SymbolEntry

// A single entry of the 'SymbolTable', keyed by the identifier it refers to.
type SymbolEntry struct {
	Address uint16 // Resolved memory address, 'Unresolved' if still pending allocation
	LastUse uint16 // Index of the last instruction referencing this identifier
}

// Sentinel value for 'SymbolEntry.Address': means the identifier is a variable
// that has not been assigned a memory slot yet.
const Unresolved uint16 = 0xFFFF

// Sentinel value for 'SymbolEntry.LastUse': means the identifier is a label (or
// otherwise not a recyclable variable), so its slot should never be reclaimed.
const NotAVariable uint16 = 0xFFFF

// ----------------------------------------------------------------------------
// A Instructions

// In memory representation of an A Instruction for the Hack architecture spec.
//
// The A instruction has only one functionality in the Hack computer, it instructs
// the CPU to load a specific memory address from the computer memory (this includes
// both the RAM as well as the memory mapped I/O such as Keyboard and Screen).
//
// The location can be expressed in multiple way:
// - A raw memory address (e.g. 1, 2, 3)
// - A user defined label (e.g. LOOP, ADD, TEMP)
// - A built-in symbols from the Hack architecture spec (e.g. SP, THIS, THAT)
type AInstruction struct {
	LocType LocationType // The type of the location identified by 'Name' field
	LocName string       // A generic "payload" (the label/builtin/raw symbol)
}

type LocationType uint8 // Enumeration for all the different type of location (built-in, label, raw)

const (
	Raw     LocationType = 0 // Raw address literal (e.g. @2345, @8989)
	Label   LocationType = 1 // User-defined location w/ a user given name (e.g. @MAIN, @LOOP)
	BuiltIn LocationType = 2 // Predefined  associations by the Hack specs (@SCREEN, @KBD, @R1)
)

// ----------------------------------------------------------------------------
// C Instructions

// In memory representation of an C Instruction for the Hack architecture spec.
//
// The C instruction handles the computation side of the Hack computer, it instructs
// the CPU on what operation to execute and which register to use, also it allows to
// specify jump conditions to change the execution flow at runtime.
//
// It carries no location: the address it operates on (or jumps to) is the one loaded
// in the A register by a preceding A Instruction.
type CInstruction struct {
	Comp string // The 'computation' bit-codes, defines the calculation that the CPU should perform
	Dest string // The 'destination' bit-codes, defines if/where the result should be saved
	Jump string // The 'jump' bit-codes, define on what premise the jump to another instruction should occur
}
