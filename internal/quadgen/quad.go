// quad.go defines the quadruple intermediate representation: flat
// (op, arg1, arg2, result) instructions over virtual addresses.

package quadgen

import (
	"fmt"

	"github.com/JosueSosa01/Patito-1/internal/semantic"
)

// Op is the closed set of quadruple opcodes.
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpLt  Op = "<"
	OpGt  Op = ">"
	OpLe  Op = "<="
	OpGe  Op = ">="
	OpEq  Op = "=="
	OpNe  Op = "!="

	OpAssign  Op = "="
	OpPrint   Op = "PRINT"
	OpGoto    Op = "GOTO"
	OpGotoF   Op = "GOTOF"
	OpEra     Op = "ERA"
	OpParam   Op = "PARAM"
	OpGosub   Op = "GOSUB"
	OpRet     Op = "RET"
	OpEndFunc Op = "ENDFUNC"
)

// NoAddr and NoIndex are the sentinel values for unused quadruple slots.
const (
	NoAddr  = semantic.NoAddr
	NoIndex = -1
)

// Quad is a single three-address instruction: (op, arg1, arg2, result).
// Arg1/Arg2 hold virtual addresses for data operations. ERA and GOSUB
// name their callee in Func instead of overloading Arg1 with a second
// meaning.
type Quad struct {
	Op     Op
	Arg1   semantic.Address
	Arg2   semantic.Address
	Result int // virtual address (as int) or a quadruple index, depending on Op.
	Func   string
}

// ResultAddr interprets Result as a virtual address.
func (q Quad) ResultAddr() semantic.Address { return semantic.Address(q.Result) }

// String renders the quadruple as "(op, a, b, r)" with "_" for unused
// slots; the listing index is supplied by the caller since Quad itself
// does not know its own position.
func (q Quad) String() string {
	fmt1 := func(a semantic.Address) string {
		if a == NoAddr {
			return "_"
		}
		return fmt.Sprintf("%d", a)
	}
	arg1 := fmt1(q.Arg1)
	if q.Op == OpEra || q.Op == OpGosub {
		arg1 = q.Func
	}
	arg2 := fmt1(q.Arg2)
	result := "_"
	if q.Result != NoIndex {
		result = fmt.Sprintf("%d", q.Result)
	}
	return fmt.Sprintf("(%s, %s, %s, %s)", q.Op, arg1, arg2, result)
}
