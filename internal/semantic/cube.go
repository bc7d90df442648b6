// cube.go implements the static semantic cube: a lookup table keyed by
// (operator, left type, right type) that yields the result type, with a
// miss meaning the combination is a type error.

package semantic

// Op is a binary arithmetic or relational operator as it appears in a
// quadruple.
type Op string

const (
	Add Op = "+"
	Sub Op = "-"
	Mul Op = "*"
	Div Op = "/"
	Lt  Op = "<"
	Gt  Op = ">"
	Le  Op = "<="
	Ge  Op = ">="
	Eq  Op = "=="
	Ne  Op = "!="
)

// arithOps and relOps partition the operator set.
var arithOps = map[Op]bool{Add: true, Sub: true, Mul: true, Div: true}
var relOps = map[Op]bool{Lt: true, Gt: true, Le: true, Ge: true, Eq: true, Ne: true}

type cubeKey struct {
	Op   Op
	L, R Type
}

// cube is the static (op, left, right) -> result lookup table.
var cube = buildCube()

func buildCube() map[cubeKey]Type {
	c := make(map[cubeKey]Type)
	allow := func(op Op, l, r, res Type) { c[cubeKey{op, l, r}] = res }

	for op := range arithOps {
		allow(op, Int, Int, Int)
		allow(op, Int, Float, Float)
		allow(op, Float, Int, Float)
		allow(op, Float, Float, Float)
	}
	for op := range relOps {
		allow(op, Int, Int, Bool)
		allow(op, Int, Float, Bool)
		allow(op, Float, Int, Bool)
		allow(op, Float, Float, Bool)
	}
	allow(Eq, String, String, Bool)
	allow(Ne, String, String, Bool)
	return c
}

// ResultType consults the semantic cube for (op, l, r), returning the
// result type and true, or false if the combination is undefined.
func ResultType(op Op, l, r Type) (Type, bool) {
	t, ok := cube[cubeKey{op, l, r}]
	return t, ok
}

// IsArithmetic reports whether op is one of + - * /.
func IsArithmetic(op Op) bool { return arithOps[op] }

// IsRelational reports whether op is one of < > <= >= == !=.
func IsRelational(op Op) bool { return relOps[op] }

// AssignOK reports whether a value of type rhs may be assigned/copied
// into a slot of type lhs: T := T always; float := int widens; nothing
// else.
func AssignOK(lhs, rhs Type) bool {
	if lhs == rhs {
		return true
	}
	return lhs == Float && rhs == Int
}
