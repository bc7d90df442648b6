// Package vm implements the stack-frame interpreter for the quadruple
// IR. Quadruples, not bytecode, are the unit of execution; calls follow
// the ERA/PARAM/GOSUB/RET/ENDFUNC protocol, with each activation frame
// owning its own local and temporary memory.
package vm

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/JosueSosa01/Patito-1/internal/perror"
	"github.com/JosueSosa01/Patito-1/internal/quadgen"
	"github.com/JosueSosa01/Patito-1/internal/semantic"
)

// VM interprets a quadruple program produced by the quadgen package.
type VM struct {
	quads  []quadgen.Quad
	funcs  *semantic.FuncDirectory
	consts map[semantic.Address]any
	global map[semantic.Address]any

	current   *Frame
	pending   *Frame
	callStack []*Frame
	ip        int

	out io.Writer

	// Logger receives a Debug-level trace of every executed quadruple
	// when non-nil. It is left unset by default; the CLI wires it up only
	// when -trace is passed, keeping diagnostic noise behind an explicit
	// opt-in.
	Logger *logrus.Logger
}

// ConstMemory builds the VM's constant-address table from an already
// populated semantic.VirtualMemory, inverting the interning map into
// address -> value form.
func ConstMemory(mem *semantic.VirtualMemory) map[semantic.Address]any {
	out := make(map[semantic.Address]any)
	for key, addr := range mem.Constants() {
		out[addr] = key.Value
	}
	return out
}

// New returns a VM ready to execute quads against funcs (needed to
// resolve PARAM's target address within a callee) and consts (read-only
// constant memory).
func New(quads []quadgen.Quad, funcs *semantic.FuncDirectory, consts map[semantic.Address]any, out io.Writer) *VM {
	return &VM{
		quads:  quads,
		funcs:  funcs,
		consts: consts,
		global: make(map[semantic.Address]any),
		out:    out,
	}
}

// Run executes the program starting at quadruple 0, returning on
// completion (main fell through, or a top-level RET/ENDFUNC popped an
// empty call stack) or on the first runtime error.
func (m *VM) Run() error {
	m.current = newFrame("main", -1)
	m.ip = 0

	for m.ip >= 0 && m.ip < len(m.quads) {
		q := m.quads[m.ip]
		m.trace(q)

		switch {
		case isArith(q.Op):
			if err := m.execArith(q); err != nil {
				return err
			}
			m.ip++

		case isRel(q.Op):
			if err := m.execRel(q); err != nil {
				return err
			}
			m.ip++

		case q.Op == quadgen.OpAssign:
			v, err := m.read(q.Arg1)
			if err != nil {
				return err
			}
			if err := m.write(q.ResultAddr(), v); err != nil {
				return err
			}
			m.ip++

		case q.Op == quadgen.OpPrint:
			v, err := m.read(q.Arg1)
			if err != nil {
				return err
			}
			fmt.Fprintln(m.out, FormatValue(v))
			m.ip++

		case q.Op == quadgen.OpGoto:
			m.ip = q.Result

		case q.Op == quadgen.OpGotoF:
			v, err := m.read(q.Arg1)
			if err != nil {
				return err
			}
			cond, ok := v.(bool)
			if !ok {
				return perror.New(perror.Runtime, "GOTOF: condition value is not bool (%T)", v)
			}
			if !cond {
				m.ip = q.Result
			} else {
				m.ip++
			}

		case q.Op == quadgen.OpEra:
			m.pending = newFrame(q.Func, -1)
			m.ip++

		case q.Op == quadgen.OpParam:
			if err := m.execParam(q); err != nil {
				return err
			}
			m.ip++

		case q.Op == quadgen.OpGosub:
			if err := m.execGosub(q); err != nil {
				return err
			}

		case q.Op == quadgen.OpRet:
			if q.Arg1 != quadgen.NoAddr && q.Result != quadgen.NoIndex {
				v, err := m.read(q.Arg1)
				if err != nil {
					return err
				}
				if err := m.write(q.ResultAddr(), v); err != nil {
					return err
				}
			}
			m.returnFromFunction()

		case q.Op == quadgen.OpEndFunc:
			m.returnFromFunction()

		default:
			return perror.New(perror.Runtime, "unknown opcode %q", q.Op)
		}
	}
	return nil
}

func (m *VM) trace(q quadgen.Quad) {
	if m.Logger != nil {
		m.Logger.WithField("ip", m.ip).Debugf("exec %s", q)
	}
}

func isArith(op quadgen.Op) bool {
	switch op {
	case quadgen.OpAdd, quadgen.OpSub, quadgen.OpMul, quadgen.OpDiv:
		return true
	default:
		return false
	}
}

func isRel(op quadgen.Op) bool {
	switch op {
	case quadgen.OpLt, quadgen.OpGt, quadgen.OpLe, quadgen.OpGe, quadgen.OpEq, quadgen.OpNe:
		return true
	default:
		return false
	}
}

func (m *VM) execArith(q quadgen.Quad) error {
	a, err := m.read(q.Arg1)
	if err != nil {
		return err
	}
	// Unary + and - carry no second operand.
	if q.Arg2 == quadgen.NoAddr {
		out, err := unary(q.Op, a)
		if err != nil {
			return err
		}
		return m.write(q.ResultAddr(), out)
	}
	b, err := m.read(q.Arg2)
	if err != nil {
		return err
	}
	out, err := arith(q.Op, a, b)
	if err != nil {
		return err
	}
	return m.write(q.ResultAddr(), out)
}

func unary(op quadgen.Op, a any) (any, error) {
	switch op {
	case quadgen.OpAdd:
		switch a.(type) {
		case int, float64:
			return a, nil
		}
	case quadgen.OpSub:
		switch n := a.(type) {
		case int:
			return -n, nil
		case float64:
			return -n, nil
		}
	}
	return nil, perror.New(perror.Runtime, "unary %q does not apply to %T", op, a)
}

// arith computes a binary arithmetic op with dynamic widening: int op
// int stays int for +, -, * but / is always true division, and any
// float operand widens the whole computation to float64.
func arith(op quadgen.Op, a, b any) (any, error) {
	ai, aIsInt := a.(int)
	bi, bIsInt := b.(int)
	if op == quadgen.OpDiv {
		af, err := toFloat(a)
		if err != nil {
			return nil, err
		}
		bf, err := toFloat(b)
		if err != nil {
			return nil, err
		}
		return af / bf, nil
	}
	if aIsInt && bIsInt {
		switch op {
		case quadgen.OpAdd:
			return ai + bi, nil
		case quadgen.OpSub:
			return ai - bi, nil
		case quadgen.OpMul:
			return ai * bi, nil
		}
	}
	af, err := toFloat(a)
	if err != nil {
		return nil, err
	}
	bf, err := toFloat(b)
	if err != nil {
		return nil, err
	}
	switch op {
	case quadgen.OpAdd:
		return af + bf, nil
	case quadgen.OpSub:
		return af - bf, nil
	case quadgen.OpMul:
		return af * bf, nil
	default:
		return nil, perror.New(perror.Runtime, "unsupported arithmetic opcode %q", op)
	}
}

func (m *VM) execRel(q quadgen.Quad) error {
	a, err := m.read(q.Arg1)
	if err != nil {
		return err
	}
	b, err := m.read(q.Arg2)
	if err != nil {
		return err
	}
	out, err := relational(q.Op, a, b)
	if err != nil {
		return err
	}
	return m.write(q.ResultAddr(), out)
}

func relational(op quadgen.Op, a, b any) (bool, error) {
	if op == quadgen.OpEq || op == quadgen.OpNe {
		as, aIsStr := a.(string)
		bs, bIsStr := b.(string)
		if aIsStr && bIsStr {
			if op == quadgen.OpEq {
				return as == bs, nil
			}
			return as != bs, nil
		}
	}
	af, err := toFloat(a)
	if err != nil {
		return false, err
	}
	bf, err := toFloat(b)
	if err != nil {
		return false, err
	}
	switch op {
	case quadgen.OpLt:
		return af < bf, nil
	case quadgen.OpGt:
		return af > bf, nil
	case quadgen.OpLe:
		return af <= bf, nil
	case quadgen.OpGe:
		return af >= bf, nil
	case quadgen.OpEq:
		return af == bf, nil
	case quadgen.OpNe:
		return af != bf, nil
	default:
		return false, perror.New(perror.Runtime, "unsupported relational opcode %q", op)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, perror.New(perror.Runtime, "expected a numeric value, got %T", v)
	}
}

// FormatValue renders a runtime value the way PRINT writes it. Floats
// always keep a decimal point, so a whole-valued flotante like 2.0 stays
// distinguishable from the entero 2 at the one place the type is
// observable from outside.
func FormatValue(v any) string {
	switch n := v.(type) {
	case bool:
		if n {
			return "verdadero"
		}
		return "falso"
	case float64:
		s := strconv.FormatFloat(n, 'f', -1, 64)
		if !strings.Contains(s, ".") && !math.IsInf(n, 0) && !math.IsNaN(n) {
			s += ".0"
		}
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (m *VM) execParam(q quadgen.Quad) error {
	if m.pending == nil {
		return perror.New(perror.Runtime, "PARAM without a preceding ERA")
	}
	fe := m.funcs.Get(m.pending.FuncName)
	if fe == nil {
		return perror.New(perror.Runtime, "function %q not found while binding parameters", m.pending.FuncName)
	}
	idx := q.Result
	if idx < 0 || idx >= len(fe.Params) {
		return perror.New(perror.Runtime, "parameter index %d out of range for %q", idx, fe.Name)
	}
	v, err := m.read(q.Arg1)
	if err != nil {
		return err
	}
	return m.writeFrame(m.pending, fe.Params[idx].Addr, v)
}

func (m *VM) execGosub(q quadgen.Quad) error {
	if m.pending == nil {
		return perror.New(perror.Runtime, "GOSUB without a preceding ERA")
	}
	if q.Result == quadgen.NoIndex {
		return perror.New(perror.Runtime, "GOSUB to unresolved function %q", q.Func)
	}
	m.pending.RetIP = m.ip + 1
	m.callStack = append(m.callStack, m.current)
	m.current = m.pending
	m.pending = nil
	m.ip = q.Result
	return nil
}

func (m *VM) returnFromFunction() {
	if len(m.callStack) == 0 {
		m.ip = len(m.quads)
		return
	}
	caller := m.callStack[len(m.callStack)-1]
	m.callStack = m.callStack[:len(m.callStack)-1]
	retIP := m.current.RetIP
	m.current = caller
	m.ip = retIP
}

// read dispatches addr to the segment that owns it, reading through the
// active frame for local/temp addresses.
func (m *VM) read(addr semantic.Address) (any, error) {
	return m.readFrame(m.current, addr)
}

func (m *VM) readFrame(frame *Frame, addr semantic.Address) (any, error) {
	seg, _, err := semantic.Resolve(addr)
	if err != nil {
		return nil, perror.New(perror.Runtime, "%s", err)
	}
	var v any
	var ok bool
	switch seg {
	case semantic.SegConst:
		v, ok = m.consts[addr]
	case semantic.SegGlobal:
		v, ok = m.global[addr]
	case semantic.SegLocal, semantic.SegTemp:
		v, ok = frame.read(seg, addr)
	}
	if !ok {
		return nil, perror.New(perror.Runtime, "read from unwritten address %d", addr)
	}
	return v, nil
}

func (m *VM) write(addr semantic.Address, v any) error {
	return m.writeFrame(m.current, addr, v)
}

func (m *VM) writeFrame(frame *Frame, addr semantic.Address, v any) error {
	seg, _, err := semantic.Resolve(addr)
	if err != nil {
		return perror.New(perror.Runtime, "%s", err)
	}
	switch seg {
	case semantic.SegConst:
		return perror.New(perror.Runtime, "cannot write to constant address %d", addr)
	case semantic.SegGlobal:
		m.global[addr] = v
	case semantic.SegLocal, semantic.SegTemp:
		frame.write(seg, addr, v)
	}
	return nil
}
