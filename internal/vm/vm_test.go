package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JosueSosa01/Patito-1/internal/quadgen"
	"github.com/JosueSosa01/Patito-1/internal/semantic"
)

// Test_VM_arithmeticAndPrint runs a hand-built quadruple trace for
// x = 2 + 3*4; escribe(x); and expects "14".
func Test_VM_arithmeticAndPrint(t *testing.T) {
	const (
		constTwo   = semantic.Address(9000)
		constThree = semantic.Address(9001)
		constFour  = semantic.Address(9002)
		tempMul    = semantic.Address(5000)
		tempAdd    = semantic.Address(5001)
		xAddr      = semantic.Address(1000)
	)
	quads := []quadgen.Quad{
		{Op: quadgen.OpGoto, Arg1: quadgen.NoAddr, Arg2: quadgen.NoAddr, Result: 1},
		{Op: quadgen.OpMul, Arg1: constThree, Arg2: constFour, Result: int(tempMul)},
		{Op: quadgen.OpAdd, Arg1: constTwo, Arg2: tempMul, Result: int(tempAdd)},
		{Op: quadgen.OpAssign, Arg1: tempAdd, Arg2: quadgen.NoAddr, Result: int(xAddr)},
		{Op: quadgen.OpPrint, Arg1: xAddr, Arg2: quadgen.NoAddr, Result: quadgen.NoIndex},
	}
	consts := map[semantic.Address]any{constTwo: 2, constThree: 3, constFour: 4}

	var out bytes.Buffer
	machine := New(quads, semantic.NewFuncDirectory(), consts, &out)
	require.NoError(t, machine.Run())
	assert.Equal(t, "14\n", out.String())
}

// Test_VM_divisionIsTrueDivision checks that integer division always
// produces a float result, printed with its decimal point even when the
// quotient is whole.
func Test_VM_divisionIsTrueDivision(t *testing.T) {
	const (
		a     = semantic.Address(9000)
		b     = semantic.Address(9001)
		c     = semantic.Address(9002)
		temp  = semantic.Address(5000)
		temp2 = semantic.Address(5001)
	)
	quads := []quadgen.Quad{
		{Op: quadgen.OpGoto, Result: 1},
		{Op: quadgen.OpDiv, Arg1: a, Arg2: b, Result: int(temp)},
		{Op: quadgen.OpPrint, Arg1: temp, Result: quadgen.NoIndex},
		{Op: quadgen.OpDiv, Arg1: a, Arg2: c, Result: int(temp2)},
		{Op: quadgen.OpPrint, Arg1: temp2, Result: quadgen.NoIndex},
	}
	consts := map[semantic.Address]any{a: 7, b: 2, c: 7}

	var out bytes.Buffer
	machine := New(quads, semantic.NewFuncDirectory(), consts, &out)
	require.NoError(t, machine.Run())
	assert.Equal(t, "3.5\n1.0\n", out.String())
}

func Test_FormatValue(t *testing.T) {
	assert.Equal(t, "14", FormatValue(14))
	assert.Equal(t, "3.5", FormatValue(3.5))
	assert.Equal(t, "2.0", FormatValue(2.0), "whole floats keep their decimal point")
	assert.Equal(t, "-0.5", FormatValue(-0.5))
	assert.Equal(t, "pos", FormatValue("pos"))
	assert.Equal(t, "verdadero", FormatValue(true))
	assert.Equal(t, "falso", FormatValue(false))
}

// Test_VM_conditionalBranch checks GOTOF: a false condition jumps past
// the "pos" PRINT to the "neg" one.
func Test_VM_conditionalBranch(t *testing.T) {
	const (
		condAddr = semantic.Address(9000)
		posAddr  = semantic.Address(9001)
		negAddr  = semantic.Address(9002)
	)
	quads := []quadgen.Quad{
		{Op: quadgen.OpGoto, Result: 1},
		{Op: quadgen.OpGotoF, Arg1: condAddr, Result: 3},
		{Op: quadgen.OpPrint, Arg1: posAddr, Result: quadgen.NoIndex},
		{Op: quadgen.OpPrint, Arg1: negAddr, Result: quadgen.NoIndex},
	}
	consts := map[semantic.Address]any{condAddr: false, posAddr: "pos", negAddr: "neg"}

	var out bytes.Buffer
	machine := New(quads, semantic.NewFuncDirectory(), consts, &out)
	require.NoError(t, machine.Run())
	assert.Equal(t, "neg\n", out.String())
}

// Test_VM_functionCall exercises the full ERA/PARAM/GOSUB/RET protocol
// for func suma(a,b): entero { ret a+b; }
func Test_VM_functionCall(t *testing.T) {
	funcs := semantic.NewFuncDirectory()
	fe, err := funcs.Declare("suma", true, semantic.Int, []semantic.Type{semantic.Int, semantic.Int})
	require.NoError(t, err)
	require.NoError(t, fe.Vars.Declare("a", semantic.Int, semantic.Address(13000)))
	require.NoError(t, fe.Vars.Declare("b", semantic.Int, semantic.Address(13001)))
	fe.Params = []*semantic.VarEntry{fe.Vars.Lookup("a"), fe.Vars.Lookup("b")}
	fe.ReturnAddr = semantic.Address(1000)
	fe.StartQuad = 1

	const (
		constTwo   = semantic.Address(9000)
		constThree = semantic.Address(9001)
		sumTemp    = semantic.Address(5000)
		returnCopy = semantic.Address(5000) // reused after ResetLocals in caller context, distinct frame
	)
	quads := []quadgen.Quad{
		/*0*/ {Op: quadgen.OpGoto, Result: 4},
		/*1*/ {Op: quadgen.OpAdd, Arg1: semantic.Address(13000), Arg2: semantic.Address(13001), Result: int(sumTemp)},
		/*2*/ {Op: quadgen.OpRet, Arg1: sumTemp, Result: int(fe.ReturnAddr)},
		/*3*/ {Op: quadgen.OpEndFunc},
		/*4*/ {Op: quadgen.OpEra, Func: "suma"},
		/*5*/ {Op: quadgen.OpParam, Arg1: constTwo, Result: 0},
		/*6*/ {Op: quadgen.OpParam, Arg1: constThree, Result: 1},
		/*7*/ {Op: quadgen.OpGosub, Func: "suma", Result: fe.StartQuad},
		/*8*/ {Op: quadgen.OpAssign, Arg1: fe.ReturnAddr, Result: int(returnCopy)},
		/*9*/ {Op: quadgen.OpPrint, Arg1: returnCopy},
	}
	consts := map[semantic.Address]any{constTwo: 2, constThree: 3}

	var out bytes.Buffer
	machine := New(quads, funcs, consts, &out)
	require.NoError(t, machine.Run())
	assert.Equal(t, "5\n", out.String())
}

// Test_VM_unaryNegation checks the one-operand arithmetic form: a unary
// quadruple carries its operand in Arg1 and leaves Arg2 unused.
func Test_VM_unaryNegation(t *testing.T) {
	const (
		five = semantic.Address(9000)
		temp = semantic.Address(5000)
	)
	quads := []quadgen.Quad{
		{Op: quadgen.OpGoto, Result: 1},
		{Op: quadgen.OpSub, Arg1: five, Arg2: quadgen.NoAddr, Result: int(temp)},
		{Op: quadgen.OpPrint, Arg1: temp, Result: quadgen.NoIndex},
	}
	consts := map[semantic.Address]any{five: 5}

	var out bytes.Buffer
	machine := New(quads, semantic.NewFuncDirectory(), consts, &out)
	require.NoError(t, machine.Run())
	assert.Equal(t, "-5\n", out.String())
}

func Test_VM_paramWithoutEraIsRuntimeError(t *testing.T) {
	quads := []quadgen.Quad{
		{Op: quadgen.OpParam, Arg1: quadgen.NoAddr, Result: 0},
	}
	var out bytes.Buffer
	machine := New(quads, semantic.NewFuncDirectory(), map[semantic.Address]any{}, &out)
	assert.Error(t, machine.Run())
}

func Test_VM_readFromUnwrittenAddressIsRuntimeError(t *testing.T) {
	quads := []quadgen.Quad{
		{Op: quadgen.OpPrint, Arg1: semantic.Address(1000)},
	}
	var out bytes.Buffer
	machine := New(quads, semantic.NewFuncDirectory(), map[semantic.Address]any{}, &out)
	assert.Error(t, machine.Run())
}
