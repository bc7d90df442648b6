// generator.go walks an ast.Program and lowers it to a flat quadruple
// list over virtual addresses. Semantic checking happens inline during
// the walk; the first violation aborts generation with an error.
package quadgen

import (
	"github.com/JosueSosa01/Patito-1/internal/ast"
	"github.com/JosueSosa01/Patito-1/internal/perror"
	"github.com/JosueSosa01/Patito-1/internal/semantic"
)

// Result is everything the pipeline and CLI need after a successful
// Generate call: the quadruple list plus the populated symbol tables
// the listings and the virtual machine are driven from.
type Result struct {
	Quads         []Quad
	Funcs         *semantic.FuncDirectory
	GlobalVars    *semantic.VarTable
	Memory        *semantic.VirtualMemory
	MainStart     int
	MainTempUsage map[semantic.Type]int
}

// Generator walks an ast.Program and emits quadruples. A Generator value
// is single-use: call Generate exactly once.
type Generator struct {
	mem        *semantic.VirtualMemory
	globalVars *semantic.VarTable
	funcs      *semantic.FuncDirectory

	quads   []Quad
	pending map[string][]int // function name -> GOSUB quad indices awaiting a start_quad patch.

	currentVars *semantic.VarTable
	currentFunc *semantic.FuncEntry // nil at global scope.

	operands stack[semantic.Address]
	types    stack[semantic.Type]
}

// New returns a ready-to-use Generator.
func New() *Generator {
	return &Generator{
		mem:        semantic.NewVirtualMemory(),
		globalVars: semantic.NewVarTable(),
		funcs:      semantic.NewFuncDirectory(),
		pending:    make(map[string][]int),
	}
}

// Generate lowers prog into a flat quadruple list. Functions are
// pre-declared before any body is emitted so forward and mutually
// recursive calls type-check.
func (g *Generator) Generate(prog *ast.Program) (*Result, error) {
	g.currentVars = g.globalVars

	// 1. Pre-declare every top-level function.
	if err := g.predeclareFuncs(prog.Funcs); err != nil {
		return nil, err
	}

	// 2. Allocate global variable addresses.
	if err := g.declareVars(prog.Vars, semantic.SegGlobal, g.globalVars); err != nil {
		return nil, err
	}

	// 3. Placeholder jump to main.
	jumpMainIdx := g.emit(Quad{Op: OpGoto, Arg1: NoAddr, Arg2: NoAddr, Result: NoIndex})

	// 4. Generate each function body.
	for i := range prog.Funcs.Functions {
		if err := g.genFunc(&prog.Funcs.Functions[i]); err != nil {
			return nil, err
		}
	}

	// 5. Reset locals/temps, switch to global scope, patch the jump to main.
	g.mem.ResetLocals()
	g.currentVars = g.globalVars
	g.currentFunc = nil
	mainStart := len(g.quads)
	g.quads[jumpMainIdx].Result = mainStart

	// 6. Generate main body.
	if err := g.genBody(prog.Body); err != nil {
		return nil, err
	}
	mainTemps := g.mem.Usage(semantic.SegTemp)

	// 7. Patch forward references.
	if err := g.patchPending(); err != nil {
		return nil, err
	}

	return &Result{
		Quads:         g.quads,
		Funcs:         g.funcs,
		GlobalVars:    g.globalVars,
		Memory:        g.mem,
		MainStart:     mainStart,
		MainTempUsage: mainTemps,
	}, nil
}

func (g *Generator) predeclareFuncs(fb *ast.FuncsBlock) error {
	if fb == nil {
		return nil
	}
	for _, fn := range fb.Functions {
		hasReturn := fn.ReturnType != "" && fn.ReturnType != "nula"
		var retType semantic.Type
		if hasReturn {
			t, ok := semantic.ParseType(fn.ReturnType)
			if !ok {
				return perror.New(perror.Declaration, "function %q: unknown return type %q", fn.Name, fn.ReturnType)
			}
			retType = t
		}
		paramTypes := make([]semantic.Type, len(fn.Params))
		for i, p := range fn.Params {
			t, ok := semantic.ParseType(p.Type)
			if !ok {
				return perror.New(perror.Declaration, "function %q: unknown parameter type %q", fn.Name, p.Type)
			}
			paramTypes[i] = t
		}
		if _, err := g.funcs.Declare(fn.Name, hasReturn, retType, paramTypes); err != nil {
			return perror.New(perror.Declaration, "%s", err)
		}
	}
	return nil
}

func (g *Generator) declareVars(vb *ast.VarsBlock, seg semantic.Segment, vt *semantic.VarTable) error {
	if vb == nil {
		return nil
	}
	for _, d := range vb.Decls {
		t, ok := semantic.ParseType(d.Type)
		if !ok {
			return perror.New(perror.Declaration, "unknown type %q", d.Type)
		}
		if !t.Storable() {
			return perror.New(perror.Declaration, "type %q is not valid for a variable", d.Type)
		}
		for _, name := range d.Names {
			addr, err := g.mem.AllocVar(t, seg)
			if err != nil {
				return perror.New(perror.Declaration, "%s", err)
			}
			if err := vt.Declare(name, t, addr); err != nil {
				return perror.New(perror.Declaration, "%s", err)
			}
		}
	}
	return nil
}

func (g *Generator) genFunc(fn *ast.Function) error {
	fe := g.funcs.Get(fn.Name)
	if fe == nil {
		return perror.New(perror.Declaration, "function %q not pre-declared", fn.Name)
	}

	g.mem.ResetLocals()
	g.currentFunc = fe
	g.currentVars = fe.Vars

	if fe.HasReturn {
		addr, err := g.mem.AllocVar(fe.ReturnType, semantic.SegGlobal)
		if err != nil {
			return perror.New(perror.Declaration, "%s", err)
		}
		fe.ReturnAddr = addr
		fe.HasRet = true
	}

	for i, p := range fn.Params {
		t, ok := semantic.ParseType(p.Type)
		if !ok {
			return perror.New(perror.Declaration, "unknown parameter type %q", p.Type)
		}
		if t != fe.ParamTypes[i] {
			return perror.New(perror.Type, "parameter %q of %q does not match its declared signature", p.Name, fn.Name)
		}
		addr, err := g.mem.AllocVar(t, semantic.SegLocal)
		if err != nil {
			return perror.New(perror.Declaration, "%s", err)
		}
		if err := fe.Vars.Declare(p.Name, t, addr); err != nil {
			return perror.New(perror.Declaration, "%s", err)
		}
		fe.Params = append(fe.Params, fe.Vars.Lookup(p.Name))
	}

	if err := g.declareVars(fn.Vars, semantic.SegLocal, fe.Vars); err != nil {
		return err
	}

	fe.StartQuad = len(g.quads)
	if err := g.genBody(fn.Body); err != nil {
		return err
	}
	fe.LocalsCount = g.mem.Usage(semantic.SegLocal)
	fe.TempsCount = g.mem.Usage(semantic.SegTemp)
	g.emit(Quad{Op: OpEndFunc, Arg1: NoAddr, Arg2: NoAddr, Result: NoIndex})

	g.currentFunc = nil
	g.currentVars = g.globalVars
	return nil
}

func (g *Generator) lookupVar(name string) *semantic.VarEntry {
	if g.currentVars != nil {
		if ve := g.currentVars.Lookup(name); ve != nil {
			return ve
		}
	}
	return g.globalVars.Lookup(name)
}

func (g *Generator) resetStacks() {
	g.operands.clear()
	g.types.clear()
}

func (g *Generator) emit(q Quad) int {
	g.quads = append(g.quads, q)
	return len(g.quads) - 1
}

func (g *Generator) genBody(b *ast.Body) error {
	if b == nil {
		return nil
	}
	for _, st := range b.Statements {
		if err := g.genStmt(st); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) genStmt(st ast.Stmt) error {
	switch s := st.(type) {
	case *ast.AssignStmt:
		ve := g.lookupVar(s.Name)
		if ve == nil {
			return perror.New(perror.Resolution, "variable %q not declared", s.Name)
		}
		g.resetStacks()
		addr, t, err := g.genExpr(s.Expr)
		if err != nil {
			return err
		}
		if !semantic.AssignOK(ve.Type, t) {
			return perror.New(perror.Type, "cannot assign %s to %q of type %s", t, s.Name, ve.Type)
		}
		g.emit(Quad{Op: OpAssign, Arg1: addr, Arg2: NoAddr, Result: int(ve.Addr)})
		return nil

	case *ast.PrintStmt:
		for _, item := range s.Items {
			g.resetStacks()
			addr, _, err := g.genExpr(item)
			if err != nil {
				return err
			}
			g.emit(Quad{Op: OpPrint, Arg1: addr, Arg2: NoAddr, Result: NoIndex})
		}
		return nil

	case *ast.CallStmt:
		_, _, err := g.emitCall(s.Name, s.Args, false)
		return err

	case *ast.ReturnStmt:
		return g.emitReturn(s)

	case *ast.IfStmt:
		return g.genIf(s)

	case *ast.WhileStmt:
		return g.genWhile(s)

	default:
		return perror.New(perror.Declaration, "unknown statement node %T", st)
	}
}

func (g *Generator) genIf(s *ast.IfStmt) error {
	g.resetStacks()
	condAddr, condType, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	if condType != semantic.Bool {
		return perror.New(perror.Type, "condition of 'si' must be bool, got %s", condType)
	}
	gotofIdx := g.emit(Quad{Op: OpGotoF, Arg1: condAddr, Arg2: NoAddr, Result: NoIndex})
	if err := g.genBody(s.Then); err != nil {
		return err
	}
	if s.Else == nil {
		g.quads[gotofIdx].Result = len(g.quads)
		return nil
	}
	gotoEndIdx := g.emit(Quad{Op: OpGoto, Arg1: NoAddr, Arg2: NoAddr, Result: NoIndex})
	g.quads[gotofIdx].Result = len(g.quads)
	if err := g.genBody(s.Else); err != nil {
		return err
	}
	g.quads[gotoEndIdx].Result = len(g.quads)
	return nil
}

func (g *Generator) genWhile(s *ast.WhileStmt) error {
	loopStart := len(g.quads)
	g.resetStacks()
	condAddr, condType, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	if condType != semantic.Bool {
		return perror.New(perror.Type, "condition of 'mientras' must be bool, got %s", condType)
	}
	gotofIdx := g.emit(Quad{Op: OpGotoF, Arg1: condAddr, Arg2: NoAddr, Result: NoIndex})
	if err := g.genBody(s.Body); err != nil {
		return err
	}
	g.emit(Quad{Op: OpGoto, Arg1: NoAddr, Arg2: NoAddr, Result: loopStart})
	g.quads[gotofIdx].Result = len(g.quads)
	return nil
}

func (g *Generator) emitReturn(s *ast.ReturnStmt) error {
	if g.currentFunc == nil {
		return perror.New(perror.Control, "'ret' is only valid inside a function")
	}
	fe := g.currentFunc
	if s.Expr == nil {
		if fe.HasReturn {
			return perror.New(perror.Type, "function %q must return a value of type %s", fe.Name, fe.ReturnType)
		}
		g.emit(Quad{Op: OpRet, Arg1: NoAddr, Arg2: NoAddr, Result: NoIndex})
		return nil
	}
	if !fe.HasReturn {
		return perror.New(perror.Type, "function %q must not return a value", fe.Name)
	}
	g.resetStacks()
	addr, t, err := g.genExpr(s.Expr)
	if err != nil {
		return err
	}
	if !semantic.AssignOK(fe.ReturnType, t) {
		return perror.New(perror.Type, "return type mismatch in %q: expected %s, got %s", fe.Name, fe.ReturnType, t)
	}
	g.emit(Quad{Op: OpRet, Arg1: addr, Arg2: NoAddr, Result: int(fe.ReturnAddr)})
	return nil
}

// emitCall lowers a call to name with args as an ERA, one PARAM per
// argument, then a GOSUB. When expectValue is true and the callee
// returns a value, a temp holding the copied return value is produced.
func (g *Generator) emitCall(name string, args []ast.Expr, expectValue bool) (semantic.Address, semantic.Type, error) {
	fe := g.funcs.Get(name)
	if fe == nil {
		return NoAddr, 0, perror.New(perror.Resolution, "function %q not declared", name)
	}
	if len(args) != len(fe.ParamTypes) {
		return NoAddr, 0, perror.New(perror.Type, "function %q expects %d argument(s), got %d", name, len(fe.ParamTypes), len(args))
	}

	g.emit(Quad{Op: OpEra, Func: name, Arg1: NoAddr, Arg2: NoAddr, Result: NoIndex})

	for i, arg := range args {
		addr, t, err := g.evalArg(arg)
		if err != nil {
			return NoAddr, 0, err
		}
		if !semantic.AssignOK(fe.ParamTypes[i], t) {
			return NoAddr, 0, perror.New(perror.Type, "argument %d of call to %q has wrong type: expected %s, got %s", i, name, fe.ParamTypes[i], t)
		}
		g.emit(Quad{Op: OpParam, Arg1: addr, Arg2: NoAddr, Result: i})
	}

	target := NoIndex
	resolved := fe.StartQuad != semantic.UnresolvedStart
	if resolved {
		target = fe.StartQuad
	}
	gosubIdx := g.emit(Quad{Op: OpGosub, Func: name, Arg1: NoAddr, Arg2: NoAddr, Result: target})
	if !resolved {
		g.pending[name] = append(g.pending[name], gosubIdx)
	}

	if fe.HasReturn && expectValue {
		temp, err := g.mem.AllocTemp(fe.ReturnType)
		if err != nil {
			return NoAddr, 0, perror.New(perror.Declaration, "%s", err)
		}
		g.emit(Quad{Op: OpAssign, Arg1: fe.ReturnAddr, Arg2: NoAddr, Result: int(temp)})
		return temp, fe.ReturnType, nil
	}
	return NoAddr, semantic.Void, nil
}

// evalArg lowers a single call argument on a saved-stacks context: the
// caller's operand/type stacks are swapped out so a nested call inside
// an argument cannot corrupt them.
func (g *Generator) evalArg(e ast.Expr) (semantic.Address, semantic.Type, error) {
	savedOperands, savedTypes := g.operands, g.types
	g.operands, g.types = stack[semantic.Address]{}, stack[semantic.Type]{}
	addr, t, err := g.genExpr(e)
	g.operands, g.types = savedOperands, savedTypes
	return addr, t, err
}

// genExpr lowers e and returns the single (address, type) pair left on
// the stacks once the walk is done.
func (g *Generator) genExpr(e ast.Expr) (semantic.Address, semantic.Type, error) {
	if err := g.walkExpr(e); err != nil {
		return NoAddr, 0, err
	}
	addr, ok := g.operands.pop()
	if !ok {
		return NoAddr, 0, perror.New(perror.Type, "empty expression")
	}
	t, _ := g.types.pop()
	return addr, t, nil
}

func (g *Generator) walkExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.ConstExpr:
		t, err := constType(n.Value)
		if err != nil {
			return err
		}
		addr, err := g.mem.AllocConst(n.Value, t)
		if err != nil {
			return perror.New(perror.Declaration, "%s", err)
		}
		g.operands.push(addr)
		g.types.push(t)
		return nil

	case *ast.IdExpr:
		ve := g.lookupVar(n.Name)
		if ve == nil {
			return perror.New(perror.Resolution, "variable %q not declared", n.Name)
		}
		g.operands.push(ve.Addr)
		g.types.push(ve.Type)
		return nil

	case *ast.BinExpr:
		if err := g.walkExpr(n.Left); err != nil {
			return err
		}
		if err := g.walkExpr(n.Right); err != nil {
			return err
		}
		return g.makeBinary(semantic.Op(n.Op))

	case *ast.RelExpr:
		if err := g.walkExpr(n.Left); err != nil {
			return err
		}
		if err := g.walkExpr(n.Right); err != nil {
			return err
		}
		return g.makeBinary(semantic.Op(n.Op))

	case *ast.UnaryExpr:
		if err := g.walkExpr(n.Operand); err != nil {
			return err
		}
		return g.makeUnary(semantic.Op(n.Op))

	case *ast.CallExpr:
		addr, t, err := g.emitCall(n.Name, n.Args, true)
		if err != nil {
			return err
		}
		if t == semantic.Void {
			return perror.New(perror.Type, "function %q does not return a value", n.Name)
		}
		g.operands.push(addr)
		g.types.push(t)
		return nil

	default:
		return perror.New(perror.Declaration, "unknown expression node %T", e)
	}
}

func (g *Generator) makeBinary(op semantic.Op) error {
	r, ok := g.operands.pop()
	if !ok {
		return perror.New(perror.Type, "missing operands for binary operation")
	}
	tr, _ := g.types.pop()
	l, ok := g.operands.pop()
	if !ok {
		return perror.New(perror.Type, "missing operands for binary operation")
	}
	tl, _ := g.types.pop()

	resType, ok := semantic.ResultType(op, tl, tr)
	if !ok {
		return perror.New(perror.Type, "operation %q not valid for types %s and %s", op, tl, tr)
	}
	temp, err := g.mem.AllocTemp(resType)
	if err != nil {
		return perror.New(perror.Declaration, "%s", err)
	}
	g.emit(Quad{Op: Op(op), Arg1: l, Arg2: r, Result: int(temp)})
	g.operands.push(temp)
	g.types.push(resType)
	return nil
}

func (g *Generator) makeUnary(op semantic.Op) error {
	operand, ok := g.operands.pop()
	if !ok {
		return perror.New(perror.Type, "missing operand for unary operation")
	}
	t, _ := g.types.pop()
	if t != semantic.Int && t != semantic.Float {
		return perror.New(perror.Type, "unary operator %q does not apply to %s", op, t)
	}
	temp, err := g.mem.AllocTemp(t)
	if err != nil {
		return perror.New(perror.Declaration, "%s", err)
	}
	g.emit(Quad{Op: Op(op), Arg1: operand, Arg2: NoAddr, Result: int(temp)})
	g.operands.push(temp)
	g.types.push(t)
	return nil
}

func (g *Generator) patchPending() error {
	for name, idxs := range g.pending {
		fe := g.funcs.Get(name)
		if fe == nil || fe.StartQuad == semantic.UnresolvedStart {
			return perror.New(perror.Resolution, "function %q called but not defined", name)
		}
		for _, i := range idxs {
			g.quads[i].Result = fe.StartQuad
		}
	}
	return nil
}

func constType(v any) (semantic.Type, error) {
	switch v.(type) {
	case int:
		return semantic.Int, nil
	case float64:
		return semantic.Float, nil
	case string:
		return semantic.String, nil
	case bool:
		return semantic.Bool, nil
	default:
		return 0, perror.New(perror.Type, "unrecognized constant value %v (%T)", v, v)
	}
}
