// Package pipeline orchestrates the AST-to-listing-to-execution stages:
// a single entry point strings the compiler stages together and returns
// a plain error for main to report.
package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/JosueSosa01/Patito-1/internal/ast"
	"github.com/JosueSosa01/Patito-1/internal/config"
	"github.com/JosueSosa01/Patito-1/internal/genlog"
	"github.com/JosueSosa01/Patito-1/internal/quadgen"
	"github.com/JosueSosa01/Patito-1/internal/semantic"
	"github.com/JosueSosa01/Patito-1/internal/vm"
)

// Run executes the full pipeline: decode src as a JSON AST, generate
// quadruples, print the variable/function/constant/quadruple listings to
// out, and, if opt.Run is set, execute the program and print its PRINT
// output after a blank line. log receives diagnostic messages gated by
// opt.Verbose (genlog.New already applied the level); it may be nil.
func Run(src []byte, opt config.Options, out io.Writer, log *logrus.Logger) error {
	w := bufio.NewWriter(out)
	defer w.Flush()

	var entry *logrus.Entry
	if log != nil {
		entry = log.WithField("run_id", genlog.RunID())
		entry.Debug("decoding AST input")
	}
	prog, err := ast.Decode(src)
	if err != nil {
		return fmt.Errorf("ast error: %w", err)
	}

	if entry != nil {
		entry = entry.WithField("name", prog.Name)
		entry.Debug("generating quadruples")
	}
	gen := quadgen.New()
	result, err := gen.Generate(prog)
	if err != nil {
		return fmt.Errorf("semantic error: %w", err)
	}

	printAST(w, prog)
	fmt.Fprintln(w)
	printGlobals(w, result.GlobalVars)
	fmt.Fprintln(w)
	printFuncs(w, result.Funcs)
	fmt.Fprintln(w)
	printConsts(w, result.Memory)
	fmt.Fprintln(w)
	printQuads(w, result.Quads)

	if !opt.Run {
		return nil
	}

	fmt.Fprintln(w)
	if entry != nil {
		entry.Debug("executing program")
	}
	machine := vm.New(result.Quads, result.Funcs, vm.ConstMemory(result.Memory), w)
	if opt.Trace {
		machine.Logger = log
	}
	if err := machine.Run(); err != nil {
		w.Flush()
		return fmt.Errorf("runtime error: %w", err)
	}
	return nil
}

func printAST(w io.Writer, prog *ast.Program) {
	fmt.Fprintf(w, "program %s\n", prog.Name)
	printBody(w, prog.Body, 1)
}

func printBody(w io.Writer, b *ast.Body, depth int) {
	indent := indentOf(depth)
	if b == nil {
		return
	}
	for _, st := range b.Statements {
		fmt.Fprintf(w, "%s%s\n", indent, describeStmt(st))
	}
}

func indentOf(depth int) string {
	out := ""
	for i := 0; i < depth; i++ {
		out += "  "
	}
	return out
}

func describeStmt(st ast.Stmt) string {
	switch s := st.(type) {
	case *ast.AssignStmt:
		return fmt.Sprintf("%s = %s", s.Name, describeExpr(s.Expr))
	case *ast.PrintStmt:
		parts := make([]string, len(s.Items))
		for i, it := range s.Items {
			parts[i] = describeExpr(it)
		}
		return fmt.Sprintf("escribe(%v)", parts)
	case *ast.IfStmt:
		return fmt.Sprintf("si (%s) { ... }", describeExpr(s.Cond))
	case *ast.WhileStmt:
		return fmt.Sprintf("mientras (%s) { ... }", describeExpr(s.Cond))
	case *ast.CallStmt:
		return fmt.Sprintf("%s(...)", s.Name)
	case *ast.ReturnStmt:
		if s.Expr == nil {
			return "ret"
		}
		return fmt.Sprintf("ret %s", describeExpr(s.Expr))
	default:
		return fmt.Sprintf("<%T>", st)
	}
}

func describeExpr(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.ConstExpr:
		return fmt.Sprintf("%v", n.Value)
	case *ast.IdExpr:
		return n.Name
	case *ast.BinExpr:
		return fmt.Sprintf("(%s %s %s)", describeExpr(n.Left), n.Op, describeExpr(n.Right))
	case *ast.RelExpr:
		return fmt.Sprintf("(%s %s %s)", describeExpr(n.Left), n.Op, describeExpr(n.Right))
	case *ast.UnaryExpr:
		return fmt.Sprintf("(%s%s)", n.Op, describeExpr(n.Operand))
	case *ast.CallExpr:
		return fmt.Sprintf("%s(...)", n.Name)
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

// printGlobals renders "name [type] -> address" per line.
func printGlobals(w io.Writer, vars *semantic.VarTable) {
	fmt.Fprintln(w, "globals:")
	for _, name := range vars.Names() {
		ve := vars.Lookup(name)
		fmt.Fprintf(w, "  %s [%s] -> %d\n", ve.Name, ve.Type, ve.Addr)
	}
}

// printFuncs renders "name(param:type, ...) -> returnType|void inicio=N ret=N".
func printFuncs(w io.Writer, funcs *semantic.FuncDirectory) {
	fmt.Fprintln(w, "functions:")
	entries := funcs.All()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, fe := range entries {
		params := make([]string, len(fe.Params))
		for i, p := range fe.Params {
			params[i] = fmt.Sprintf("%s:%s", p.Name, p.Type)
		}
		retType := "void"
		retAddr := "_"
		if fe.HasReturn {
			retType = fe.ReturnType.String()
			retAddr = fmt.Sprintf("%d", fe.ReturnAddr)
		}
		fmt.Fprintf(w, "  %s(%s) -> %s inicio=%d ret=%s\n", fe.Name, joinComma(params), retType, fe.StartQuad, retAddr)
	}
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// reprValue renders a constant for the listing: strings are quoted so a
// string constant stays distinguishable from the spelling of a numeric
// one, and floats keep their decimal point (vm.FormatValue).
func reprValue(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	return vm.FormatValue(v)
}

// printConsts renders "repr(value) [type] -> address", sorted by address.
func printConsts(w io.Writer, mem *semantic.VirtualMemory) {
	fmt.Fprintln(w, "constants:")
	consts := mem.Constants()
	type row struct {
		addr semantic.Address
		key  semantic.ConstKey
	}
	rows := make([]row, 0, len(consts))
	for k, a := range consts {
		rows = append(rows, row{addr: a, key: k})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].addr < rows[j].addr })
	for _, r := range rows {
		fmt.Fprintf(w, "  %s [%s] -> %d\n", reprValue(r.key.Value), r.key.Type, r.addr)
	}
}

// printQuads renders "i : (op, a, b, r)" per line.
func printQuads(w io.Writer, quads []quadgen.Quad) {
	fmt.Fprintln(w, "quadruples:")
	for i, q := range quads {
		fmt.Fprintf(w, "  %d : %s\n", i, q)
	}
}
