// json.go decodes the JSON encoding of the AST input shape: the
// language-neutral document a driver feeds into the pipeline in place of
// running a scanner and parser in-process. Every node is an object
// carrying a "tag" field naming its variant.

package ast

import (
	"encoding/json"
	"fmt"
)

// Decode parses a JSON document into a Program.
func Decode(data []byte) (*Program, error) {
	var raw rawProgram
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	if raw.Tag != "program" {
		return nil, fmt.Errorf("decode program: expected tag %q, got %q", "program", raw.Tag)
	}
	vars, err := decodeVarsBlock(raw.Vars)
	if err != nil {
		return nil, err
	}
	funcs, err := decodeFuncsBlock(raw.Funcs)
	if err != nil {
		return nil, err
	}
	body, err := decodeBody(raw.Body)
	if err != nil {
		return nil, err
	}
	return &Program{Name: raw.Name, Vars: vars, Funcs: funcs, Body: body}, nil
}

type rawProgram struct {
	Tag   string          `json:"tag"`
	Name  string          `json:"name"`
	Vars  json.RawMessage `json:"vars"`
	Funcs json.RawMessage `json:"funcs"`
	Body  json.RawMessage `json:"body"`
}

type rawTagged struct {
	Tag string `json:"tag"`
}

func decodeVarsBlock(data json.RawMessage) (*VarsBlock, error) {
	if len(data) == 0 || string(data) == "null" {
		return &VarsBlock{}, nil
	}
	var raw struct {
		Tag   string `json:"tag"`
		Decls []struct {
			Names []string `json:"names"`
			Type  string   `json:"type"`
		} `json:"decls"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode vars: %w", err)
	}
	vb := &VarsBlock{Decls: make([]Decl, 0, len(raw.Decls))}
	for _, d := range raw.Decls {
		vb.Decls = append(vb.Decls, Decl{Names: d.Names, Type: d.Type})
	}
	return vb, nil
}

func decodeFuncsBlock(data json.RawMessage) (*FuncsBlock, error) {
	if len(data) == 0 || string(data) == "null" {
		return &FuncsBlock{}, nil
	}
	var raw struct {
		Tag       string            `json:"tag"`
		Functions []json.RawMessage `json:"functions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode funcs: %w", err)
	}
	fb := &FuncsBlock{Functions: make([]Function, 0, len(raw.Functions))}
	for _, fRaw := range raw.Functions {
		fn, err := decodeFunction(fRaw)
		if err != nil {
			return nil, err
		}
		fb.Functions = append(fb.Functions, fn)
	}
	return fb, nil
}

func decodeFunction(data json.RawMessage) (Function, error) {
	var raw struct {
		Tag    string `json:"tag"`
		Name   string `json:"name"`
		Params []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"params"`
		ReturnType string          `json:"returnType"`
		Vars       json.RawMessage `json:"vars"`
		Body       json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Function{}, fmt.Errorf("decode function: %w", err)
	}
	vars, err := decodeVarsBlock(raw.Vars)
	if err != nil {
		return Function{}, err
	}
	body, err := decodeBody(raw.Body)
	if err != nil {
		return Function{}, err
	}
	params := make([]Param, 0, len(raw.Params))
	for _, p := range raw.Params {
		params = append(params, Param{Name: p.Name, Type: p.Type})
	}
	return Function{
		Name:       raw.Name,
		Params:     params,
		ReturnType: raw.ReturnType,
		Vars:       vars,
		Body:       body,
	}, nil
}

func decodeBody(data json.RawMessage) (*Body, error) {
	if len(data) == 0 || string(data) == "null" {
		return &Body{}, nil
	}
	var raw struct {
		Tag        string            `json:"tag"`
		Statements []json.RawMessage `json:"statements"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	b := &Body{Statements: make([]Stmt, 0, len(raw.Statements))}
	for _, sRaw := range raw.Statements {
		st, err := decodeStmt(sRaw)
		if err != nil {
			return nil, err
		}
		b.Statements = append(b.Statements, st)
	}
	return b, nil
}

func decodeStmt(data json.RawMessage) (Stmt, error) {
	var head rawTagged
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode statement: %w", err)
	}
	switch head.Tag {
	case "assign":
		var raw struct {
			Name string          `json:"name"`
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode assign: %w", err)
		}
		expr, err := decodeExpr(raw.Expr)
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Name: raw.Name, Expr: expr}, nil

	case "print":
		var raw struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode print: %w", err)
		}
		items := make([]Expr, 0, len(raw.Items))
		for _, iRaw := range raw.Items {
			e, err := decodeExpr(iRaw)
			if err != nil {
				return nil, err
			}
			items = append(items, e)
		}
		return &PrintStmt{Items: items}, nil

	case "if":
		var raw struct {
			Cond json.RawMessage `json:"cond"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode if: %w", err)
		}
		cond, err := decodeExpr(raw.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeBody(raw.Then)
		if err != nil {
			return nil, err
		}
		var elseBody *Body
		if len(raw.Else) > 0 && string(raw.Else) != "null" {
			elseBody, err = decodeBody(raw.Else)
			if err != nil {
				return nil, err
			}
		}
		return &IfStmt{Cond: cond, Then: then, Else: elseBody}, nil

	case "while":
		var raw struct {
			Cond json.RawMessage `json:"cond"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode while: %w", err)
		}
		cond, err := decodeExpr(raw.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeBody(raw.Body)
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body}, nil

	case "call":
		name, args, err := decodeCallShape(data)
		if err != nil {
			return nil, err
		}
		return &CallStmt{Name: name, Args: args}, nil

	case "return":
		var raw struct {
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode return: %w", err)
		}
		var expr Expr
		if len(raw.Expr) > 0 && string(raw.Expr) != "null" {
			var err error
			expr, err = decodeExpr(raw.Expr)
			if err != nil {
				return nil, err
			}
		}
		return &ReturnStmt{Expr: expr}, nil

	default:
		return nil, fmt.Errorf("decode statement: unknown tag %q", head.Tag)
	}
}

func decodeCallShape(data json.RawMessage) (string, []Expr, error) {
	var raw struct {
		Name string            `json:"name"`
		Args []json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", nil, fmt.Errorf("decode call: %w", err)
	}
	args := make([]Expr, 0, len(raw.Args))
	for _, aRaw := range raw.Args {
		e, err := decodeExpr(aRaw)
		if err != nil {
			return "", nil, err
		}
		args = append(args, e)
	}
	return raw.Name, args, nil
}

func decodeExpr(data json.RawMessage) (Expr, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("decode expression: missing node")
	}
	var head rawTagged
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode expression: %w", err)
	}
	switch head.Tag {
	case "const":
		var raw struct {
			Value any    `json:"value"`
			Type  string `json:"type"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode const: %w", err)
		}
		val, err := typedConst(raw.Value, raw.Type)
		if err != nil {
			return nil, err
		}
		return &ConstExpr{Value: val}, nil

	case "id":
		var raw struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode id: %w", err)
		}
		return &IdExpr{Name: raw.Name}, nil

	case "bin", "rel":
		var raw struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", head.Tag, err)
		}
		left, err := decodeExpr(raw.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(raw.Right)
		if err != nil {
			return nil, err
		}
		if head.Tag == "bin" {
			return &BinExpr{Op: raw.Op, Left: left, Right: right}, nil
		}
		return &RelExpr{Op: raw.Op, Left: left, Right: right}, nil

	case "unary":
		var raw struct {
			Op      string          `json:"op"`
			Operand json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode unary: %w", err)
		}
		operand, err := decodeExpr(raw.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: raw.Op, Operand: operand}, nil

	case "call":
		name, args, err := decodeCallShape(data)
		if err != nil {
			return nil, err
		}
		return &CallExpr{Name: name, Args: args}, nil

	default:
		return nil, fmt.Errorf("decode expression: unknown tag %q", head.Tag)
	}
}

// typedConst converts a JSON literal to its Go representation according
// to the node's explicit "type" field. JSON has a single numeric type,
// so an integer literal like 3 and a whole-valued float literal like 2.0
// are indistinguishable on the wire without this tag.
func typedConst(v any, typeName string) (any, error) {
	switch typeName {
	case "entero":
		n, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("decode const: entero literal must be numeric, got %T", v)
		}
		return int(n), nil
	case "flotante":
		n, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("decode const: flotante literal must be numeric, got %T", v)
		}
		return n, nil
	case "string":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("decode const: string literal must be a string, got %T", v)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("decode const: unknown literal type %q", typeName)
	}
}
