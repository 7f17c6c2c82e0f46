package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
)

// Parse decodes a stored JSON rule document into an Expr. ruleID is only
// used to label errors.
func Parse(ruleID string, raw json.RawMessage) (Expr, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, newRuleError(ruleID, "$", "empty rule expression")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, newRuleError(ruleID, "$", "invalid JSON: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, newRuleError(ruleID, "$", "trailing data after expression")
	}

	p := parser{ruleID: ruleID}
	return p.node(doc, "$")
}

// MustParse panics on error. Test and seed data only.
func MustParse(raw string) Expr {
	expr, err := Parse("inline", json.RawMessage(raw))
	if err != nil {
		panic(err)
	}
	return expr
}

type parser struct {
	ruleID string
}

func (p parser) fail(path, format string, args ...interface{}) error {
	return newRuleError(p.ruleID, path, format, args...)
}

func (p parser) node(doc interface{}, path string) (Expr, error) {
	switch v := doc.(type) {
	case nil:
		return &Literal{path: path, Value: Null()}, nil
	case bool:
		return &Literal{path: path, Value: Bool(v)}, nil
	case string:
		return &Literal{path: path, Value: String(v)}, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, p.fail(path, "invalid number %q", v.String())
		}
		return &Literal{path: path, Value: Number(d)}, nil
	case []interface{}:
		return nil, p.fail(path, "array is not an expression")
	case map[string]interface{}:
		return p.operator(v, path)
	}
	return nil, p.fail(path, "unsupported JSON value %T", doc)
}

func (p parser) operator(obj map[string]interface{}, path string) (Expr, error) {
	if len(obj) != 1 {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, p.fail(path, "operator object must have exactly one key, got %v", keys)
	}

	var op string
	var args interface{}
	for k, v := range obj {
		op, args = k, v
	}
	opPath := path + "." + op

	if op == opVar {
		return p.variable(args, path, opPath)
	}
	if c, ok := compareOpFor(op); ok {
		operands, err := p.operands(args, opPath, 2, 2)
		if err != nil {
			return nil, err
		}
		return &Compare{path: path, Op: c, Left: operands[0], Right: operands[1]}, nil
	}
	if l, ok := logicalOpFor(op); ok {
		lo, hi := 1, -1
		if l == OpNot {
			hi = 1
		}
		operands, err := p.operands(args, opPath, lo, hi)
		if err != nil {
			return nil, err
		}
		return &Logical{path: path, Op: l, Operands: operands}, nil
	}
	if op == opIf {
		operands, err := p.operands(args, opPath, 3, 3)
		if err != nil {
			return nil, err
		}
		return &If{path: path, Cond: operands[0], Then: operands[1], Else: operands[2]}, nil
	}

	return nil, p.fail(path, "unknown operator %q", op)
}

// operands parses an operand list. A bare value counts as a single operand
// so {"!": {"var": "x"}} works. hi < 0 means unbounded.
func (p parser) operands(args interface{}, path string, lo, hi int) ([]Expr, error) {
	list, ok := args.([]interface{})
	if !ok {
		list = []interface{}{args}
	}
	if len(list) < lo || (hi >= 0 && len(list) > hi) {
		return nil, p.fail(path, "expected %s, got %d", arity(lo, hi), len(list))
	}

	out := make([]Expr, 0, len(list))
	for i, arg := range list {
		e, err := p.node(arg, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (p parser) variable(args interface{}, path, opPath string) (Expr, error) {
	switch v := args.(type) {
	case string:
		if v == "" {
			return nil, p.fail(opPath, "variable name is empty")
		}
		return &Var{path: path, Name: v}, nil
	case []interface{}:
		if len(v) < 1 || len(v) > 2 {
			return nil, p.fail(opPath, "expected name and optional default, got %d operands", len(v))
		}
		name, ok := v[0].(string)
		if !ok || name == "" {
			return nil, p.fail(opPath+"[0]", "variable name must be a non-empty string")
		}
		out := &Var{path: path, Name: name}
		if len(v) == 2 {
			def, err := p.node(v[1], opPath+"[1]")
			if err != nil {
				return nil, err
			}
			lit, ok := def.(*Literal)
			if !ok {
				return nil, p.fail(opPath+"[1]", "variable default must be a literal")
			}
			out.Default = lit
		}
		return out, nil
	}
	return nil, p.fail(opPath, "variable name must be a string")
}

func arity(lo, hi int) string {
	switch {
	case lo == hi:
		return fmt.Sprintf("exactly %d operands", lo)
	case hi < 0:
		return fmt.Sprintf("at least %d operands", lo)
	}
	return fmt.Sprintf("between %d and %d operands", lo, hi)
}
