package rules

// Vars binds variable names to values for one evaluation.
type Vars map[string]Value

// Eval reduces expr against vars. It is pure: no clock, no I/O.
func Eval(ruleID string, expr Expr, vars Vars) (Value, error) {
	return evaluator{ruleID: ruleID, vars: vars}.eval(expr)
}

// Matches evaluates expr and reports its truthiness.
func Matches(ruleID string, expr Expr, vars Vars) (bool, error) {
	v, err := Eval(ruleID, expr, vars)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

type evaluator struct {
	ruleID string
	vars   Vars
}

func (ev evaluator) eval(expr Expr) (Value, error) {
	switch e := expr.(type) {
	case *Literal:
		return e.Value, nil
	case *Var:
		if v, ok := ev.vars[e.Name]; ok {
			return v, nil
		}
		if e.Default != nil {
			return e.Default.Value, nil
		}
		return Null(), nil
	case *Compare:
		return ev.compare(e)
	case *Logical:
		return ev.logical(e)
	case *If:
		cond, err := ev.eval(e.Cond)
		if err != nil {
			return Value{}, err
		}
		if cond.Truthy() {
			return ev.eval(e.Then)
		}
		return ev.eval(e.Else)
	case nil:
		return Value{}, newRuleError(ev.ruleID, "$", "missing expression")
	}
	return Value{}, newRuleError(ev.ruleID, expr.Path(), "unsupported node %T", expr)
}

func (ev evaluator) logical(e *Logical) (Value, error) {
	values := make([]Value, 0, len(e.Operands))
	for _, operand := range e.Operands {
		v, err := ev.eval(operand)
		if err != nil {
			return Value{}, err
		}
		values = append(values, v)
	}

	switch e.Op {
	case OpNot:
		return Bool(!values[0].Truthy()), nil
	case OpAnd:
		for _, v := range values {
			if !v.Truthy() {
				return Bool(false), nil
			}
		}
		return Bool(true), nil
	case OpOr:
		for _, v := range values {
			if v.Truthy() {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	}
	return Value{}, newRuleError(ev.ruleID, e.Path(), "unknown logical operator %q", e.Op)
}

func (ev evaluator) compare(e *Compare) (Value, error) {
	left, err := ev.eval(e.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := ev.eval(e.Right)
	if err != nil {
		return Value{}, err
	}

	// Missing data never satisfies a comparison, in either direction.
	if left.IsNull() || right.IsNull() {
		return Bool(false), nil
	}

	if e.Op == OpEqual || e.Op == OpNotEqual {
		if left.Kind() == KindBool || right.Kind() == KindBool {
			if left.Kind() != right.Kind() {
				return Value{}, newRuleError(ev.ruleID, e.Path(), "cannot compare %s with %s", left.Kind(), right.Kind())
			}
			eq := left.Equal(right)
			return Bool(eq == (e.Op == OpEqual)), nil
		}
		if left.Kind() == KindString && right.Kind() == KindString {
			_, lnum := left.number()
			_, rnum := right.number()
			if !lnum || !rnum {
				eq := left.Equal(right)
				return Bool(eq == (e.Op == OpEqual)), nil
			}
		}
	}

	l, ok := left.number()
	if !ok {
		return Value{}, newRuleError(ev.ruleID, e.Left.Path(), "non-numeric operand %s for %s", left, e.Op)
	}
	r, ok := right.number()
	if !ok {
		return Value{}, newRuleError(ev.ruleID, e.Right.Path(), "non-numeric operand %s for %s", right, e.Op)
	}

	cmp := l.Cmp(r)
	switch e.Op {
	case OpLessEqual:
		return Bool(cmp <= 0), nil
	case OpGreaterEqual:
		return Bool(cmp >= 0), nil
	case OpLess:
		return Bool(cmp < 0), nil
	case OpGreater:
		return Bool(cmp > 0), nil
	case OpEqual:
		return Bool(cmp == 0), nil
	case OpNotEqual:
		return Bool(cmp != 0), nil
	}
	return Value{}, newRuleError(ev.ruleID, e.Path(), "unknown comparison operator %q", e.Op)
}
