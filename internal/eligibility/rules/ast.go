package rules

// Expr is a parsed rule expression. The set of implementations is closed:
// *Var, *Compare, *Logical, *If and *Literal.
type Expr interface {
	// Path locates the node in the source document, e.g. "$.and[1].<=[0]".
	Path() string
	isExpr()
}

type CompareOp string

const (
	OpLessEqual    CompareOp = "<="
	OpGreaterEqual CompareOp = ">="
	OpLess         CompareOp = "<"
	OpGreater      CompareOp = ">"
	OpEqual        CompareOp = "=="
	OpNotEqual     CompareOp = "!="
)

type LogicalOp string

const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
	OpNot LogicalOp = "!"
)

const opIf = "if"
const opVar = "var"

// Var reads a context variable. Default is used when the variable is absent.
type Var struct {
	path    string
	Name    string
	Default *Literal
}

// Compare applies a binary comparison.
type Compare struct {
	path  string
	Op    CompareOp
	Left  Expr
	Right Expr
}

// Logical combines operands; OpNot has exactly one.
type Logical struct {
	path     string
	Op       LogicalOp
	Operands []Expr
}

// If chooses Then or Else by the truthiness of Cond.
type If struct {
	path string
	Cond Expr
	Then Expr
	Else Expr
}

// Literal is a constant.
type Literal struct {
	path  string
	Value Value
}

func (e *Var) Path() string     { return e.path }
func (e *Compare) Path() string { return e.path }
func (e *Logical) Path() string { return e.path }
func (e *If) Path() string      { return e.path }
func (e *Literal) Path() string { return e.path }

func (*Var) isExpr()     {}
func (*Compare) isExpr() {}
func (*Logical) isExpr() {}
func (*If) isExpr()      {}
func (*Literal) isExpr() {}

func compareOpFor(op string) (CompareOp, bool) {
	switch c := CompareOp(op); c {
	case OpLessEqual, OpGreaterEqual, OpLess, OpGreater, OpEqual, OpNotEqual:
		return c, true
	}
	return "", false
}

func logicalOpFor(op string) (LogicalOp, bool) {
	switch l := LogicalOp(op); l {
	case OpAnd, OpOr, OpNot:
		return l, true
	}
	return "", false
}
