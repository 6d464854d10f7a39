package solver

import (
	"fmt"
	"strings"
)

// Variable is an external value computed by the solver.
type Variable struct {
	name  string
	id    int
	value float64
}

// NewVariable creates a free-standing variable.
func NewVariable(name string) *Variable { return &Variable{name: name} }

func (v *Variable) Name() string   { return v.name }
func (v *Variable) Value() float64 { return v.value }
func (v *Variable) String() string { return fmt.Sprintf("%s=%g", v.name, v.value) }

// Term is coefficient * variable.
type Term struct {
	Variable    *Variable
	Coefficient float64
}

// Expression is a linear combination of terms plus a constant.
type Expression struct {
	Terms    []Term
	Constant float64
}

// Expr starts an expression with the given constant.
func Expr(constant float64) Expression { return Expression{Constant: constant} }

// Plus returns e + coefficient*v.
func (e Expression) Plus(v *Variable, coefficient float64) Expression {
	terms := make([]Term, len(e.Terms), len(e.Terms)+1)
	copy(terms, e.Terms)
	e.Terms = append(terms, Term{Variable: v, Coefficient: coefficient})
	return e
}

// Add returns e + c.
func (e Expression) Add(c float64) Expression {
	e.Constant += c
	return e
}

// reduce merges duplicate variables and drops zero terms, keeping first-seen order.
func (e Expression) reduce() Expression {
	index := make(map[*Variable]int, len(e.Terms))
	out := Expression{Constant: e.Constant}
	for _, t := range e.Terms {
		if t.Variable == nil {
			continue
		}
		if i, ok := index[t.Variable]; ok {
			out.Terms[i].Coefficient += t.Coefficient
			continue
		}
		index[t.Variable] = len(out.Terms)
		out.Terms = append(out.Terms, t)
	}
	kept := out.Terms[:0]
	for _, t := range out.Terms {
		if !nearZero(t.Coefficient) {
			kept = append(kept, t)
		}
	}
	out.Terms = kept
	return out
}

func (e Expression) String() string {
	var b strings.Builder
	for i, t := range e.Terms {
		if i > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%g*%s", t.Coefficient, t.Variable.name)
	}
	if len(e.Terms) > 0 {
		b.WriteString(" + ")
	}
	fmt.Fprintf(&b, "%g", e.Constant)
	return b.String()
}

// Operator relates an expression to zero.
type Operator int

const (
	OpEQ Operator = iota
	OpLE
	OpGE
)

func (o Operator) String() string {
	switch o {
	case OpLE:
		return "<="
	case OpGE:
		return ">="
	default:
		return "=="
	}
}

// Constraint is "expression op 0" at a strength.
type Constraint struct {
	expr     Expression
	op       Operator
	strength Strength
}

// NewConstraint builds a constraint; the expression is reduced.
func NewConstraint(expr Expression, op Operator, strength Strength) *Constraint {
	return &Constraint{expr: expr.reduce(), op: op, strength: strength}
}

func (c *Constraint) Expression() Expression { return c.expr }
func (c *Constraint) Operator() Operator     { return c.op }
func (c *Constraint) Strength() Strength     { return c.strength }

func (c *Constraint) String() string {
	return fmt.Sprintf("%s %s 0 | %s", c.expr, c.op, c.strength)
}
