package solver

import (
	"errors"
	"fmt"
)

// System is the layout-facing adapter over Solver. Every helper describes a
// row in terms of anchor variables, margins and a strength.
//
// Required rows that conflict with rows already in the system are not
// dropped: they are demoted to StrengthCentering and recorded in Conflicts.
type System struct {
	solver    *Solver
	variables []*Variable
	conflicts []*Constraint
}

// NewSystem returns an empty system.
func NewSystem() *System {
	return &System{solver: NewSolver()}
}

// Reset removes every row and variable.
func (s *System) Reset() {
	s.solver.Reset()
	s.variables = s.variables[:0]
	s.conflicts = nil
}

// CreateVariable registers a new variable.
func (s *System) CreateVariable(name string) *Variable {
	v := &Variable{name: name, id: len(s.variables) + 1}
	s.variables = append(s.variables, v)
	return v
}

// Variables returns the variables in creation order.
func (s *System) Variables() []*Variable { return s.variables }

// Conflicts returns required rows that had to be demoted.
func (s *System) Conflicts() []*Constraint { return s.conflicts }

// NumRows returns the number of rows added so far.
func (s *System) NumRows() int { return s.solver.NumConstraints() }

// AddConstraint adds "expr op 0" at the given strength. StrengthNone rows
// carry no weight and are skipped.
func (s *System) AddConstraint(expr Expression, op Operator, strength Strength) (*Constraint, error) {
	if strength == StrengthNone {
		return nil, nil
	}
	c := NewConstraint(expr, op, strength)
	err := s.solver.AddConstraint(c)
	if errors.Is(err, ErrUnsatisfiable) && strength.IsRequired() {
		s.conflicts = append(s.conflicts, c)
		c = NewConstraint(expr, op, StrengthCentering)
		err = s.solver.AddConstraint(c)
	}
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", c, err)
	}
	return c, nil
}

// Remove drops a row previously returned by one of the Add helpers.
func (s *System) Remove(c *Constraint) error {
	if c == nil {
		return nil
	}
	return s.solver.RemoveConstraint(c)
}

// AddEquality adds a = b + margin.
func (s *System) AddEquality(a, b *Variable, margin float64, strength Strength) (*Constraint, error) {
	return s.AddConstraint(Expr(-margin).Plus(a, 1).Plus(b, -1), OpEQ, strength)
}

// AddEqualityConstant adds a = value.
func (s *System) AddEqualityConstant(a *Variable, value float64, strength Strength) (*Constraint, error) {
	return s.AddConstraint(Expr(-value).Plus(a, 1), OpEQ, strength)
}

// AddGreaterThan adds a >= b + margin.
func (s *System) AddGreaterThan(a, b *Variable, margin float64, strength Strength) (*Constraint, error) {
	return s.AddConstraint(Expr(-margin).Plus(a, 1).Plus(b, -1), OpGE, strength)
}

// AddLowerThan adds a <= b + margin.
func (s *System) AddLowerThan(a, b *Variable, margin float64, strength Strength) (*Constraint, error) {
	return s.AddConstraint(Expr(-margin).Plus(a, 1).Plus(b, -1), OpLE, strength)
}

// AddGreaterBarrier adds the required row a >= b + margin. The slack carries
// no weight, so the barrier may sit anywhere past b.
func (s *System) AddGreaterBarrier(a, b *Variable, margin float64) (*Constraint, error) {
	return s.AddGreaterThan(a, b, margin, StrengthFixed)
}

// AddLowerBarrier adds the required row a <= b + margin.
func (s *System) AddLowerBarrier(a, b *Variable, margin float64) (*Constraint, error) {
	return s.AddLowerThan(a, b, margin, StrengthFixed)
}

// AddCentering places the span [a, d] between b and c:
//
//	(a - b - m1) * (1 - bias) = (c - d - m2) * bias
//
// bias 0 pins a to b + m1, bias 1 pins d to c - m2.
func (s *System) AddCentering(a, b *Variable, m1, bias float64, c, d *Variable, m2 float64, strength Strength) (*Constraint, error) {
	switch {
	case bias <= 0:
		return s.AddEquality(a, b, m1, strength)
	case bias >= 1:
		return s.AddEquality(d, c, -m2, strength)
	}
	expr := Expr(-m1*(1-bias) + m2*bias).
		Plus(a, 1-bias).
		Plus(b, -(1 - bias)).
		Plus(c, -bias).
		Plus(d, bias)
	return s.AddConstraint(expr, OpEQ, strength)
}

// AddRatio adds (a - b) = ratio * (c - d).
func (s *System) AddRatio(a, b, c, d *Variable, ratio float64, strength Strength) (*Constraint, error) {
	expr := Expr(0).Plus(a, 1).Plus(b, -1).Plus(c, -ratio).Plus(d, ratio)
	return s.AddConstraint(expr, OpEQ, strength)
}

// AddProportion adds (a - b) * q = (c - d) * p, used for weighted chains.
func (s *System) AddProportion(a, b *Variable, q float64, c, d *Variable, p float64, strength Strength) (*Constraint, error) {
	expr := Expr(0).Plus(a, q).Plus(b, -q).Plus(c, -p).Plus(d, p)
	return s.AddConstraint(expr, OpEQ, strength)
}

// Minimize publishes the optimal solution into the variables.
func (s *System) Minimize() {
	s.solver.UpdateVariables()
}

// Value returns the solved value of v, rounded to the layout pixel grid
// only by the caller.
func (s *System) Value(v *Variable) float64 { return v.value }
