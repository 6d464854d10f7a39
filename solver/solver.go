// Package solver implements an incremental simplex solver for linear
// equalities and inequalities with prioritised strengths, plus a
// layout-oriented adapter (System) used by the layout package.
package solver

import (
	"errors"
	"math"
)

var (
	ErrUnsatisfiable       = errors.New("solver: required constraint is unsatisfiable")
	ErrDuplicateConstraint = errors.New("solver: duplicate constraint")
	ErrUnknownConstraint   = errors.New("solver: unknown constraint")
	ErrUnbounded           = errors.New("solver: objective is unbounded")
	errInternal            = errors.New("solver: internal error")
)

type tag struct {
	marker symbol
	other  symbol
}

// Solver holds the simplex tableau. The zero value is not usable; use NewSolver.
type Solver struct {
	constraints map[*Constraint]tag
	rows        map[symbol]*row
	vars        map[*Variable]symbol
	objective   *row
	artificial  *row
	nextID      int
}

// NewSolver returns an empty solver.
func NewSolver() *Solver {
	return &Solver{
		constraints: make(map[*Constraint]tag),
		rows:        make(map[symbol]*row),
		vars:        make(map[*Variable]symbol),
		objective:   newRow(0),
	}
}

// Reset drops every constraint and variable binding.
func (s *Solver) Reset() {
	s.constraints = make(map[*Constraint]tag)
	s.rows = make(map[symbol]*row)
	s.vars = make(map[*Variable]symbol)
	s.objective = newRow(0)
	s.artificial = nil
	s.nextID = 0
}

func (s *Solver) newSymbol(kind symbolKind) symbol {
	s.nextID++
	return symbol{id: s.nextID, kind: kind}
}

// HasConstraint reports whether c was added and not removed.
func (s *Solver) HasConstraint(c *Constraint) bool {
	_, ok := s.constraints[c]
	return ok
}

// NumConstraints returns the number of active constraints.
func (s *Solver) NumConstraints() int { return len(s.constraints) }

// AddConstraint adds c and re-optimises. On ErrUnsatisfiable the tableau is
// left as it was before the call.
func (s *Solver) AddConstraint(c *Constraint) error {
	if _, ok := s.constraints[c]; ok {
		return ErrDuplicateConstraint
	}
	var t tag
	r := s.createRow(c, &t)
	subject := chooseSubject(r, t)
	if !subject.valid() && r.allDummies() {
		if !nearZero(r.constant) {
			return ErrUnsatisfiable
		}
		subject = t.marker
	}
	if !subject.valid() {
		saved := s.snapshot()
		ok, err := s.addWithArtificialVariable(r)
		if err == nil && !ok {
			err = ErrUnsatisfiable
		}
		if err != nil {
			s.restore(saved)
			return err
		}
	} else {
		r.solveFor(subject)
		s.substitute(subject, r)
		s.rows[subject] = r
	}
	s.constraints[c] = t
	return s.optimize(s.objective)
}

// RemoveConstraint removes c and re-optimises.
func (s *Solver) RemoveConstraint(c *Constraint) error {
	t, ok := s.constraints[c]
	if !ok {
		return ErrUnknownConstraint
	}
	delete(s.constraints, c)
	s.removeConstraintEffects(c, t)

	if _, ok := s.rows[t.marker]; ok {
		delete(s.rows, t.marker)
	} else {
		leaving, r := s.markerLeavingRow(t.marker)
		if r == nil {
			return errInternal
		}
		delete(s.rows, leaving)
		r.solveForPair(leaving, t.marker)
		s.substitute(t.marker, r)
	}
	return s.optimize(s.objective)
}

// UpdateVariables copies the current solution into every known variable.
func (s *Solver) UpdateVariables() {
	for v, sym := range s.vars {
		if r, ok := s.rows[sym]; ok {
			v.value = r.constant
		} else {
			v.value = 0
		}
	}
}

type tableau struct {
	rows      map[symbol]*row
	objective *row
}

func (s *Solver) snapshot() tableau {
	rows := make(map[symbol]*row, len(s.rows))
	for k, r := range s.rows {
		rows[k] = r.clone()
	}
	return tableau{rows: rows, objective: s.objective.clone()}
}

func (s *Solver) restore(t tableau) {
	s.rows = t.rows
	s.objective = t.objective
	s.artificial = nil
}

func (s *Solver) varSymbol(v *Variable) symbol {
	if sym, ok := s.vars[v]; ok {
		return sym
	}
	sym := s.newSymbol(symExternal)
	s.vars[v] = sym
	return sym
}

func (s *Solver) createRow(c *Constraint, t *tag) *row {
	r := newRow(c.expr.Constant)
	for _, term := range c.expr.Terms {
		if nearZero(term.Coefficient) {
			continue
		}
		sym := s.varSymbol(term.Variable)
		if basic, ok := s.rows[sym]; ok {
			r.insertRow(basic, term.Coefficient)
		} else {
			r.insertSymbol(sym, term.Coefficient)
		}
	}

	weight := c.strength.Weight()
	required := c.strength.IsRequired()
	switch c.op {
	case OpLE, OpGE:
		coeff := 1.0
		if c.op == OpGE {
			coeff = -1.0
		}
		slack := s.newSymbol(symSlack)
		t.marker = slack
		r.insertSymbol(slack, coeff)
		if !required {
			errSym := s.newSymbol(symError)
			t.other = errSym
			r.insertSymbol(errSym, -coeff)
			s.objective.insertSymbol(errSym, weight)
		}
	case OpEQ:
		if required {
			dummy := s.newSymbol(symDummy)
			t.marker = dummy
			r.insertSymbol(dummy, 1)
		} else {
			plus := s.newSymbol(symError)
			minus := s.newSymbol(symError)
			t.marker = plus
			t.other = minus
			r.insertSymbol(plus, -1)
			r.insertSymbol(minus, 1)
			s.objective.insertSymbol(plus, weight)
			s.objective.insertSymbol(minus, weight)
		}
	}
	if r.constant < 0 {
		r.reverseSign()
	}
	return r
}

// chooseSubject picks the symbol the new row is solved for: any external
// symbol, else a negative slack/error marker.
func chooseSubject(r *row, t tag) symbol {
	if sym := r.firstSymbol(func(s symbol, _ float64) bool { return s.kind == symExternal }); sym.valid() {
		return sym
	}
	if t.marker.pivotable() && r.coefficientFor(t.marker) < 0 {
		return t.marker
	}
	if t.other.pivotable() && r.coefficientFor(t.other) < 0 {
		return t.other
	}
	return symbol{}
}

func (s *Solver) addWithArtificialVariable(r *row) (bool, error) {
	art := s.newSymbol(symSlack)
	s.rows[art] = r.clone()
	s.artificial = r.clone()
	if err := s.optimize(s.artificial); err != nil {
		s.artificial = nil
		return false, err
	}
	success := nearZero(s.artificial.constant)
	s.artificial = nil

	if basic, ok := s.rows[art]; ok {
		delete(s.rows, art)
		if len(basic.cells) == 0 {
			return success, nil
		}
		entering := anyPivotableSymbol(basic)
		if !entering.valid() {
			return false, nil
		}
		basic.solveForPair(art, entering)
		s.substitute(entering, basic)
		s.rows[entering] = basic
	}
	for _, r := range s.rows {
		r.remove(art)
	}
	s.objective.remove(art)
	return success, nil
}

func anyPivotableSymbol(r *row) symbol {
	return r.firstSymbol(func(s symbol, _ float64) bool { return s.pivotable() })
}

// substitute is order independent: each row is rewritten on its own.
func (s *Solver) substitute(sym symbol, r *row) {
	for _, basic := range s.rows {
		basic.substitute(sym, r)
	}
	s.objective.substitute(sym, r)
	if s.artificial != nil {
		s.artificial.substitute(sym, r)
	}
}

func (s *Solver) optimize(objective *row) error {
	for {
		entering := enteringSymbol(objective)
		if !entering.valid() {
			return nil
		}
		leaving, r := s.leavingRow(entering)
		if r == nil {
			return ErrUnbounded
		}
		delete(s.rows, leaving)
		r.solveForPair(leaving, entering)
		s.substitute(entering, r)
		s.rows[entering] = r
	}
}

func enteringSymbol(objective *row) symbol {
	return objective.firstSymbol(func(s symbol, v float64) bool { return s.kind != symDummy && v < 0 })
}

// better reports whether candidate (ratio v, symbol k) beats the current best.
// Ties go to the lower symbol id so pivoting does not depend on map order.
func better(v float64, k symbol, best float64, found symbol) bool {
	return v < best || (v == best && found.valid() && k.id < found.id)
}

func (s *Solver) leavingRow(entering symbol) (symbol, *row) {
	ratio := math.MaxFloat64
	var found symbol
	for k, r := range s.rows {
		if k.kind == symExternal {
			continue
		}
		coeff := r.coefficientFor(entering)
		if coeff < 0 {
			if v := -r.constant / coeff; better(v, k, ratio, found) {
				ratio = v
				found = k
			}
		}
	}
	if !found.valid() {
		return symbol{}, nil
	}
	return found, s.rows[found]
}

// markerLeavingRow finds the row that must leave the basis so a constraint
// marker can be removed.
func (s *Solver) markerLeavingRow(marker symbol) (symbol, *row) {
	r1, r2 := math.MaxFloat64, math.MaxFloat64
	var first, second, third symbol
	for k, r := range s.rows {
		c := r.coefficientFor(marker)
		if c == 0 {
			continue
		}
		switch {
		case k.kind == symExternal:
			if !third.valid() || k.id > third.id {
				third = k
			}
		case c < 0:
			if v := -r.constant / c; better(v, k, r1, first) {
				r1 = v
				first = k
			}
		default:
			if v := r.constant / c; better(v, k, r2, second) {
				r2 = v
				second = k
			}
		}
	}
	for _, k := range []symbol{first, second, third} {
		if k.valid() {
			return k, s.rows[k]
		}
	}
	return symbol{}, nil
}

func (s *Solver) removeConstraintEffects(c *Constraint, t tag) {
	weight := c.strength.Weight()
	if t.marker.kind == symError {
		s.removeMarkerEffects(t.marker, weight)
	}
	if t.other.kind == symError {
		s.removeMarkerEffects(t.other, weight)
	}
}

func (s *Solver) removeMarkerEffects(marker symbol, weight float64) {
	if r, ok := s.rows[marker]; ok {
		s.objective.insertRow(r, -weight)
	} else {
		s.objective.insertSymbol(marker, -weight)
	}
}
