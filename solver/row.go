package solver

import "math"

const epsilon = 1.0e-8

func nearZero(v float64) bool { return math.Abs(v) < epsilon }

type symbolKind uint8

const (
	symInvalid symbolKind = iota
	symExternal
	symSlack
	symError
	symDummy
)

// symbol ids grow monotonically, so ordering by id is insertion order.
type symbol struct {
	id   int
	kind symbolKind
}

func (s symbol) valid() bool { return s.kind != symInvalid }

// pivotable reports whether the symbol may enter the basis when pivoting a row out.
func (s symbol) pivotable() bool { return s.kind == symSlack || s.kind == symError }

type row struct {
	constant float64
	cells    map[symbol]float64
}

func newRow(constant float64) *row {
	return &row{constant: constant, cells: make(map[symbol]float64)}
}

func (r *row) clone() *row {
	c := newRow(r.constant)
	for s, v := range r.cells {
		c.cells[s] = v
	}
	return c
}

// firstSymbol returns the lowest-id symbol of the row accepted by keep,
// or the invalid symbol when none is.
func (r *row) firstSymbol(keep func(symbol, float64) bool) symbol {
	var best symbol
	for s, v := range r.cells {
		if keep(s, v) && (!best.valid() || s.id < best.id) {
			best = s
		}
	}
	return best
}

func (r *row) coefficientFor(s symbol) float64 { return r.cells[s] }

func (r *row) insertSymbol(s symbol, coefficient float64) {
	v := r.cells[s] + coefficient
	if nearZero(v) {
		delete(r.cells, s)
		return
	}
	r.cells[s] = v
}

// insertRow adds other*coefficient to this row.
func (r *row) insertRow(other *row, coefficient float64) {
	r.constant += other.constant * coefficient
	for s, v := range other.cells {
		r.insertSymbol(s, v*coefficient)
	}
}

func (r *row) remove(s symbol) { delete(r.cells, s) }

func (r *row) reverseSign() {
	r.constant = -r.constant
	for s, v := range r.cells {
		r.cells[s] = -v
	}
}

// solveFor rewrites the row so that it expresses s in terms of the other symbols.
// s is dropped from the row.
func (r *row) solveFor(s symbol) {
	coeff := -1.0 / r.cells[s]
	delete(r.cells, s)
	r.constant *= coeff
	for k, v := range r.cells {
		r.cells[k] = v * coeff
	}
}

// solveForPair solves for rhs, where the row currently expresses lhs.
func (r *row) solveForPair(lhs, rhs symbol) {
	r.insertSymbol(lhs, -1)
	r.solveFor(rhs)
}

// substitute replaces s with the expression held by other.
func (r *row) substitute(s symbol, other *row) {
	coeff, ok := r.cells[s]
	if !ok {
		return
	}
	delete(r.cells, s)
	r.insertRow(other, coeff)
}

func (r *row) allDummies() bool {
	for s := range r.cells {
		if s.kind != symDummy {
			return false
		}
	}
	return true
}
