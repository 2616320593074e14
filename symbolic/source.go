package symbolic

// Variable is a defined state or parameter with its initial (or default)
// value. Name is the raw symbolic name; normalization happens during
// encoding.
type Variable struct {
	Name string
	Val  float64
}

// Equation relates two symbolic expressions, lhs ~ rhs.
type Equation struct {
	LHS Ex
	RHS Ex
}

// ModelSource is the uniform accessor surface the encoder consumes. Both
// a full model with metadata and a bare equation system satisfy it, so
// the encoder has a single entry point for either shape.
type ModelSource interface {
	IndependentVariable() Variable
	Parameters() []Variable
	States() []Variable
	AlgebraicEquations() []Equation
	DifferentialEquations() []Equation
	ObservedEquations() []Equation
}

// System is a bare symbolic equation system.
type System struct {
	IV     Variable
	Params []Variable
	Sts    []Variable
	Algs   []Equation
	ODEs   []Equation
	Obs    []Equation
}

func (s *System) IndependentVariable() Variable    { return s.IV }
func (s *System) Parameters() []Variable           { return s.Params }
func (s *System) States() []Variable               { return s.Sts }
func (s *System) AlgebraicEquations() []Equation   { return s.Algs }
func (s *System) DifferentialEquations() []Equation { return s.ODEs }
func (s *System) ObservedEquations() []Equation    { return s.Obs }

// Model is a system plus source metadata, as produced by a markup-model
// importer. The extra fields do not affect encoding.
type Model struct {
	Name string
	Doc  string
	Sys  System
}

func (m *Model) IndependentVariable() Variable    { return m.Sys.IV }
func (m *Model) Parameters() []Variable           { return m.Sys.Params }
func (m *Model) States() []Variable               { return m.Sys.Sts }
func (m *Model) AlgebraicEquations() []Equation   { return m.Sys.Algs }
func (m *Model) DifferentialEquations() []Equation { return m.Sys.ODEs }
func (m *Model) ObservedEquations() []Equation    { return m.Sys.Obs }
