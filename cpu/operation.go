package cpu

import (
	"fmt"
	"math/rand"
)

// Operation is an arithmetic instruction that the core can execute on its two
// operand registers.
type Operation int

// The operations supported by the core.
const (
	Add Operation = iota
	Subtract
	Multiply
	Divide
)

// Operations lists all the supported operations.
var Operations = []Operation{Add, Subtract, Multiply, Divide}

func (o Operation) String() string {
	switch o {
	case Add:
		return "ADD"
	case Subtract:
		return "SUBTRACT"
	case Multiply:
		return "MULTIPLY"
	case Divide:
		return "DIVIDE"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// Symbol returns the arithmetic symbol of the operation.
func (o Operation) Symbol() string {
	switch o {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return "?"
	}
}

// Apply computes a op b. Dividing by zero yields 0 and reports divByZero.
func (o Operation) Apply(a, b int) (result int, divByZero bool) {
	switch o {
	case Add:
		return a + b, false
	case Subtract:
		return a - b, false
	case Multiply:
		return a * b, false
	case Divide:
		if b == 0 {
			return 0, true
		}

		return a / b, false
	default:
		panic(fmt.Sprintf("unknown operation %d", int(o)))
	}
}

// An OperationSource decides the next operation to execute.
type OperationSource interface {
	Next() Operation
}

type randomOperationSource struct {
	rng *rand.Rand
}

// NewRandomOperationSource creates an OperationSource that picks operations
// uniformly at random. The same seed produces the same sequence.
func NewRandomOperationSource(seed int64) OperationSource {
	return &randomOperationSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (s *randomOperationSource) Next() Operation {
	return Operations[s.rng.Intn(len(Operations))]
}

// FixedOperationSource repeats a list of operations in order.
type FixedOperationSource struct {
	Ops  []Operation
	next int
}

// Next returns the next operation in the list, wrapping around at the end.
func (s *FixedOperationSource) Next() Operation {
	op := s.Ops[s.next%len(s.Ops)]
	s.next++

	return op
}
