package shop

import (
	"fmt"

	"github.com/five82/storefront/internal/cart"
)

// Phase names the sub-operation a move step reached.
type Phase string

const (
	PhaseLookup Phase = "lookup" // find the product in the source store
	PhaseAdd    Phase = "add"    // insert into the destination store
	PhaseRemove Phase = "remove" // drop from the source store
	PhaseDone   Phase = "done"
)

// Step is the result of moving one product.
type Step struct {
	ProductID string
	Name      string
	Phase     Phase // last phase reached; PhaseDone on success
	Outcome   cart.Outcome
	Err       error
}

// OK reports whether the move completed.
func (s Step) OK() bool {
	return s.Err == nil && s.Phase == PhaseDone
}

// Notice renders a shopper-facing message for the step.
func (s Step) Notice() string {
	label := s.Name
	if label == "" {
		label = s.ProductID
	}
	switch {
	case s.OK() && s.Outcome.Clamped:
		return fmt.Sprintf("moved %s (%s)", label, s.Outcome.Notice())
	case s.OK():
		return "moved " + label
	case s.Phase == PhaseLookup:
		return label + " is not in the list"
	default:
		return fmt.Sprintf("could not move %s: %v", label, s.Err)
	}
}

// Report aggregates the steps of a bulk move.
type Report struct {
	ID    string // correlates the log lines of one bulk move
	Steps []Step
}

// Succeeded counts completed steps.
func (r Report) Succeeded() int {
	n := 0
	for _, s := range r.Steps {
		if s.OK() {
			n++
		}
	}
	return n
}

// Failed counts steps that did not complete.
func (r Report) Failed() int {
	return len(r.Steps) - r.Succeeded()
}

// Total is the number of products the move attempted.
func (r Report) Total() int {
	return len(r.Steps)
}

// Summary renders "moved N of M".
func (r Report) Summary() string {
	if r.Total() == 0 {
		return "nothing to move"
	}
	return fmt.Sprintf("moved %d of %d", r.Succeeded(), r.Total())
}
