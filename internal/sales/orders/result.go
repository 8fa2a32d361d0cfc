package orders

import (
	"github.com/odyssey-erp/backoffice/internal/ar"
	"github.com/odyssey-erp/backoffice/internal/delivery"
)

// Outcome classifies a transition that reached the database.
type Outcome string

const (
	// OutcomeCommitted means every effect, including any ledger post, succeeded.
	OutcomeCommitted Outcome = "COMMITTED"
	// OutcomeCommittedWithDegradedLedger means the transaction committed but the ledger post did not.
	OutcomeCommittedWithDegradedLedger Outcome = "COMMITTED_WITH_DEGRADED_LEDGER"
	// OutcomeFailed labels transitions that returned an error. It never appears on a TransitionResult.
	OutcomeFailed Outcome = "FAILED"
)

// DegradationKind names an effect that was skipped without failing the transition.
type DegradationKind string

const (
	DegradedLedgerPost      DegradationKind = "LEDGER_POST_FAILED"
	DegradedCustomerBalance DegradationKind = "CUSTOMER_BALANCE_SKIPPED"
)

// Degradation describes one skipped effect.
type Degradation struct {
	Kind   DegradationKind `json:"kind"`
	Detail string          `json:"detail"`
}

// TransitionResult is returned for a committed transition. Failures are returned as errors.
type TransitionResult struct {
	Order        *SalesOrder
	Delivery     *delivery.SalesDelivery
	Invoice      *ar.Invoice
	Degradations []Degradation
}

// Outcome derives the result classification from the recorded degradations.
func (r TransitionResult) Outcome() Outcome {
	if r.Degraded(DegradedLedgerPost) {
		return OutcomeCommittedWithDegradedLedger
	}
	return OutcomeCommitted
}

// Degraded reports whether a degradation of kind was recorded.
func (r TransitionResult) Degraded(kind DegradationKind) bool {
	for _, d := range r.Degradations {
		if d.Kind == kind {
			return true
		}
	}
	return false
}
