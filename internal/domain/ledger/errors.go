package ledger

import "fmt"

// CodePartialApplication is reported when a claim was recorded but the
// follow-up reserve withdrawal failed.
const CodePartialApplication = "ERR_PARTIAL_APPLICATION"

// PartialApplicationError means the claim record committed and the savings
// withdrawal did not. The record stays claimed; the withdrawal has to be
// appended by hand.
type PartialApplicationError struct {
	Record *DistributionRecord
	Cause  error
}

func (e *PartialApplicationError) Error() string {
	return fmt.Sprintf("claim for %s (%s) recorded but savings withdrawal failed: %v",
		e.Record.OwnerName, e.Record.Period, e.Cause)
}

func (e *PartialApplicationError) Unwrap() error {
	return e.Cause
}
