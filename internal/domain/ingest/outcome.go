package ingest

// Outcome is the terminal result of persisting one record.
type Outcome string

const (
	OutcomeCreated           Outcome = "created"
	OutcomeDuplicateRejected Outcome = "duplicate_rejected"
	OutcomeMalformed         Outcome = "malformed"
	OutcomeUnexpectedFailure Outcome = "unexpected_failure"
)

// OutcomeFor maps a classified error to an outcome. A nil error is Created.
func OutcomeFor(err error) Outcome {
	if err == nil {
		return OutcomeCreated
	}
	switch CodeOf(err) {
	case CodeDuplicate:
		return OutcomeDuplicateRejected
	case CodeMalformed:
		return OutcomeMalformed
	default:
		return OutcomeUnexpectedFailure
	}
}

func (o Outcome) String() string { return string(o) }
