package matching

// Outcome tells a successful run with matches apart from the two empty
// results, neither of which is an error.
type Outcome string

const (
	OutcomeMatched            Outcome = "matched"
	OutcomeNoSharedIdentities Outcome = "no_shared_identities"
	OutcomeNoQualifyingNotes  Outcome = "no_qualifying_notes"
)

// Classify derives the outcome from the shared identities and the matches.
func Classify(shared []string, matchCount int) Outcome {
	switch {
	case len(shared) == 0:
		return OutcomeNoSharedIdentities
	case matchCount == 0:
		return OutcomeNoQualifyingNotes
	default:
		return OutcomeMatched
	}
}

// Message is the operator-facing line for an outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeNoSharedIdentities:
		return "No matching user names found."
	case OutcomeNoQualifyingNotes:
		return "No matches found."
	default:
		return ""
	}
}
