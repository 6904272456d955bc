package matching

import (
	"strings"

	"github.com/dvloznov/deposit-matcher/internal/domain"
)

// FilterNotes keeps the notes whose text contains keyword, ignoring case.
// An empty keyword returns notes unchanged. Notes without text never match
// a non-empty keyword.
func FilterNotes(notes []domain.NoteRecord, keyword string) []domain.NoteRecord {
	if keyword == "" {
		return notes
	}

	needle := strings.ToLower(keyword)
	out := make([]domain.NoteRecord, 0, len(notes))
	for _, n := range notes {
		if n.NoteText == "" {
			continue
		}
		if strings.Contains(strings.ToLower(n.NoteText), needle) {
			out = append(out, n)
		}
	}
	return out
}
