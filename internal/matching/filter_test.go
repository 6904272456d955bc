package matching_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dvloznov/deposit-matcher/internal/domain"
	"github.com/dvloznov/deposit-matcher/internal/matching"
)

func TestFilterNotes(t *testing.T) {
	notes := []domain.NoteRecord{
		note("u1", "2024-01-01 00:00", "Called about BONUS offer"),
		note("u2", "2024-01-01 00:00", ""),
		note("u3", "2024-01-01 00:00", "left voicemail"),
		note("u4", "2024-01-01 00:00", "bonus confirmed"),
	}

	tests := []struct {
		name    string
		keyword string
		want    []string
	}{
		{name: "case insensitive", keyword: "Bonus", want: []string{"u1", "u4"}},
		{name: "substring", keyword: "mail", want: []string{"u3"}},
		{name: "no hit", keyword: "refund", want: []string{}},
		{name: "regex characters are literal", keyword: "b.nus", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matching.FilterNotes(notes, tt.keyword)
			users := make([]string, 0, len(got))
			for _, n := range got {
				users = append(users, n.UserID)
			}
			assert.Equal(t, tt.want, users)
		})
	}
}

func TestFilterNotes_EmptyKeywordIsIdentity(t *testing.T) {
	notes := []domain.NoteRecord{
		note("u2", "2024-01-02 00:00", ""),
		note("u1", "2024-01-01 00:00", "x"),
	}

	got := matching.FilterNotes(notes, "")

	assert.Equal(t, notes, got)
}

func TestFilterNotes_BlankTextNeverRetained(t *testing.T) {
	notes := []domain.NoteRecord{note("u1", "2024-01-01 00:00", "")}

	assert.Empty(t, matching.FilterNotes(notes, " "))
}
