// Package matching pairs contact notes with the deposits that followed them
// and totals the matched amounts per currency. Everything here is pure: no
// I/O, no logging, no shared state.
package matching

import (
	"slices"
	"sort"

	"github.com/dvloznov/deposit-matcher/internal/domain"
)

// SharedIdentities returns the user IDs present in both tables, sorted.
// Empty user IDs never take part in matching.
func SharedIdentities(deposits []domain.DepositRecord, notes []domain.NoteRecord) []string {
	inDeposits := make(map[string]struct{}, len(deposits))
	for _, d := range deposits {
		if d.UserID != "" {
			inDeposits[d.UserID] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	var shared []string
	for _, n := range notes {
		if _, ok := inDeposits[n.UserID]; !ok {
			continue
		}
		if _, ok := seen[n.UserID]; ok {
			continue
		}
		seen[n.UserID] = struct{}{}
		shared = append(shared, n.UserID)
	}
	sort.Strings(shared)
	return shared
}

// Match pairs every note with the earliest deposit of the same user whose
// timestamp is strictly after the note's. Notes without such a deposit are
// dropped. A deposit can be matched by any number of notes.
//
// Users are processed in the order their first note appears; within a user
// the original note order is kept.
func Match(deposits []domain.DepositRecord, notes []domain.NoteRecord) []domain.MatchedRecord {
	byUser := depositsByUser(deposits)

	var userOrder []string
	notesByUser := make(map[string][]domain.NoteRecord)
	for _, n := range notes {
		if _, ok := byUser[n.UserID]; !ok {
			continue
		}
		if _, ok := notesByUser[n.UserID]; !ok {
			userOrder = append(userOrder, n.UserID)
		}
		notesByUser[n.UserID] = append(notesByUser[n.UserID], n)
	}

	var out []domain.MatchedRecord
	for _, user := range userOrder {
		out = matchUser(out, byUser[user], notesByUser[user])
	}
	return out
}

// depositsByUser groups deposits per user and sorts each group by timestamp.
// The sort is stable so deposits sharing a timestamp keep their file order.
func depositsByUser(deposits []domain.DepositRecord) map[string][]domain.DepositRecord {
	byUser := make(map[string][]domain.DepositRecord)
	for _, d := range deposits {
		if d.UserID == "" {
			continue
		}
		byUser[d.UserID] = append(byUser[d.UserID], d)
	}
	for user, ds := range byUser {
		slices.SortStableFunc(ds, func(a, b domain.DepositRecord) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
		byUser[user] = ds
	}
	return byUser
}

// matchUser appends the matches for one user's notes against that user's
// timestamp-sorted deposits.
func matchUser(out []domain.MatchedRecord, deposits []domain.DepositRecord, notes []domain.NoteRecord) []domain.MatchedRecord {
	for _, n := range notes {
		i := sort.Search(len(deposits), func(i int) bool {
			return deposits[i].Timestamp.After(n.Timestamp)
		})
		if i == len(deposits) {
			continue
		}
		d := deposits[i]
		out = append(out, domain.MatchedRecord{
			UserID:           n.UserID,
			NoteTimestamp:    n.Timestamp,
			DepositTimestamp: d.Timestamp,
			Agent:            n.Agent,
			DepositAmount:    d.Amount,
			DepositCurrency:  d.Currency,
			NoteText:         n.NoteText,
		})
	}
	return out
}
