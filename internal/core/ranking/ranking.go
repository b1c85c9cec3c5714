// Package ranking dedupes and orders merged catalog results
package ranking

import (
	"cmp"
	"math"
	"slices"
	"time"

	"grantwise/internal/core/normalize"
)

// DeadlineWeight is the score added per whole day left before the deadline
const DeadlineWeight = 0.05

// Key identifies a grant across catalogs
type Key struct {
	Title     string
	Agency    string
	AmountMin float64
	AmountMax float64
}

// KeyOf folds the identifying fields. A single amount is passed as min == max
func KeyOf(title, agency string, amountMin, amountMax float64) Key {
	return Key{
		Title:     normalize.Title(title),
		Agency:    normalize.Agency(agency),
		AmountMin: amountMin,
		AmountMax: amountMax,
	}
}

// Dedupe keeps the first item for each key, preserving input order
func Dedupe[T any](in []T, key func(T) Key) []T {
	seen := make(map[Key]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, it := range in {
		k := key(it)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Score is successRate*2 plus DeadlineWeight per whole day until deadline.
// Past or unknown deadlines add nothing
func Score(successRate float64, deadline, now time.Time) float64 {
	s := successRate * 2
	if deadline.IsZero() || !deadline.After(now) {
		return s
	}
	days := math.Floor(deadline.Sub(now).Hours() / 24)
	return s + DeadlineWeight*days
}

// Rank sorts in place by score descending. Equal scores fall back to tie so
// identical inputs always produce the same order
func Rank[T any](items []T, score func(T) float64, tie func(a, b T) int) {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := cmp.Compare(score(b), score(a)); c != 0 {
			return c
		}
		if tie == nil {
			return 0
		}
		return tie(a, b)
	})
}
