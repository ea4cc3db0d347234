package search

import (
	"strings"
	"time"

	"github.com/castkeep/castkeep/core"
)

// Filter selects items by their extracted metadata. All set fields must
// match (AND across fields); within a list field, any requested value
// matching any item value suffices (OR within a field). String comparisons
// are case-insensitive; list values match exactly, the summary matches by
// substring.
type Filter struct {
	Speakers []string
	Topics   []string
	Tags     []string

	// SummaryContains matches items whose summary contains the phrase.
	SummaryContains string

	// CreatedAfter and CreatedBefore bound the item creation time.
	// Zero values leave the bound open.
	CreatedAfter  time.Time
	CreatedBefore time.Time
}

// IsZero reports whether no filter criteria are set.
func (f *Filter) IsZero() bool {
	return len(f.Speakers) == 0 &&
		len(f.Topics) == 0 &&
		len(f.Tags) == 0 &&
		f.SummaryContains == "" &&
		f.CreatedAfter.IsZero() &&
		f.CreatedBefore.IsZero()
}

// Matches reports whether the item satisfies every set criterion.
func (f *Filter) Matches(item *core.Item) bool {
	if !anyValueMatches(f.Speakers, item.Insights.Speakers) {
		return false
	}
	if !anyValueMatches(f.Topics, item.Insights.KeyTopics) {
		return false
	}
	if !anyValueMatches(f.Tags, item.Insights.Tags) {
		return false
	}
	if f.SummaryContains != "" &&
		!strings.Contains(strings.ToLower(item.Insights.Summary), strings.ToLower(f.SummaryContains)) {
		return false
	}
	if !f.CreatedAfter.IsZero() && item.CreatedAt.Before(f.CreatedAfter) {
		return false
	}
	if !f.CreatedBefore.IsZero() && !item.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	return true
}

// anyValueMatches reports whether any requested value equals any actual
// value, ignoring case. An empty request list matches everything.
func anyValueMatches(requested, actual []string) bool {
	if len(requested) == 0 {
		return true
	}
	for _, want := range requested {
		for _, have := range actual {
			if strings.EqualFold(want, have) {
				return true
			}
		}
	}
	return false
}
