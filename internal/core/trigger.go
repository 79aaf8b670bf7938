package core

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// UnitToken is the countable trigger keyword that supports an integer
// multiplier prefix ("3 габ" -> 3x the unit value).
const UnitToken = "габ"

// DefaultTriggers is the deployed trigger vocabulary, values in BYN cents.
// Labels are matched case-insensitively against the candidate substring.
func DefaultTriggers() map[string]int64 {
	return map[string]int64{
		"+ мк светло-серая": 1035,
		"+ мк темно-серая":  1267,
		"+ мк голубая":      1333,
		"+ мк розовая":      1101,
		"+ мк коричневая":   869,
		"+ мк салатовая":    803,
		"+ мк оранжевая":    637,
		"+ мк красная":      571,
		"+ мк синяя":        405,
		"+ мк":              239,
		"+":                 256,
		UnitToken:           289,
	}
}

// Match is the outcome of a successful trigger parse.
type Match struct {
	Amount Money
	Label  string
	// Count is the multiplier applied by the unit rule; 1 for every other
	// trigger. Callers may sanity-check absurd counts.
	Count int
}

// TriggerTable maps trigger labels to amounts and knows how to pick the most
// specific label for a piece of chat text.
type TriggerTable struct {
	values map[string]int64
	// labels sorted by descending length: "+" is a prefix of every qualified
	// trigger, so the longest label must win.
	labels    []string
	unitCents int64
	unitRe    *regexp.Regexp
}

// NewTriggerTable builds a table from a label -> cents mapping. The mapping
// must contain the base "+" trigger and the unit token.
func NewTriggerTable(values map[string]int64) (*TriggerTable, error) {
	if _, ok := values["+"]; !ok {
		return nil, fmt.Errorf("trigger table missing base %q trigger", "+")
	}
	unitCents, ok := values[UnitToken]
	if !ok {
		return nil, fmt.Errorf("trigger table missing unit token %q", UnitToken)
	}
	labels := make([]string, 0, len(values))
	for label, cents := range values {
		if cents <= 0 {
			return nil, fmt.Errorf("trigger %q has non-positive value %d", label, cents)
		}
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if len(labels[i]) != len(labels[j]) {
			return len(labels[i]) > len(labels[j])
		}
		return labels[i] < labels[j]
	})
	return &TriggerTable{
		values:    values,
		labels:    labels,
		unitCents: unitCents,
		unitRe:    regexp.MustCompile(`(\d+)\s*` + regexp.QuoteMeta(UnitToken)),
	}, nil
}

// Value returns the amount for an exact label.
func (t *TriggerTable) Value(label string) (Money, bool) {
	cents, ok := t.values[label]
	return Money{Cents: cents}, ok
}

// Parse extracts a trigger and amount from chat text.
//
// The candidate is the lowercased, trimmed substring starting at the first
// '+'. Precedence: unit multiplier, bare unit token, longest matching label
// prefix, then the base "+" fallback.
func (t *TriggerTable) Parse(text string) (Match, bool) {
	idx := strings.Index(text, "+")
	if idx < 0 {
		return Match{}, false
	}
	candidate := strings.TrimSpace(strings.ToLower(text[idx:]))

	if sub := t.unitRe.FindStringSubmatch(candidate); sub != nil {
		n, err := strconv.Atoi(sub[1])
		if err == nil && n >= 1 {
			return Match{
				Amount: Money{Cents: int64(n) * t.unitCents},
				Label:  fmt.Sprintf("%d%s", n, UnitToken),
				Count:  n,
			}, true
		}
		if err != nil {
			// The regexp guarantees digits, so a parse failure means the run
			// does not fit an int. Price it as a single unit, loudly.
			slog.Warn("Unit multiplier too large to represent, using single unit",
				"digits", sub[1])
		}
		// Zero multiplier also falls through to the bare-unit rule.
	}
	if strings.Contains(candidate, UnitToken) {
		return Match{Amount: Money{Cents: t.unitCents}, Label: UnitToken, Count: 1}, true
	}

	for _, label := range t.labels {
		if strings.HasPrefix(candidate, label) {
			return Match{Amount: Money{Cents: t.values[label]}, Label: label, Count: 1}, true
		}
	}
	if strings.HasPrefix(candidate, "+") {
		return Match{Amount: Money{Cents: t.values["+"]}, Label: "+", Count: 1}, true
	}
	return Match{}, false
}
