package relevance

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	propertydomain "github.com/jindalsaj/aura/internal/property/domain"
)

// Result is the filter's verdict for one item.
type Result struct {
	Relevant   bool
	Confidence float64
	Reason     string
	Method     string // "keyword_only" or "classifier_confirmed"
	Matches    []string
}

const (
	MethodKeywordOnly         = "keyword_only"
	MethodClassifierConfirmed = "classifier_confirmed"

	// An item needs at least this many distinct keyword matches to pass the
	// first stage.
	minMatches = 2
)

// Filter decides whether a fetched item relates to the user's properties.
// Stage one is a deterministic keyword scan; stage two is an optional
// classifier that refines confidence and reason. The classifier never gates:
// when it is nil or unavailable the keyword verdict stands.
type Filter struct {
	classifier Classifier
}

func NewFilter(classifier Classifier) *Filter {
	return &Filter{classifier: classifier}
}

// Score runs both stages over the item text. The user's property names and
// addresses count as keywords alongside the built-in lists.
func (f *Filter) Score(ctx context.Context, text string, properties []propertydomain.Property) Result {
	matches := keywordMatches(text, properties)
	result := Result{
		Relevant:   len(matches) >= minMatches,
		Confidence: confidence(len(matches)),
		Reason:     reason(matches),
		Method:     MethodKeywordOnly,
		Matches:    matches,
	}

	if !result.Relevant || f.classifier == nil {
		return result
	}

	verdict, err := f.classifier.Classify(ctx, text, propertyNames(properties))
	if err != nil {
		// Classifier outages must not block a sync; the keyword verdict is
		// good enough.
		log.Printf("[Relevance] Classifier unavailable, keeping keyword verdict: %v", err)
		return result
	}

	result.Method = MethodClassifierConfirmed
	result.Confidence = verdict.Confidence
	if verdict.Reason != "" {
		result.Reason = verdict.Reason
	}
	return result
}

func keywordMatches(text string, properties []propertydomain.Property) []string {
	lower := strings.ToLower(text)
	seen := map[string]bool{}
	var matches []string

	add := func(kw string) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			return
		}
		if strings.Contains(lower, kw) {
			seen[kw] = true
			matches = append(matches, kw)
		}
	}

	for _, kw := range PropertyKeywords {
		add(kw)
	}
	for _, kw := range FinancialKeywords {
		add(kw)
	}
	for _, p := range properties {
		add(p.Name)
		add(p.Address)
		// Address fragments match too: "123 Main St" should hit on "main st".
		for _, tok := range strings.Fields(p.Address) {
			if len(tok) > 3 {
				add(tok)
			}
		}
	}

	sort.Strings(matches)
	return matches
}

func confidence(matchCount int) float64 {
	c := float64(matchCount) / 10.0
	if c > 1.0 {
		c = 1.0
	}
	return c
}

func reason(matches []string) string {
	if len(matches) == 0 {
		return "no keyword matches"
	}
	return fmt.Sprintf("matched keywords: %s", strings.Join(matches, ", "))
}

func propertyNames(properties []propertydomain.Property) []string {
	names := make([]string, 0, len(properties))
	for _, p := range properties {
		names = append(names, strings.TrimSpace(p.Name+" ("+p.Address+")"))
	}
	return names
}
