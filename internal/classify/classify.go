// Package classify turns a bookmark tree into a reorganization plan using
// keyword rules.
package classify

import (
	"strings"

	"github.com/nikbrunner/tidymark/internal/model"
)

// Classify returns the category of the first rule with a keyword contained
// in title or url, ignoring case. Rules are tried in order, then keywords in
// order. Without a match it returns other.
func Classify(title, url string, rules []model.Rule, other string) string {
	t := strings.ToLower(title)
	u := strings.ToLower(url)

	for _, r := range rules {
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if strings.Contains(t, kw) || strings.Contains(u, kw) {
				return r.Category
			}
		}
	}
	return other
}

// RuleClassifier binds a rule set and catch-all name for use with BuildPlan.
func RuleClassifier(rules []model.Rule, other string) func(model.FlatBookmark) string {
	return func(b model.FlatBookmark) string {
		return Classify(b.Title, b.URL, rules, other)
	}
}
