package model

// Rule maps a set of keywords to a category. Rules are evaluated in order.
type Rule struct {
	Category string   `json:"category" yaml:"category"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}
