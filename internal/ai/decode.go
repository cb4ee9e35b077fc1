package ai

// Reassignment is one refine-mode suggestion.
type Reassignment struct {
	ID         string
	FromKey    string
	ToKey      string
	Confidence *float64
	Reason     string
}

// RefineResult is the decoded refine-mode reply.
type RefineResult struct {
	Items         []Reassignment
	LowConfidence []string
	Salvaged      bool
}

// Assignment is one inference-mode placement.
type Assignment struct {
	ID         string
	ToKey      string
	Confidence *float64
}

// InferResult is the decoded inference-mode reply.
type InferResult struct {
	Categories    []string
	Assignments   []Assignment
	LowConfidence []string
}

// DecodeRefine reads a parsed refine reply. Field name variants
// (to_key/toKey/to, from_key/fromKey/from) are accepted. Entries without id
// or target are dropped. Returns nil for a nil object.
func DecodeRefine(m map[string]any) *RefineResult {
	if m == nil {
		return nil
	}

	res := &RefineResult{LowConfidence: lowConfidence(m)}
	for _, e := range firstList(m, "reassigned_items", "reassignedItems", "items", "assignments") {
		item, ok := e.(map[string]any)
		if !ok {
			continue
		}
		r := Reassignment{
			ID:      stringField(item, "id"),
			ToKey:   stringField(item, "to_key", "toKey", "to"),
			FromKey: stringField(item, "from_key", "fromKey", "from"),
			Reason:  stringField(item, "reason"),
		}
		if r.ID == "" || r.ToKey == "" {
			continue
		}
		if c, ok := floatField(item, "confidence"); ok {
			r.Confidence = &c
		}
		res.Items = append(res.Items, r)
	}

	if notes, ok := m["notes"].(map[string]any); ok {
		res.Salvaged, _ = notes["salvaged"].(bool)
	}
	return res
}

// DecodeInfer reads a parsed inference reply. Salvaged replies carry their
// entries under reassigned_items and are accepted as assignments.
func DecodeInfer(m map[string]any) *InferResult {
	if m == nil {
		return nil
	}

	res := &InferResult{
		Categories:    stringList(m["categories"]),
		LowConfidence: lowConfidence(m),
	}
	for _, e := range firstList(m, "assignments", "reassigned_items", "reassignedItems", "items") {
		item, ok := e.(map[string]any)
		if !ok {
			continue
		}
		a := Assignment{
			ID:    stringField(item, "id"),
			ToKey: stringField(item, "to_key", "toKey", "to", "category"),
		}
		if a.ID == "" || a.ToKey == "" {
			continue
		}
		if c, ok := floatField(item, "confidence"); ok {
			a.Confidence = &c
		}
		res.Assignments = append(res.Assignments, a)
	}
	return res
}

func firstList(m map[string]any, keys ...string) []any {
	for _, k := range keys {
		if list, ok := m[k].([]any); ok {
			return list
		}
	}
	return nil
}

func lowConfidence(m map[string]any) []string {
	if notes, ok := m["notes"].(map[string]any); ok {
		for _, k := range []string{"low_confidence_items", "lowConfidenceItems"} {
			if ids := stringList(notes[k]); len(ids) > 0 {
				return ids
			}
		}
	}
	return stringList(m["low_confidence_items"])
}
