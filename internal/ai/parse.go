package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n?(.*?)```")

// ParseContent recovers a JSON object from model output that may be wrapped
// in prose or code fences, or be partly broken. It tries, in order: the
// whole text, a fenced block, the span from the first '{' to the last '}',
// the first balanced top-level object that parses, and finally salvaging
// every embedded reassignment item. A lone reassignment object is wrapped
// as a one-item list. It returns nil when nothing is usable.
func ParseContent(raw string) map[string]any {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	if m := decodeObject(text); m != nil {
		return wrapItem(m)
	}

	if match := fencedBlock.FindStringSubmatch(text); match != nil {
		inner := strings.TrimSpace(match[1])
		if m := decodeObject(inner); m != nil {
			return wrapItem(m)
		}
		text = inner
	}

	if first, last := strings.Index(text, "{"), strings.LastIndex(text, "}"); first >= 0 && last > first {
		if m := decodeObject(text[first : last+1]); m != nil {
			return wrapItem(m)
		}
	}

	spans := scanObjects(text)
	for _, sp := range spans {
		if sp.depth != 0 {
			continue
		}
		m := decodeObject(text[sp.start : sp.end+1])
		if m != nil && !isItem(m) {
			return m
		}
	}

	return salvage(text, spans)
}

// ParseResponse accepts either raw model text, a raw provider response
// body, or an already decoded provider envelope, and returns the parsed
// content object.
func ParseResponse(v any) map[string]any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return parseMaybeEnvelope(t)
	case []byte:
		return parseMaybeEnvelope(string(t))
	case map[string]any:
		if text, ok := envelopeText(t); ok {
			return ParseContent(text)
		}
		return t
	}
	return nil
}

func parseMaybeEnvelope(s string) map[string]any {
	m := ParseContent(s)
	if m == nil {
		return nil
	}
	if text, ok := envelopeText(m); ok {
		return ParseContent(text)
	}
	return m
}

// envelopeText digs the generated text out of a known provider response shape.
func envelopeText(m map[string]any) (string, bool) {
	if choices, ok := m["choices"].([]any); ok && len(choices) > 0 {
		if c, ok := choices[0].(map[string]any); ok {
			if msg, ok := c["message"].(map[string]any); ok {
				if s, ok := msg["content"].(string); ok {
					return s, true
				}
			}
		}
	}
	if cands, ok := m["candidates"].([]any); ok && len(cands) > 0 {
		if c, ok := cands[0].(map[string]any); ok {
			if content, ok := c["content"].(map[string]any); ok {
				if parts, ok := content["parts"].([]any); ok && len(parts) > 0 {
					if p, ok := parts[0].(map[string]any); ok {
						if s, ok := p["text"].(string); ok {
							return s, true
						}
					}
				}
			}
		}
	}
	if msg, ok := m["message"].(map[string]any); ok {
		if s, ok := msg["content"].(string); ok {
			return s, true
		}
	}
	if blocks, ok := m["content"].([]any); ok && len(blocks) > 0 {
		if b, ok := blocks[0].(map[string]any); ok {
			if s, ok := b["text"].(string); ok {
				return s, true
			}
		}
	}
	if s, ok := m["result"].(string); ok {
		return s, true
	}
	return "", false
}

func decodeObject(s string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

type scanState int

const (
	stateNormal scanState = iota
	stateString
	stateEscape
)

// span is a balanced {...} region. depth is the number of enclosing open
// braces at its start.
type span struct {
	start, end, depth int
}

// scanObjects finds every balanced object in s, nested ones included,
// ordered by start offset. Braces inside string literals are ignored.
// Quotes outside any object are prose and do not start a string.
func scanObjects(s string) []span {
	var (
		state = stateNormal
		open  []int
		spans []span
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case stateEscape:
			state = stateString
		case stateString:
			switch c {
			case '\\':
				state = stateEscape
			case '"':
				state = stateNormal
			}
		case stateNormal:
			switch c {
			case '"':
				if len(open) > 0 {
					state = stateString
				}
			case '{':
				open = append(open, i)
			case '}':
				if len(open) == 0 {
					continue
				}
				start := open[len(open)-1]
				open = open[:len(open)-1]
				spans = append(spans, span{start: start, end: i, depth: len(open)})
			}
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

// salvage collects every embedded object that looks like a reassignment.
func salvage(text string, spans []span) map[string]any {
	var items []any
	seen := make(map[string]bool)

	for _, sp := range spans {
		m := decodeObject(text[sp.start : sp.end+1])
		if m == nil || !isItem(m) {
			continue
		}
		id := stringField(m, "id")
		if seen[id] {
			continue
		}
		seen[id] = true
		items = append(items, normalizeItem(m))
	}

	if len(items) == 0 {
		return nil
	}
	return map[string]any{
		"reassigned_items": items,
		"notes":            map[string]any{"salvaged": true},
	}
}

// wrapItem turns a lone reassignment object into a one-item result.
func wrapItem(m map[string]any) map[string]any {
	if !isItem(m) {
		return m
	}
	return map[string]any{"reassigned_items": []any{normalizeItem(m)}}
}

func normalizeItem(m map[string]any) map[string]any {
	item := map[string]any{
		"id":       stringField(m, "id"),
		"to_key":   stringField(m, "to_key", "toKey", "to"),
		"from_key": stringField(m, "from_key", "fromKey", "from"),
		"reason":   stringField(m, "reason"),
	}
	if conf, ok := floatField(m, "confidence"); ok {
		item["confidence"] = conf
	}
	return item
}

func isItem(m map[string]any) bool {
	return stringField(m, "id") != "" && stringField(m, "to_key", "toKey", "to") != ""
}

// stringField returns the first present key as a string. Numbers are
// formatted, anything else is ignored.
func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func floatField(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		switch t := e.(type) {
		case string:
			if t != "" {
				out = append(out, t)
			}
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		case map[string]any:
			if name := stringField(t, "id", "name", "category", "key"); name != "" {
				out = append(out, name)
			}
		default:
			if t != nil {
				out = append(out, fmt.Sprint(t))
			}
		}
	}
	return out
}
