package model

import (
	"fmt"
	"sort"
)

// Plan is a proposed (or executed) reorganization: every considered bookmark
// with the category it should end up in.
type Plan struct {
	Total      int                        `json:"total"`
	Classified int                        `json:"classified"`
	Categories map[string]*CategoryBucket `json:"categories"`
	Details    []Detail                   `json:"details"`
	Meta       *PlanMeta                  `json:"meta,omitempty"`

	// Set by the executor.
	Moved   int `json:"moved,omitempty"`
	Skipped int `json:"skipped,omitempty"`
}

// CategoryBucket lists the bookmarks assigned to one category.
type CategoryBucket struct {
	Count     int            `json:"count"`
	Bookmarks []FlatBookmark `json:"bookmarks"`
}

// Detail is the per-bookmark record of a plan.
type Detail struct {
	Bookmark      FlatBookmark `json:"bookmark"`
	Category      string       `json:"category"`
	ScopeFolderID string       `json:"scopeFolderId"`
}

// PlanMeta carries information about how the plan was produced.
type PlanMeta struct {
	ScopeFolderIDs []string `json:"scopeFolderIds"`
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{Categories: map[string]*CategoryBucket{}}
}

// EnsureCategory creates an empty bucket for name if none exists.
func (p *Plan) EnsureCategory(name string) *CategoryBucket {
	if p.Categories == nil {
		p.Categories = map[string]*CategoryBucket{}
	}
	bucket, ok := p.Categories[name]
	if !ok {
		bucket = &CategoryBucket{Bookmarks: []FlatBookmark{}}
		p.Categories[name] = bucket
	}
	return bucket
}

// Add appends a detail record and files the bookmark into its bucket.
func (p *Plan) Add(b FlatBookmark, category, scopeID string) {
	p.Details = append(p.Details, Detail{Bookmark: b, Category: category, ScopeFolderID: scopeID})
	bucket := p.EnsureCategory(category)
	bucket.Count++
	bucket.Bookmarks = append(bucket.Bookmarks, b)
	p.Total++
}

// Rebuild recreates every bucket from Details and recomputes the counters.
// Categories listed in keep survive even when they end up empty.
func (p *Plan) Rebuild(other string, keep ...string) {
	p.Categories = map[string]*CategoryBucket{}
	for _, name := range keep {
		p.EnsureCategory(name)
	}
	for _, d := range p.Details {
		bucket := p.EnsureCategory(d.Category)
		bucket.Count++
		bucket.Bookmarks = append(bucket.Bookmarks, d.Bookmark)
	}
	p.Total = len(p.Details)
	p.Recount(other)
}

// Recount sets Classified to the number of bookmarks outside other.
func (p *Plan) Recount(other string) {
	classified := 0
	for name, bucket := range p.Categories {
		if name != other {
			classified += bucket.Count
		}
	}
	p.Classified = classified
}

// CategoryNames returns the bucket names sorted by descending count, then name.
func (p *Plan) CategoryNames() []string {
	names := make([]string, 0, len(p.Categories))
	for name := range p.Categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := p.Categories[names[i]].Count, p.Categories[names[j]].Count
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	return names
}

// Validate checks the structural invariants of the plan.
func (p *Plan) Validate(other string) error {
	sum := 0
	seen := make(map[string]string)
	for name, bucket := range p.Categories {
		if bucket.Count != len(bucket.Bookmarks) {
			return fmt.Errorf("category %q: count %d but %d bookmarks", name, bucket.Count, len(bucket.Bookmarks))
		}
		sum += bucket.Count
		for _, b := range bucket.Bookmarks {
			if prev, dup := seen[b.ID]; dup {
				return fmt.Errorf("bookmark %s listed in both %q and %q", b.ID, prev, name)
			}
			seen[b.ID] = name
		}
	}
	if sum != len(p.Details) {
		return fmt.Errorf("category counts sum to %d but plan has %d details", sum, len(p.Details))
	}
	for _, d := range p.Details {
		if seen[d.Bookmark.ID] != d.Category {
			return fmt.Errorf("bookmark %s detail says %q but bucket says %q", d.Bookmark.ID, d.Category, seen[d.Bookmark.ID])
		}
	}

	classified := 0
	for name, bucket := range p.Categories {
		if name != other {
			classified += bucket.Count
		}
	}
	if classified != p.Classified {
		return fmt.Errorf("classified is %d, expected %d", p.Classified, classified)
	}
	return nil
}
