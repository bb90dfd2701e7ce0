package posts

import (
	"encoding/json"
	"fmt"
	"slices"
)

const (
	DefaultImage    = "https://images.unsplash.com/photo-1498050108023-c5249f4df085?w=800"
	DefaultReadTime = "5 min read"
)

// Post is the canonical blog entry shared by the storage API, every source
// adapter and all consumers.
type Post struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Excerpt         string   `json:"excerpt"`
	Content         string   `json:"content"`
	Author          string   `json:"author"`
	Date            string   `json:"date"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	Featured        bool     `json:"featured"`
	Image           string   `json:"image,omitempty"`
	ReadTime        string   `json:"readTime,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	CreatedAt       string   `json:"createdAt,omitempty"`
	UpdatedAt       string   `json:"updatedAt,omitempty"`
}

// Clone returns a copy of p that shares no slices with it.
func (p Post) Clone() Post {
	p.Tags = slices.Clone(p.Tags)
	p.Keywords = slices.Clone(p.Keywords)
	return p
}

// WithDefaults fills the fields that have documented defaults.
func (p Post) WithDefaults() Post {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Image == "" {
		p.Image = DefaultImage
	}
	if p.ReadTime == "" {
		p.ReadTime = DefaultReadTime
	}
	return p
}

// Patch is a partial post keyed by JSON field name. Applying it replaces
// whole top-level fields; nested values are not merged.
type Patch map[string]json.RawMessage

// Apply shallow-merges the patch onto p. The id is never changed.
func (patch Patch) Apply(p Post) (Post, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return Post{}, fmt.Errorf("marshal post: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Post{}, fmt.Errorf("unmarshal post: %w", err)
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return Post{}, fmt.Errorf("marshal merged: %w", err)
	}
	var out Post
	if err := json.Unmarshal(merged, &out); err != nil {
		return Post{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	out.ID = p.ID
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out, nil
}

// PatchFrom builds a patch that replaces every field of p.
func PatchFrom(p Post) (Patch, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var patch Patch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return nil, err
	}
	return patch, nil
}
