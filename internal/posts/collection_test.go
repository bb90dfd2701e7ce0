package posts

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ids(list []Post) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}

var fixture = []Post{
	{ID: "css-grid", Title: "CSS Grid vs Flexbox", Date: "2023-12-28", Category: "CSS", Tags: []string{"CSS", "Layout"}},
	{ID: "web-dev", Title: "Getting Started with Web Development", Date: "2024-01-15", Category: "Web Development", Tags: []string{"HTML", "CSS"}, Featured: true},
	{ID: "seo", Title: "SEO Guide", Excerpt: "Master search engine optimization", Date: "2024-01-05T10:00:00Z", Category: "SEO", Tags: []string{"Marketing"}, Featured: true},
	{ID: "undated", Title: "Drafty", Date: "someday", Category: "CSS"},
	{ID: "es6", Title: "ES6 Features", Content: "Arrow functions and destructuring", Date: "January 1, 2024", Category: "JavaScript", Tags: []string{"JavaScript"}, Featured: true},
}

func TestSortByDate(t *testing.T) {
	got := ids(SortByDate(fixture))
	want := []string{"web-dev", "seo", "es6", "css-grid", "undated"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SortByDate mismatch (-want +got):\n%s", diff)
	}
	if fixture[0].ID != "css-grid" {
		t.Error("SortByDate mutated its input")
	}
}

func TestFeatured(t *testing.T) {
	if diff := cmp.Diff([]string{"web-dev", "seo"}, ids(Featured(fixture, 2))); diff != "" {
		t.Errorf("Featured(2) (-want +got):\n%s", diff)
	}
	if got := len(Featured(fixture, 0)); got != 3 {
		t.Errorf("Featured(0) len = %d, want 3", got)
	}
}

func TestCategories(t *testing.T) {
	want := []string{"CSS", "JavaScript", "SEO", "Web Development"}
	if diff := cmp.Diff(want, Categories(fixture)); diff != "" {
		t.Errorf("Categories (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"css-grid", "undated"}, ids(ByCategory(fixture, "CSS"))); diff != "" {
		t.Errorf("ByCategory (-want +got):\n%s", diff)
	}
}

func TestSearch(t *testing.T) {
	cases := []struct {
		query string
		want  []string
	}{
		{"flexbox", []string{"css-grid"}},
		{"  SEARCH engine ", []string{"seo"}},
		{"destructuring", []string{"es6"}},
		{"marketing", []string{"seo"}},
		{"javascript", []string{"es6"}},
		{"nothing matches this", []string{}},
		{"", []string{"css-grid", "web-dev", "seo", "undated", "es6"}},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, ids(Search(fixture, tc.query))); diff != "" {
				t.Errorf("Search(%q) (-want +got):\n%s", tc.query, diff)
			}
		})
	}
}

func TestRelated(t *testing.T) {
	got := ids(Related(fixture, fixture[0]))
	// same category (undated) or shared CSS tag (web-dev)
	if diff := cmp.Diff([]string{"web-dev", "undated"}, got); diff != "" {
		t.Errorf("Related (-want +got):\n%s", diff)
	}

	many := make([]Post, 0, 10)
	for i := 0; i < 10; i++ {
		many = append(many, Post{ID: string(rune('a' + i)), Category: "Go"})
	}
	if n := len(Related(many, many[0])); n != MaxRelated {
		t.Errorf("Related len = %d, want %d", n, MaxRelated)
	}
}

func TestFind(t *testing.T) {
	if p, ok := Find(fixture, "seo"); !ok || p.Title != "SEO Guide" {
		t.Errorf("Find(seo) = %+v, %v", p, ok)
	}
	if _, ok := Find(fixture, "nope"); ok {
		t.Error("Find(nope) found something")
	}
}

func TestPatchApply(t *testing.T) {
	base := Post{ID: "p1", Title: "Old", Tags: []string{"a"}, Featured: true, Author: "A"}
	got, err := Patch{"featured": json.RawMessage(`false`), "tags": json.RawMessage(`null`)}.Apply(base)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := Post{ID: "p1", Title: "Old", Tags: []string{}, Featured: false, Author: "A"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply (-want +got):\n%s", diff)
	}
}

func TestPatchFrom(t *testing.T) {
	p := Post{ID: "p1", Title: "Full", Tags: []string{"x"}}
	patch, err := PatchFrom(p)
	if err != nil {
		t.Fatalf("PatchFrom: %v", err)
	}
	got, err := patch.Apply(Post{ID: "p1", Title: "Old", Author: "gone"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("full patch (-want +got):\n%s", diff)
	}
}
