package posts

import (
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/samber/lo"
)

// MaxRelated is the number of related posts shown under a post.
const MaxRelated = 4

type datedPost struct {
	post Post
	at   time.Time
	ok   bool
}

// SortByDate returns a copy of list ordered newest first. Posts with a date
// that cannot be parsed go last, in their original order.
func SortByDate(list []Post) []Post {
	dated := lo.Map(list, func(p Post, _ int) datedPost {
		at, err := dateparse.ParseAny(p.Date)
		return datedPost{post: p, at: at, ok: err == nil}
	})
	sort.SliceStable(dated, func(i, j int) bool {
		a, b := dated[i], dated[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.at.After(b.at)
	})
	return lo.Map(dated, func(d datedPost, _ int) Post { return d.post })
}

// Featured returns up to n featured posts in list order; n <= 0 means all.
func Featured(list []Post, n int) []Post {
	featured := lo.Filter(list, func(p Post, _ int) bool { return p.Featured })
	if n > 0 && len(featured) > n {
		featured = featured[:n]
	}
	return featured
}

func ByCategory(list []Post, category string) []Post {
	return lo.Filter(list, func(p Post, _ int) bool { return p.Category == category })
}

// Categories returns the distinct non-empty categories, sorted.
func Categories(list []Post) []string {
	categories := lo.Uniq(lo.FilterMap(list, func(p Post, _ int) (string, bool) {
		return p.Category, p.Category != ""
	}))
	sort.Strings(categories)
	return categories
}

// Search matches query case-insensitively against title, excerpt, content,
// category and tags. A blank query matches everything.
func Search(list []Post, query string) []Post {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Post(nil), list...)
	}
	return lo.Filter(list, func(p Post, _ int) bool {
		fields := append([]string{p.Title, p.Excerpt, p.Content, p.Category}, p.Tags...)
		return strings.Contains(strings.ToLower(strings.Join(fields, " ")), q)
	})
}

// Related returns up to MaxRelated other posts sharing the category or at
// least one tag with current.
func Related(list []Post, current Post) []Post {
	related := lo.Filter(list, func(p Post, _ int) bool {
		if p.ID == current.ID {
			return false
		}
		return (current.Category != "" && p.Category == current.Category) || lo.Some(p.Tags, current.Tags)
	})
	if len(related) > MaxRelated {
		related = related[:MaxRelated]
	}
	return related
}

func Find(list []Post, id string) (Post, bool) {
	return lo.Find(list, func(p Post) bool { return p.ID == id })
}
