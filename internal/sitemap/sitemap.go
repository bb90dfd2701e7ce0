// Package sitemap renders the public site map for a post collection.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/cloudslate/cloudslate/internal/posts"
)

// Key is where the worker stores the rendered sitemap.
const Key = "sitemap.xml"

const (
	xmlnsSitemap = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xmlnsImage   = "http://www.google.com/schemas/sitemap-image/1.1"
	dayFormat    = "2006-01-02"
)

type urlSet struct {
	XMLName    xml.Name `xml:"urlset"`
	XMLNS      string   `xml:"xmlns,attr"`
	XMLNSImage string   `xml:"xmlns:image,attr"`
	URLs       []entry  `xml:"url"`
}

type entry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
	Image      *image `xml:"image:image,omitempty"`
}

type image struct {
	Loc     string `xml:"image:loc"`
	Title   string `xml:"image:title"`
	Caption string `xml:"image:caption,omitempty"`
}

// Build returns the sitemap XML for baseURL. Static pages use now as their
// last modification date; posts use their own date when it parses.
func Build(baseURL string, list []posts.Post, now time.Time) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")
	today := now.UTC().Format(dayFormat)

	set := urlSet{
		XMLNS:      xmlnsSitemap,
		XMLNSImage: xmlnsImage,
		URLs: []entry{
			{Loc: base + "/", LastMod: today, ChangeFreq: "daily", Priority: "1.0"},
			{Loc: base + "/about.html", LastMod: today, ChangeFreq: "monthly", Priority: "0.9"},
			{Loc: base + "/contact.html", LastMod: today, ChangeFreq: "monthly", Priority: "0.9"},
		},
	}

	for _, p := range list {
		e := entry{
			Loc:        fmt.Sprintf("%s/post.html?id=%s", base, url.QueryEscape(p.ID)),
			LastMod:    lastMod(p.Date, today),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		}
		if p.Image != "" {
			e.Image = &image{Loc: p.Image, Title: p.Title, Caption: p.Excerpt}
		}
		set.URLs = append(set.URLs, e)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func lastMod(date, fallback string) string {
	if date == "" {
		return fallback
	}
	t, err := dateparse.ParseAny(date)
	if err != nil {
		return fallback
	}
	return t.UTC().Format(dayFormat)
}
