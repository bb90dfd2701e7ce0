package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/cloudslate/cloudslate/internal/posts"
)

const maxDerivedExcerpt = 160

type cmsDocument struct {
	DocID           string          `json:"_id"`
	ID              string          `json:"id"`
	Slug            string          `json:"slug"`
	Title           string          `json:"title"`
	Excerpt         string          `json:"excerpt"`
	Content         json.RawMessage `json:"content"`
	Author          string          `json:"author"`
	Date            string          `json:"date"`
	Category        string          `json:"category"`
	Tags            []string        `json:"tags"`
	Featured        bool            `json:"featured"`
	Image           string          `json:"image"`
	ReadTime        json.RawMessage `json:"readTime"`
	MetaDescription string          `json:"metaDescription"`
	Keywords        []string        `json:"keywords"`
}

type cmsSpan struct {
	Text string `json:"text"`
}

type cmsBlock struct {
	Type     string    `json:"_type"`
	Style    string    `json:"style"`
	Children []cmsSpan `json:"children"`
	Alt      string    `json:"alt"`
	Asset    *struct {
		URL string `json:"url"`
	} `json:"asset"`
}

func (d cmsDocument) toPost(now time.Time) (posts.Post, error) {
	content, err := renderContent(d.Content)
	if err != nil {
		return posts.Post{}, err
	}
	readTime, err := formatReadTime(d.ReadTime)
	if err != nil {
		return posts.Post{}, err
	}

	p := posts.Post{
		ID:              firstNonEmpty(d.ID, d.Slug, d.DocID),
		Title:           d.Title,
		Slug:            d.Slug,
		Excerpt:         d.Excerpt,
		Content:         content,
		Author:          d.Author,
		Date:            d.Date,
		Category:        d.Category,
		Tags:            d.Tags,
		Featured:        d.Featured,
		Image:           d.Image,
		ReadTime:        readTime,
		MetaDescription: d.MetaDescription,
		Keywords:        d.Keywords,
	}
	if p.Date == "" {
		p.Date = now.UTC().Format(time.RFC3339)
	}
	if p.Excerpt == "" {
		p.Excerpt = excerptFromHTML(content)
	}
	if p.MetaDescription == "" {
		p.MetaDescription = p.Excerpt
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	return p.WithDefaults(), nil
}

// renderContent accepts either a plain string or a list of portable-text
// blocks and returns HTML.
func renderContent(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var blocks []cmsBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return "", fmt.Errorf("content: %w", err)
	}
	var b strings.Builder
	for _, block := range blocks {
		renderBlock(&b, block)
	}
	return b.String(), nil
}

func renderBlock(b *strings.Builder, block cmsBlock) {
	switch block.Type {
	case "block":
		var text strings.Builder
		for _, span := range block.Children {
			text.WriteString(span.Text)
		}
		tag := "p"
		switch block.Style {
		case "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
			tag = block.Style
		}
		fmt.Fprintf(b, "<%s>%s</%s>", tag, html.EscapeString(text.String()), tag)
	case "image":
		if block.Asset == nil || block.Asset.URL == "" {
			return
		}
		fmt.Fprintf(b, `<img src="%s" alt="%s">`, html.EscapeString(block.Asset.URL), html.EscapeString(block.Alt))
	}
}

// formatReadTime turns 7 into "7 min read". Strings are kept when they
// already carry a unit.
func formatReadTime(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		s = strings.TrimSpace(s)
		if _, err := strconv.Atoi(s); err == nil {
			return s + " min read", nil
		}
		return s, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("readTime: %w", err)
	}
	if n <= 0 {
		return "", nil
	}
	return strconv.FormatFloat(n, 'f', -1, 64) + " min read", nil
}

func excerptFromHTML(content string) string {
	if content == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if utf8.RuneCountInString(text) <= maxDerivedExcerpt {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:maxDerivedExcerpt])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
