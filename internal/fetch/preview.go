package fetch

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// maxFallbackDescription bounds descriptions derived from page text.
const maxFallbackDescription = 200

// Preview is the link card shown for a project URL.
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
}

// ExtractPreview reads link-card metadata from an HTML page.
// OpenGraph and Twitter tags take precedence over <title> and meta description.
// Relative image URLs are resolved against baseURL.
func ExtractPreview(html, baseURL string) (*Preview, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	p := &Preview{URL: baseURL}

	p.Title = firstNonEmpty(
		metaContent(doc, "property", "og:title"),
		metaContent(doc, "name", "twitter:title"),
		strings.TrimSpace(doc.Find("head title").First().Text()),
	)
	p.Description = firstNonEmpty(
		metaContent(doc, "property", "og:description"),
		metaContent(doc, "name", "twitter:description"),
		metaContent(doc, "name", "description"),
	)
	p.SiteName = metaContent(doc, "property", "og:site_name")

	image := firstNonEmpty(
		metaContent(doc, "property", "og:image"),
		metaContent(doc, "name", "twitter:image"),
	)
	if image != "" {
		p.Image = resolveReference(baseURL, image)
	}

	if p.Description == "" {
		text, err := ExtractMainText(html, DefaultTextSelectors())
		if err == nil {
			p.Description = truncate(firstLine(text), maxFallbackDescription)
		}
	}
	if p.SiteName == "" {
		if u, err := url.Parse(baseURL); err == nil {
			p.SiteName = strings.TrimPrefix(u.Hostname(), "www.")
		}
	}

	return p, nil
}

func metaContent(doc *goquery.Document, attr, key string) string {
	sel := doc.Find(fmt.Sprintf("meta[%s=%q]", attr, key)).First()
	content, _ := sel.Attr("content")
	return strings.TrimSpace(content)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolveReference(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
