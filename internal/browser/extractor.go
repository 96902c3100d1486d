package browser

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// Article is the readable part of a fetched document.
type Article struct {
	Title       string
	Byline      string
	Content     string // cleaned HTML
	TextContent string
	SiteName    string
	URL         string // as requested
	FinalURL    string
}

// Link is a numbered hyperlink in rendered content.
type Link struct {
	Index int
	Text  string
	URL   string
}

// Extract runs readability over resp. Bodies that are not HTML become a
// preformatted block, and when readability finds nothing the whole document
// is kept.
func Extract(resp *Response) (*Article, error) {
	a := &Article{URL: resp.RequestURL, FinalURL: resp.URL}

	if !IsHTML(resp.ContentType) {
		a.Title = resp.URL
		a.TextContent = string(resp.Body)
		a.Content = "<pre>" + html.EscapeString(a.TextContent) + "</pre>"
		return a, nil
	}

	base, err := url.Parse(resp.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", resp.URL, err)
	}
	parsed, err := readability.FromReader(bytes.NewReader(resp.Body), base)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}

	a.Title = cmp.Or(strings.TrimSpace(parsed.Title), resp.URL)
	a.Byline = parsed.Byline
	a.TextContent = parsed.TextContent
	a.SiteName = cmp.Or(parsed.SiteName, base.Hostname())
	a.Content = parsed.Content
	if strings.TrimSpace(a.Content) == "" {
		a.Content = string(resp.Body)
	}
	return a, nil
}
