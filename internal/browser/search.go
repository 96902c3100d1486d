package browser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vidyasagar/petsurf/internal/lastvisit"
)

const (
	searchHost     = "html.duckduckgo.com"
	searchEndpoint = "https://" + searchHost + "/html/"
)

// SearchResult represents a single search result.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// SearchURL returns a web search for query restricted to the petition site.
func SearchURL(query string) string {
	return searchEndpoint + "?q=" + url.QueryEscape("site:"+lastvisit.SiteHost+" "+strings.TrimSpace(query))
}

// isSearchURL reports whether raw is a results page built by SearchURL.
func isSearchURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Host == searchHost && u.Query().Get("q") != ""
}

// ParseSearchResults parses a DuckDuckGo HTML results page.
func ParseSearchResults(body []byte) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	var results []SearchResult
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		titleEl := s.Find(".result__a")
		title := collapse(titleEl.Text())

		href, exists := titleEl.Attr("href")
		if !exists {
			return
		}
		target := unwrapSearchRedirect(href)

		if title != "" && target != "" {
			results = append(results, SearchResult{
				Title:   title,
				URL:     target,
				Snippet: collapse(s.Find(".result__snippet").Text()),
			})
		}
	})

	return results, nil
}

// unwrapSearchRedirect returns the destination of a DuckDuckGo redirect link,
// so that scripts see the real page URL. Other links are returned unchanged.
func unwrapSearchRedirect(href string) string {
	// //duckduckgo.com/l/?uddg=<encoded_url>&rut=...
	if !strings.Contains(href, "uddg=") {
		return href
	}
	parsed, err := url.Parse(href)
	if err != nil || !strings.HasSuffix(parsed.Hostname(), "duckduckgo.com") {
		return href
	}
	if uddg := parsed.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	return href
}

// RenderSearchResults formats search results as a numbered page.
func RenderSearchResults(results []SearchResult, query string, width int) *RenderedPage {
	var md strings.Builder
	var links []Link

	fmt.Fprintf(&md, "# Search: %s\n\n", query)

	if len(results) == 0 {
		md.WriteString("No petitions found.\n")
	}

	for i, r := range results {
		idx := i + 1
		fmt.Fprintf(&md, "%d. **%s** **[%d]**  \n", idx, r.Title, idx)
		fmt.Fprintf(&md, "   %s\n", r.URL)
		if r.Snippet != "" {
			snippet := []rune(r.Snippet)
			if len(snippet) > 200 {
				snippet = append(snippet[:197], []rune("...")...)
			}
			fmt.Fprintf(&md, "\n   %s\n", string(snippet))
		}
		md.WriteString("\n")

		links = append(links, Link{Index: idx, Text: r.Title, URL: r.URL})
	}

	if len(results) > 0 {
		fmt.Fprintf(&md, "---\n\n%d results. Use `f <number>` to follow a link.\n", len(results))
	}

	content, err := renderWithGlamour(md.String(), contentWidth(width))
	if err != nil {
		content = md.String()
	}
	return &RenderedPage{
		Title:   "Search: " + query,
		Content: content,
		Links:   links,
	}
}

// searchQuery returns the user's part of a SearchURL query.
func searchQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query().Get("q")
	return strings.TrimSpace(strings.TrimPrefix(q, "site:"+lastvisit.SiteHost))
}
