package browser

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/glamour"
)

// Cached glamour renderer, rebuilt only when the width changes.
var (
	cachedRenderer      *glamour.TermRenderer
	cachedRendererWidth int
	rendererMu          sync.Mutex
)

// RenderedPage holds the final terminal-ready output.
type RenderedPage struct {
	Title   string
	Content string // styled terminal text
	Links   []Link
}

// Render converts an Article's HTML content into styled terminal text.
func Render(article *Article, width int) *RenderedPage {
	md, links := Markdown(article)

	rendered, err := renderWithGlamour(md, contentWidth(width))
	if err != nil {
		// Raw markdown still reads fine.
		rendered = md
	}

	return &RenderedPage{
		Title:   article.Title,
		Content: rendered,
		Links:   links,
	}
}

// contentWidth leaves a margin and caps line length for readability.
func contentWidth(width int) int {
	if width <= 0 {
		return 76
	}
	return min(width-4, 100)
}

// Markdown converts an Article into markdown, numbering every link.
func Markdown(article *Article) (string, []Link) {
	var md strings.Builder

	if article.Title != "" {
		md.WriteString("# " + article.Title + "\n\n")
	}
	if article.Byline != "" {
		md.WriteString("*" + article.Byline + "*\n\n")
	}
	md.WriteString("---\n\n")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		md.WriteString(article.TextContent)
		return md.String(), nil
	}

	conv := &mdConverter{base: baseURL(article)}
	doc.Find("body").Children().Each(func(_ int, s *goquery.Selection) {
		conv.block(&md, s)
	})

	if strings.TrimSpace(conv.written) == "" && article.TextContent != "" {
		md.WriteString(article.TextContent)
	}

	return md.String(), conv.links
}

func baseURL(article *Article) *url.URL {
	for _, raw := range []string{article.FinalURL, article.URL} {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return u
		}
	}
	return nil
}

func renderWithGlamour(markdown string, width int) (string, error) {
	rendererMu.Lock()
	defer rendererMu.Unlock()

	if cachedRenderer == nil || cachedRendererWidth != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		cachedRenderer = renderer
		cachedRendererWidth = width
	}

	return cachedRenderer.Render(markdown)
}

// mdConverter walks goquery nodes and writes markdown.
type mdConverter struct {
	base    *url.URL
	links   []Link
	written string // everything emitted so far
}

func (c *mdConverter) emit(md *strings.Builder, s string) {
	if s == "" {
		return
	}
	md.WriteString(s)
	c.written += s
}

func (c *mdConverter) block(md *strings.Builder, s *goquery.Selection) {
	switch tag := goquery.NodeName(s); tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		if text := collapse(s.Text()); text != "" {
			level := int(tag[1] - '0')
			c.emit(md, strings.Repeat("#", level)+" "+text+"\n\n")
		}
	case "p", "figcaption", "dd", "dt":
		if text := strings.TrimSpace(c.inline(s)); text != "" {
			c.emit(md, text+"\n\n")
		}
	case "ul", "ol":
		c.emit(md, c.list(s, tag == "ol", 0))
	case "blockquote":
		if text := strings.TrimSpace(c.inline(s)); text != "" {
			c.emit(md, "> "+strings.ReplaceAll(text, "\n", "\n> ")+"\n\n")
		}
	case "pre":
		c.emit(md, "```\n"+strings.TrimRight(s.Text(), "\n")+"\n```\n\n")
	case "hr":
		c.emit(md, "---\n\n")
	case "table":
		c.emit(md, c.table(s))
	case "img", "script", "style", "noscript", "form", "button", "svg":
	case "div", "article", "section", "main", "header", "footer", "figure", "aside", "nav", "dl":
		s.Children().Each(func(_ int, child *goquery.Selection) {
			c.block(md, child)
		})
	default:
		if text := strings.TrimSpace(c.inline(s)); text != "" {
			c.emit(md, text+"\n\n")
		}
	}
}

func (c *mdConverter) inline(s *goquery.Selection) string {
	var sb strings.Builder
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "#text":
			raw := child.Text()
			text := collapse(raw)
			if text == "" {
				if raw != "" {
					sb.WriteString(" ")
				}
				return
			}
			if isSpace(raw[0]) {
				sb.WriteString(" ")
			}
			sb.WriteString(text)
			if isSpace(raw[len(raw)-1]) {
				sb.WriteString(" ")
			}
		case "a":
			sb.WriteString(c.link(child))
		case "strong", "b":
			if text := strings.TrimSpace(c.inline(child)); text != "" {
				sb.WriteString("**" + text + "** ")
			}
		case "em", "i":
			if text := strings.TrimSpace(c.inline(child)); text != "" {
				sb.WriteString("*" + text + "* ")
			}
		case "code":
			sb.WriteString("`" + child.Text() + "`")
		case "br":
			sb.WriteString("  \n")
		case "script", "style", "img":
		default:
			sb.WriteString(c.inline(child))
		}
	})
	return sb.String()
}

func (c *mdConverter) link(s *goquery.Selection) string {
	href, _ := s.Attr("href")
	text := collapse(s.Text())
	href = unwrapSearchRedirect(strings.TrimSpace(href))
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return text
	}
	if c.base != nil {
		if ref, err := url.Parse(href); err == nil {
			href = c.base.ResolveReference(ref).String()
		}
	}
	if text == "" {
		text = href
	}

	index := len(c.links) + 1
	c.links = append(c.links, Link{Index: index, Text: text, URL: href})
	return fmt.Sprintf("[%s](%s) **[%d]** ", text, href, index)
}

func (c *mdConverter) list(s *goquery.Selection, ordered bool, depth int) string {
	var sb strings.Builder
	indent := strings.Repeat("  ", depth)
	n := 0
	s.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		n++
		marker := "-"
		if ordered {
			marker = fmt.Sprintf("%d.", n)
		}

		// Nested lists are rendered after the item text.
		nested := li.ChildrenFiltered("ul, ol")
		item := li.Clone()
		item.ChildrenFiltered("ul, ol").Remove()

		sb.WriteString(indent + marker + " " + strings.TrimSpace(c.inline(item)) + "\n")
		nested.Each(func(_ int, sub *goquery.Selection) {
			sb.WriteString(c.list(sub, goquery.NodeName(sub) == "ol", depth+1))
		})
	})
	if depth == 0 && n > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

func (c *mdConverter) table(s *goquery.Selection) string {
	var rows [][]string
	s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Children().Each(func(_ int, cell *goquery.Selection) {
			name := goquery.NodeName(cell)
			if name != "td" && name != "th" {
				return
			}
			text := strings.TrimSpace(c.inline(cell))
			cells = append(cells, strings.ReplaceAll(text, "|", "\\|"))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	if len(rows) == 0 {
		return ""
	}

	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}

	var sb strings.Builder
	for i, r := range rows {
		for len(r) < cols {
			r = append(r, "")
		}
		sb.WriteString("| " + strings.Join(r, " | ") + " |\n")
		if i == 0 {
			sb.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// collapse folds runs of whitespace into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
