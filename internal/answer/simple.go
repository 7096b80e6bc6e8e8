package answer

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// maxSnippetChars caps a rendered two-line snippet before the ellipsis.
const maxSnippetChars = 400

var (
	pageTag    = regexp.MustCompile(`\[Page (\d+)\]`)
	paraTag    = regexp.MustCompile(`\[Para (\d+)\]`)
	tableTag   = regexp.MustCompile(`\[Table (\d+)\]`)
	leadingTag = regexp.MustCompile(`^\[(?:Page|Para|Table) \d+\]\s*`)
)

// Simple is the exact-text synthesizer: a deterministic fuzzy search over
// all provided contexts that renders matched lines as HTML result units
// with highlights and deep links. It scans every context regardless of
// topK; topK only feeds the "shown per page" note in the header.
type Simple struct{}

// NewSimple creates the exact-text synthesizer.
func NewSimple() *Simple { return &Simple{} }

// Synthesize searches every context line by line and returns the rendered
// result list, a literal no-matches message, or a missing-query message.
// It never fails.
func (s *Simple) Synthesize(_ context.Context, query string, contexts, docIDs []string, topK int) string {
	if strings.TrimSpace(query) == "" {
		return "No search query provided."
	}

	re, err := compileFuzzy(query)
	if err != nil {
		return fmt.Sprintf("No matches found for '%s'.", html.EscapeString(query))
	}

	var results []string
	for i, text := range contexts {
		fileName := fmt.Sprintf("Document %d", i+1)
		if i < len(docIDs) {
			fileName = docIDs[i]
		}
		lines := strings.Split(text, "\n")
		for idx, line := range lines {
			if re.MatchString(line) {
				results = append(results, renderResult(re, query, fileName, lines, idx))
			}
		}
	}

	if len(results) == 0 {
		return fmt.Sprintf("No matches found for '%s'.", html.EscapeString(query))
	}

	total := len(results)
	truncated := ""
	if total > topK {
		truncated = fmt.Sprintf(" (showing %d per page)", topK)
	}
	header := fmt.Sprintf(`<div class="search-header">Search results for "<strong>%s</strong>" (%d total matches%s)</div>`,
		html.EscapeString(query), total, truncated)
	return header + strings.Join(results, "\n")
}

// renderResult formats one matched line as an HTML result unit: the matched
// line plus the next non-empty line, leading structural tags stripped,
// truncated, escaped, matches highlighted, with a deep link to the source
// line and, for PDF/Word sources, a link opening the original document.
func renderResult(re *regexp.Regexp, query, fileName string, lines []string, idx int) string {
	lineNo := idx + 1
	line := lines[idx]

	snippet := []string{stripLeadingTag(strings.TrimSpace(line))}
	if idx+1 < len(lines) {
		next := stripLeadingTag(strings.TrimSpace(lines[idx+1]))
		if next != "" {
			snippet = append(snippet, next)
		}
	}
	combined := truncateRunes(strings.Join(snippet, "\n"), maxSnippetChars)

	highlighted := re.ReplaceAllString(html.EscapeString(combined), "<mark>${0}</mark>")
	highlighted = strings.ReplaceAll(highlighted, "\n", "<br>")

	viewURL := fmt.Sprintf("/view?file=%s&line=%d&query=%s", quote(fileName), lineNo, quote(query))

	pageInfo, pageNum := locateTag(line)

	lower := strings.ToLower(fileName)
	docLink := ""
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		docLink = fmt.Sprintf(` <a href="/download?file=%s&page=%d#page=%d" target="_blank" class="pdf-link" title="Open PDF in browser">📖 Open PDF</a>`,
			quote(fileName), pageNum, pageNum)
	case strings.HasSuffix(lower, ".docx"), strings.HasSuffix(lower, ".doc"):
		docLink = fmt.Sprintf(` <a href="/download?file=%s" target="_blank" class="pdf-link" title="Download Word document">📝 Open Doc</a>`,
			quote(fileName))
	}

	return fmt.Sprintf(`<div class="result-item"><div class="result-file"><a href="%s" target="_blank" title="View extracted text at line %d">📄 %s</a><span class="result-location"> : Line %d%s</span>%s</div><div class="result-text">%s</div></div>`,
		viewURL, lineNo, html.EscapeString(filepath.Base(fileName)), lineNo, pageInfo, docLink, highlighted)
}

// locateTag recovers a location note and a PDF page number from a line's
// structural tag. Page wins over Para over Table; the page number defaults
// to 1 for the document link when no page tag is present.
func locateTag(line string) (info string, page int) {
	page = 1
	switch {
	case strings.Contains(line, "[Page "):
		if m := pageTag.FindStringSubmatch(line); m != nil {
			page, _ = strconv.Atoi(m[1])
			info = fmt.Sprintf(" (Page %d)", page)
		}
	case strings.Contains(line, "[Para "):
		if m := paraTag.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			info = fmt.Sprintf(" (Para %d)", n)
		}
	case strings.Contains(line, "[Table "):
		if m := tableTag.FindStringSubmatch(line); m != nil {
			info = fmt.Sprintf(" (Table %s)", m[1])
		}
	}
	return info, page
}

func stripLeadingTag(s string) string {
	return leadingTag.ReplaceAllString(s, "")
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// quote percent-encodes a deep-link parameter, keeping '/' literal so file
// paths stay readable.
func quote(s string) string {
	q := url.QueryEscape(s)
	q = strings.ReplaceAll(q, "+", "%20")
	q = strings.ReplaceAll(q, "%2F", "/")
	return q
}
