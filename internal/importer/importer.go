// Package importer extracts candidate facts from external documents: a CV in
// PDF form or a portfolio web page. The extracted text is stored under the
// cv.extra profile key and flows into the persona as additional facts.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

const maxFetchSize = 5 << 20 // 5MB

// ErrNoText is returned when a document yields no usable text.
var ErrNoText = errors.New("no text extracted")

// Importer resolves documents into plain text.
type Importer struct {
	client *http.Client
}

// New creates an Importer. A nil client uses a default with a 10s timeout.
func New(client *http.Client) *Importer {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Importer{client: client}
}

// FromPDF extracts the plain text of a PDF document.
func (imp *Importer) FromPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extracting page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	out := normalize(sb.String())
	if out == "" {
		return "", ErrNoText
	}
	return out, nil
}

// FromURL fetches a web page and extracts its visible text.
func (imp *Importer) FromURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	resp, err := imp.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}

	return ExtractHTMLText(bytes.NewReader(body))
}

// ExtractHTMLText parses HTML and returns its visible text. Script, style and
// head content is skipped.
func ExtractHTMLText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	out := normalize(sb.String())
	if out == "" {
		return "", ErrNoText
	}
	return out, nil
}

// normalize collapses runs of blank lines and trims surrounding whitespace.
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
