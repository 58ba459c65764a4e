// Package render turns playbook markdown into HTML.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/myrjola/huntdesk/internal/errors"
	"golang.org/x/net/html"
)

// TableClass is added to every table of a rendered playbook.
const TableClass = "playbook-table"

// PlaybookHTML renders the markdown of a playbook as an HTML fragment.
//
// Raw HTML in the markdown is dropped. Headings get unique slug ids so that sections can be linked to.
func PlaybookHTML(md string) (string, error) {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{ //nolint:exhaustruct // defaults
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.HrefTargetBlank,
	})
	rendered := markdown.ToHTML([]byte(md), p, r)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rendered))
	if err != nil {
		return "", errors.Wrap(err, "parse rendered html")
	}

	used := make(map[string]int)
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		slug := Slug(s.Text())
		if slug == "" {
			slug = "section"
		}
		used[slug]++
		if n := used[slug]; n > 1 {
			slug = fmt.Sprintf("%s-%d", slug, n)
		}
		s.SetAttr("id", slug)
	})
	doc.Find("table").AddClass(TableClass)

	var b strings.Builder
	body := doc.Find("body")
	if len(body.Nodes) > 0 {
		for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
			if err = html.Render(&b, c); err != nil {
				return "", errors.Wrap(err, "render html")
			}
		}
	}
	return b.String(), nil
}

// Slug lowercases s and joins its runs of letters and digits with dashes.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
