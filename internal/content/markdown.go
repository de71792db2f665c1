package content

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()
)

func init() {
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
}

// renderMarkdown converts markdown to sanitized HTML. On a conversion
// failure the raw source is returned so a malformed document still shows
// something rather than nothing.
func renderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return source
	}
	return string(policy.SanitizeBytes(buf.Bytes()))
}

// splitFrontMatter separates the leading "---" fenced YAML block from the
// markdown body and decodes it into meta. A document without a fence is
// all body.
func splitFrontMatter(source string, meta interface{}) (body string, err error) {
	const fence = "---"

	rest, ok := strings.CutPrefix(source, fence+"\n")
	if !ok {
		return source, nil
	}

	raw, body, found := strings.Cut(rest, "\n"+fence)
	if !found {
		return source, nil
	}
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(raw), meta); err != nil {
		return "", err
	}
	return body, nil
}
