package content

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// ugc allows the usual formatting and links; links get rel=nofollow noopener.
var ugc = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	return p
}()

// comments get inline formatting, lists, quotes and code; no images or headings
var commentPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "em", "strong", "del", "code", "pre", "blockquote", "ul", "ol", "li")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}()

var strict = bluemonday.StrictPolicy()

// RenderMarkdown converts owner-authored markdown to sanitized html.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		zap.L().Warn("markdown render failed", zap.Error(err))
		return strict.Sanitize(src)
	}

	return ugc.Sanitize(buf.String())
}

// RenderComment converts visitor markdown to html under the narrower comment policy.
// Raw html in the source is dropped by the renderer before sanitizing.
func RenderComment(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		zap.L().Warn("comment render failed", zap.Error(err))
		return strict.Sanitize(src)
	}

	return commentPolicy.Sanitize(buf.String())
}

// SanitizeText strips every tag from visitor input. Entities stay escaped.
func SanitizeText(s string) string {
	return strict.Sanitize(s)
}
