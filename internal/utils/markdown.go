package utils

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	log "github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns post markdown into sanitised HTML and memoises the result by content hash.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	cache  *TTLCache[string, template.HTML]
}

func NewRenderer(cacheSize int) (*Renderer, error) {
	cache, err := NewTTLCache[string, template.HTML](cacheSize, 0)
	if err != nil {
		return nil, err
	}

	policy := bluemonday.UGCPolicy()
	policy.AllowImages()
	// 外链新窗口打开，并加 noreferrer
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
			),
		),
		policy: policy,
		cache:  cache,
	}, nil
}

func (r *Renderer) Render(source string) template.HTML {
	if source == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(source))
	key := hex.EncodeToString(sum[:])

	out, _ := r.cache.GetOrLoad(key, func() (template.HTML, error) {
		return r.render(source), nil
	})
	return out
}

func (r *Renderer) render(source string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		log.WithError(err).Warn("[markdown] convert failed, falling back to escaped text")
		return template.HTML(template.HTMLEscapeString(source))
	}
	sanitized := r.policy.SanitizeBytes(buf.Bytes())
	return EnhanceHTMLContent(string(sanitized))
}
