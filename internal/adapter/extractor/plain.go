// Package extractor derives plain text from uploaded document bytes.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`[ \t]+`)
)

// Plain extracts text from textual formats: plain text, markdown, JSON, CSV
// and HTML (tags stripped). Binary content yields an error; embedded
// sub-documents inside container formats are never extracted.
type Plain struct{}

// New creates a plain-text extractor.
func New() *Plain {
	return &Plain{}
}

// Extract derives text from data. The declared content type selects HTML
// stripping; everything else is treated as raw text after a binary check.
func (p *Plain) Extract(_ context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if looksBinary(data) {
		return "", fmt.Errorf("content is not text (declared type %q)", contentType)
	}

	text := string(data)
	if isHTML(contentType) {
		text = stripHTML(text)
	}
	return text, nil
}

func isHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "xhtml")
}

func stripHTML(s string) string {
	s = scriptRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// looksBinary reports whether data is unlikely to be text: it contains a NUL
// byte or is not valid UTF-8 in its leading window.
func looksBinary(data []byte) bool {
	window := data
	if len(window) > 8192 {
		window = window[:8192]
	}
	if bytes.IndexByte(window, 0) >= 0 {
		return true
	}
	// A truncated window may end mid-rune; trim up to 3 trailing bytes.
	for i := 0; i < 3 && len(window) > 0 && !utf8.Valid(window); i++ {
		window = window[:len(window)-1]
	}
	return !utf8.Valid(window)
}
