// Package render rasterizes report markup into PNG images.
package render

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Renderer turns an HTML fragment and a stylesheet into a PNG of the given size.
type Renderer interface {
	Render(ctx context.Context, markup, stylesheet string, width, height int) ([]byte, error)
}

// LoadStylesheet reads the stylesheet applied to every rendered table.
func LoadStylesheet(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read stylesheet: %w", err)
	}
	return string(data), nil
}

// Document wraps a markup fragment into a standalone page carrying the stylesheet.
func Document(markup, stylesheet string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>\n")
	// A stray "</style" in the stylesheet would end the element early.
	b.WriteString(strings.ReplaceAll(stylesheet, "</style", "<\\/style"))
	b.WriteString("\n</style>\n</head>\n<body>\n")
	b.WriteString(markup)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
