package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// DetectLanguageFromCodeBlock returns the language named on a "```lang" fence line, or "markdown".
func DetectLanguageFromCodeBlock(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "```") {
		return "markdown"
	}
	lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	if lang == "" {
		return "markdown"
	}
	return lang
}

// RenderMarkdownWithContext highlights content line by line, switching lexer inside fenced code blocks.
func RenderMarkdownWithContext(ctx context.Context, w io.Writer, content string, theme string) error {
	inCodeBlock := false
	language := "markdown"

	for i, line := range strings.Split(content, "\n") {
		if i%5 == 0 {
			select {
			case <-ctx.Done():
				fmt.Fprintf(w, "\n\n🔄 Output interrupted...\n")
				return ctx.Err()
			default:
			}
		}

		fence := strings.HasPrefix(strings.TrimSpace(line), "```")
		if fence {
			if inCodeBlock {
				inCodeBlock = false
				language = "markdown"
			} else {
				inCodeBlock = true
				language = DetectLanguageFromCodeBlock(line)
			}
		}

		lexer := language
		if fence {
			lexer = "markdown"
		}

		var buf bytes.Buffer
		if err := quick.Highlight(&buf, line+"\n", lexer, "terminal256", theme); err != nil {
			return fmt.Errorf("failed to highlight output: %w", err)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}

	return nil
}
