package narrative

import (
	"encoding/json"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// stringify flattens a decoded JSON value into section text. Lists become
// markdown bullets.
func stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case []any:
		lines := make([]string, 0, len(typed))
		for _, item := range typed {
			if line := strings.TrimSpace(stringify(item)); line != "" {
				lines = append(lines, "- "+line)
			}
		}
		return strings.Join(lines, "\n")
	case float64, bool:
		return fmt.Sprint(typed)
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// normalize converts HTML fragments to markdown and trims whitespace. Text
// that does not look like HTML is returned trimmed.
func normalize(content string) string {
	content = strings.TrimSpace(content)
	if !looksLikeHTML(content) {
		return content
	}

	markdown, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(markdown)
}

func looksLikeHTML(content string) bool {
	open := strings.Index(content, "<")
	return open >= 0 && strings.Contains(content[open:], ">")
}
