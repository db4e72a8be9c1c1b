package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const DefaultSourceLabel = "ESPN"

var ErrNotConfigured = errors.New("publisher credentials not configured")

// Post is a rewritten article ready to be published.
type Post struct {
	Headline    string
	Body        string
	ImageURL    string
	SourceLabel string
	Link        string
}

// Publisher posts to a social page and returns the remote post ID.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, post Post) (string, error)
}

// FormatMessage renders the post text with the image credit and the link
// to the original article.
func FormatMessage(post Post) string {
	source := post.SourceLabel
	if source == "" {
		source = DefaultSourceLabel
	}

	return fmt.Sprintf("%s\n\n%s\n\n---\nขอขอบคุณภาพข่าวจาก : %s\nลิงค์ข่าว : %s",
		strings.TrimSpace(post.Headline),
		strings.TrimSpace(post.Body),
		source,
		post.Link,
	)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
