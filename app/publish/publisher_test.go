package publish

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFormatMessage(t *testing.T) {
	post := Post{
		Headline:    "หัวข้อข่าว",
		Body:        "เนื้อหาข่าว",
		SourceLabel: "ESPN - Premier League",
		Link:        "https://www.espn.com/soccer/story/_/id/1",
	}

	expected := "หัวข้อข่าว\n\nเนื้อหาข่าว\n\n---\nขอขอบคุณภาพข่าวจาก : ESPN - Premier League\nลิงค์ข่าว : https://www.espn.com/soccer/story/_/id/1"
	if got := FormatMessage(post); got != expected {
		t.Errorf("Expected message:\n%s\ngot:\n%s", expected, got)
	}
}

func TestFormatMessageDefaultSource(t *testing.T) {
	message := FormatMessage(Post{Headline: "H", Body: "B", Link: "https://example.com"})

	if !strings.Contains(message, "ขอขอบคุณภาพข่าวจาก : ESPN\n") {
		t.Errorf("Expected default source label, got:\n%s", message)
	}
}

func TestCaptionTruncates(t *testing.T) {
	post := Post{Headline: "H", Body: strings.Repeat("ก", 2000), Link: "https://example.com"}

	caption := Caption(post)
	if n := utf8.RuneCountInString(caption); n != telegramCaptionLimit {
		t.Errorf("Expected caption of %d runes, got %d", telegramCaptionLimit, n)
	}
	if !strings.HasSuffix(caption, "…") {
		t.Error("Expected truncated caption to end with an ellipsis")
	}

	short := Caption(Post{Headline: "H", Body: "Café", Link: "https://example.com"})
	if !strings.Contains(short, "Café") {
		t.Errorf("Expected caption in NFC form, got %q", short)
	}
}
