package rewrite

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Prompt struct {
	Language string
}

func (p Prompt) Build(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a friendly and funny football blogger who writes in %s.\n", p.Language)
	fmt.Fprintf(&b, "Rewrite the news article below in %s in your own lively voice. ", p.Language)
	b.WriteString("Keep every fact, name, score and quote accurate, do not invent details and keep it easy to read on social media.\n")
	b.WriteString(`Reply with a JSON object only, in the form {"headline": "...", "body": "..."}.`)
	b.WriteString("\n\nHeadline: ")
	b.WriteString(in.Headline)
	b.WriteString("\n\nArticle:\n")
	b.WriteString(in.Body)

	return b.String()
}

type styledPayload struct {
	Headline string `json:"headline"`
	Body     string `json:"body"`
}

// ParseStyled reads the JSON object out of a model reply, tolerating code
// fences and text around it.
func ParseStyled(raw string) (Styled, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Styled{}, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	var payload styledPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return Styled{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	styled := Styled{
		Headline: strings.TrimSpace(payload.Headline),
		Body:     strings.TrimSpace(payload.Body),
	}
	if styled.Headline == "" || styled.Body == "" {
		return Styled{}, fmt.Errorf("%w: headline and body are required", ErrMalformedResponse)
	}

	return styled, nil
}
