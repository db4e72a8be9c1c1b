package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	fb "github.com/huandu/facebook/v2"
)

const DefaultGraphAPIURL = "https://graph.facebook.com/v19.0"

type FacebookPublisher struct {
	pageID  string
	session *fb.Session
}

// NewFacebookPublisher creates a publisher posting as the page. graphURL
// carries the API version, e.g. https://graph.facebook.com/v19.0.
func NewFacebookPublisher(graphURL, pageID, accessToken string, httpClient *http.Client) *FacebookPublisher {
	if graphURL == "" {
		graphURL = DefaultGraphAPIURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	// Page tokens need no app credentials.
	session := fb.New("", "").Session(accessToken)
	session.BaseURL = strings.TrimRight(graphURL, "/") + "/"
	session.HttpClient = httpClient

	return &FacebookPublisher{
		pageID:  pageID,
		session: session,
	}
}

func (p *FacebookPublisher) Name() string {
	return "facebook"
}

// Publish uploads the image by URL to the page's photos edge with the
// formatted message as its caption.
func (p *FacebookPublisher) Publish(ctx context.Context, post Post) (string, error) {
	if post.ImageURL == "" {
		return "", fmt.Errorf("facebook post requires an image")
	}

	session := p.session.WithContext(ctx)

	result, err := session.Post("/"+url.PathEscape(p.pageID)+"/photos", fb.Params{
		"url":     post.ImageURL,
		"message": FormatMessage(post),
	})
	if err != nil {
		var graphErr *fb.Error
		if errors.As(err, &graphErr) {
			return "", fmt.Errorf("facebook API error %d (%s): %s", graphErr.Code, graphErr.Type, graphErr.Message)
		}
		return "", fmt.Errorf("failed to post to facebook: %w", err)
	}

	for _, field := range []string{"post_id", "id"} {
		if id, ok := result[field].(string); ok && id != "" {
			return id, nil
		}
	}

	return "", fmt.Errorf("facebook response carried no post ID")
}
