package rewrite

import (
	"context"
	"errors"
)

var (
	// ErrQuota marks a failure caused by a rate or usage limit of one credential.
	ErrQuota = errors.New("rewrite quota exceeded")

	ErrNoCredentials     = errors.New("no rewrite credentials configured")
	ErrPoolExhausted     = errors.New("all rewrite credentials exhausted")
	ErrMalformedResponse = errors.New("malformed rewrite response")
)

func IsQuota(err error) bool {
	return errors.Is(err, ErrQuota)
}

type Input struct {
	Headline string
	Body     string
}

type Styled struct {
	Headline string
	Body     string
}

// Client sends one prompt to a generative text backend using the given
// credential. Quota failures must wrap ErrQuota.
type Client interface {
	Name() string
	Complete(ctx context.Context, apiKey, prompt string) (string, error)
}
