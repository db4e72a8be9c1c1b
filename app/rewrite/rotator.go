package rewrite

import (
	"context"
	"fmt"
	"log/slog"
)

// Rotator rewrites articles with a Client, moving through the credential
// pool when a key hits its quota.
type Rotator struct {
	client Client
	prompt Prompt
}

func NewRotator(client Client, prompt Prompt) *Rotator {
	return &Rotator{
		client: client,
		prompt: prompt,
	}
}

// Rewrite starts at the pool cursor and tries each credential at most once.
// A quota error moves on to the next credential, any other error ends the
// attempt with the cursor unchanged. On success the cursor stays on the
// working credential; after a full sweep of quota errors the pool is marked
// exhausted and later calls in the run fail without contacting the backend.
func (r *Rotator) Rewrite(ctx context.Context, pool *CredentialPool, in Input) (Styled, error) {
	n := pool.Len()
	if n == 0 {
		return Styled{}, ErrNoCredentials
	}
	if pool.Exhausted() {
		return Styled{}, ErrPoolExhausted
	}

	prompt := r.prompt.Build(in)
	start := pool.cursor

	for attempt := 0; attempt < n; attempt++ {
		i := (start + attempt) % n

		raw, err := r.client.Complete(ctx, pool.keys[i], prompt)
		if err != nil {
			if IsQuota(err) {
				slog.Warn("Rewrite credential over quota, rotating", "backend", r.client.Name(), "credential", i, "error", err)
				continue
			}
			return Styled{}, fmt.Errorf("rewrite with credential %d failed: %w", i, err)
		}

		styled, err := ParseStyled(raw)
		if err != nil {
			return Styled{}, err
		}

		pool.cursor = i
		return styled, nil
	}

	pool.cursor = n
	slog.Warn("All rewrite credentials exhausted", "backend", r.client.Name(), "credentials", n)

	return Styled{}, ErrPoolExhausted
}
