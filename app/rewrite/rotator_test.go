package rewrite

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

const validReply = `{"headline": "Styled headline", "body": "Styled body"}`

// MockClient replies per credential; credentials without a reply succeed.
type MockClient struct {
	replies map[string]error
	raw     string
	calls   []string
}

func (m *MockClient) Name() string {
	return "mock"
}

func (m *MockClient) Complete(ctx context.Context, apiKey, prompt string) (string, error) {
	m.calls = append(m.calls, apiKey)
	if err, ok := m.replies[apiKey]; ok && err != nil {
		return "", err
	}
	if m.raw != "" {
		return m.raw, nil
	}
	return validReply, nil
}

func quotaErr(key string) error {
	return fmt.Errorf("%w: %s rate limited", ErrQuota, key)
}

func newTestRotator(client Client) *Rotator {
	return NewRotator(client, Prompt{Language: "Thai"})
}

var testInput = Input{Headline: "Headline", Body: "Body"}

func TestRotatorSweepsToWorkingCredential(t *testing.T) {
	client := &MockClient{replies: map[string]error{
		"k1": quotaErr("k1"),
		"k2": quotaErr("k2"),
	}}
	rotator := newTestRotator(client)
	pool := NewCredentialPool([]string{"k1", "k2", "k3"})

	styled, err := rotator.Rewrite(context.Background(), pool, testInput)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if len(client.calls) != 3 {
		t.Errorf("Expected 3 calls, got %d (%v)", len(client.calls), client.calls)
	}
	if styled.Headline != "Styled headline" || styled.Body != "Styled body" {
		t.Errorf("Unexpected result: %+v", styled)
	}
	if pool.Cursor() != 2 {
		t.Errorf("Expected cursor 2, got %d", pool.Cursor())
	}

	client.calls = nil
	if _, err := rotator.Rewrite(context.Background(), pool, testInput); err != nil {
		t.Fatalf("Expected second rewrite to succeed, got %v", err)
	}
	if len(client.calls) != 1 || client.calls[0] != "k3" {
		t.Errorf("Expected next article to start at k3, got %v", client.calls)
	}
}

func TestRotatorFullExhaustion(t *testing.T) {
	client := &MockClient{replies: map[string]error{
		"k1": quotaErr("k1"),
		"k2": quotaErr("k2"),
		"k3": quotaErr("k3"),
	}}
	rotator := newTestRotator(client)
	pool := NewCredentialPool([]string{"k1", "k2", "k3"})

	_, err := rotator.Rewrite(context.Background(), pool, testInput)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("Expected ErrPoolExhausted, got %v", err)
	}
	if len(client.calls) != 3 {
		t.Errorf("Expected 3 calls, got %d", len(client.calls))
	}
	if pool.Cursor() != 3 || !pool.Exhausted() {
		t.Errorf("Expected pool marked exhausted at cursor 3, got cursor %d", pool.Cursor())
	}

	client.calls = nil
	_, err = rotator.Rewrite(context.Background(), pool, testInput)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("Expected ErrPoolExhausted for second article, got %v", err)
	}
	if len(client.calls) != 0 {
		t.Errorf("Expected zero calls once exhausted, got %d", len(client.calls))
	}

	// The next run starts from a fresh pool.
	delete(client.replies, "k1")
	if _, err := rotator.Rewrite(context.Background(), NewCredentialPool([]string{"k1", "k2", "k3"}), testInput); err != nil {
		t.Errorf("Expected rewrite to work with a fresh pool, got %v", err)
	}
}

func TestRotatorNonQuotaErrorAborts(t *testing.T) {
	client := &MockClient{replies: map[string]error{
		"k2": errors.New("invalid request"),
	}}
	rotator := newTestRotator(client)
	pool := NewCredentialPool([]string{"k1", "k2", "k3"})
	pool.cursor = 1

	_, err := rotator.Rewrite(context.Background(), pool, testInput)
	if err == nil {
		t.Fatal("Expected error")
	}
	if errors.Is(err, ErrPoolExhausted) || IsQuota(err) {
		t.Errorf("Expected a plain failure, got %v", err)
	}
	if len(client.calls) != 1 || client.calls[0] != "k2" {
		t.Errorf("Expected a single call with k2, got %v", client.calls)
	}
	if pool.Cursor() != 1 {
		t.Errorf("Expected cursor to stay at 1, got %d", pool.Cursor())
	}
}

func TestRotatorWrapsAround(t *testing.T) {
	client := &MockClient{replies: map[string]error{
		"k3": quotaErr("k3"),
	}}
	rotator := newTestRotator(client)
	pool := NewCredentialPool([]string{"k1", "k2", "k3"})
	pool.cursor = 2

	if _, err := rotator.Rewrite(context.Background(), pool, testInput); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if len(client.calls) != 2 || client.calls[0] != "k3" || client.calls[1] != "k1" {
		t.Errorf("Expected calls [k3 k1], got %v", client.calls)
	}
	if pool.Cursor() != 0 {
		t.Errorf("Expected cursor 0, got %d", pool.Cursor())
	}
}

func TestRotatorEmptyPool(t *testing.T) {
	client := &MockClient{}
	rotator := newTestRotator(client)

	_, err := rotator.Rewrite(context.Background(), NewCredentialPool(nil), testInput)
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Expected ErrNoCredentials, got %v", err)
	}
	if len(client.calls) != 0 {
		t.Errorf("Expected no calls, got %d", len(client.calls))
	}
}

func TestRotatorMalformedReply(t *testing.T) {
	client := &MockClient{raw: "Sorry, I cannot help with that."}
	rotator := newTestRotator(client)
	pool := NewCredentialPool([]string{"k1", "k2"})

	_, err := rotator.Rewrite(context.Background(), pool, testInput)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
	if len(client.calls) != 1 {
		t.Errorf("Expected malformed reply not to rotate, got %d calls", len(client.calls))
	}
	if pool.Cursor() != 0 {
		t.Errorf("Expected cursor 0, got %d", pool.Cursor())
	}
}
