package rewrite

import (
	"strings"
)

// CredentialPool is the ordered list of interchangeable API keys used in one
// run, with a cursor at the last key known to work. A cursor equal to the
// pool size marks every key as exhausted for the rest of the run.
type CredentialPool struct {
	keys   []string
	cursor int
}

func NewCredentialPool(keys []string) *CredentialPool {
	pool := &CredentialPool{}
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			pool.keys = append(pool.keys, key)
		}
	}
	return pool
}

// ParseKeys splits a stored key list on newlines and commas.
func ParseKeys(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})

	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			keys = append(keys, f)
		}
	}
	return keys
}

func (p *CredentialPool) Len() int {
	return len(p.keys)
}

func (p *CredentialPool) Cursor() int {
	return p.cursor
}

func (p *CredentialPool) Exhausted() bool {
	return len(p.keys) > 0 && p.cursor >= len(p.keys)
}
