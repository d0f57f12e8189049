// Package flash carries one-time notices across a redirect. A notice is
// stored server-side under a random token; the token travels in the
// redirect URL and the notice can be taken exactly once.
package flash

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Message struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

var ErrEmptyMessage = errors.New("flash message text is empty")

// Store keeps flash messages until they are read or expire.
type Store interface {
	// Put saves msg and returns the token that retrieves it.
	Put(ctx context.Context, msg Message) (string, error)

	// Take returns and forgets the message behind token. ok is false when the
	// token is unknown, already used or expired.
	Take(ctx context.Context, token string) (msg Message, ok bool, err error)
}

func newToken() string {
	return uuid.NewString()
}

// validToken rejects anything that could not have come from newToken, so
// arbitrary query strings never reach the backing store.
func validToken(token string) bool {
	_, err := uuid.Parse(token)
	return err == nil
}
