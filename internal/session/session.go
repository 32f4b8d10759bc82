// Package session resolves the current user. Everything stored is scoped by
// the user id it returns.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jask/fintree/internal/prefs"
)

// Session identifies the active user.
type Session struct {
	UserID string
}

// Provider hands out the current session.
type Provider interface {
	Current(ctx context.Context) (Session, error)
}

// LocalProvider keeps a single local user whose id lives in the prefs file.
// The id is created on first use and cached afterwards.
type LocalProvider struct {
	store *prefs.Store

	mu      sync.Mutex
	current *Session
}

func NewLocalProvider(store *prefs.Store) *LocalProvider {
	return &LocalProvider{store: store}
}

func (p *LocalProvider) Current(ctx context.Context) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		return *p.current, nil
	}
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	var id string
	err := p.store.Update(func(pr *prefs.Prefs) {
		if _, perr := uuid.Parse(pr.UserID); perr != nil {
			pr.UserID = uuid.NewString()
		}
		id = pr.UserID
	})
	if err != nil {
		return Session{}, fmt.Errorf("persist user id: %w", err)
	}
	p.current = &Session{UserID: id}
	return *p.current, nil
}

// Static always returns the same user. Used by tests and one-shot commands.
type Static string

func (s Static) Current(context.Context) (Session, error) {
	return Session{UserID: string(s)}, nil
}
