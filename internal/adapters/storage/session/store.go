package session

import (
	"context"
	"time"
)

// Store persists admin session tokens so logins survive a server restart.
type Store interface {
	Insert(ctx context.Context, token string, createdAt time.Time) error
	Delete(ctx context.Context, token string) error
	List(ctx context.Context) (map[string]time.Time, error)
}
