package session

import (
	"context"
	"errors"
	"time"
)

// Record is what survives a reconnect: the id and where the user was.
type Record struct {
	ID        string    `json:"id"`
	LastPath  string    `json:"last_path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists session records. Load returns (nil, nil) for unknown ids.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
}

var ErrEmptyID = errors.New("session id is empty")

const DefaultTTL = 24 * time.Hour

var ErrClosed = errors.New("session closed")
