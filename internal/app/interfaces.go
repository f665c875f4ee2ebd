package app

import (
	"context"
	"time"
)

// Janitor expires download tickets and stray scratch files in the background.
type Janitor interface {
	Run(ctx context.Context, interval time.Duration) error
}
