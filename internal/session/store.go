// Package session keeps a local history of generation sessions behind a
// pluggable storage port, so hosts can supply a file, in-memory, or Postgres
// backend without the core caring which.
package session

import (
	"context"
	"time"

	"imagestudio/internal/series"
)

// GenerationSession is one recallable history entry: the outcomes produced
// during the session plus the ids of assets the editor chose to keep.
type GenerationSession struct {
	ID          string           `json:"id"`
	Timestamp   time.Time        `json:"timestamp"`
	Results     []series.Outcome `json:"results"`
	SavedImages []string         `json:"savedImages"`
}

// Store is the persistence port. Save always receives the full session list;
// backends replace their stored copy wholesale.
type Store interface {
	Load(ctx context.Context) ([]GenerationSession, error)
	Save(ctx context.Context, sessions []GenerationSession) error
}
