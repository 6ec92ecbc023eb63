package allocator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// Allocate returns the id after the largest numeric suffix in ids, zero padded to width.
// Ids that cannot be parsed count as 0.
func Allocate(ids []string, prefix string, width int) string {
	var highest int
	for _, id := range ids {
		if n := suffix(id, prefix); n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, width, highest+1)
}

func suffix(id, prefix string) int {
	id = strings.TrimSpace(id)

	rest, ok := strings.CutPrefix(id, prefix)
	if !ok {
		_, rest, ok = strings.Cut(id, "-")
		if !ok {
			return 0
		}
	}

	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Snapshot keeps the last successfully fetched record set and refreshes it before every
// allocation. Concurrent writers can still allocate the same id; nothing here locks the
// remote sheet.
type Snapshot[T any] struct {
	log   *slog.Logger
	name  string
	fetch func(ctx context.Context) ([]T, error)

	mu   sync.Mutex
	last []T
}

func NewSnapshot[T any](log *slog.Logger, name string, fetch func(ctx context.Context) ([]T, error)) *Snapshot[T] {
	return &Snapshot[T]{log: log, name: name, fetch: fetch}
}

// Fresh re-fetches the records. On error or an empty result it falls back to the last
// known snapshot.
func (s *Snapshot[T]) Fresh(ctx context.Context) []T {
	const op = "service.allocator.Fresh"

	records, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.log.With(
			slog.String("op", op),
			slog.String("sequence", s.name),
			slog.String("error", err.Error()),
		).Warn("refresh failed, allocating from last snapshot")
		return s.last
	}
	if len(records) == 0 && len(s.last) > 0 {
		s.log.With(slog.String("op", op), slog.String("sequence", s.name)).
			Warn("refresh returned no records, allocating from last snapshot")
		return s.last
	}

	s.last = records
	return records
}

// Seed sets the snapshot, typically from a list call the caller already made.
func (s *Snapshot[T]) Seed(records []T) {
	s.mu.Lock()
	s.last = records
	s.mu.Unlock()
}

// Next refreshes and allocates one id from the field picked by key.
func Next[T any](ctx context.Context, s *Snapshot[T], key func(T) string, prefix string, width int) string {
	return Allocate(Keys(s.Fresh(ctx), key), prefix, width)
}

func Keys[T any](records []T, key func(T) string) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, key(r))
	}
	return ids
}
