package allocator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name   string
		ids    []string
		prefix string
		width  int
		want   string
	}{
		{"max plus one", []string{"CN-0001", "CN-0007", "CN-0003"}, "CN-", 4, "CN-0008"},
		{"empty", nil, "QT-", 3, "QT-001"},
		{"garbage counts as zero", []string{"abc", "", "QT-x1"}, "QT-", 3, "QT-001"},
		{"other prefix still parsed", []string{"SN-041"}, "QT-", 3, "QT-042"},
		{"overflows width", []string{"QT-999"}, "QT-", 3, "QT-1000"},
		{"whitespace", []string{" SN-009 "}, "SN-", 3, "SN-010"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allocate(tt.ids, tt.prefix, tt.width))
		})
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSnapshot_FallsBackToLastKnown(t *testing.T) {
	calls := 0
	results := []struct {
		ids []string
		err error
	}{
		{[]string{"QT-003", "QT-001"}, nil},
		{nil, errors.New("timeout")},
		{[]string{}, nil},
		{[]string{"QT-010"}, nil},
	}

	s := NewSnapshot(discardLogger(), "quotations", func(ctx context.Context) ([]string, error) {
		r := results[calls]
		calls++
		return r.ids, r.err
	})
	id := func(s string) string { return s }

	assert.Equal(t, "QT-004", Next(context.Background(), s, id, "QT-", 3))
	assert.Equal(t, "QT-004", Next(context.Background(), s, id, "QT-", 3))
	assert.Equal(t, "QT-004", Next(context.Background(), s, id, "QT-", 3))
	assert.Equal(t, "QT-011", Next(context.Background(), s, id, "QT-", 3))
	assert.Equal(t, 4, calls)
}

func TestSnapshot_FirstFetchFailsWithoutSnapshot(t *testing.T) {
	s := NewSnapshot(discardLogger(), "customers", func(ctx context.Context) ([]string, error) {
		return nil, errors.New("down")
	})

	assert.Equal(t, "CN-0001", Next(context.Background(), s, func(s string) string { return s }, "CN-", 4))
}

func TestSnapshot_Seed(t *testing.T) {
	s := NewSnapshot(discardLogger(), "users", func(ctx context.Context) ([]string, error) {
		return nil, errors.New("down")
	})
	s.Seed([]string{"SN-005"})

	assert.Equal(t, "SN-006", Next(context.Background(), s, func(s string) string { return s }, "SN-", 3))
}
