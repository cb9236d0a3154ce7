package pickpack

import (
	"context"
	"fmt"
	"time"
)

const sequenceWidth = 6

// SequenceSource hands out monotonically increasing sequence values per scope.
// The Redis client satisfies this.
type SequenceSource interface {
	NextSequence(ctx context.Context, scope string, ttl time.Duration) (int64, error)
}

type dayCounter interface {
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// NumberGenerator produces pack numbers of the form PREFIX-YYYYMMDD-NNNNNN.
// Redis supplies the per-day sequence; when it is unavailable the generator
// falls back to counting the day's work orders. The fallback can collide
// under concurrency, which the unique constraint on pack_number catches and
// the caller retries.
type NumberGenerator struct {
	seq     SequenceSource
	counter dayCounter
	prefix  string
	ttl     time.Duration
	now     func() time.Time
}

// NewNumberGenerator wires a pack number generator. seq may be nil.
func NewNumberGenerator(seq SequenceSource, counter dayCounter, prefix string, ttl time.Duration) (*NumberGenerator, error) {
	if counter == nil {
		return nil, fmt.Errorf("day counter required")
	}
	if prefix == "" {
		return nil, fmt.Errorf("pack number prefix required")
	}
	return &NumberGenerator{
		seq:     seq,
		counter: counter,
		prefix:  prefix,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// Next returns the next pack number for today.
func (g *NumberGenerator) Next(ctx context.Context) (string, error) {
	day := g.now().UTC()
	scope := day.Format("20060102")

	if g.seq != nil {
		if n, err := g.seq.NextSequence(ctx, scope, g.ttl); err == nil {
			return g.format(scope, n), nil
		}
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	count, err := g.counter.CountCreatedBetween(ctx, from, from.Add(24*time.Hour))
	if err != nil {
		return "", fmt.Errorf("counting pack numbers for %s: %w", scope, err)
	}
	return g.format(scope, count+1), nil
}

func (g *NumberGenerator) format(scope string, n int64) string {
	return fmt.Sprintf("%s-%s-%0*d", g.prefix, scope, sequenceWidth, n)
}
