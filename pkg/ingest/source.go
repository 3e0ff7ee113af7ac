package ingest

import "context"

type sliceSource[T any] struct {
	records []T
	next    int
}

// NewSliceSource returns a source over an in-memory slice.
func NewSliceSource[T any](records []T) Source[T] {
	return &sliceSource[T]{records: records}
}

func (s *sliceSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if s.next >= len(s.records) {
		return zero, false, nil
	}
	record := s.records[s.next]
	s.next++
	return record, true, nil
}

type channelSource[T any] struct {
	ch <-chan T
}

// NewChannelSource returns a source that drains a channel. The sequence
// ends when the channel is closed.
func NewChannelSource[T any](ch <-chan T) Source[T] {
	return channelSource[T]{ch: ch}
}

func (s channelSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case record, ok := <-s.ch:
		if !ok {
			return zero, false, nil
		}
		return record, true, nil
	}
}

type funcSource[T any] struct {
	next func(ctx context.Context) (T, bool, error)
}

// NewFuncSource adapts a pull function to a Source.
func NewFuncSource[T any](next func(ctx context.Context) (T, bool, error)) Source[T] {
	return funcSource[T]{next: next}
}

func (s funcSource[T]) Next(ctx context.Context) (T, bool, error) {
	return s.next(ctx)
}
