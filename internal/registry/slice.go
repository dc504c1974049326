package registry

import (
	"context"
	"io"
)

// SliceSource yields a fixed list of tags in order.
type SliceSource struct {
	tags []string
	pos  int
}

// NewSliceSource returns a source over tags. The slice is not copied.
func NewSliceSource(tags ...string) *SliceSource {
	return &SliceSource{tags: tags}
}

// Next implements TagSource.
func (s *SliceSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.pos >= len(s.tags) {
		return "", io.EOF
	}
	tag := s.tags[s.pos]
	s.pos++
	return tag, nil
}

// Consumed returns how many tags have been pulled.
func (s *SliceSource) Consumed() int {
	return s.pos
}

// ErrorSource returns err from every call to Next.
type ErrorSource struct {
	Err error
}

// Next implements TagSource.
func (s ErrorSource) Next(context.Context) (string, error) {
	return "", s.Err
}
