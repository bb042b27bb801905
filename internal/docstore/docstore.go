package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no document exists at a path.
	ErrNotFound = errors.New("document not found")
	// ErrPreconditionFailed is returned when a guarded write finds the guarded value.
	ErrPreconditionFailed = errors.New("document precondition failed")
	// ErrInvalidPath is returned for empty segments or segments containing a slash.
	ErrInvalidPath = errors.New("invalid document path")
)

// Document is a schemaless record addressed by a slash-separated path.
type Document map[string]any

type serverTimestamp struct{}

// ServerTimestamp is a field value that the store replaces with its own clock when
// the document is written.
var ServerTimestamp = serverTimestamp{}

// Store is a persistent key-document store addressed by hierarchical paths
// such as "attempts/{id}" or "quizzes/{id}/attempts/{id}".
type Store interface {
	Get(ctx context.Context, path string) (Document, error)
	Set(ctx context.Context, path string, data Document, opts ...SetOption) error
	NewKey(collection string) string
}

// SetOptions controls how Set combines data with an existing document.
type SetOptions struct {
	Merge bool
	// Guards run against an existing document; the write fails when any returns true.
	Guards []Guard
	// CreateOnly fails the write when a document already exists at the path.
	CreateOnly bool
}

// Conditional reports whether the write depends on the stored document.
func (o SetOptions) Conditional() bool {
	return o.Merge || o.CreateOnly || len(o.Guards) > 0
}

// Guard inspects the stored document and returns true to reject the write.
type Guard func(current Document) bool

type SetOption func(*SetOptions)

// Merge keeps top-level fields of the existing document that data does not mention.
func Merge() SetOption {
	return func(o *SetOptions) { o.Merge = true }
}

// UnlessFieldEquals rejects the write with ErrPreconditionFailed when the stored
// document already has field set to value.
func UnlessFieldEquals(field string, value any) SetOption {
	return Unless(func(current Document) bool {
		v, ok := current[field]
		return ok && equalValues(v, value)
	})
}

// Unless rejects the write with ErrPreconditionFailed when guard returns true for
// the stored document.
func Unless(guard Guard) SetOption {
	return func(o *SetOptions) { o.Guards = append(o.Guards, guard) }
}

// CreateOnly rejects the write with ErrPreconditionFailed when the document exists.
func CreateOnly() SetOption {
	return func(o *SetOptions) { o.CreateOnly = true }
}

// BuildOptions folds opts into a SetOptions value.
func BuildOptions(opts []SetOption) SetOptions {
	var o SetOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Join builds a document path from segments.
func Join(segments ...string) (string, error) {
	if len(segments) == 0 {
		return "", ErrInvalidPath
	}
	for _, s := range segments {
		if s == "" || strings.Contains(s, "/") {
			return "", fmt.Errorf("%w: segment %q", ErrInvalidPath, s)
		}
	}
	return strings.Join(segments, "/"), nil
}

// ValidSegment reports whether s can be used as a single path segment.
func ValidSegment(s string) bool {
	return s != "" && !strings.Contains(s, "/")
}

// Apply computes the document to persist for a write of data over current.
// exists reports whether current was found. Every backend funnels its writes
// through Apply so merge, guard and timestamp semantics stay identical.
func Apply(current Document, exists bool, data Document, opts SetOptions, now time.Time) (Document, error) {
	if exists {
		if opts.CreateOnly {
			return nil, ErrPreconditionFailed
		}
		for _, guard := range opts.Guards {
			if guard(current) {
				return nil, ErrPreconditionFailed
			}
		}
	}

	resolved := resolveTimestamps(data, now)
	if !opts.Merge || !exists {
		return resolved, nil
	}

	merged := make(Document, len(current)+len(resolved))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range resolved {
		merged[k] = v
	}
	return merged, nil
}

func resolveTimestamps(data Document, now time.Time) Document {
	out := make(Document, len(data))
	for k, v := range data {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = now
			continue
		}
		out[k] = v
	}
	return out
}

func equalValues(a, b any) bool {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	if ai, ok := Int(a); ok {
		bi, ok := Int(b)
		return ok && ai == bi
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ab == bb
	}
	return false
}
