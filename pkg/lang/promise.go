package lang

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Promise is a value that is either already known or still being computed.
type Promise[T any] interface {
	Await(ctx context.Context) (T, error)
}

type immediate[T any] struct {
	value T
}

func (i immediate[T]) Await(context.Context) (T, error) {
	return i.value, nil
}

// Value wraps an already known value.
func Value[T any](v T) Promise[T] {
	return immediate[T]{value: v}
}

type future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func (f *future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Go starts fn in its own goroutine and returns a Promise for its result.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) Promise[T] {
	f := &future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn(ctx)
	}()
	return f
}

// Entry is one keyed Promise passed to Resolve.
type Entry[T any] struct {
	Key   string
	Value Promise[T]
}

type Resolved[T any] struct {
	Key   string
	Value T
}

// Resolve awaits every entry concurrently and returns the values in the order
// the entries were given. The first failure cancels the remaining waits and is
// returned.
//
//	files, err := lang.Resolve(ctx, []lang.Entry[string]{
//		{Key: "lang", Value: lang.Value("cpp")},
//		{Key: "headers", Value: lang.Go(ctx, readFile("foo.h"))},
//	})
func Resolve[T any](ctx context.Context, entries []Entry[T]) ([]Resolved[T], error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resolved := make([]Resolved[T], len(entries))
	errc := make(chan error, len(entries))
	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if entry.Value == nil {
				resolved[i] = Resolved[T]{Key: entry.Key}
				return
			}
			v, err := entry.Value.Await(ctx)
			if err != nil {
				errc <- errors.Wrapf(err, "resolving %q", entry.Key)
				cancel()
				return
			}
			resolved[i] = Resolved[T]{Key: entry.Key, Value: v}
		}()
	}
	wg.Wait()
	close(errc)

	if err := <-errc; err != nil {
		return nil, err
	}
	return resolved, nil
}

// ResolveMap is Resolve for callers that do not care about key order.
func ResolveMap[T any](ctx context.Context, promises map[string]Promise[T]) (map[string]T, error) {
	entries := make([]Entry[T], 0, len(promises))
	for k, p := range promises {
		entries = append(entries, Entry[T]{Key: k, Value: p})
	}
	resolved, err := Resolve(ctx, entries)
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(resolved))
	for _, r := range resolved {
		out[r.Key] = r.Value
	}
	return out, nil
}
