package services

import (
	"context"
	"io"
	"os"

	"audiodex/types"
)

// Gate asks for permission to read the media library. The decision arrives
// on the returned channel exactly once.
type Gate interface {
	Request(ctx context.Context) <-chan types.Decision
}

// FSGate resolves a permission request from filesystem access: permission is
// considered granted when the library root can be opened and listed.
type FSGate struct {
	Root string
}

// Request checks access to the library root off the caller's goroutine and
// delivers the decision on the returned channel. A cancelled context counts
// as a denial.
func (g FSGate) Request(ctx context.Context) <-chan types.Decision {
	ch := make(chan types.Decision, 1)
	go func() {
		defer close(ch)
		if ctx.Err() != nil {
			ch <- types.Denied
			return
		}
		ch <- g.check()
	}()
	return ch
}

func (g FSGate) check() types.Decision {
	dir, err := os.Open(g.Root)
	if err != nil {
		return types.Denied
	}
	defer dir.Close()

	if _, err := dir.Readdirnames(1); err != nil && err != io.EOF {
		return types.Denied
	}
	return types.Granted
}
