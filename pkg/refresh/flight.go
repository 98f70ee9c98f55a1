package refresh

import (
	"context"

	"github.com/agentstation/inkwell/pkg/catalogs"
)

// Flight is one running or finished refresh. Every requester that joined the
// refresh shares the same Flight.
type Flight struct {
	done chan struct{}

	// written once under the coordinator lock before done is closed
	status   Status
	result   catalogs.MergeResult
	err      error
	canceled bool
}

func finishedFlight(s Status, err error) *Flight {
	f := &Flight{done: make(chan struct{}), status: s, err: err}
	close(f.done)
	return f
}

// Done is closed when the refresh finished.
func (f *Flight) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the refresh finished or ctx is done. It returns the
// refresh error, or ctx.Err() when the wait itself was abandoned.
func (f *Flight) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the terminal status. Valid after Done is closed.
func (f *Flight) Status() Status {
	<-f.done
	return f.status
}

// Result returns the merge result. Empty unless the refresh succeeded.
func (f *Flight) Result() catalogs.MergeResult {
	<-f.done
	return f.result
}

// Err returns the refresh error.
func (f *Flight) Err() error {
	<-f.done
	return f.err
}
