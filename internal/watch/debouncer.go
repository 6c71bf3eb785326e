package watch

import (
	"context"
	"time"

	ferrors "git.home.luguber.info/inful/walletbuilder/internal/foundation/errors"
)

// Debounce causes reported with each emitted rebuild request.
const (
	CauseInitial  = "initial"
	CauseQuiet    = "quiet"
	CauseMaxDelay = "max_delay"
)

// Debouncer coalesces bursts of change notifications into rebuild requests.
//
// A request is emitted once no change arrived for the quiet window, or once
// the max delay since the first change of the burst has passed. At most one
// request is buffered: while the consumer is busy, later bursts collapse into
// that single queued request.
type Debouncer struct {
	quiet    time.Duration
	maxDelay time.Duration
	changes  chan struct{}
	out      chan string
}

// NewDebouncer validates the windows and returns an idle debouncer.
func NewDebouncer(quiet, maxDelay time.Duration) (*Debouncer, error) {
	if quiet <= 0 {
		return nil, ferrors.ValidationError("quiet window must be > 0").Build()
	}
	if maxDelay < quiet {
		return nil, ferrors.ValidationError("max delay must be >= quiet window").Build()
	}
	return &Debouncer{
		quiet:    quiet,
		maxDelay: maxDelay,
		changes:  make(chan struct{}, 64),
		out:      make(chan string, 1),
	}, nil
}

// Notify records a change. It never blocks.
func (d *Debouncer) Notify() {
	select {
	case d.changes <- struct{}{}:
	default:
	}
}

// Requests delivers the debounce cause of each rebuild request.
func (d *Debouncer) Requests() <-chan string { return d.out }

// Request queues a rebuild immediately, bypassing the timers. It reports
// false when a request is already queued.
func (d *Debouncer) Request(cause string) bool {
	select {
	case d.out <- cause:
		return true
	default:
		return false
	}
}

// Run drives the timers until ctx is done.
func (d *Debouncer) Run(ctx context.Context) {
	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	defer quietTimer.Stop()
	defer maxTimer.Stop()

	var (
		quietC <-chan time.Time
		maxC   <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.changes:
			resetTimer(quietTimer, d.quiet)
			quietC = quietTimer.C
			if maxC == nil {
				resetTimer(maxTimer, d.maxDelay)
				maxC = maxTimer.C
			}
		case <-quietC:
			maxTimer.Stop()
			quietC, maxC = nil, nil
			d.Request(CauseQuiet)
		case <-maxC:
			quietTimer.Stop()
			quietC, maxC = nil, nil
			d.Request(CauseMaxDelay)
		}
	}
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	return t
}

func resetTimer(t *time.Timer, after time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(after)
}
