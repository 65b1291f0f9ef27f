package app

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sessionshell/internal/common"
	"github.com/ternarybob/sessionshell/internal/services/login"
)

// PageReadyHandler handles one document load of the main window
type PageReadyHandler interface {
	OnPageReady(ctx context.Context) *login.Result
}

// pageWorker runs page-ready passes one at a time. A new load cancels the pass still
// running for the previous document; loads queued while a pass runs are coalesced.
// A throttled pass is repeated once its delay has passed, unless a newer load
// arrived first.
type pageWorker struct {
	handler PageReadyHandler
	logger  arbor.ILogger
	timeout time.Duration

	loads chan struct{}
	done  chan struct{}

	mu         sync.Mutex
	cancelPass context.CancelFunc
}

func newPageWorker(handler PageReadyHandler, logger arbor.ILogger, timeout time.Duration) *pageWorker {
	return &pageWorker{
		handler: handler,
		logger:  logger,
		timeout: timeout,
		loads:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Notify reports a new document load
func (w *pageWorker) Notify() {
	w.mu.Lock()
	if w.cancelPass != nil {
		w.cancelPass()
	}
	w.mu.Unlock()

	select {
	case w.loads <- struct{}{}:
	default:
	}
}

// Run serves loads until ctx is done. The in-flight pass is cancelled and has
// returned by the time Run returns.
func (w *pageWorker) Run(ctx context.Context) {
	defer close(w.done)

	var retry *time.Timer
	var retryC <-chan time.Time
	stopRetry := func() {
		if retry != nil {
			retry.Stop()
			retry, retryC = nil, nil
		}
	}
	defer stopRetry()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.loads:
		case <-retryC:
			w.logger.Debug().Msg("Retrying throttled page")
		}
		stopRetry()

		result := w.pass(ctx)
		if result != nil && result.Action == login.ActionThrottled && result.RetryAfter > 0 {
			retry = time.NewTimer(result.RetryAfter)
			retryC = retry.C
		}
	}
}

// Wait blocks until Run has returned
func (w *pageWorker) Wait() {
	<-w.done
}

func (w *pageWorker) pass(ctx context.Context) (result *login.Result) {
	passCtx, cancel := context.WithTimeout(ctx, w.timeout)
	w.mu.Lock()
	w.cancelPass = cancel
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.cancelPass = nil
		w.mu.Unlock()
		cancel()
	}()
	defer common.RecoverGoroutine(w.logger, "onPageReady")

	return w.handler.OnPageReady(passCtx)
}
