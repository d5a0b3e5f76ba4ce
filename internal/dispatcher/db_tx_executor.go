package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-sod/rrt/internal/logging"
	"github.com/go-sod/rrt/internal/plan/model"
	"github.com/google/uuid"
)

type dbTxExecutorOptions struct {
	flushSize int
	flushTime time.Duration
}

func newDBTxExecutor(opts dbTxExecutorOptions) *dbTxExecutor {
	return &dbTxExecutor{opts: opts, inflight: map[uuid.UUID]model.Plan{}}
}

// dbTxExecutor accumulates plans and saves them to the store in bulk. Plans
// being written stay visible through pending until the write returns.
type dbTxExecutor struct {
	mtx sync.RWMutex

	opts dbTxExecutorOptions
	// plans waiting for the next flush
	buf []model.Plan
	// plans handed to a save that has not returned yet
	inflight map[uuid.UUID]model.Plan
	// size triggered saves still running
	saves sync.WaitGroup
}

// write buffers plans and starts a flush once the buffer is full.
func (tx *dbTxExecutor) write(ctx context.Context, saveFn savePlansFn, plans ...model.Plan) {
	tx.mtx.Lock()
	tx.buf = append(tx.buf, plans...)
	bufLen := len(tx.buf)
	tx.mtx.Unlock()

	if bufLen >= tx.opts.flushSize {
		tx.saves.Add(1)
		go func() {
			defer tx.saves.Done()
			tx.bulkSave(ctx, saveFn)
		}()
	}
}

// bulkSave writes out the buffer. Plans that fail to save go back into it.
func (tx *dbTxExecutor) bulkSave(ctx context.Context, saveFn savePlansFn) {
	logger := logging.FromContext(ctx)
	if err := tx.flush(saveFn); err != nil {
		logger.Errorf("txExecutor: %v", err)
	}
}

func (tx *dbTxExecutor) flush(saveFn savePlansFn) error {
	tx.mtx.Lock()
	if len(tx.buf) == 0 {
		tx.mtx.Unlock()
		return nil
	}
	batch := tx.buf
	tx.buf = nil
	for _, p := range batch {
		tx.inflight[p.ID] = p
	}
	tx.mtx.Unlock()

	err := saveFn(context.Background(), batch)

	tx.mtx.Lock()
	for _, p := range batch {
		delete(tx.inflight, p.ID)
	}
	if err != nil {
		tx.buf = append(batch, tx.buf...)
	}
	tx.mtx.Unlock()

	if err != nil {
		return fmt.Errorf("save %d plans failed: %w", len(batch), err)
	}
	return nil
}

// drain waits for size triggered saves and flushes what is left, including
// batches those saves put back. Callers must stop calling write first.
func (tx *dbTxExecutor) drain(saveFn savePlansFn) error {
	tx.saves.Wait()
	return tx.flush(saveFn)
}

// pending returns buffered and in-flight plans accepted by keep.
func (tx *dbTxExecutor) pending(keep func(model.Plan) bool) []model.Plan {
	tx.mtx.RLock()
	defer tx.mtx.RUnlock()
	var list []model.Plan
	for _, p := range tx.buf {
		if keep(p) {
			list = append(list, p)
		}
	}
	for _, p := range tx.inflight {
		if keep(p) {
			list = append(list, p)
		}
	}
	return list
}

// flusher saves the buffer every flushTime until ctx is done.
func (tx *dbTxExecutor) flusher(ctx context.Context, saveFn savePlansFn) {
	ticker := time.NewTicker(tx.opts.flushTime)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tx.bulkSave(ctx, saveFn)
		case <-ctx.Done():
			return
		}
	}
}
