package usecase

import (
	"context"
	"sync"

	"pairchat/internal/domain/entity"
	"pairchat/pkg/logger"
)

// DataUseCase caches the cross-conversation collections: the global task
// list and the aggregate debt balance. Both are owned by the server and only
// snapshotted here.
type DataUseCase struct {
	session Session
	api     APIClient

	mu      sync.RWMutex
	tasks   []entity.Task
	balance *entity.DebtBalance
	loading bool
}

func NewDataUseCase(session Session, api APIClient) *DataUseCase {
	return &DataUseCase{session: session, api: api}
}

func (d *DataUseCase) Tasks() []entity.Task {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]entity.Task, len(d.tasks))
	copy(out, d.tasks)
	return out
}

func (d *DataUseCase) Balance() *entity.DebtBalance {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.balance == nil {
		return nil
	}
	b := *d.balance
	return &b
}

func (d *DataUseCase) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading
}

// storeTasks lets the chat engine share one task fetch between the
// per-conversation slices and this cache.
func (d *DataUseCase) storeTasks(tasks []entity.Task) {
	d.mu.Lock()
	d.tasks = tasks
	d.mu.Unlock()
}

func (d *DataUseCase) FetchTasks(ctx context.Context) {
	token := d.session.Token()
	if token == "" {
		return
	}

	d.mu.Lock()
	d.loading = true
	d.mu.Unlock()

	tasks, err := d.api.ListTasks(ctx, token)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		logger.Error("fetch tasks failed: %v", err)
		return
	}
	d.tasks = tasks
}

func (d *DataUseCase) FetchBalance(ctx context.Context) {
	token := d.session.Token()
	if token == "" {
		return
	}

	balance, err := d.api.FetchBalance(ctx, token)
	if err != nil {
		logger.Error("fetch balance failed: %v", err)
		return
	}

	d.mu.Lock()
	d.balance = balance
	d.mu.Unlock()
}

func (d *DataUseCase) FetchAll(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		d.FetchTasks(ctx)
	}()
	go func() {
		defer wg.Done()
		d.FetchBalance(ctx)
	}()
	wg.Wait()
}
