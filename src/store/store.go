package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nightlyone/lockfile"
	logger "github.com/sirupsen/logrus"

	"orderwatch/src/model"
)

// ErrLockTimeout reports that the snapshot lock could not be acquired within
// the configured wait. It is retriable; callers skip the operation and move on.
var ErrLockTimeout = errors.New("store: timed out waiting for snapshot lock")

const lockRetryInterval = 25 * time.Millisecond

// OrderStore is a durable order container keyed by symbol. The canonical
// state is a single JSON snapshot file; an advisory lock file guards it
// across processes and a mutex serializes access within this one. Every
// operation holds both for its entire read-modify-write cycle, so two
// concurrent updates to the same symbol can never lose a write.
type OrderStore struct {
	path        string
	flock       lockfile.Lockfile
	lockTimeout time.Duration

	mu  chan struct{} // buffered size 1, context-aware mutex
	now func() time.Time
}

// NewOrderStore opens (creating if needed) the snapshot for the given
// strategy under cfg.DataDir.
func NewOrderStore(cfg Config) (*OrderStore, error) {
	dir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving data dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("TRADES_LOG_%s.json", cfg.StrategyName))
	flock, err := lockfile.New(path + ".lock")
	if err != nil {
		return nil, fmt.Errorf("creating lock file %q: %w", path+".lock", err)
	}

	s := &OrderStore{
		path:        path,
		flock:       flock,
		lockTimeout: cfg.LockTimeout,
		mu:          make(chan struct{}, 1),
		now:         time.Now,
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.writeSnapshot(nil); err != nil {
			return nil, err
		}
	}

	logger.WithFields(logger.Fields{
		"component": "OrderStore",
		"path":      path,
	}).Info("order store opened")

	return s, nil
}

// Path returns the snapshot file location.
func (s *OrderStore) Path() string { return s.path }

// Put inserts the order, replacing any existing record for the same symbol.
func (s *OrderStore) Put(ctx context.Context, order model.Order) error {
	return s.withSnapshot(ctx, "Put", func(orders []model.Order) ([]model.Order, error) {
		for i := range orders {
			if orders[i].Symbol == order.Symbol {
				orders[i] = order
				return orders, nil
			}
		}
		return append(orders, order), nil
	})
}

// Patch merges the patch into the existing record for symbol and returns the
// updated record. The merge observes the latest snapshot state inside the
// critical section, never a copy read earlier by the caller.
func (s *OrderStore) Patch(ctx context.Context, symbol string, patch model.OrderPatch) (*model.Order, error) {
	var updated model.Order
	err := s.withSnapshot(ctx, "Patch", func(orders []model.Order) ([]model.Order, error) {
		for i := range orders {
			if orders[i].Symbol == symbol {
				patch.Apply(&orders[i])
				updated = orders[i]
				return orders, nil
			}
		}
		return nil, model.ErrOrderNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Get returns the record for symbol, or (nil, nil) when it is unknown.
func (s *OrderStore) Get(ctx context.Context, symbol string) (*model.Order, error) {
	var found *model.Order
	err := s.withSnapshot(ctx, "Get", func(orders []model.Order) ([]model.Order, error) {
		for i := range orders {
			if orders[i].Symbol == symbol {
				o := orders[i]
				found = &o
				break
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// List returns all records, optionally filtered by status. Iteration order is
// snapshot order.
func (s *OrderStore) List(ctx context.Context, status *model.OrderStatus) ([]model.Order, error) {
	var result []model.Order
	err := s.withSnapshot(ctx, "List", func(orders []model.Order) ([]model.Order, error) {
		for _, o := range orders {
			if status == nil || o.Status == *status {
				result = append(result, o)
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the record for symbol. Unknown symbols are a no-op.
func (s *OrderStore) Delete(ctx context.Context, symbol string) error {
	return s.withSnapshot(ctx, "Delete", func(orders []model.Order) ([]model.Order, error) {
		for i := range orders {
			if orders[i].Symbol == symbol {
				return append(orders[:i], orders[i+1:]...), nil
			}
		}
		return nil, nil
	})
}

// DeleteWhere removes every record matching pred and reports how many went.
func (s *OrderStore) DeleteWhere(ctx context.Context, pred func(model.Order) bool) (int, error) {
	removed := 0
	err := s.withSnapshot(ctx, "DeleteWhere", func(orders []model.Order) ([]model.Order, error) {
		kept := orders[:0]
		for _, o := range orders {
			if pred(o) {
				removed++
				continue
			}
			kept = append(kept, o)
		}
		if removed == 0 {
			return nil, nil
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// MarkExited transitions the order to EXITED and stamps the exit time. A
// second call on an already exited order is a no-op that keeps the original
// timestamp.
func (s *OrderStore) MarkExited(ctx context.Context, symbol string) error {
	return s.withSnapshot(ctx, "MarkExited", func(orders []model.Order) ([]model.Order, error) {
		for i := range orders {
			if orders[i].Symbol != symbol {
				continue
			}
			if orders[i].Status == model.StatusExited {
				return nil, nil
			}
			now := s.now()
			orders[i].Status = model.StatusExited
			orders[i].ExitDatetime = &now
			return orders, nil
		}
		return nil, model.ErrOrderNotFound
	})
}

// withSnapshot runs fn under the full mutual-exclusion discipline: in-process
// mutex, then the advisory lock file, then read-snapshot / fn / write-snapshot.
// fn returns the new order set to persist, or nil for read-only access.
func (s *OrderStore) withSnapshot(ctx context.Context, op string, fn func([]model.Order) ([]model.Order, error)) error {
	select {
	case s.mu <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.mu }()

	if err := s.acquireFileLock(ctx); err != nil {
		logger.WithFields(logger.Fields{
			"component": "OrderStore",
			"op":        op,
		}).WithError(err).Error("failed to acquire snapshot lock")
		return err
	}
	defer func() {
		if err := s.flock.Unlock(); err != nil {
			logger.WithField("component", "OrderStore").
				WithError(err).Warn("failed to release snapshot lock")
		}
	}()

	orders := s.readSnapshot()

	updated, err := fn(orders)
	if err != nil {
		return err
	}
	if updated == nil {
		return nil
	}
	return s.writeSnapshot(updated)
}

// acquireFileLock polls TryLock until it succeeds, the context is cancelled,
// or the configured wait expires.
func (s *OrderStore) acquireFileLock(ctx context.Context) error {
	deadline := time.Now().Add(s.lockTimeout)
	for {
		err := s.flock.TryLock()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %v", ErrLockTimeout, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

// readSnapshot loads the full order set. An unreadable or unparseable
// snapshot reads as an empty store; the next successful write repairs it.
func (s *OrderStore) readSnapshot() []model.Order {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithField("component", "OrderStore").
				WithError(err).Warn("failed to read snapshot, treating as empty")
		}
		return nil
	}

	var orders []model.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		logger.WithField("component", "OrderStore").
			WithError(err).Warn("corrupted snapshot, treating as empty")
		return nil
	}
	return orders
}

// writeSnapshot atomically replaces the snapshot via a temp file and rename.
func (s *OrderStore) writeSnapshot(orders []model.Order) error {
	if orders == nil {
		orders = []model.Order{}
	}
	data, err := json.MarshalIndent(orders, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".trades-*.json")
	if err != nil {
		return fmt.Errorf("creating snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing snapshot temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}
