package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const (
	prefixBest    = "best:"
	prefixHistory = "history:"
)

// BadgerStore keeps records in an embedded badger database. An empty directory opens
// an in-memory database.
type BadgerStore struct {
	dir    string
	logger *slog.Logger

	mu sync.RWMutex
	db *badger.DB
}

func NewBadgerStore(dir string) *BadgerStore {
	return &BadgerStore{dir: dir, logger: slog.Default()}
}

func (s *BadgerStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	var opts badger.Options
	if s.dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(s.dir)
	}
	opts = opts.WithLogger(badgerLogger{s.logger.With("store", "badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("failed to open badger database: %w", err)
	}
	s.db = db
	return nil
}

// bestKey sorts records of a run by generation under plain byte order.
func bestKey(runID string, generation int) []byte {
	return []byte(fmt.Sprintf("%s%s:%010d", prefixBest, runID, generation))
}

func bestPrefix(runID string) []byte {
	return []byte(prefixBest + runID + ":")
}

func historyKey(runID string) []byte {
	return []byte(prefixHistory + runID)
}

func (s *BadgerStore) SaveBest(_ context.Context, record BestRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeBest(record)
	if err != nil {
		return err
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set(bestKey(record.RunID, record.Generation), payload)
	})
}

func (s *BadgerStore) GetBest(_ context.Context, runID string, generation int) (BestRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return BestRecord{}, false, err
	}

	var payload []byte
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(bestKey(runID, generation))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return BestRecord{}, false, nil
	}
	if err != nil {
		return BestRecord{}, false, err
	}

	record, err := DecodeBest(payload)
	if err != nil {
		return BestRecord{}, false, fmt.Errorf("decode best genome %s/%d: %w", runID, generation, err)
	}
	return record, true, nil
}

func (s *BadgerStore) ListBest(_ context.Context, runID string) ([]BestRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	records := []BestRecord{}
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = bestPrefix(runID)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				record, err := DecodeBest(val)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			}); err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *BadgerStore) SaveHistory(_ context.Context, runID string, history []float64) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeHistory(history)
	if err != nil {
		return err
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set(historyKey(runID), payload)
	})
}

func (s *BadgerStore) GetHistory(_ context.Context, runID string) ([]float64, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(historyKey(runID))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	history, err := DecodeHistory(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode error history %s: %w", runID, err)
	}
	return history, true, nil
}

func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *BadgerStore) getDB() (*badger.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

// badgerLogger routes badger's printf-style logging into slog. Info and debug output
// is demoted to debug since badger reports every compaction.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
