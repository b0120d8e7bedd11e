package badgerstore

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/rzbill/kvbind/internal/engine"
)

// maxMergeRetries bounds the optimistic read-modify-write loop in Merge.
const maxMergeRetries = 16

// DB wraps a Badger instance.
type DB struct {
	inner *badger.DB
	op    engine.MergeOperator
}

var _ engine.DB = (*DB)(nil)

func (db *DB) Put(key, value []byte) error {
	return db.inner.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes key. An empty key can never be present, so deleting it is a
// no-op.
func (db *DB) Delete(key []byte) error {
	if len(key) == 0 {
		return nil
	}
	return db.inner.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Get copies the value out of Badger, so the returned Slice owns Go memory.
// Badger cannot store an empty key, so one is always absent.
func (db *DB) Get(key []byte) (engine.Slice, error) {
	if len(key) == 0 {
		return nil, nil
	}
	var value []byte
	err := db.inner.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		if value == nil {
			value = []byte{}
		}
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return engine.NewBytesSlice(value), nil
}

// Merge folds operand into the stored value. With a stored value the
// operator's full merge runs; without one, its partial merge over the single
// operand becomes the value.
func (db *DB) Merge(key, operand []byte) error {
	var err error
	for range maxMergeRetries {
		err = db.inner.Update(func(txn *badger.Txn) error {
			return db.mergeTxn(txn, key, operand)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (db *DB) mergeTxn(txn *badger.Txn, key, operand []byte) error {
	var existing []byte
	item, err := txn.Get(key)
	switch {
	case err == nil:
		if existing, err = item.ValueCopy(nil); err != nil {
			return err
		}
		if existing == nil {
			existing = []byte{}
		}
	case errors.Is(err, badger.ErrKeyNotFound):
	default:
		return err
	}

	operands := engine.NewMergeOperands([][]byte{operand})
	var (
		merged []byte
		ok     bool
	)
	if existing != nil {
		merged, ok = db.op.FullMerge(key, existing, operands)
	} else {
		merged, ok = db.op.PartialMerge(key, operands)
	}
	if !ok {
		return fmt.Errorf("%w: operator %q", engine.ErrUnmergeable, db.op.Name())
	}
	return txn.Set(key, append([]byte(nil), merged...))
}

func (db *DB) Close() error {
	return db.inner.Close()
}
