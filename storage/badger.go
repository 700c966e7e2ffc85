package storage

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// Badger is a Store backed by an embedded BadgerDB instance, grounded on
// the teacher's nodestorage/v2/cache.BadgerCache.
type Badger struct {
	db *badger.DB
}

// NewBadger opens (creating if necessary) a BadgerDB database at dbPath.
func NewBadger(dbPath string) (*Badger, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger database")
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Save(ctx context.Context, id string, data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(id), data)
	})
	if err != nil {
		return errors.Wrapf(err, "save document %s", id)
	}
	return nil
}

func (b *Badger) Load(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, ErrNotFound{ID: id}
		}
		return nil, errors.Wrapf(err, "load document %s", id)
	}
	return data, nil
}

func (b *Badger) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list documents")
	}
	return ids, nil
}

func (b *Badger) Delete(ctx context.Context, id string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(id))
	})
	if err != nil {
		return errors.Wrapf(err, "delete document %s", id)
	}
	return nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}
