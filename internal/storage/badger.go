// ABOUTME: Badger key-value backend for lifetracker data.
// ABOUTME: Stores JSON records under typed key prefixes, ordered by a badger Sequence.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/harperreed/lifetracker/internal/models"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

var (
	entryPrefix = []byte("entry:")
	photoPrefix = []byte("photo:")
	imagePrefix = []byte("image:")

	entrySeqKey = []byte("seq:entry")
	photoSeqKey = []byte("seq:photo")
)

// seqBandwidth is how many sequence numbers are leased per disk write.
const seqBandwidth = 100

type entryRecord struct {
	Seq   uint64           `json:"seq"`
	Entry models.StatEntry `json:"entry"`
}

type photoRecord struct {
	Seq   uint64               `json:"seq"`
	Photo models.ProgressPhoto `json:"photo"`
}

// BadgerStore is the Badger-backed Repository.
type BadgerStore struct {
	db       *badger.DB
	entrySeq *badger.Sequence
	photoSeq *badger.Sequence
}

// Compile-time check that BadgerStore implements Repository.
var _ Repository = (*BadgerStore)(nil)

// OpenBadger opens a Badger store in dir. An empty dir keeps everything in
// memory. Badger's own logging goes to log when it is not nil.
func OpenBadger(dir string, log logrus.FieldLogger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	var bl badger.Logger
	if log != nil {
		bl = log.WithField("component", "badger")
	}
	opts = opts.WithLogger(bl)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	entrySeq, err := db.GetSequence(entrySeqKey, seqBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("entry sequence: %w", err)
	}
	photoSeq, err := db.GetSequence(photoSeqKey, seqBandwidth)
	if err != nil {
		_ = entrySeq.Release()
		_ = db.Close()
		return nil, fmt.Errorf("photo sequence: %w", err)
	}

	return &BadgerStore{db: db, entrySeq: entrySeq, photoSeq: photoSeq}, nil
}

// Close releases the sequences and closes the database.
func (b *BadgerStore) Close() error {
	return multierr.Combine(
		b.entrySeq.Release(),
		b.photoSeq.Release(),
		b.db.Close(),
	)
}

func key(prefix []byte, id string) []byte {
	return append(append([]byte{}, prefix...), id...)
}

// InsertEntries appends entries in order in one write batch.
func (b *BadgerStore) InsertEntries(entries []models.StatEntry) error {
	if len(entries) == 0 {
		return nil
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for _, e := range entries {
		seq, err := b.entrySeq.Next()
		if err != nil {
			return fmt.Errorf("next entry seq: %w", err)
		}
		val, err := json.Marshal(entryRecord{Seq: seq, Entry: e})
		if err != nil {
			return fmt.Errorf("encode entry: %w", err)
		}
		if err := wb.Set(key(entryPrefix, e.ID.String()), val); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush entries: %w", err)
	}
	return nil
}

// UpdateEntry rewrites an existing record, keeping its sequence number.
func (b *BadgerStore) UpdateEntry(e models.StatEntry) error {
	k := key(entryPrefix, e.ID.String())
	return b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("update entry %s: %w", e.ID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("update entry: %w", err)
		}

		var rec entryRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			return fmt.Errorf("decode entry: %w", err)
		}

		rec.Entry = e
		val, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode entry: %w", err)
		}
		return txn.Set(k, val)
	})
}

// DeleteEntries removes the given ids. Missing ids are ignored.
func (b *BadgerStore) DeleteEntries(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for _, id := range ids {
		if err := wb.Delete(key(entryPrefix, id.String())); err != nil {
			return fmt.Errorf("delete entry %s: %w", id, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush entry deletes: %w", err)
	}
	return nil
}

// LoadEntries returns every entry in insertion order.
func (b *BadgerStore) LoadEntries() ([]models.StatEntry, error) {
	var recs []entryRecord
	err := b.scan(entryPrefix, func(val []byte) error {
		var rec entryRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return fmt.Errorf("decode entry: %w", err)
		}
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Seq < recs[j].Seq })

	entries := make([]models.StatEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, rec.Entry)
	}
	return entries, nil
}

// InsertPhoto stores a photo record.
func (b *BadgerStore) InsertPhoto(p models.ProgressPhoto) error {
	seq, err := b.photoSeq.Next()
	if err != nil {
		return fmt.Errorf("next photo seq: %w", err)
	}
	val, err := json.Marshal(photoRecord{Seq: seq, Photo: p})
	if err != nil {
		return fmt.Errorf("encode photo: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(photoPrefix, p.ID.String()), val)
	})
}

// DeletePhoto removes a photo record.
func (b *BadgerStore) DeletePhoto(id uuid.UUID) error {
	k := key(photoPrefix, id.String())
	return b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(k); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete photo %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("delete photo: %w", err)
		}
		return txn.Delete(k)
	})
}

// LoadPhotos returns every photo in insertion order.
func (b *BadgerStore) LoadPhotos() ([]models.ProgressPhoto, error) {
	var recs []photoRecord
	err := b.scan(photoPrefix, func(val []byte) error {
		var rec photoRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return fmt.Errorf("decode photo: %w", err)
		}
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Seq < recs[j].Seq })

	result := make([]models.ProgressPhoto, 0, len(recs))
	for _, rec := range recs {
		result = append(result, rec.Photo)
	}
	return result, nil
}

// PutImage stores an image blob and returns its ref.
func (b *BadgerStore) PutImage(data []byte) (string, error) {
	ref := newImageRef()
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(imagePrefix, ref), data)
	})
	if err != nil {
		return "", fmt.Errorf("put image: %w", err)
	}
	return ref, nil
}

// GetImage returns the blob stored under ref.
func (b *BadgerStore) GetImage(ref string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(imagePrefix, ref))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("image %s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return data, nil
}

// DeleteImage removes the blob stored under ref. Missing refs are ignored.
func (b *BadgerStore) DeleteImage(ref string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(imagePrefix, ref))
	})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// scan calls fn with the value of every key under prefix.
func (b *BadgerStore) scan(prefix []byte, fn func(val []byte) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}
