package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"axviral/pkg/catalog"
	bolt "go.etcd.io/bbolt"
)

// DbMediaStorage is the bbolt backed media store
type DbMediaStorage struct {
	dbClient *bolt.DB
}

var mediaBucket = []byte("media")
var blobBucket = []byte("blob")
var createdBucket = []byte("created")

var errMissingBucket = errors.New("bucket missing")

const openTimeout = time.Second

func getBucket(bucketname []byte, tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket(bucketname)
	if bucket != nil {
		return bucket, nil
	}
	if !tx.Writable() {
		return nil, fmt.Errorf("%w: %s", errMissingBucket, bucketname)
	}
	return tx.CreateBucket(bucketname)
}

// createdKey orders the created index by timestamp, then id
func createdKey(createdAt int64, id string) []byte {
	k := make([]byte, 8+len(id))
	binary.BigEndian.PutUint64(k, uint64(createdAt))
	copy(k[8:], id)
	return k
}

// NewMediaDbStorage opens (or creates) the store file at dbPath
func NewMediaDbStorage(dbPath string) (*DbMediaStorage, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	dbClient, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dbPath, err)
	}

	s := DbMediaStorage{
		dbClient: dbClient,
	}
	// create buckets if not exists
	err = s.dbClient.Update(func(txn *bolt.Tx) error {
		for _, name := range [][]byte{mediaBucket, blobBucket, createdBucket} {
			if _, err := getBucket(name, txn); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		dbClient.Close()
		return nil, err
	}
	return &s, nil
}

// Close closes link to db
func (s *DbMediaStorage) Close() error {
	return s.dbClient.Close()
}

func (s *DbMediaStorage) Add(ctx context.Context, rec *catalog.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	return s.dbClient.Update(func(txn *bolt.Tx) error {
		bucket, err := getBucket(mediaBucket, txn)
		if err != nil {
			return err
		}
		key := []byte(rec.ID)
		if bucket.Get(key) != nil {
			return fmt.Errorf("%w: %s", catalog.ErrDuplicateID, rec.ID)
		}

		d, err := toDbMedia(rec).marshalMedia()
		if err != nil {
			return err
		}
		if err := bucket.Put(key, d); err != nil {
			return err
		}

		created, err := getBucket(createdBucket, txn)
		if err != nil {
			return err
		}
		if err := created.Put(createdKey(rec.CreatedAt, rec.ID), key); err != nil {
			return err
		}

		if rec.File != nil {
			blobs, err := getBucket(blobBucket, txn)
			if err != nil {
				return err
			}
			// bolt values must not be nil
			data := rec.File.Data
			if data == nil {
				data = []byte{}
			}
			if err := blobs.Put(key, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetAll returns all records ordered by createdAt ascending
func (s *DbMediaStorage) GetAll(ctx context.Context) ([]*catalog.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	me := []*catalog.Record{}
	err := s.dbClient.View(func(txn *bolt.Tx) error {
		bucket, err := getBucket(mediaBucket, txn)
		if err != nil {
			return err
		}
		created, err := getBucket(createdBucket, txn)
		if err != nil {
			return err
		}

		c := created.Cursor()
		for k, id := c.First(); k != nil; k, id = c.Next() {
			v := bucket.Get(id)
			if v == nil {
				continue
			}
			dbm := DbMedia{}
			if err := dbm.unmarshalMedia(v); err != nil {
				return err
			}
			me = append(me, dbm.toRecord())
		}
		return nil
	})
	return me, err
}

func (s *DbMediaStorage) GetByID(ctx context.Context, id string) (*catalog.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var media *catalog.Record
	err := s.dbClient.View(func(txn *bolt.Tx) error {
		bucket, err := getBucket(mediaBucket, txn)
		if err != nil {
			return err
		}
		item := bucket.Get([]byte(id))
		if item == nil {
			return catalog.ErrNotFound
		}
		dbm := DbMedia{}
		if err := dbm.unmarshalMedia(item); err != nil {
			return err
		}
		media = dbm.toRecord()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return media, nil
}

func (s *DbMediaStorage) ReadFile(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.dbClient.View(func(txn *bolt.Tx) error {
		blobs, err := getBucket(blobBucket, txn)
		if err != nil {
			return err
		}
		item := blobs.Get([]byte(id))
		if item == nil {
			return catalog.ErrNotFound
		}
		// bolt memory is only valid inside the transaction
		data = make([]byte, len(item))
		copy(data, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ViewFile hands fn a reader over the stored bytes without copying them.
// The reader is only valid until fn returns.
func (s *DbMediaStorage) ViewFile(ctx context.Context, id string, fn func(io.ReadSeeker) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.dbClient.View(func(txn *bolt.Tx) error {
		blobs, err := getBucket(blobBucket, txn)
		if err != nil {
			return err
		}
		item := blobs.Get([]byte(id))
		if item == nil {
			return catalog.ErrNotFound
		}
		return fn(bytes.NewReader(item))
	})
}

// Delete removes a record, its bytes and its index entry
func (s *DbMediaStorage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.dbClient.Update(func(txn *bolt.Tx) error {
		bucket, err := getBucket(mediaBucket, txn)
		if err != nil {
			return err
		}
		key := []byte(id)
		item := bucket.Get(key)
		if item == nil {
			return nil
		}
		dbm := DbMedia{}
		if err := dbm.unmarshalMedia(item); err != nil {
			return err
		}

		created, err := getBucket(createdBucket, txn)
		if err != nil {
			return err
		}
		if err := created.Delete(createdKey(dbm.CreatedAt, dbm.ID)); err != nil {
			return err
		}
		blobs, err := getBucket(blobBucket, txn)
		if err != nil {
			return err
		}
		if err := blobs.Delete(key); err != nil {
			return err
		}
		return bucket.Delete(key)
	})
}
