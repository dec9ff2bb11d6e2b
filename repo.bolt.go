package main

import (
	"context"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

// Ensure boltDocumentStore implements DocumentStore.
var _ DocumentStore = (*boltDocumentStore)(nil)

// boltDocumentStore maps each collection to a bucket. Bolt serializes
// writers so every mutation runs into a single update transaction.
type boltDocumentStore struct {
	logger *zap.Logger
	client *bolt.DB
}

// GetBoltDBClient setup the database and the collections buckets then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range Collections {
			if _, errB := tx.CreateBucketIfNotExists([]byte(name)); errB != nil {
				return fmt.Errorf("failed to create %s bucket: %v", name, errB)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up buckets: %v", err)
	}
	return db, nil
}

// NewBoltDocumentStore provides an instance of bolt-based document storage.
func NewBoltDocumentStore(logger *zap.Logger, client *bolt.DB) DocumentStore {
	return &boltDocumentStore{
		logger: logger,
		client: client,
	}
}

func bucket(tx *bolt.Tx, collection string) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(collection))
	if b == nil {
		return nil, fmt.Errorf("unknown collection %s", collection)
	}
	return b, nil
}

// Get retrieves a document based on its ID from boltdb store.
func (bs *boltDocumentStore) Get(_ context.Context, collection, id string) (Document, error) {
	var doc Document
	err := bs.client.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, collection)
		if err != nil {
			return err
		}
		result := b.Get([]byte(id))
		if result == nil {
			return ErrDocumentNotFound
		}
		// bolt values are only valid during the transaction.
		doc = Document{ID: id, Data: append([]byte(nil), result...)}
		return nil
	})
	return doc, err
}

// Create inserts a new document into boltdb store if its id is free.
func (bs *boltDocumentStore) Create(_ context.Context, collection, id string, doc interface{}) error {
	data, err := codec.Marshal(doc)
	if err != nil {
		return err
	}
	return bs.client.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, collection)
		if err != nil {
			return err
		}
		if b.Get([]byte(id)) != nil {
			return ErrDocumentExists
		}
		return b.Put([]byte(id), data)
	})
}

// Update replaces the given top-level fields of an existing document.
func (bs *boltDocumentStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return bs.Mutate(ctx, collection, id, func(current []byte) ([]byte, error) {
		return mergeFields(current, fields)
	})
}

// Mutate rewrites an existing document into a single update transaction.
func (bs *boltDocumentStore) Mutate(_ context.Context, collection, id string, fn MutateFunc) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, collection)
		if err != nil {
			return err
		}
		current := b.Get([]byte(id))
		if current == nil {
			return ErrDocumentNotFound
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), next)
	})
}

// Delete removes a document based on its ID from boltdb store.
func (bs *boltDocumentStore) Delete(_ context.Context, collection, id string) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, collection)
		if err != nil {
			return err
		}
		if b.Get([]byte(id)) == nil {
			return ErrDocumentNotFound
		}
		return b.Delete([]byte(id))
	})
}

// Query scans a whole bucket then filters it in memory.
func (bs *boltDocumentStore) Query(_ context.Context, collection string, q Query) ([]Document, error) {
	var docs []Document
	err := bs.client.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, collection)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			docs = append(docs, Document{ID: string(k), Data: append([]byte(nil), v...)})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return applyQuery(docs, q)
}
