package repository

import (
	"go.etcd.io/bbolt"
)

// WhitelistRepository persists the listable flag per collection.
// Unknown collections are not listable.
type WhitelistRepository interface {
	Set(collection string, listable bool) error
	IsListable(collection string) (bool, error)
	GetAll() ([]string, error)
}

type boltWhitelistRepository struct {
	db *bbolt.DB
}

func NewWhitelistRepository(bolt *Bolt) WhitelistRepository {
	return boltWhitelistRepository{db: bolt.db}
}

func (r boltWhitelistRepository) Set(collection string, listable bool) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketWhitelist)
		if !listable {
			return b.Delete([]byte(collection))
		}
		return b.Put([]byte(collection), []byte{1})
	})
}

func (r boltWhitelistRepository) IsListable(collection string) (bool, error) {
	var listable bool

	err := r.db.View(func(tx *bbolt.Tx) error {
		listable = tx.Bucket(bucketWhitelist).Get([]byte(collection)) != nil
		return nil
	})

	return listable, err
}

func (r boltWhitelistRepository) GetAll() ([]string, error) {
	collections := make([]string, 0)

	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketWhitelist).ForEach(func(k, v []byte) error {
			collections = append(collections, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return collections, nil
}
