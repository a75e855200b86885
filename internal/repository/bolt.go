package repository

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"go.etcd.io/bbolt"
	"os"
	"path/filepath"
)

var (
	bucketOffers     = []byte("offers")
	bucketWhitelist  = []byte("whitelist")
	bucketReferrals  = []byte("referrals")
	bucketReferrers  = []byte("referrers")
	bucketCommission = []byte("commission")
)

// Bolt wraps the bbolt database that persists the marketplace's owned state:
// the offer book, the whitelist, the referral map and the commission balance.
type Bolt struct {
	db *bbolt.DB
}

// NewBolt opens or creates the database at dbPath, creating the parent
// directory and all buckets if missing.
func NewBolt(dbPath string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("repository: create directory: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("repository: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketOffers, bucketWhitelist, bucketReferrals, bucketReferrers, bucketCommission} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository: create buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) Offers() OfferRepository {
	return boltOfferRepository{db: b.db}
}

func (b *Bolt) Whitelist() WhitelistRepository {
	return boltWhitelistRepository{db: b.db}
}

func (b *Bolt) Referrals() ReferralRepository {
	return boltReferralRepository{db: b.db}
}

func (b *Bolt) Commission() CommissionRepository {
	return boltCommissionRepository{db: b.db}
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
