package repository

import (
	"encoding/binary"
	"errors"
	"github.com/CrossPunks/marketplace-engine/internal/entity"
	"go.etcd.io/bbolt"
)

var (
	ErrReferralNotFound = errors.New("repository: referral not found")
)

// ReferralRepository persists the bidirectional referrer map. Ids are issued
// sequentially from entity.ReferralBaseId; Register is idempotent per identity.
type ReferralRepository interface {
	Register(identity string) (uint64, error)
	GetId(identity string) (uint64, error)
	GetIdentity(id uint64) (string, error)
}

type boltReferralRepository struct {
	db *bbolt.DB
}

func NewReferralRepository(bolt *Bolt) ReferralRepository {
	return boltReferralRepository{db: bolt.db}
}

func referralIdKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}

func (r boltReferralRepository) Register(identity string) (uint64, error) {
	var id uint64

	err := r.db.Update(func(tx *bbolt.Tx) error {
		referrers := tx.Bucket(bucketReferrers)
		if data := referrers.Get([]byte(identity)); data != nil {
			id = binary.BigEndian.Uint64(data)
			return nil
		}

		seq, err := referrers.NextSequence()
		if err != nil {
			return err
		}
		id = entity.ReferralBaseId + seq - 1

		if err := referrers.Put([]byte(identity), referralIdKey(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketReferrals).Put(referralIdKey(id), []byte(identity))
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r boltReferralRepository) GetId(identity string) (uint64, error) {
	var id uint64

	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketReferrers).Get([]byte(identity))
		if data == nil {
			return ErrReferralNotFound
		}
		id = binary.BigEndian.Uint64(data)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r boltReferralRepository) GetIdentity(id uint64) (string, error) {
	var identity string

	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketReferrals).Get(referralIdKey(id))
		if data == nil {
			return ErrReferralNotFound
		}
		identity = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	return identity, nil
}
