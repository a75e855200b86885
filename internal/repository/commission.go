package repository

import (
	"fmt"
	"go.etcd.io/bbolt"
	"math/big"
)

var commissionKey = []byte("balance")

// CommissionRepository persists the single running commission balance.
// The balance is never negative.
type CommissionRepository interface {
	Get() (*big.Int, error)
	Set(balance *big.Int) error
}

type boltCommissionRepository struct {
	db *bbolt.DB
}

func NewCommissionRepository(bolt *Bolt) CommissionRepository {
	return boltCommissionRepository{db: bolt.db}
}

func (r boltCommissionRepository) Get() (*big.Int, error) {
	balance := big.NewInt(0)

	err := r.db.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket(bucketCommission).Get(commissionKey); data != nil {
			balance.SetBytes(data)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return balance, nil
}

func (r boltCommissionRepository) Set(balance *big.Int) error {
	if balance.Sign() < 0 {
		return fmt.Errorf("repository: commission balance must not be negative, got %s", balance)
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCommission).Put(commissionKey, balance.Bytes())
	})
}
