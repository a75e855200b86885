package repository

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"github.com/CrossPunks/marketplace-engine/internal/entity"
	"go.etcd.io/bbolt"
)

var (
	ErrOfferNotFound = errors.New("repository: offer not found")
)

// OfferRepository is the persisted offer book, keyed by (collection, tokenId).
// Save overwrites any previous entry for the same key, so the at-most-one
// offer invariant holds by construction.
type OfferRepository interface {
	Get(collection string, tokenId uint64) (*entity.Offer, error)
	Save(offer *entity.Offer) error
	GetByCollection(collection string) ([]entity.Offer, error)
	GetAll() ([]entity.Offer, error)
}

type boltOfferRepository struct {
	db *bbolt.DB
}

func NewOfferRepository(bolt *Bolt) OfferRepository {
	return boltOfferRepository{db: bolt.db}
}

// offerKey is length-prefixed so collection identifiers can contain any
// bytes without keys colliding across collections.
func offerKey(collection string, tokenId uint64) []byte {
	k := offerPrefix(collection)
	k = binary.BigEndian.AppendUint64(k, tokenId)
	return k
}

func offerPrefix(collection string) []byte {
	k := make([]byte, 4, 4+len(collection)+8)
	binary.BigEndian.PutUint32(k, uint32(len(collection)))
	return append(k, collection...)
}

func (r boltOfferRepository) Get(collection string, tokenId uint64) (*entity.Offer, error) {
	var offer entity.Offer

	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketOffers).Get(offerKey(collection, tokenId))
		if data == nil {
			return ErrOfferNotFound
		}
		return decodeGob(data, &offer)
	})
	if err != nil {
		return nil, err
	}

	return &offer, nil
}

func (r boltOfferRepository) Save(offer *entity.Offer) error {
	data, err := encodeGob(offer)
	if err != nil {
		return fmt.Errorf("repository: encode offer: %w", err)
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketOffers).Put(offerKey(offer.Collection, offer.TokenId), data)
	})
}

func (r boltOfferRepository) GetByCollection(collection string) ([]entity.Offer, error) {
	offers := make([]entity.Offer, 0)

	err := r.db.View(func(tx *bbolt.Tx) error {
		prefix := offerPrefix(collection)
		c := tx.Bucket(bucketOffers).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var offer entity.Offer
			if err := decodeGob(v, &offer); err != nil {
				return err
			}
			offers = append(offers, offer)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return offers, nil
}

func (r boltOfferRepository) GetAll() ([]entity.Offer, error) {
	offers := make([]entity.Offer, 0)

	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketOffers).ForEach(func(k, v []byte) error {
			var offer entity.Offer
			if err := decodeGob(v, &offer); err != nil {
				return err
			}
			offers = append(offers, offer)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return offers, nil
}
