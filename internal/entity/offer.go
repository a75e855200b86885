package entity

import (
	"crypto/md5"
	"fmt"
	"math/big"
)

// Offer is a seller's listing of one asset at a fixed price. The asset is
// held in marketplace custody for as long as the offer exists; an inactive
// offer is a settled or withdrawn listing kept only as a stale record.
type Offer struct {
	Collection string   `json:"collection"`
	TokenId    uint64   `json:"tokenId"`
	Seller     string   `json:"seller"`
	Price      *big.Int `json:"price"`
	Active     bool     `json:"active"`
}

func (o Offer) Slug() string {
	return CreateOfferSlug(o.Collection, o.TokenId)
}

func CreateOfferSlug(collection string, tokenId uint64) string {
	data := []byte(fmt.Sprintf("offer-%s-%d", collection, tokenId))
	return fmt.Sprintf("%x", md5.Sum(data))
}
