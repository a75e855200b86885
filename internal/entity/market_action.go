package entity

import (
	"crypto/md5"
	"fmt"
)

// MarketAction is the indexable record of a settlement-engine effect:
// a primary mint, a listing, a delisting or a settled sale.
type MarketAction struct {
	Collection string     `json:"collection"`
	TokenId    uint64     `json:"tokenId"`
	Action     ActionType `json:"action"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Cost       string     `json:"cost"`
	Fee        string     `json:"fee"`
	Time       int64      `json:"time"`
}

type ActionType string

const (
	MintAction       ActionType = "mint"
	ListingAction    ActionType = "listing"
	DelistingAction  ActionType = "delisting"
	SaleAction       ActionType = "sale"
	CommissionAction ActionType = "commission"
)

func (a MarketAction) Slug() string {
	return CreateMarketActionSlug(a.TokenId, a.Collection, string(a.Action), a.Time)
}

func CreateMarketActionSlug(tokenId uint64, collection, action string, time int64) string {
	data := []byte(fmt.Sprintf("marketaction-%d-%s-%s-%d", tokenId, collection, action, time))
	return fmt.Sprintf("%x", md5.Sum(data))
}
