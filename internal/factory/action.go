package factory

import (
	"github.com/CrossPunks/marketplace-engine/internal/entity"
	"time"
)

func CreateMintAction(collection string, tokenId uint64, to, cost string) entity.MarketAction {
	return entity.MarketAction{
		Collection: collection,
		TokenId:    tokenId,
		Action:     entity.MintAction,
		From:       "",
		To:         to,
		Cost:       cost,
		Time:       time.Now().Unix(),
	}
}

func CreateListingAction(offer entity.Offer) entity.MarketAction {
	return entity.MarketAction{
		Collection: offer.Collection,
		TokenId:    offer.TokenId,
		Action:     entity.ListingAction,
		From:       offer.Seller,
		Cost:       offer.Price.String(),
		Time:       time.Now().Unix(),
	}
}

func CreateDelistingAction(offer entity.Offer) entity.MarketAction {
	return entity.MarketAction{
		Collection: offer.Collection,
		TokenId:    offer.TokenId,
		Action:     entity.DelistingAction,
		To:         offer.Seller,
		Time:       time.Now().Unix(),
	}
}

func CreateSaleAction(offer entity.Offer, buyer, fee string) entity.MarketAction {
	return entity.MarketAction{
		Collection: offer.Collection,
		TokenId:    offer.TokenId,
		Action:     entity.SaleAction,
		From:       offer.Seller,
		To:         buyer,
		Cost:       offer.Price.String(),
		Fee:        fee,
		Time:       time.Now().Unix(),
	}
}

func CreateCommissionAction(owner, amount string) entity.MarketAction {
	return entity.MarketAction{
		Action: entity.CommissionAction,
		To:     owner,
		Cost:   amount,
		Time:   time.Now().Unix(),
	}
}
