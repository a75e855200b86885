package market

import (
	"errors"
	"github.com/CrossPunks/marketplace-engine/internal/chain"
	"github.com/CrossPunks/marketplace-engine/internal/dev"
	"github.com/CrossPunks/marketplace-engine/internal/entity"
	"github.com/CrossPunks/marketplace-engine/internal/event"
	"github.com/CrossPunks/marketplace-engine/internal/factory"
	"github.com/CrossPunks/marketplace-engine/internal/funds"
	"github.com/CrossPunks/marketplace-engine/internal/repository"
	"go.uber.org/zap"
	"math/big"
	"sync"
)

// Marketplace owns the offer book and settles escrowed trades. Every trade
// pays a fixed entity.CommissionPct cut into the commission balance, which
// only the marketplace owner can drain.
type Marketplace interface {
	SetListable(caller, collection string, listable bool) error
	IsListable(collection string) bool
	ListableCollections() ([]string, error)

	OfferForSale(caller, collection string, tokenId uint64, price *big.Int) error
	WithdrawNft(caller, collection string, tokenId uint64) error
	BuyNft(caller, collection string, tokenId uint64) error

	WithdrawCommission(caller string) (*big.Int, error)
	CommissionBalance() (*big.Int, error)

	GetOffer(collection string, tokenId uint64) (*entity.Offer, error)
	GetOffers() ([]entity.Offer, error)
	GetOffersByCollection(collection string) ([]entity.Offer, error)
}

type marketplace struct {
	mu         sync.Mutex
	owner      string
	custody    string
	assets     chain.AssetRegistry
	tokens     chain.TokenLedger
	offers     repository.OfferRepository
	whitelist  repository.WhitelistRepository
	commission repository.CommissionRepository
}

func NewMarketplace(
	owner string,
	custody string,
	assets chain.AssetRegistry,
	tokens chain.TokenLedger,
	offers repository.OfferRepository,
	whitelist repository.WhitelistRepository,
	commission repository.CommissionRepository,
) Marketplace {
	return &marketplace{
		owner:      owner,
		custody:    custody,
		assets:     assets,
		tokens:     tokens,
		offers:     offers,
		whitelist:  whitelist,
		commission: commission,
	}
}

func (m *marketplace) SetListable(caller, collection string, listable bool) error {
	if caller != m.owner {
		return ErrUnauthorized
	}

	zap.L().With(
		zap.String("collection", collection),
		zap.Bool("listable", listable),
	).Info("Marketplace whitelist updated")

	return m.whitelist.Set(collection, listable)
}

func (m *marketplace) IsListable(collection string) bool {
	listable, err := m.whitelist.IsListable(collection)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("collection", collection)).Error("Failed to read whitelist")
		return false
	}

	return listable
}

func (m *marketplace) ListableCollections() ([]string, error) {
	return m.whitelist.GetAll()
}

// OfferForSale takes custody of the asset and records a live offer for it.
// The seller must have approved the marketplace beforehand or the custody
// pull fails with chain.ErrNotApproved.
func (m *marketplace) OfferForSale(caller, collection string, tokenId uint64, price *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.IsListable(collection) {
		return ErrNotWhitelisted
	}
	if price.Sign() < 0 {
		return ErrNegativePrice
	}

	owner, err := m.assets.OwnerOf(collection, tokenId)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrUnauthorized
	}

	// Approval is checked before the custody pull so an unapproved listing
	// fails without any transfer attempt.
	approved, err := m.assets.ApprovedFor(collection, tokenId)
	if err != nil {
		return err
	}
	if approved != m.custody {
		return chain.ErrNotApproved
	}

	if err := m.assets.TransferFrom(m.custody, caller, m.custody, collection, tokenId); err != nil {
		return err
	}

	offer := &entity.Offer{
		Collection: collection,
		TokenId:    tokenId,
		Seller:     caller,
		Price:      new(big.Int).Set(price),
		Active:     true,
	}

	if err := m.offers.Save(offer); err != nil {
		// Bookkeeping failed; the asset must not stay stranded in escrow.
		if rbErr := m.assets.TransferFrom(m.custody, m.custody, caller, collection, tokenId); rbErr != nil {
			m.reportStranded("OfferForSale", offer, rbErr)
		}
		return err
	}

	zap.L().With(
		zap.String("collection", collection),
		zap.Uint64("tokenId", tokenId),
		zap.String("seller", caller),
		zap.String("price", price.String()),
	).Info("Marketplace listing")

	event.EmitEvent(event.OfferListedEvent, factory.CreateListingAction(*offer))

	return nil
}

// WithdrawNft cancels the seller's own offer and returns custody of the asset.
func (m *marketplace) WithdrawNft(caller, collection string, tokenId uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	offer, err := m.activeOffer(collection, tokenId)
	if err != nil {
		return err
	}
	if offer.Seller != caller {
		return ErrUnauthorized
	}

	// Invalidate before the external transfer.
	offer.Active = false
	if err := m.offers.Save(offer); err != nil {
		return err
	}

	if err := m.assets.TransferFrom(m.custody, m.custody, offer.Seller, collection, tokenId); err != nil {
		offer.Active = true
		if rbErr := m.offers.Save(offer); rbErr != nil {
			m.reportStranded("WithdrawNft", offer, rbErr)
		}
		return err
	}

	zap.L().With(
		zap.String("collection", collection),
		zap.Uint64("tokenId", tokenId),
		zap.String("seller", offer.Seller),
	).Info("Marketplace delisting")

	event.EmitEvent(event.OfferWithdrawnEvent, factory.CreateDelistingAction(*offer))

	return nil
}

// BuyNft settles an active offer: the buyer pays the full price, the seller
// nets the price minus commission and the asset leaves escrow for the buyer.
// The offer slot is invalidated first so a concurrent second buyer is
// rejected with ErrNoActiveOffer instead of re-settling.
func (m *marketplace) BuyNft(caller, collection string, tokenId uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	offer, err := m.activeOffer(collection, tokenId)
	if err != nil {
		return err
	}

	price := offer.Price

	// Reject underfunded buyers before touching any state.
	if m.tokens.Allowance(caller, m.custody).Cmp(price) < 0 {
		return chain.ErrInsufficientAllowance
	}
	if m.tokens.BalanceOf(caller).Cmp(price) < 0 {
		return chain.ErrInsufficientBalance
	}

	fee, sellerNet := funds.Split(price, entity.CommissionPct)

	// All internal ledger state moves before any external transfer: the slot
	// is released and the commission accrued, then the exchange happens.
	offer.Active = false
	if err := m.offers.Save(offer); err != nil {
		return err
	}
	if err := m.accrueCommission(fee); err != nil {
		offer.Active = true
		if rbErr := m.offers.Save(offer); rbErr != nil {
			m.reportStranded("BuyNft", offer, rbErr)
		}
		return err
	}

	rollback := func(undo ...func() error) {
		for _, fn := range undo {
			if err := fn(); err != nil {
				m.reportStranded("BuyNft", offer, err)
			}
		}
		if err := m.accrueCommission(new(big.Int).Neg(fee)); err != nil {
			m.reportStranded("BuyNft", offer, err)
		}
		offer.Active = true
		if err := m.offers.Save(offer); err != nil {
			m.reportStranded("BuyNft", offer, err)
		}
	}

	if err := m.tokens.TransferFrom(m.custody, caller, m.custody, price); err != nil {
		rollback()
		return err
	}

	if err := m.tokens.Transfer(m.custody, offer.Seller, sellerNet); err != nil {
		rollback(func() error {
			return m.tokens.Transfer(m.custody, caller, price)
		})
		return err
	}

	// The asset leaves escrow last: every earlier failure is compensated while
	// custody still holds it, so a live offer always has its asset in escrow.
	if err := m.assets.TransferFrom(m.custody, m.custody, caller, collection, tokenId); err != nil {
		rollback(
			func() error {
				return m.tokens.Transfer(offer.Seller, m.custody, sellerNet)
			},
			func() error {
				return m.tokens.Transfer(m.custody, caller, price)
			},
		)
		return err
	}

	zap.L().With(
		zap.String("collection", collection),
		zap.Uint64("tokenId", tokenId),
		zap.String("from", offer.Seller),
		zap.String("to", caller),
		zap.String("cost", price.String()),
		zap.String("fee", fee.String()),
	).Info("Marketplace trade")

	event.EmitEvent(event.TradeSettledEvent, factory.CreateSaleAction(*offer, caller, fee.String()))

	return nil
}

// WithdrawCommission drains the full commission balance to the marketplace
// owner, returning the amount paid out.
func (m *marketplace) WithdrawCommission(caller string) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.owner {
		return nil, ErrUnauthorized
	}

	balance, err := m.commission.Get()
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return balance, nil
	}

	if err := m.commission.Set(big.NewInt(0)); err != nil {
		return nil, err
	}

	if err := m.tokens.Transfer(m.custody, m.owner, balance); err != nil {
		if rbErr := m.commission.Set(balance); rbErr != nil {
			m.reportStranded("WithdrawCommission", nil, rbErr)
		}
		return nil, err
	}

	zap.L().With(zap.String("owner", m.owner), zap.String("amount", balance.String())).Info("Commission withdrawn")

	event.EmitEvent(event.CommissionWithdrawnEvent, factory.CreateCommissionAction(m.owner, balance.String()))

	return balance, nil
}

func (m *marketplace) CommissionBalance() (*big.Int, error) {
	return m.commission.Get()
}

func (m *marketplace) GetOffer(collection string, tokenId uint64) (*entity.Offer, error) {
	return m.offers.Get(collection, tokenId)
}

func (m *marketplace) GetOffers() ([]entity.Offer, error) {
	return m.offers.GetAll()
}

func (m *marketplace) GetOffersByCollection(collection string) ([]entity.Offer, error) {
	return m.offers.GetByCollection(collection)
}

func (m *marketplace) activeOffer(collection string, tokenId uint64) (*entity.Offer, error) {
	offer, err := m.offers.Get(collection, tokenId)
	if err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return nil, ErrNoActiveOffer
		}
		return nil, err
	}
	if !offer.Active {
		return nil, ErrNoActiveOffer
	}

	return offer, nil
}

func (m *marketplace) accrueCommission(fee *big.Int) error {
	balance, err := m.commission.Get()
	if err != nil {
		return err
	}

	return m.commission.Set(new(big.Int).Add(balance, fee))
}

// reportStranded records a compensation failure. Funds or assets may be stuck
// in escrow at this point, so the report is fanned out for operator attention
// rather than silently logged.
func (m *marketplace) reportStranded(op string, offer *entity.Offer, err error) {
	extra := map[string]interface{}{}
	if offer != nil {
		extra["collection"] = offer.Collection
		extra["tokenId"] = offer.TokenId
		extra["seller"] = offer.Seller
	}

	report := dev.NewError("market", op, err, extra)

	zap.L().With(zap.Error(err), zap.String("op", op)).Error("Settlement rollback failed")

	event.EmitEvent(event.SettlementFailedEvent, report)
}
