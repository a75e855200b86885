package market

import (
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/CrossPunks/marketplace-engine/internal/chain"
	"github.com/CrossPunks/marketplace-engine/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner   = "owner"
	custody = "market"
	alice   = "alice"
	bob     = "bob"

	punks = "crosspunks"
)

type fixture struct {
	marketplace Marketplace
	assets      chain.AssetRegistry
	tokens      *chain.MemoryTokenLedger
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	bolt, err := repository.NewBolt(filepath.Join(t.TempDir(), "market.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	assets := chain.NewMemoryAssetRegistry()
	tokens := chain.NewMemoryTokenLedger("BUSD")

	marketplace := NewMarketplace(owner, custody, assets, tokens, bolt.Offers(), bolt.Whitelist(), bolt.Commission())

	return fixture{marketplace, assets, tokens}
}

// listToken mints one asset to seller, approves the marketplace and lists it.
func (f fixture) listToken(t *testing.T, seller string, price int64) uint64 {
	t.Helper()

	ids, err := f.assets.Mint(punks, seller, 1)
	require.NoError(t, err)
	require.NoError(t, f.assets.Approve(seller, custody, punks, ids[0]))
	require.NoError(t, f.marketplace.OfferForSale(seller, punks, ids[0], big.NewInt(price)))

	return ids[0]
}

func (f fixture) fund(t *testing.T, identity string, amount int64) {
	t.Helper()

	require.NoError(t, f.tokens.Mint(identity, big.NewInt(amount)))
	require.NoError(t, f.tokens.Approve(identity, custody, big.NewInt(amount)))
}

func TestSetListable(t *testing.T) {
	f := newFixture(t)

	assert.False(t, f.marketplace.IsListable(punks))

	err := f.marketplace.SetListable(alice, punks, true)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, f.marketplace.SetListable(owner, punks, true))
	assert.True(t, f.marketplace.IsListable(punks))

	require.NoError(t, f.marketplace.SetListable(owner, punks, false))
	assert.False(t, f.marketplace.IsListable(punks))
}

func TestOfferForSale_NotWhitelisted(t *testing.T) {
	f := newFixture(t)

	ids, err := f.assets.Mint(punks, alice, 1)
	require.NoError(t, err)

	err = f.marketplace.OfferForSale(alice, punks, ids[0], big.NewInt(1000))
	assert.ErrorIs(t, err, ErrNotWhitelisted)

	// The identical call succeeds once the collection is whitelisted.
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))
	require.NoError(t, f.assets.Approve(alice, custody, punks, ids[0]))
	require.NoError(t, f.marketplace.OfferForSale(alice, punks, ids[0], big.NewInt(1000)))
}

func TestOfferForSale(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))

	tokenId := f.listToken(t, alice, 1000)

	holder, err := f.assets.OwnerOf(punks, tokenId)
	require.NoError(t, err)
	assert.Equal(t, custody, holder)

	offer, err := f.marketplace.GetOffer(punks, tokenId)
	require.NoError(t, err)
	assert.Equal(t, alice, offer.Seller)
	assert.Equal(t, "1000", offer.Price.String())
	assert.True(t, offer.Active)
}

func TestOfferForSale_NotOwner(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))

	ids, err := f.assets.Mint(punks, alice, 1)
	require.NoError(t, err)

	err = f.marketplace.OfferForSale(bob, punks, ids[0], big.NewInt(1000))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestOfferForSale_WithoutApproval(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))

	ids, err := f.assets.Mint(punks, alice, 1)
	require.NoError(t, err)

	err = f.marketplace.OfferForSale(alice, punks, ids[0], big.NewInt(1000))
	assert.ErrorIs(t, err, chain.ErrNotApproved)

	// The failed listing must not leave a live offer behind.
	_, err = f.marketplace.GetOffer(punks, ids[0])
	assert.ErrorIs(t, err, repository.ErrOfferNotFound)
}

func TestOfferForSale_NegativePrice(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))

	ids, err := f.assets.Mint(punks, alice, 1)
	require.NoError(t, err)

	err = f.marketplace.OfferForSale(alice, punks, ids[0], big.NewInt(-1))
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestBuyNft(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))

	tokenId := f.listToken(t, alice, 1000)
	f.fund(t, bob, 1000)

	require.NoError(t, f.marketplace.BuyNft(bob, punks, tokenId))

	holder, err := f.assets.OwnerOf(punks, tokenId)
	require.NoError(t, err)
	assert.Equal(t, bob, holder)

	assert.Equal(t, "950", f.tokens.BalanceOf(alice).String())
	assert.Equal(t, "0", f.tokens.BalanceOf(bob).String())

	commission, err := f.marketplace.CommissionBalance()
	require.NoError(t, err)
	assert.Equal(t, "50", commission.String())

	offer, err := f.marketplace.GetOffer(punks, tokenId)
	require.NoError(t, err)
	assert.False(t, offer.Active)

	// Settled offers cannot be bought a second time.
	f.fund(t, bob, 1000)
	err = f.marketplace.BuyNft(bob, punks, tokenId)
	assert.ErrorIs(t, err, ErrNoActiveOffer)
}

func TestBuyNft_ZeroPrice(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))

	tokenId := f.listToken(t, alice, 0)

	// A gift settles without the buyer holding or approving anything.
	require.NoError(t, f.marketplace.BuyNft(bob, punks, tokenId))

	holder, err := f.assets.OwnerOf(punks, tokenId)
	require.NoError(t, err)
	assert.Equal(t, bob, holder)

	commission, err := f.marketplace.CommissionBalance()
	require.NoError(t, err)
	assert.Equal(t, "0", commission.String())
}

// failingLedger rejects transfers to one identity, simulating a payout the
// ledger cannot complete.
type failingLedger struct {
	*chain.MemoryTokenLedger
	failTo string
}

func (l failingLedger) Transfer(caller, to string, amount *big.Int) error {
	if to == l.failTo {
		return errors.New("ledger unavailable")
	}
	return l.MemoryTokenLedger.Transfer(caller, to, amount)
}

func TestBuyNft_SellerPayoutFails(t *testing.T) {
	bolt, err := repository.NewBolt(filepath.Join(t.TempDir(), "market.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	assets := chain.NewMemoryAssetRegistry()
	tokens := chain.NewMemoryTokenLedger("BUSD")

	m := NewMarketplace(owner, custody, assets, failingLedger{tokens, alice}, bolt.Offers(), bolt.Whitelist(), bolt.Commission())
	require.NoError(t, m.SetListable(owner, punks, true))

	ids, err := assets.Mint(punks, alice, 1)
	require.NoError(t, err)
	require.NoError(t, assets.Approve(alice, custody, punks, ids[0]))
	require.NoError(t, m.OfferForSale(alice, punks, ids[0], big.NewInt(1000)))

	require.NoError(t, tokens.Mint(bob, big.NewInt(1000)))
	require.NoError(t, tokens.Approve(bob, custody, big.NewInt(1000)))

	require.Error(t, m.BuyNft(bob, punks, ids[0]))

	// The offer stays live and its asset never left escrow.
	offer, err := m.GetOffer(punks, ids[0])
	require.NoError(t, err)
	assert.True(t, offer.Active)

	holder, err := assets.OwnerOf(punks, ids[0])
	require.NoError(t, err)
	assert.Equal(t, custody, holder)

	// The buyer is made whole and no commission sticks.
	assert.Equal(t, "1000", tokens.BalanceOf(bob).String())
	commission, err := m.CommissionBalance()
	require.NoError(t, err)
	assert.Equal(t, "0", commission.String())
}

func TestBuyNft_NoOffer(t *testing.T) {
	f := newFixture(t)

	err := f.marketplace.BuyNft(bob, punks, 42)
	assert.ErrorIs(t, err, ErrNoActiveOffer)
}

func TestBuyNft_InsufficientAllowance(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))

	tokenId := f.listToken(t, alice, 1000)

	require.NoError(t, f.tokens.Mint(bob, big.NewInt(1000)))

	err := f.marketplace.BuyNft(bob, punks, tokenId)
	assert.ErrorIs(t, err, chain.ErrInsufficientAllowance)

	// Nothing settled: the offer is still live and the seller unpaid.
	offer, err := f.marketplace.GetOffer(punks, tokenId)
	require.NoError(t, err)
	assert.True(t, offer.Active)
	assert.Equal(t, "0", f.tokens.BalanceOf(alice).String())
}

func TestBuyNft_InsufficientBalance(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))

	tokenId := f.listToken(t, alice, 1000)

	require.NoError(t, f.tokens.Approve(bob, custody, big.NewInt(1000)))

	err := f.marketplace.BuyNft(bob, punks, tokenId)
	assert.ErrorIs(t, err, chain.ErrInsufficientBalance)
}

func TestBuyNft_CommissionRounding(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))

	// 5% of 1001 rounds down to 50; the seller takes the remainder so the
	// two shares always sum to the full price.
	tokenId := f.listToken(t, alice, 1001)
	f.fund(t, bob, 1001)

	require.NoError(t, f.marketplace.BuyNft(bob, punks, tokenId))

	commission, err := f.marketplace.CommissionBalance()
	require.NoError(t, err)
	assert.Equal(t, "50", commission.String())
	assert.Equal(t, "951", f.tokens.BalanceOf(alice).String())
}

func TestWithdrawNft(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))

	tokenId := f.listToken(t, alice, 1000)

	err := f.marketplace.WithdrawNft(bob, punks, tokenId)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, f.marketplace.WithdrawNft(alice, punks, tokenId))

	holder, err := f.assets.OwnerOf(punks, tokenId)
	require.NoError(t, err)
	assert.Equal(t, alice, holder)

	offer, err := f.marketplace.GetOffer(punks, tokenId)
	require.NoError(t, err)
	assert.False(t, offer.Active)

	err = f.marketplace.WithdrawNft(alice, punks, tokenId)
	assert.ErrorIs(t, err, ErrNoActiveOffer)
}

func TestRelistAfterWithdraw(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))

	tokenId := f.listToken(t, alice, 1000)
	require.NoError(t, f.marketplace.WithdrawNft(alice, punks, tokenId))

	require.NoError(t, f.assets.Approve(alice, custody, punks, tokenId))
	require.NoError(t, f.marketplace.OfferForSale(alice, punks, tokenId, big.NewInt(2000)))

	offer, err := f.marketplace.GetOffer(punks, tokenId)
	require.NoError(t, err)
	assert.True(t, offer.Active)
	assert.Equal(t, "2000", offer.Price.String())
}

func TestWithdrawCommission(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))

	_, err := f.marketplace.WithdrawCommission(alice)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Two reciprocal trades at price 1000 each accrue a 50 commission.
	first := f.listToken(t, alice, 1000)
	f.fund(t, bob, 1000)
	require.NoError(t, f.marketplace.BuyNft(bob, punks, first))

	require.NoError(t, f.assets.Approve(bob, custody, punks, first))
	require.NoError(t, f.marketplace.OfferForSale(bob, punks, first, big.NewInt(1000)))
	f.fund(t, alice, 1000)
	require.NoError(t, f.marketplace.BuyNft(alice, punks, first))

	commission, err := f.marketplace.CommissionBalance()
	require.NoError(t, err)
	assert.Equal(t, "100", commission.String())

	amount, err := f.marketplace.WithdrawCommission(owner)
	require.NoError(t, err)
	assert.Equal(t, "100", amount.String())
	assert.Equal(t, "100", f.tokens.BalanceOf(owner).String())

	commission, err = f.marketplace.CommissionBalance()
	require.NoError(t, err)
	assert.Equal(t, "0", commission.String())
}

func TestWhitelistRemovalKeepsExistingOffer(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.marketplace.SetListable(owner, punks, true))

	tokenId := f.listToken(t, alice, 1000)

	// Removing the collection does not invalidate offers already accepted.
	require.NoError(t, f.marketplace.SetListable(owner, punks, false))

	f.fund(t, bob, 1000)
	require.NoError(t, f.marketplace.BuyNft(bob, punks, tokenId))
}
