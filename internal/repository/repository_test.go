package repository

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/CrossPunks/marketplace-engine/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBolt(t *testing.T) *Bolt {
	t.Helper()

	bolt, err := NewBolt(filepath.Join(t.TempDir(), "market.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return bolt
}

func TestOfferRepository(t *testing.T) {
	offers := newBolt(t).Offers()

	_, err := offers.Get("punks", 1)
	assert.ErrorIs(t, err, ErrOfferNotFound)

	offer := &entity.Offer{
		Collection: "punks",
		TokenId:    1,
		Seller:     "alice",
		Price:      big.NewInt(1000),
		Active:     true,
	}
	require.NoError(t, offers.Save(offer))

	stored, err := offers.Get("punks", 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Seller)
	assert.Equal(t, "1000", stored.Price.String())
	assert.True(t, stored.Active)

	// Saving the same key replaces the record.
	offer.Active = false
	require.NoError(t, offers.Save(offer))

	stored, err = offers.Get("punks", 1)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestOfferRepository_BigPrice(t *testing.T) {
	offers := newBolt(t).Offers()

	price, ok := new(big.Int).SetString("123456789000000000000000000", 10)
	require.True(t, ok)

	require.NoError(t, offers.Save(&entity.Offer{Collection: "punks", TokenId: 7, Seller: "alice", Price: price, Active: true}))

	stored, err := offers.Get("punks", 7)
	require.NoError(t, err)
	assert.Equal(t, price.String(), stored.Price.String())
}

func TestOfferRepository_GetByCollection(t *testing.T) {
	offers := newBolt(t).Offers()

	require.NoError(t, offers.Save(&entity.Offer{Collection: "punks", TokenId: 1, Seller: "alice", Price: big.NewInt(1), Active: true}))
	require.NoError(t, offers.Save(&entity.Offer{Collection: "punks", TokenId: 2, Seller: "bob", Price: big.NewInt(2), Active: true}))
	require.NoError(t, offers.Save(&entity.Offer{Collection: "cars", TokenId: 1, Seller: "carol", Price: big.NewInt(3), Active: true}))

	punks, err := offers.GetByCollection("punks")
	require.NoError(t, err)
	assert.Len(t, punks, 2)

	all, err := offers.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestOfferRepository_CollectionKeySeparation(t *testing.T) {
	offers := newBolt(t).Offers()

	// Collections whose names extend each other must not share key space.
	require.NoError(t, offers.Save(&entity.Offer{Collection: "punks", TokenId: 1, Seller: "alice", Price: big.NewInt(1), Active: true}))
	require.NoError(t, offers.Save(&entity.Offer{Collection: "punks:v2", TokenId: 1, Seller: "bob", Price: big.NewInt(2), Active: true}))

	stored, err := offers.Get("punks", 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Seller)

	stored, err = offers.Get("punks:v2", 1)
	require.NoError(t, err)
	assert.Equal(t, "bob", stored.Seller)

	punksOnly, err := offers.GetByCollection("punks")
	require.NoError(t, err)
	require.Len(t, punksOnly, 1)
	assert.Equal(t, "alice", punksOnly[0].Seller)
}

func TestWhitelistRepository(t *testing.T) {
	whitelist := newBolt(t).Whitelist()

	listable, err := whitelist.IsListable("punks")
	require.NoError(t, err)
	assert.False(t, listable)

	require.NoError(t, whitelist.Set("punks", true))

	listable, err = whitelist.IsListable("punks")
	require.NoError(t, err)
	assert.True(t, listable)

	collections, err := whitelist.GetAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"punks"}, collections)

	require.NoError(t, whitelist.Set("punks", false))

	listable, err = whitelist.IsListable("punks")
	require.NoError(t, err)
	assert.False(t, listable)
}

func TestReferralRepository(t *testing.T) {
	referrals := newBolt(t).Referrals()

	id, err := referrals.Register("alice")
	require.NoError(t, err)
	assert.Equal(t, entity.ReferralBaseId, id)

	identity, err := referrals.GetIdentity(id)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity)

	stored, err := referrals.GetId("alice")
	require.NoError(t, err)
	assert.Equal(t, id, stored)

	_, err = referrals.GetIdentity(entity.ReferralBaseId + 1)
	assert.ErrorIs(t, err, ErrReferralNotFound)

	_, err = referrals.GetId("bob")
	assert.ErrorIs(t, err, ErrReferralNotFound)
}

func TestCommissionRepository(t *testing.T) {
	commission := newBolt(t).Commission()

	balance, err := commission.Get()
	require.NoError(t, err)
	assert.Equal(t, "0", balance.String())

	require.NoError(t, commission.Set(big.NewInt(150)))

	balance, err = commission.Get()
	require.NoError(t, err)
	assert.Equal(t, "150", balance.String())

	err = commission.Set(big.NewInt(-1))
	assert.Error(t, err)

	require.NoError(t, commission.Set(big.NewInt(0)))

	balance, err = commission.Get()
	require.NoError(t, err)
	assert.Equal(t, "0", balance.String())
}
