package sale

import (
	"github.com/CrossPunks/marketplace-engine/internal/amm"
	"github.com/CrossPunks/marketplace-engine/internal/chain"
	"github.com/CrossPunks/marketplace-engine/internal/dev"
	"github.com/CrossPunks/marketplace-engine/internal/entity"
	"github.com/CrossPunks/marketplace-engine/internal/event"
	"github.com/CrossPunks/marketplace-engine/internal/factory"
	"github.com/CrossPunks/marketplace-engine/internal/funds"
	"github.com/CrossPunks/marketplace-engine/internal/referral"
	"go.uber.org/zap"
	"math/big"
	"sync"
)

// Controller gates and executes the primary sale of a collection. It starts
// in the initializing phase, where all minting is rejected, and moves to
// active exactly once. A referred mint routes entity.ReferralPct of the
// payment to the registered referrer and the rest to the beneficiary.
type Controller interface {
	Activate(caller string) error
	Active() bool

	Mint(payer string, count int, payment *big.Int) ([]uint64, error)
	MintWithReferral(payer string, count int, referralId uint64, payment *big.Int) ([]uint64, error)

	MintedCount() uint64
	UnitPrice() *big.Int

	SwapForTreasury(caller string, amountIn, minOut *big.Int, deadline int64) (*big.Int, error)
	AddTreasuryLiquidity(caller string, amountPayment, amountPlatform, minPayment, minPlatform *big.Int, deadline int64) error
}

type controller struct {
	mu     sync.Mutex
	active bool
	minted uint64

	admin       string
	beneficiary string
	collection  string
	treasury    string
	unitPrice   *big.Int

	assets    chain.AssetRegistry
	tokens    chain.TokenLedger
	referrals referral.Registry

	router        amm.Router
	paymentToken  string
	platformToken string
}

type ControllerParams struct {
	Admin       string
	Beneficiary string
	Collection  string
	Treasury    string
	UnitPrice   *big.Int

	Assets    chain.AssetRegistry
	Tokens    chain.TokenLedger
	Referrals referral.Registry

	Router        amm.Router
	PaymentToken  string
	PlatformToken string
}

func NewController(p ControllerParams) Controller {
	return &controller{
		admin:         p.Admin,
		beneficiary:   p.Beneficiary,
		collection:    p.Collection,
		treasury:      p.Treasury,
		unitPrice:     new(big.Int).Set(p.UnitPrice),
		assets:        p.Assets,
		tokens:        p.Tokens,
		referrals:     p.Referrals,
		router:        p.Router,
		paymentToken:  p.PaymentToken,
		platformToken: p.PlatformToken,
	}
}

// Activate opens public minting. The transition is one-way; a second call
// fails with ErrAlreadyActive rather than being a silent no-op.
func (c *controller) Activate(caller string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller != c.admin {
		return ErrUnauthorized
	}
	if c.active {
		return ErrAlreadyActive
	}

	c.active = true

	zap.L().With(zap.String("collection", c.collection)).Info("Sale activated")

	event.EmitEvent(event.SaleActivatedEvent, c.collection)

	return nil
}

func (c *controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.active
}

func (c *controller) Mint(payer string, count int, payment *big.Int) ([]uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mint(payer, count, payment, "")
}

// MintWithReferral is Mint with the payment split between the beneficiary and
// the identity the referral id resolves to.
func (c *controller) MintWithReferral(payer string, count int, referralId uint64, payment *big.Int) ([]uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return nil, ErrSaleNotStarted
	}

	referrer, err := c.referrals.Lookup(referralId)
	if err != nil {
		return nil, err
	}

	return c.mint(payer, count, payment, referrer)
}

func (c *controller) mint(payer string, count int, payment *big.Int, referrer string) ([]uint64, error) {
	if !c.active {
		return nil, ErrSaleNotStarted
	}
	if count < 1 || count > entity.MaxQuantityPerMint {
		return nil, ErrInvalidQuantity
	}

	required := new(big.Int).Mul(c.unitPrice, big.NewInt(int64(count)))
	if payment.Cmp(required) != 0 {
		return nil, ErrIncorrectPayment
	}

	if c.tokens.Allowance(payer, c.treasury).Cmp(payment) < 0 {
		return nil, chain.ErrInsufficientAllowance
	}
	if c.tokens.BalanceOf(payer).Cmp(payment) < 0 {
		return nil, chain.ErrInsufficientBalance
	}

	// The payment lands in the treasury first so a failed mint can be
	// refunded without touching the beneficiary.
	if err := c.tokens.TransferFrom(c.treasury, payer, c.treasury, payment); err != nil {
		return nil, err
	}

	ids, err := c.assets.Mint(c.collection, payer, count)
	if err != nil {
		if rbErr := c.tokens.Transfer(c.treasury, payer, payment); rbErr != nil {
			c.reportStranded("Mint", payer, payment, rbErr)
		}
		return nil, err
	}

	c.minted += uint64(count)

	// The payment is already secured in the treasury and the assets exist, so
	// a failed disbursement does not unwind the mint; the operator replays the
	// forward from the stranded-funds report.
	if err := c.forwardPayment(payment, referrer); err != nil {
		c.reportStranded("Mint", payer, payment, err)
	}

	zap.L().With(
		zap.String("collection", c.collection),
		zap.String("payer", payer),
		zap.Int("count", count),
		zap.String("payment", payment.String()),
		zap.String("referrer", referrer),
	).Info("Primary mint")

	for _, id := range ids {
		event.EmitEvent(event.AssetsMintedEvent, factory.CreateMintAction(c.collection, id, payer, c.unitPrice.String()))
	}

	return ids, nil
}

func (c *controller) forwardPayment(payment *big.Int, referrer string) error {
	if referrer == "" {
		return c.tokens.Transfer(c.treasury, c.beneficiary, payment)
	}

	referrerShare, beneficiaryShare := funds.Split(payment, entity.ReferralPct)

	if err := c.tokens.Transfer(c.treasury, referrer, referrerShare); err != nil {
		return err
	}

	return c.tokens.Transfer(c.treasury, c.beneficiary, beneficiaryShare)
}

func (c *controller) MintedCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.minted
}

func (c *controller) UnitPrice() *big.Int {
	return new(big.Int).Set(c.unitPrice)
}

// SwapForTreasury converts accumulated payment tokens held by the treasury
// into the platform token through the AMM router.
func (c *controller) SwapForTreasury(caller string, amountIn, minOut *big.Int, deadline int64) (*big.Int, error) {
	if caller != c.admin {
		return nil, ErrUnauthorized
	}
	if c.router == nil {
		return nil, ErrNoRouter
	}

	out, err := c.router.SwapExactTokensForTokens(
		c.treasury,
		amountIn,
		minOut,
		[]string{c.paymentToken, c.platformToken},
		c.treasury,
		deadline,
	)
	if err != nil {
		return nil, err
	}

	zap.L().With(
		zap.String("amountIn", amountIn.String()),
		zap.String("amountOut", out.String()),
	).Info("Treasury swap")

	return out, nil
}

// AddTreasuryLiquidity provisions the payment/platform pool with treasury funds.
func (c *controller) AddTreasuryLiquidity(caller string, amountPayment, amountPlatform, minPayment, minPlatform *big.Int, deadline int64) error {
	if caller != c.admin {
		return ErrUnauthorized
	}
	if c.router == nil {
		return ErrNoRouter
	}

	usedPayment, usedPlatform, err := c.router.AddLiquidity(
		c.treasury,
		c.paymentToken,
		c.platformToken,
		amountPayment,
		amountPlatform,
		minPayment,
		minPlatform,
		c.treasury,
		deadline,
	)
	if err != nil {
		return err
	}

	zap.L().With(
		zap.String("payment", usedPayment.String()),
		zap.String("platform", usedPlatform.String()),
	).Info("Treasury liquidity added")

	return nil
}

func (c *controller) reportStranded(op, payer string, payment *big.Int, err error) {
	report := dev.NewError("sale", op, err, map[string]interface{}{
		"collection": c.collection,
		"payer":      payer,
		"payment":    payment.String(),
	})

	zap.L().With(zap.Error(err), zap.String("op", op)).Error("Sale settlement failed")

	event.EmitEvent(event.SettlementFailedEvent, report)
}
