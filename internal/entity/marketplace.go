package entity

const (
	// CommissionPct is the marketplace cut of every settled trade.
	CommissionPct uint = 5

	// ReferralPct is the referrer share of a referred primary-sale payment.
	ReferralPct uint = 10
)

const (
	MaxQuantityPerMint int = 20

	// ReferralBaseId is the id handed to the first registered referrer.
	ReferralBaseId uint64 = 1000
)
