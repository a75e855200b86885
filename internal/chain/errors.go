package chain

import "errors"

var (
	ErrAssetNotFound = errors.New("chain: asset not found")

	ErrNotAssetOwner = errors.New("chain: caller does not own the asset")

	// ErrNotApproved indicates the caller was never approved to move the asset.
	ErrNotApproved = errors.New("chain: caller is not approved for the asset")

	ErrInvalidQuantity = errors.New("chain: mint quantity must be positive")

	ErrInvalidAmount = errors.New("chain: amount must not be negative")

	ErrInsufficientBalance = errors.New("chain: insufficient balance")

	// ErrInsufficientAllowance indicates a transferFrom without enough prior approval.
	ErrInsufficientAllowance = errors.New("chain: insufficient allowance")
)
