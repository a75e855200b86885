package sale

import "errors"

var (
	// ErrSaleNotStarted indicates a mint attempt before activation.
	ErrSaleNotStarted = errors.New("sale: sale is not start")

	// ErrAlreadyActive indicates a second activation of a live sale.
	ErrAlreadyActive = errors.New("sale: sale already active")

	// ErrUnauthorized indicates the caller is not the sale administrator.
	ErrUnauthorized = errors.New("sale: only owner")

	// ErrInvalidQuantity indicates a mint count outside [1, 20].
	ErrInvalidQuantity = errors.New("sale: invalid quantity")

	// ErrIncorrectPayment indicates the payment does not match count * unit price.
	ErrIncorrectPayment = errors.New("sale: value sent is not correct")

	// ErrNoRouter indicates a treasury operation without a configured AMM router.
	ErrNoRouter = errors.New("sale: no amm router configured")
)
