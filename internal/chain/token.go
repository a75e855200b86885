package chain

import (
	"math/big"
	"sync"
)

// TokenLedger is the fungible payment-token ledger. Transfers debit the
// caller; TransferFrom additionally spends the caller's allowance granted
// by `from` through Approve.
type TokenLedger interface {
	BalanceOf(identity string) *big.Int
	Transfer(caller, to string, amount *big.Int) error
	TransferFrom(caller, from, to string, amount *big.Int) error
	Approve(caller, spender string, amount *big.Int) error
	Allowance(owner, spender string) *big.Int
}

type MemoryTokenLedger struct {
	mu         sync.RWMutex
	symbol     string
	balances   map[string]*big.Int
	allowances map[string]map[string]*big.Int
}

func NewMemoryTokenLedger(symbol string) *MemoryTokenLedger {
	return &MemoryTokenLedger{
		symbol:     symbol,
		balances:   map[string]*big.Int{},
		allowances: map[string]map[string]*big.Int{},
	}
}

func (l *MemoryTokenLedger) Symbol() string {
	return l.symbol
}

// Mint credits freshly issued units to an identity. Not part of TokenLedger;
// local mode and tests seed balances through it.
func (l *MemoryTokenLedger) Mint(to string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.credit(to, amount)

	return nil
}

func (l *MemoryTokenLedger) BalanceOf(identity string) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if balance, ok := l.balances[identity]; ok {
		return new(big.Int).Set(balance)
	}

	return big.NewInt(0)
}

func (l *MemoryTokenLedger) Transfer(caller, to string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.debit(caller, amount); err != nil {
		return err
	}
	l.credit(to, amount)

	return nil
}

func (l *MemoryTokenLedger) TransferFrom(caller, from, to string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	allowance := l.allowance(from, caller)
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}

	if err := l.debit(from, amount); err != nil {
		return err
	}
	l.credit(to, amount)

	if _, ok := l.allowances[from]; !ok {
		l.allowances[from] = map[string]*big.Int{}
	}
	l.allowances[from][caller] = new(big.Int).Sub(allowance, amount)

	return nil
}

func (l *MemoryTokenLedger) Approve(caller, spender string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.allowances[caller]; !ok {
		l.allowances[caller] = map[string]*big.Int{}
	}
	l.allowances[caller][spender] = new(big.Int).Set(amount)

	return nil
}

func (l *MemoryTokenLedger) Allowance(owner, spender string) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return new(big.Int).Set(l.allowance(owner, spender))
}

func (l *MemoryTokenLedger) allowance(owner, spender string) *big.Int {
	if granted, ok := l.allowances[owner]; ok {
		if allowance, ok := granted[spender]; ok {
			return allowance
		}
	}

	return big.NewInt(0)
}

func (l *MemoryTokenLedger) debit(identity string, amount *big.Int) error {
	// A zero debit must succeed for identities with no balance entry, or
	// zero-price settlements cannot clear.
	if amount.Sign() == 0 {
		return nil
	}

	balance, ok := l.balances[identity]
	if !ok || balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	l.balances[identity] = new(big.Int).Sub(balance, amount)

	return nil
}

func (l *MemoryTokenLedger) credit(identity string, amount *big.Int) {
	balance, ok := l.balances[identity]
	if !ok {
		balance = big.NewInt(0)
	}

	l.balances[identity] = new(big.Int).Add(balance, amount)
}
