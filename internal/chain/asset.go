package chain

import (
	"sync"
)

// AssetRegistry is the ownership registry for non-fungible assets, keyed by
// (collection, tokenId). The settlement engine only ever consumes this
// interface; the in-memory registry below backs local mode and tests.
type AssetRegistry interface {
	OwnerOf(collection string, tokenId uint64) (string, error)
	ApprovedFor(collection string, tokenId uint64) (string, error)
	Approve(caller, operator, collection string, tokenId uint64) error
	TransferFrom(caller, from, to, collection string, tokenId uint64) error
	Mint(collection, to string, count int) ([]uint64, error)
	TotalSupply(collection string) uint64
}

type memoryAssetRegistry struct {
	mu          sync.RWMutex
	collections map[string]*collectionState
}

type collectionState struct {
	nextId    uint64
	owners    map[uint64]string
	approvals map[uint64]string
}

func NewMemoryAssetRegistry() AssetRegistry {
	return &memoryAssetRegistry{collections: map[string]*collectionState{}}
}

func (r *memoryAssetRegistry) OwnerOf(collection string, tokenId uint64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[collection]
	if !ok {
		return "", ErrAssetNotFound
	}

	owner, ok := c.owners[tokenId]
	if !ok {
		return "", ErrAssetNotFound
	}

	return owner, nil
}

func (r *memoryAssetRegistry) ApprovedFor(collection string, tokenId uint64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[collection]
	if !ok {
		return "", ErrAssetNotFound
	}
	if _, ok := c.owners[tokenId]; !ok {
		return "", ErrAssetNotFound
	}

	return c.approvals[tokenId], nil
}

func (r *memoryAssetRegistry) Approve(caller, operator, collection string, tokenId uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collections[collection]
	if !ok {
		return ErrAssetNotFound
	}

	owner, ok := c.owners[tokenId]
	if !ok {
		return ErrAssetNotFound
	}
	if owner != caller {
		return ErrNotAssetOwner
	}

	c.approvals[tokenId] = operator

	return nil
}

// TransferFrom moves the asset from `from` to `to`. The caller must be the
// current owner or the approved operator. Any approval is cleared on transfer.
func (r *memoryAssetRegistry) TransferFrom(caller, from, to, collection string, tokenId uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collections[collection]
	if !ok {
		return ErrAssetNotFound
	}

	owner, ok := c.owners[tokenId]
	if !ok {
		return ErrAssetNotFound
	}
	if owner != from {
		return ErrNotAssetOwner
	}
	if caller != owner && c.approvals[tokenId] != caller {
		return ErrNotApproved
	}

	c.owners[tokenId] = to
	delete(c.approvals, tokenId)

	return nil
}

func (r *memoryAssetRegistry) Mint(collection, to string, count int) ([]uint64, error) {
	if count < 1 {
		return nil, ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collections[collection]
	if !ok {
		c = &collectionState{nextId: 1, owners: map[uint64]string{}, approvals: map[uint64]string{}}
		r.collections[collection] = c
	}

	ids := make([]uint64, 0, count)
	for i := 0; i < count; i++ {
		c.owners[c.nextId] = to
		ids = append(ids, c.nextId)
		c.nextId++
	}

	return ids, nil
}

func (r *memoryAssetRegistry) TotalSupply(collection string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[collection]
	if !ok {
		return 0
	}

	return uint64(len(c.owners))
}
