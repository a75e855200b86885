package referral

import (
	"errors"
	"github.com/CrossPunks/marketplace-engine/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrUnknownReferral = errors.New("referral: unknown referral id")
)

// Registry hands out stable referrer ids for the primary-sale split.
// The first registration gets entity.ReferralBaseId; repeat registrations by
// the same identity return the existing id without side effects.
type Registry interface {
	Register(identity string) (uint64, error)
	Lookup(id uint64) (string, error)
}

type registry struct {
	repo repository.ReferralRepository
}

func NewRegistry(repo repository.ReferralRepository) Registry {
	return registry{repo}
}

func (r registry) Register(identity string) (uint64, error) {
	id, err := r.repo.Register(identity)
	if err != nil {
		return 0, err
	}

	zap.L().With(zap.String("identity", identity), zap.Uint64("id", id)).Debug("Referral registered")

	return id, nil
}

func (r registry) Lookup(id uint64) (string, error) {
	identity, err := r.repo.GetIdentity(id)
	if err != nil {
		if errors.Is(err, repository.ErrReferralNotFound) {
			return "", ErrUnknownReferral
		}
		return "", err
	}

	return identity, nil
}
