package commands

import (
	"errors"
	"fmt"
	"time"

	"relocation/internal/pkg/errs"
	"relocation/internal/pkg/guard"
)

var ErrExpireStaleOffersCommandIsNotConstructed = errors.New(
	"ExpireStaleOffersCommand must be created via NewExpireStaleOffersCommand constructor",
)

// ExpireStaleOffersCommand closes pending offers that have waited longer than ttl for
// an answer.
type ExpireStaleOffersCommand struct {
	ttl   time.Duration
	guard guard.ConstructorGuard
}

func NewExpireStaleOffersCommand(ttl time.Duration) (ExpireStaleOffersCommand, error) {
	if ttl <= 0 {
		return ExpireStaleOffersCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"offer ttl", fmt.Errorf("%s is not positive", ttl))
	}
	return ExpireStaleOffersCommand{ttl: ttl, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireStaleOffersCommand) Validate() error {
	return c.guard.Validate(ErrExpireStaleOffersCommandIsNotConstructed)
}

func (c ExpireStaleOffersCommand) TTL() time.Duration {
	return c.ttl
}
