package feed

import (
	"github.com/LeJamon/goPriceFeed/internal/core/errors"
	"github.com/LeJamon/goPriceFeed/internal/core/symbol"
)

// ModuleName is the module used for errors originating in the feed.
const ModuleName = "pricefeed"

var (
	// ErrInvalidArgument is returned for pairs that cannot be used as a
	// storage key.
	ErrInvalidArgument = errors.New(ModuleName, 1, "invalid argument")

	// ErrCorruptKey is returned when a stored key does not have the
	// price key layout.
	ErrCorruptKey = errors.New(ModuleName, 2, "corrupt price key")

	// ErrNoBoundPair is returned when the static provider is requested
	// but no bound_pair is configured.
	ErrNoBoundPair = errors.New(ModuleName, 3, "no bound pair configured")
)

// dispatchError maps symbol validation failures to ErrInvalidArgument,
// keeping the original message as context.
func dispatchError(err error) error {
	if errors.Is(err, symbol.ErrLengthExceeded) || errors.Is(err, symbol.ErrInvalidUTF8) {
		return errors.WithContext(ErrInvalidArgument, err.Error())
	}
	return err
}

func isInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
