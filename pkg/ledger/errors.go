package ledger

import (
	"errors"
	"fmt"
	"math"

	"github.com/envelope-zero/ledger/pkg/models"
)

var (
	// ErrEnvelopeNotFound is returned when the envelope ID does not exist.
	// It wraps models.ErrResourceNotFound.
	ErrEnvelopeNotFound = fmt.Errorf("%w envelope with this ID", models.ErrResourceNotFound)

	// ErrStore is returned when the storage transaction could not be
	// committed. The transaction has been rolled back.
	ErrStore = errors.New("the ledger could not be updated")

	// ErrBalanceOutOfRange is returned when a balance would not fit
	// into 64 bits of minor units.
	ErrBalanceOutOfRange = errors.New("the resulting balance is out of range")
)

// add returns a + b, or ErrBalanceOutOfRange if the sum overflows.
func add(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrBalanceOutOfRange
	}

	return a + b, nil
}

// storeError wraps err with ErrStore unless it already carries a
// classification.
func storeError(err error) error {
	if err == nil || errors.Is(err, ErrStore) || errors.Is(err, ErrBalanceOutOfRange) || errors.Is(err, models.ErrResourceNotFound) || errors.Is(err, models.ErrEnvelopeNameRequired) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrStore, err)
}
