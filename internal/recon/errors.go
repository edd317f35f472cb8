package recon

import (
	"errors"
	"fmt"

	"rawdb/internal/model"
)

// ErrStoreInconsistency indicates a violated store invariant, such as a
// duplicate path inside one inventory. It aborts the whole pass before any
// saved flag is mutated: every downstream guarantee assumes path uniqueness.
var ErrStoreInconsistency = errors.New("store inconsistency")

func duplicatePathError(side model.Side, path string) error {
	return fmt.Errorf("%w: duplicate path %q in %s inventory", ErrStoreInconsistency, path, side)
}
