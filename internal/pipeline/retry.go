package pipeline

import (
	"errors"
	"io"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/careersync/internal/tabular"
)

// MaxRetries bounds how many times a table file is read before giving up.
const MaxRetries = 3

const (
	settleDelay    = 500 * time.Millisecond
	maxSettleDelay = 10 * time.Second
)

// IsRetryable reports whether a read failed because the listing is still
// being written: an empty file, or one cut off mid-record.
func IsRetryable(err error) bool {
	return errors.Is(err, tabular.ErrEmptySource) || errors.Is(err, io.ErrUnexpectedEOF)
}

// Backoff returns the wait before attempt+1: settleDelay doubled per
// attempt, capped at maxSettleDelay, plus up to half again as jitter.
func Backoff(attempt int) time.Duration {
	d := settleDelay << min(attempt, 8)
	d = min(d, maxSettleDelay)
	return d + time.Duration(rand.Int64N(int64(d)/2))
}
