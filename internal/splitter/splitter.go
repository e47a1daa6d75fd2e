package splitter

import (
	"errors"
	"math/rand"
)

var ErrInvalidSplit = errors.New("total and count must be positive, and total must cover at least 1 per share")

// Split divides total into count positive integer shares summing to total.
// Every share gets total/count; the remainder is spread one unit each over
// shares picked uniformly at random. Callers must not attach meaning to the
// order of the result: claims take an arbitrary unclaimed row, not the Nth.
func Split(total int64, count int) ([]int64, error) {
	if count <= 0 || total <= 0 || total < int64(count) {
		return nil, ErrInvalidSplit
	}

	base := total / int64(count)
	remainder := int(total % int64(count))

	shares := make([]int64, count)
	for i := range shares {
		shares[i] = base
	}

	for _, i := range rand.Perm(count)[:remainder] {
		shares[i]++
	}

	return shares, nil
}
