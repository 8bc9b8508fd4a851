package window

import (
	"errors"
	"fmt"
)

var (
	errNoCoefficients = errors.New("no window coefficients")
	errZeroGain       = errors.New("coherent gain is zero")
	errLengthMismatch = errors.New("sample and coefficient lengths differ")
)

func validateSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("invalid window size %d", size)
	}

	return nil
}
