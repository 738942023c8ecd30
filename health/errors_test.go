package health

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_Distinct(t *testing.T) {
	sentinels := []error{ErrCheckFailed, ErrCheckTimeout, ErrCheckerNotFound}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v matches %v", a, b)
			}
		}
	}
}

func TestSentinelErrors_SurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("checking github: %w", ErrCheckTimeout)

	if !errors.Is(wrapped, ErrCheckTimeout) {
		t.Error("wrapped error lost ErrCheckTimeout identity")
	}
}
