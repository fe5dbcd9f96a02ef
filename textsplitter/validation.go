package textsplitter

import "fmt"

func validateMaxUnits(maxUnits int) error {
	if maxUnits < 1 {
		return fmt.Errorf("%w: must be at least 1, got %d", ErrInvalidMaxUnits, maxUnits)
	}
	return nil
}
