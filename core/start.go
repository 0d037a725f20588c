package core

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// StartRange holds one start offset or a half-open [low, high) pair.
type StartRange []int

// Bounds normalizes the range to [low, high). A single value s becomes
// [s, s+1).
func (r StartRange) Bounds() (low, high int, err error) {
	switch len(r) {
	case 1:
		low, high = r[0], r[0]+1
	case 2:
		low, high = r[0], r[1]
	default:
		return 0, 0, fmt.Errorf("expected 1 or 2 values, got %d", len(r))
	}
	if low < 0 {
		return 0, 0, errors.New("start must not be negative")
	}
	if high <= low {
		return 0, 0, fmt.Errorf("empty range [%d, %d)", low, high)
	}
	return low, high, nil
}

// UnmarshalYAML accepts either a scalar (`start: 5`) or a sequence
// (`start: [0, 3]`).
func (r *StartRange) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var v int
		if err := value.Decode(&v); err != nil {
			return err
		}
		*r = StartRange{v}
		return nil
	}
	var vs []int
	if err := value.Decode(&vs); err != nil {
		return err
	}
	*r = StartRange(vs)
	return nil
}
