// Package sweep plans power-of-two node sweeps and the wall-clock budget
// each run of a sweep gets.
package sweep

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

var ErrInvalidRange = errors.New("invalid node range")

// log2 is floor(log2(n)) for n >= 1 and 0 otherwise.
func log2(n int) int {
	if n < 1 {
		return 0
	}
	return bits.Len(uint(n)) - 1
}

// Plan returns the node counts 2^minLog .. 2^maxLog in increasing order,
// where minLog = max(1, log2(minNodes)) and maxLog = max(minLog+1,
// log2(maxNodes)). Counts above maxNodes are cut off. A sweep never starts
// below 2 nodes.
func Plan(minNodes, maxNodes int) ([]int, error) {
	if maxNodes < 2 {
		return nil, fmt.Errorf("%w: max nodes %d is below 2", ErrInvalidRange, maxNodes)
	}
	minLog := max(1, log2(minNodes))
	maxLog := max(minLog+1, log2(maxNodes))

	var counts []int
	for i := minLog; i <= maxLog; i++ {
		nodes := 1 << i
		if nodes > maxNodes {
			break
		}
		counts = append(counts, nodes)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("%w: no power of two between %d and %d nodes",
			ErrInvalidRange, minNodes, maxNodes)
	}
	return counts, nil
}

// Seconds is the per-run allowance: the total budget split across nodes,
// plus the fudge for queueing overhead, rounded to the nearest second.
func Seconds(totalHours float64, fudgeSeconds, nodes int) int {
	total := totalHours * 3600
	return int(math.Round(total/float64(nodes))) + fudgeSeconds
}

// Budget formats Seconds as HH:MM:SS. The hour field is not wrapped at 24.
func Budget(totalHours float64, fudgeSeconds, nodes int) string {
	return FormatWalltime(Seconds(totalHours, fudgeSeconds, nodes))
}

func FormatWalltime(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
