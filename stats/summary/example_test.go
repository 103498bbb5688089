package summary_test

import (
	"fmt"

	"github.com/cwbudde/algo-voice/stats/summary"
)

func ExampleAccumulator() {
	var levels summary.Accumulator
	for _, db := range []float64{-30, -20, -25} {
		levels.Add(db)
	}

	s := levels.Result()
	fmt.Printf("mean=%.1f max=%.1f\n", s.Mean, s.Max)
	// Output:
	// mean=-25.0 max=-20.0
}
