package time_test

import (
	"fmt"

	timestats "github.com/cwbudde/algo-ecg/stats/time"
)

func ExampleCalculate() {
	s := timestats.Calculate([]float64{0.2, -0.1, 1.1, -0.3})
	fmt.Printf("dc=%.3f peak=%.1f at %d range=%.1f\n", s.DC, s.Peak, s.MaxPos, s.Range)

	// Output:
	// dc=0.225 peak=1.1 at 2 range=1.4
}
