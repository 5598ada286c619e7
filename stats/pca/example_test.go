package pca_test

import (
	"fmt"

	"github.com/cwbudde/algo-ecg/stats/pca"
)

func ExampleFit() {
	rows := [][]float64{{1, 2}, {2, 4}, {3, 6}}
	m, err := pca.Fit(rows, 1)
	if err != nil {
		panic(err)
	}

	proj, err := m.Transform([][]float64{{4, 8}})
	if err != nil {
		panic(err)
	}
	fmt.Printf("component %.3f\n", m.Components[0])
	fmt.Printf("ratio %.3f\n", m.ExplainedVarianceRatio[0])
	fmt.Printf("projection %.3f\n", proj[0][0])

	// Output:
	// component [0.447 0.894]
	// ratio 1.000
	// projection 4.472
}
