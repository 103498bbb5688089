package biquad

import (
	"sync"

	"github.com/cwbudde/algo-vecmath/cpu"
)

// blockFn filters buf in place starting from state (d0, d1) and returns the
// state after the last sample.
type blockFn func(c Coefficients, d0, d1 float64, buf []float64) (float64, float64)

var (
	blockImpl     blockFn
	blockInitOnce sync.Once
)

func blockKernel() blockFn {
	blockInitOnce.Do(func() {
		blockImpl = selectKernel(cpu.DetectFeatures())
	})
	return blockImpl
}

// selectKernel picks the unrolled kernel unless generic code is forced.
// Both kernels execute the same operations in the same order.
func selectKernel(f cpu.Features) blockFn {
	if f.ForceGeneric {
		return processBlockScalar
	}
	return processBlockUnrolled2
}

func processBlockScalar(c Coefficients, d0, d1 float64, buf []float64) (float64, float64) {
	for i, x := range buf {
		y := c.B0*x + d0
		d0 = c.B1*x - c.A1*y + d1
		d1 = c.B2*x - c.A2*y
		buf[i] = y
	}
	return d0, d1
}

// processBlockUnrolled2 handles two samples per iteration to cut loop
// overhead on the 1024-sample voice chunks.
func processBlockUnrolled2(c Coefficients, d0, d1 float64, buf []float64) (float64, float64) {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2

	i := 0
	n := len(buf)
	for ; i+1 < n; i += 2 {
		x0 := buf[i]
		y0 := b0*x0 + d0
		d0n := b1*x0 - a1*y0 + d1
		d1n := b2*x0 - a2*y0

		x1 := buf[i+1]
		y1 := b0*x1 + d0n
		d0 = b1*x1 - a1*y1 + d1n
		d1 = b2*x1 - a2*y1

		buf[i] = y0
		buf[i+1] = y1
	}

	if i < n {
		x := buf[i]
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}

	return d0, d1
}
