package flux

import (
	"fmt"
	"testing"
)

func BenchmarkComputeSensibleHeatFlux(b *testing.B) {
	for _, bc := range []struct {
		name string
		opts Options
	}{
		{"15min-double-rotation", Profile15Min()},
		{"30min-planar-fit", Profile30Min()},
	} {
		s := synthetic(bc.opts.MinSamples)
		b.Run(fmt.Sprintf("%s/%d", bc.name, s.Len()), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := ComputeSensibleHeatFlux(s, bc.opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
