package imgdiff

import(
	"fmt"
	"math"

	"github.com/codahale/hdrhistogram"
	"gonum.org/v1/gonum/floats"

	"github.com/abworrall/hdr-compare/pkg/radiance"
)

// Errors are histogrammed in millionths of a radiance unit.
const(
	statsScale    = 1e6
	statsMaxValue = 1e12
)

// Stats summarizes how far apart two renders are, over all channel values.
type Stats struct {
	RMSE   float64
	P50    float64 // median absolute error
	P99    float64
	Max    float64
}

func (s Stats)String() string {
	return fmt.Sprintf("rmse=%.6f, p50=%.6f, p99=%.6f, max=%.6f", s.RMSE, s.P50, s.P99, s.Max)
}

// CompareStats computes the error statistics of a against b.
func CompareStats(a, b *radiance.Image) (Stats, error) {
	diff, err := Difference(a, b)
	if err != nil {
		return Stats{}, err
	}
	if len(diff.Pix) == 0 {
		return Stats{}, nil
	}

	va := make([]float64, len(a.Pix))
	vb := make([]float64, len(b.Pix))
	for i := range a.Pix {
		va[i], vb[i] = float64(a.Pix[i]), float64(b.Pix[i])
	}

	s := Stats{
		RMSE: floats.Distance(va, vb, 2) / math.Sqrt(float64(len(va))),
	}

	hist := hdrhistogram.New(1, statsMaxValue, 3)
	for _, v := range diff.Pix {
		abs := math.Abs(float64(v))
		if abs > s.Max {
			s.Max = abs
		}
		scaled := int64(math.Min(abs*statsScale, statsMaxValue))
		if math.IsNaN(abs) {
			scaled = 0
		}
		hist.RecordValue(scaled)
	}
	s.P50 = float64(hist.ValueAtQuantile(50)) / statsScale
	s.P99 = float64(hist.ValueAtQuantile(99)) / statsScale

	return s, nil
}
