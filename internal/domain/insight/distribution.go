package insight

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Bin is one histogram bar covering [Lo, Hi).
// The last bin of a histogram also includes Hi.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Point is one sample of the density curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distribution is a histogram of one numeric field with a Gaussian kernel
// density estimate scaled to the histogram's counts.
type Distribution struct {
	Field     string  `json:"field"`
	Title     string  `json:"title"`
	N         int     `json:"n"`
	Bins      []Bin   `json:"bins"`
	Density   []Point `json:"density,omitempty"`
	Bandwidth float64 `json:"bandwidth,omitempty"`
}

// NewDistribution bins values and fits the density overlay. Missing (NaN)
// and infinite values are dropped first; N counts what remains.
func NewDistribution(field, title string, values []float64, gridSize int) Distribution {
	values = finite(values)
	d := Distribution{Field: field, Title: title, N: len(values)}
	if len(values) == 0 {
		return d
	}
	d.Bins = Histogram(values)
	if len(d.Bins) > 0 {
		width := d.Bins[0].Hi - d.Bins[0].Lo
		d.Density, d.Bandwidth = KDE(values, gridSize, float64(len(values))*width)
	}
	return d
}

// BinEdges picks histogram edges with the "auto" rule: the smaller bin width
// of Sturges and Freedman-Diaconis, Sturges alone when the IQR is zero.
func BinEdges(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		return []float64{lo - 0.5, hi + 0.5}
	}
	n := float64(len(values))
	span := hi - lo

	width := span / (math.Log2(n) + 1)
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)
	if fd := 2 * iqr * math.Pow(n, -1.0/3); fd > 0 && fd < width {
		width = fd
	}

	bins := int(math.Ceil(span / width))
	if bins < 1 {
		bins = 1
	}
	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	return edges
}

// Histogram counts values into the bins chosen by BinEdges.
func Histogram(values []float64) []Bin {
	edges := BinEdges(values)
	if len(edges) < 2 {
		return nil
	}
	bins := make([]Bin, len(edges)-1)
	for i := range bins {
		bins[i] = Bin{Lo: edges[i], Hi: edges[i+1]}
	}
	lo, hi := edges[0], edges[len(edges)-1]
	width := (hi - lo) / float64(len(bins))
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= len(bins) {
			i = len(bins) - 1
		}
		if i < 0 {
			i = 0
		}
		bins[i].Count++
	}
	return bins
}

// KDE evaluates a Gaussian kernel density estimate with Scott's bandwidth on
// gridSize points spanning the data range, multiplied by scale. It returns no
// curve when the sample has fewer than two points or no spread.
func KDE(values []float64, gridSize int, scale float64) ([]Point, float64) {
	if len(values) < 2 || gridSize < 2 {
		return nil, 0
	}
	_, sd := stat.MeanStdDev(values, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil, 0
	}
	n := float64(len(values))
	bw := sd * math.Pow(n, -1.0/5)

	xs := make([]float64, gridSize)
	floats.Span(xs, floats.Min(values), floats.Max(values))

	kernel := distuv.Normal{Mu: 0, Sigma: bw}
	out := make([]Point, gridSize)
	for i, x := range xs {
		var sum float64
		for _, v := range values {
			sum += kernel.Prob(x - v)
		}
		out[i] = Point{X: x, Y: sum / n * scale}
	}
	return out, bw
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
