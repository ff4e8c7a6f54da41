package texgen

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Map salts keep the noise of each map independent for the same tone.
const (
	saltPore uint64 = iota + 1
	saltBump
	saltImperfection
	saltRoughness
	saltTint
	saltSSS
)

// seedFor mixes the tone key and a map salt into a PCG seed.
func seedFor(key uint32, salt uint64) (uint64, uint64) {
	return uint64(key)*0x9E3779B97F4A7C15 ^ salt, salt*0xBF58476D1CE4E5B9 + 1
}

// lattice is one octave of periodic value noise.
type lattice struct {
	period int
	vals   []float64
}

func newLattice(r *rand.Rand, period int) *lattice {
	l := &lattice{period: period, vals: make([]float64, period*period)}
	for i := range l.vals {
		l.vals[i] = r.Float64()
	}
	return l
}

// at samples the lattice at (u, v) in cell units; indices wrap so the field
// tiles with the lattice period.
func (l *lattice) at(u, v float64) float64 {
	x0f, y0f := math.Floor(u), math.Floor(v)
	fx, fy := smooth(u-x0f), smooth(v-y0f)
	x0 := wrap(int(x0f), l.period)
	y0 := wrap(int(y0f), l.period)
	x1 := (x0 + 1) % l.period
	y1 := (y0 + 1) % l.period

	a := l.vals[y0*l.period+x0]
	b := l.vals[y0*l.period+x1]
	c := l.vals[y1*l.period+x0]
	d := l.vals[y1*l.period+x1]
	top := a + (b-a)*fx
	bottom := c + (d-c)*fx
	return top + (bottom-top)*fy
}

func smooth(t float64) float64 { return t * t * (3 - 2*t) }

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// octaves describes a fractal sum: the first octave has baseFreq cells
// across the map, each further octave doubles it and scales amplitude by gain.
type octaves struct {
	baseFreq int
	count    int
	gain     float64
}

// fbm fills a size×size field with tileable fractal value noise normalized
// to [0,1]. The same key, salt and octaves always give the same field.
func fbm(size int, key uint32, salt uint64, oct octaves) []float64 {
	s1, s2 := seedFor(key, salt)
	r := rand.New(rand.NewPCG(s1, s2))

	field := make([]float64, size*size)
	amp := 1.0
	freq := oct.baseFreq
	for o := 0; o < oct.count; o++ {
		period := min(freq, size)
		lat := newLattice(r, period)
		scale := float64(period) / float64(size)
		for y := 0; y < size; y++ {
			v := (float64(y) + 0.5) * scale
			row := field[y*size : (y+1)*size]
			for x := range row {
				row[x] += amp * lat.at((float64(x)+0.5)*scale, v)
			}
		}
		amp *= oct.gain
		freq *= 2
	}
	normalize(field)
	return field
}

// normalize rescales values in place to [0,1]. A flat field becomes 0.5.
func normalize(field []float64) {
	if len(field) == 0 {
		return
	}
	lo, hi := floats.Min(field), floats.Max(field)
	if hi-lo < 1e-12 {
		for i := range field {
			field[i] = 0.5
		}
		return
	}
	floats.AddConst(-lo, field)
	floats.Scale(1/(hi-lo), field)
}
