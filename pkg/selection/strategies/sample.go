package strategies

import (
	"math"
	"math/rand/v2"
)

// sampleBeta draws a sample from Beta(alpha, beta) using two gamma draws:
// X ~ Gamma(alpha), Y ~ Gamma(beta), X/(X+Y) ~ Beta(alpha, beta).
func sampleBeta(rng *rand.Rand, alpha, beta float64) float64 {
	x := sampleGamma(rng, alpha)
	y := sampleGamma(rng, beta)
	if x+y == 0 {
		// Degenerate draw, only possible through floating-point underflow
		// at extreme shape values.
		return 0.5
	}
	return x / (x + y)
}

// sampleGamma draws a sample from Gamma(shape, 1) using the Marsaglia-Tsang
// squeeze method. Shapes below 1 are handled with the standard boost
// Gamma(a) = Gamma(a+1) * U^(1/a).
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		return sampleGamma(rng, shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		x := rng.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v

		u := rng.Float64()
		if u < 1.0-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v
		}
	}
}

// newRand builds a seeded random source. A zero seed selects a
// nondeterministic source; a fixed seed yields a reproducible sequence for
// testing.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}
