package training

import (
	"math"

	"CoinPulse/internal/forecast"
)

// stepCache holds the activations of one timestep, kept for the backward
// pass.
type stepCache struct {
	x  []float64
	i  []float64
	f  []float64
	g  []float64
	o  []float64
	c  []float64
	h  []float64
	tc []float64
}

// forwardCached mirrors the serving forward pass while recording every gate
// activation.
func forwardCached(m *forecast.Model, window [][]float64) (float64, []stepCache) {
	h := make([]float64, m.Hidden)
	c := make([]float64, m.Hidden)
	caches := make([]stepCache, len(window))

	for t, x := range window {
		cc := stepCache{
			x: x,
			i: make([]float64, m.Hidden), f: make([]float64, m.Hidden),
			g: make([]float64, m.Hidden), o: make([]float64, m.Hidden),
			c: make([]float64, m.Hidden), h: make([]float64, m.Hidden),
			tc: make([]float64, m.Hidden),
		}
		for j := 0; j < m.Hidden; j++ {
			cc.i[j] = sigmoid(dot(m.Wi[j], x) + dot(m.Ui[j], h) + m.Bi[j])
			cc.f[j] = sigmoid(dot(m.Wf[j], x) + dot(m.Uf[j], h) + m.Bf[j])
			cc.g[j] = math.Tanh(dot(m.Wg[j], x) + dot(m.Ug[j], h) + m.Bg[j])
			cc.o[j] = sigmoid(dot(m.Wo[j], x) + dot(m.Uo[j], h) + m.Bo[j])
		}
		for j := 0; j < m.Hidden; j++ {
			cc.c[j] = cc.f[j]*c[j] + cc.i[j]*cc.g[j]
			cc.tc[j] = math.Tanh(cc.c[j])
			cc.h[j] = cc.o[j] * cc.tc[j]
		}
		h, c = cc.h, cc.c
		caches[t] = cc
	}

	return dot(m.DenseW, h) + m.DenseB, caches
}

// backward accumulates dLoss/dParam into grad via backpropagation through
// time. dy is dLoss/dOutput for this sample.
func backward(m *forecast.Model, caches []stepCache, dy float64, grad *gradient) {
	hidden := m.Hidden
	T := len(caches)
	zero := make([]float64, hidden)

	dh := make([]float64, hidden)
	dc := make([]float64, hidden)
	last := caches[T-1]
	for j := 0; j < hidden; j++ {
		dh[j] = m.DenseW[j] * dy
		grad.DenseW[j] += dy * last.h[j]
	}
	grad.DenseB += dy

	diPre := make([]float64, hidden)
	dfPre := make([]float64, hidden)
	dgPre := make([]float64, hidden)
	doPre := make([]float64, hidden)

	for t := T - 1; t >= 0; t-- {
		cc := caches[t]
		hPrev, cPrev := zero, zero
		if t > 0 {
			hPrev, cPrev = caches[t-1].h, caches[t-1].c
		}

		for j := 0; j < hidden; j++ {
			do := dh[j] * cc.tc[j]
			dcj := dc[j] + dh[j]*cc.o[j]*(1-cc.tc[j]*cc.tc[j])
			di := dcj * cc.g[j]
			dg := dcj * cc.i[j]
			df := dcj * cPrev[j]

			diPre[j] = di * cc.i[j] * (1 - cc.i[j])
			dfPre[j] = df * cc.f[j] * (1 - cc.f[j])
			dgPre[j] = dg * (1 - cc.g[j]*cc.g[j])
			doPre[j] = do * cc.o[j] * (1 - cc.o[j])

			dc[j] = dcj * cc.f[j]
		}

		for j := 0; j < hidden; j++ {
			for k := 0; k < m.Inputs; k++ {
				grad.Wi[j][k] += diPre[j] * cc.x[k]
				grad.Wf[j][k] += dfPre[j] * cc.x[k]
				grad.Wg[j][k] += dgPre[j] * cc.x[k]
				grad.Wo[j][k] += doPre[j] * cc.x[k]
			}
			for k := 0; k < hidden; k++ {
				grad.Ui[j][k] += diPre[j] * hPrev[k]
				grad.Uf[j][k] += dfPre[j] * hPrev[k]
				grad.Ug[j][k] += dgPre[j] * hPrev[k]
				grad.Uo[j][k] += doPre[j] * hPrev[k]
			}
			grad.Bi[j] += diPre[j]
			grad.Bf[j] += dfPre[j]
			grad.Bg[j] += dgPre[j]
			grad.Bo[j] += doPre[j]
		}

		for k := 0; k < hidden; k++ {
			s := 0.0
			for j := 0; j < hidden; j++ {
				s += m.Ui[j][k]*diPre[j] + m.Uf[j][k]*dfPre[j] +
					m.Ug[j][k]*dgPre[j] + m.Uo[j][k]*doPre[j]
			}
			dh[k] = s
		}
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
