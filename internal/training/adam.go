package training

import (
	"math"

	"CoinPulse/internal/forecast"
)

// gradient mirrors the model's parameter shapes.
type gradient struct {
	Wi, Wf, Wg, Wo [][]float64
	Ui, Uf, Ug, Uo [][]float64
	Bi, Bf, Bg, Bo []float64
	DenseW         []float64
	DenseB         float64
}

func newGradient(hidden, inputs int) *gradient {
	mk := func(rows, cols int) [][]float64 {
		m := make([][]float64, rows)
		for i := range m {
			m[i] = make([]float64, cols)
		}
		return m
	}
	return &gradient{
		Wi: mk(hidden, inputs), Wf: mk(hidden, inputs), Wg: mk(hidden, inputs), Wo: mk(hidden, inputs),
		Ui: mk(hidden, hidden), Uf: mk(hidden, hidden), Ug: mk(hidden, hidden), Uo: mk(hidden, hidden),
		Bi: make([]float64, hidden), Bf: make([]float64, hidden),
		Bg: make([]float64, hidden), Bo: make([]float64, hidden),
		DenseW: make([]float64, hidden),
	}
}

func (g *gradient) matrices() [][][]float64 {
	return [][][]float64{g.Wi, g.Wf, g.Wg, g.Wo, g.Ui, g.Uf, g.Ug, g.Uo}
}

func (g *gradient) vectors() [][]float64 {
	return [][]float64{g.Bi, g.Bf, g.Bg, g.Bo, g.DenseW}
}

func modelMatrices(m *forecast.Model) [][][]float64 {
	return [][][]float64{m.Wi, m.Wf, m.Wg, m.Wo, m.Ui, m.Uf, m.Ug, m.Uo}
}

func modelVectors(m *forecast.Model) [][]float64 {
	return [][]float64{m.Bi, m.Bf, m.Bg, m.Bo, m.DenseW}
}

// adam implements the Adam optimizer with bias-corrected moment estimates.
type adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	step  int
	m     *gradient
	v     *gradient
}

func newAdam(lr float64, model *forecast.Model) *adam {
	return &adam{
		lr:    lr,
		beta1: 0.9,
		beta2: 0.999,
		eps:   1e-8,
		m:     newGradient(model.Hidden, model.Inputs),
		v:     newGradient(model.Hidden, model.Inputs),
	}
}

// update applies one optimizer step in place.
func (a *adam) update(model *forecast.Model, grad *gradient) {
	a.step++
	c1 := 1 - math.Pow(a.beta1, float64(a.step))
	c2 := 1 - math.Pow(a.beta2, float64(a.step))

	apply := func(p, g, m, v []float64) {
		for i := range p {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g[i]
			v[i] = a.beta2*v[i] + (1-a.beta2)*g[i]*g[i]
			mHat := m[i] / c1
			vHat := v[i] / c2
			p[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}

	pm, gm, mm, vm := modelMatrices(model), grad.matrices(), a.m.matrices(), a.v.matrices()
	for i := range pm {
		for r := range pm[i] {
			apply(pm[i][r], gm[i][r], mm[i][r], vm[i][r])
		}
	}
	pv, gv, mv, vv := modelVectors(model), grad.vectors(), a.m.vectors(), a.v.vectors()
	for i := range pv {
		apply(pv[i], gv[i], mv[i], vv[i])
	}

	a.m.DenseB = a.beta1*a.m.DenseB + (1-a.beta1)*grad.DenseB
	a.v.DenseB = a.beta2*a.v.DenseB + (1-a.beta2)*grad.DenseB*grad.DenseB
	model.DenseB -= a.lr * (a.m.DenseB / c1) / (math.Sqrt(a.v.DenseB/c2) + a.eps)
}
