package training

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/forecast"
	"CoinPulse/pkg/logger"
)

// Config controls the optimization run.
type Config struct {
	Hidden     int
	Epochs     int
	BatchSize  int
	LearnRate  float64
	TrainSplit float64
	Seed       int64
}

// DefaultConfig mirrors the hyperparameters the production artifacts were
// trained with.
func DefaultConfig() Config {
	return Config{
		Hidden:     64,
		Epochs:     20,
		BatchSize:  32,
		LearnRate:  0.001,
		TrainSplit: 0.8,
		Seed:       42,
	}
}

// Result carries the fitted artifacts and the final losses.
type Result struct {
	Model     *forecast.Model
	Scaler    *forecast.Scaler
	TrainLoss float64
	ValLoss   float64
	Samples   int
}

// Trainer fits a per-asset model from raw candles. Feature derivation and
// scaling use the exact same code path the serving engine uses, so the
// artifacts it produces are consistent with inference by construction.
type Trainer struct {
	cfg    Config
	schema forecast.Schema
	log    *logger.Logger
}

// New creates a trainer.
func New(cfg Config, log *logger.Logger) *Trainer {
	return &Trainer{cfg: cfg, schema: forecast.DefaultSchema(), log: log}
}

type sample struct {
	window [][]float64
	target float64
}

// Train fits a model and scaler for asset from its candle history. The split
// between train and validation is chronological.
func (t *Trainer) Train(asset string, candles []models.Candle) (*Result, error) {
	asset = strings.ToLower(asset)
	if t.cfg.Hidden < 1 || t.cfg.Epochs < 1 || t.cfg.BatchSize < 1 {
		return nil, fmt.Errorf("train %s: invalid config %+v", asset, t.cfg)
	}

	features, err := forecast.BuildFeatures(candles)
	if err != nil {
		return nil, err
	}
	if len(features) <= forecast.WindowSize {
		return nil, models.Ef(models.ErrInsufficientHistory, asset,
			"have %d rows, need more than %d", len(features), forecast.WindowSize)
	}

	scaler, err := forecast.FitScaler(t.schema, features)
	if err != nil {
		return nil, err
	}
	scaled, err := scaler.Transform(features)
	if err != nil {
		return nil, err
	}

	samples := buildSamples(scaled)
	trainN := int(t.cfg.TrainSplit * float64(len(samples)))
	if trainN < 1 {
		trainN = 1
	}
	train, val := samples[:trainN], samples[trainN:]

	rng := rand.New(rand.NewSource(t.cfg.Seed))
	model := initModel(asset, t.cfg.Hidden, t.schema.Len(), rng)
	opt := newAdam(t.cfg.LearnRate, model)

	var trainLoss float64
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })

		trainLoss = 0
		for start := 0; start < len(train); start += t.cfg.BatchSize {
			end := start + t.cfg.BatchSize
			if end > len(train) {
				end = len(train)
			}
			batch := train[start:end]

			grad := newGradient(model.Hidden, model.Inputs)
			for _, s := range batch {
				yhat, caches := forwardCached(model, s.window)
				diff := yhat - s.target
				trainLoss += diff * diff
				backward(model, caches, 2*diff/float64(len(batch)), grad)
			}
			opt.update(model, grad)
		}
		trainLoss /= float64(len(train))

		if t.log != nil && (epoch == 1 || epoch%5 == 0 || epoch == t.cfg.Epochs) {
			t.log.Info("training epoch",
				logger.String("asset", asset),
				logger.Int("epoch", epoch),
				logger.Float64("train_loss", trainLoss),
			)
		}
	}

	valLoss := evaluate(model, val)
	if t.log != nil {
		t.log.Info("training finished",
			logger.String("asset", asset),
			logger.Int("samples", len(samples)),
			logger.Float64("train_loss", trainLoss),
			logger.Float64("val_loss", valLoss),
		)
	}

	return &Result{
		Model:     model,
		Scaler:    scaler,
		TrainLoss: trainLoss,
		ValLoss:   valLoss,
		Samples:   len(samples),
	}, nil
}

// buildSamples slices the scaled matrix into sliding windows paired with the
// next row's scaled close.
func buildSamples(scaled [][]float64) []sample {
	out := make([]sample, 0, len(scaled)-forecast.WindowSize)
	for i := forecast.WindowSize; i < len(scaled); i++ {
		out = append(out, sample{
			window: scaled[i-forecast.WindowSize : i],
			target: scaled[i][0],
		})
	}
	return out
}

func evaluate(m *forecast.Model, samples []sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		yhat, _ := forwardCached(m, s.window)
		diff := yhat - s.target
		sum += diff * diff
	}
	return sum / float64(len(samples))
}

// initModel draws Glorot-uniform weights and sets the forget gate bias to one
// so early training does not erase the cell state.
func initModel(asset string, hidden, inputs int, rng *rand.Rand) *forecast.Model {
	wLimit := math.Sqrt(6.0 / float64(inputs+hidden))
	uLimit := math.Sqrt(6.0 / float64(2*hidden))
	dLimit := math.Sqrt(6.0 / float64(hidden+1))

	mk := func(rows, cols int, limit float64) [][]float64 {
		m := make([][]float64, rows)
		for i := range m {
			m[i] = make([]float64, cols)
			for j := range m[i] {
				m[i][j] = (rng.Float64()*2 - 1) * limit
			}
		}
		return m
	}
	vec := func(n int, limit float64) []float64 {
		v := make([]float64, n)
		for i := range v {
			v[i] = (rng.Float64()*2 - 1) * limit
		}
		return v
	}

	m := &forecast.Model{
		Asset:  asset,
		Window: forecast.WindowSize,
		Inputs: inputs,
		Hidden: hidden,
		Wi:     mk(hidden, inputs, wLimit), Wf: mk(hidden, inputs, wLimit),
		Wg: mk(hidden, inputs, wLimit), Wo: mk(hidden, inputs, wLimit),
		Ui: mk(hidden, hidden, uLimit), Uf: mk(hidden, hidden, uLimit),
		Ug: mk(hidden, hidden, uLimit), Uo: mk(hidden, hidden, uLimit),
		Bi: make([]float64, hidden), Bf: make([]float64, hidden),
		Bg: make([]float64, hidden), Bo: make([]float64, hidden),
		DenseW: vec(hidden, dLimit),
	}
	for j := range m.Bf {
		m.Bf[j] = 1
	}
	return m
}
