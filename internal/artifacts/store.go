package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/forecast"
)

// FSStore loads per-asset model and scaler artifacts from a directory. The
// layout is <asset>_model.json and <asset>_scaler.json with lower-cased asset
// names.
type FSStore struct {
	dir    string
	schema forecast.Schema
}

// NewFSStore creates a store over dir.
func NewFSStore(dir string) *FSStore {
	return &FSStore{dir: dir, schema: forecast.DefaultSchema()}
}

func (s *FSStore) modelPath(asset string) string {
	return filepath.Join(s.dir, asset+"_model.json")
}

func (s *FSStore) scalerPath(asset string) string {
	return filepath.Join(s.dir, asset+"_scaler.json")
}

// Load reads and validates the artifact pair for asset. A missing file maps
// to a model-unavailable error; a malformed or mismatched artifact does too,
// with the parse failure as the cause.
func (s *FSStore) Load(ctx context.Context, asset string) (forecast.Predictor, *forecast.Scaler, error) {
	asset = strings.ToLower(asset)

	var model forecast.Model
	if err := s.readJSON(s.modelPath(asset), asset, &model); err != nil {
		return nil, nil, err
	}
	if err := model.Validate(s.schema); err != nil {
		return nil, nil, models.E(models.ErrModelUnavailable, asset, err)
	}

	var scaler forecast.Scaler
	if err := s.readJSON(s.scalerPath(asset), asset, &scaler); err != nil {
		return nil, nil, err
	}
	if err := scaler.Validate(s.schema); err != nil {
		return nil, nil, models.E(models.ErrModelUnavailable, asset, err)
	}

	return &model, &scaler, nil
}

func (s *FSStore) readJSON(path, asset string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Ef(models.ErrModelUnavailable, asset, "no artifact at %s", path)
		}
		return models.E(models.ErrModelUnavailable, asset, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return models.E(models.ErrModelUnavailable, asset, fmt.Errorf("parse %s: %w", filepath.Base(path), err))
	}
	return nil
}

// Save writes the artifact pair for asset atomically, replacing any previous
// version.
func (s *FSStore) Save(asset string, model *forecast.Model, scaler *forecast.Scaler) error {
	asset = strings.ToLower(asset)
	if err := model.Validate(s.schema); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if err := scaler.Validate(s.schema); err != nil {
		return fmt.Errorf("save scaler: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := writeJSONAtomic(s.modelPath(asset), model); err != nil {
		return err
	}
	return writeJSONAtomic(s.scalerPath(asset), scaler)
}

func writeJSONAtomic(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(tmp), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
