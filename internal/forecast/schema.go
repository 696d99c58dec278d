package forecast

// WindowSize is the fixed lookback the model consumes: the last 30 rows of
// the feature matrix form one input window.
const WindowSize = 30

// closeColumn is the position of the raw close price in every feature row.
// The model predicts this column; everything else is context.
const closeColumn = 0

// featureColumns is the canonical column order of the feature matrix. Scaler
// and model artifacts are validated against this order at load time.
var featureColumns = []string{
	"close",
	"ma7",
	"ma30",
	"volatility",
	"lag1",
	"lag7",
	"hl_ratio",
	"co_ratio",
}

// Schema describes the feature columns in their fixed order.
type Schema struct {
	columns []string
}

// DefaultSchema returns the schema every artifact in this system is built
// against.
func DefaultSchema() Schema {
	return Schema{columns: featureColumns}
}

// Columns returns the ordered column names.
func (s Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len returns the number of feature columns.
func (s Schema) Len() int {
	return len(s.columns)
}

// Matches reports whether cols names the same columns in the same order.
func (s Schema) Matches(cols []string) bool {
	if len(cols) != len(s.columns) {
		return false
	}
	for i, c := range cols {
		if c != s.columns[i] {
			return false
		}
	}
	return true
}
