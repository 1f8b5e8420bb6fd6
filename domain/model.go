package domain

// ModelSpec is one model block: which classifier, which features, which hyperparameters.
// FeatureGroup is empty when columns are chosen by FeatureListIndices.
type ModelSpec struct {
	Kind               ModelKind
	FeatureListIndices []int
	FeatureGroup       string
	Hyperparameters    map[string]Value
}

func (m ModelSpec) IntParam(key string, fallback int) int {
	v, ok := m.Hyperparameters[key]
	if !ok {
		return fallback
	}
	if i, ok := v.Int(); ok {
		return int(i)
	}
	return fallback
}

func (m ModelSpec) FloatParam(key string, fallback float64) float64 {
	v, ok := m.Hyperparameters[key]
	if !ok {
		return fallback
	}
	if f, ok := v.Number(); ok {
		return f
	}
	return fallback
}

// Describe names the feature selection, used for output directory names.
func (m ModelSpec) Describe() string {
	if m.FeatureGroup != "" {
		return m.FeatureGroup
	}
	if len(m.FeatureListIndices) == 0 {
		return "all"
	}
	return "indices"
}
