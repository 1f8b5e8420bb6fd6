package domain

const (
	RefTachibana = "tachibana"
	RefKoumura   = "koumura"

	WindowHann = "Hann"
	WindowDPSS = "dpss"

	FilterDiff = "diff"

	SpectFuncScipy = "scipy"
	SpectFuncMPL   = "mpl"
)

// SpectParams configures the spectrogram. A non-empty Ref selects a preset
// that overrides every other field except SylSpectWidth.
type SpectParams struct {
	Ref           string  `msgpack:"ref" validate:"omitempty,oneof=tachibana koumura"`
	Nperseg       int     `msgpack:"nperseg" validate:"gt=0"`
	Noverlap      int     `msgpack:"noverlap" validate:"gte=0,ltfield=Nperseg"`
	FreqCutoffs   []int   `msgpack:"freq_cutoffs" validate:"omitempty,len=2,dive,gte=0"`
	Window        string  `msgpack:"window" validate:"omitempty,oneof=Hann dpss"`
	FilterFunc    string  `msgpack:"filter_func" validate:"omitempty,oneof=diff"`
	SpectFunc     string  `msgpack:"spect_func" validate:"omitempty,oneof=scipy mpl"`
	LogTransform  bool    `msgpack:"log_transform_spect"`
	SylSpectWidth float64 `msgpack:"syl_spect_width" validate:"gte=0"`
}

// Resolved applies the Ref preset, or the tachibana preset when nothing
// was configured.
func (p SpectParams) Resolved() SpectParams {
	ref := p.Ref
	if ref == "" && p.Nperseg == 0 {
		ref = RefTachibana
	}
	var out SpectParams
	switch ref {
	case RefTachibana:
		out = SpectParams{
			Ref:        RefTachibana,
			Nperseg:    256,
			Noverlap:   192,
			Window:     WindowHann,
			FilterFunc: FilterDiff,
			SpectFunc:  SpectFuncMPL,
		}
	case RefKoumura:
		out = SpectParams{
			Ref:          RefKoumura,
			Nperseg:      512,
			Noverlap:     480,
			Window:       WindowDPSS,
			FreqCutoffs:  []int{1000, 8000},
			SpectFunc:    SpectFuncScipy,
			LogTransform: true,
		}
	default:
		out = p
		if out.Window == "" {
			out.Window = WindowHann
		}
		if out.SpectFunc == "" {
			out.SpectFunc = SpectFuncScipy
		}
	}
	out.SylSpectWidth = p.SylSpectWidth
	return out
}

func (p SpectParams) Step() int {
	return p.Nperseg - p.Noverlap
}

type SegmentParams struct {
	Threshold    float64 `msgpack:"threshold" validate:"gte=0"`
	MinSylDur    float64 `msgpack:"min_syl_dur" validate:"gte=0"`
	MinSilentDur float64 `msgpack:"min_silent_dur" validate:"gte=0"`
}

func DefaultSegmentParams() SegmentParams {
	return SegmentParams{Threshold: 5000, MinSylDur: 0.02, MinSilentDur: 0.002}
}
