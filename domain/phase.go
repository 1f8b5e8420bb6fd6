package domain

type Phase string

const (
	PhaseExtract Phase = "extract"
	PhaseSelect  Phase = "select"
	PhasePredict Phase = "predict"
)

func Phases() []Phase {
	return []Phase{PhaseExtract, PhaseSelect, PhasePredict}
}

type FileFormat string

const (
	FormatEvtaf   FileFormat = "evtaf"
	FormatKoumura FileFormat = "koumura"
)

type ModelKind string

const (
	ModelKNN        ModelKind = "knn"
	ModelSVM        ModelKind = "svm"
	ModelFlatwindow ModelKind = "flatwindow"
)
