package pipeline

import "github.com/archmap-dev/archmap/internal/model"

// Phase is the coarse pipeline state observable by the host.
type Phase int

const (
	PhaseLocated Phase = iota
	PhaseRetrievingData
	PhaseDataReady
	PhaseAnalyzing
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLocated:
		return "located"
	case PhaseRetrievingData:
		return "retrievingData"
	case PhaseDataReady:
		return "dataReady"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Step is the fine-grained position inside a retrieving or analyzing phase.
type Step int

const (
	StepNone Step = iota
	StepReadFolder
	StepConnectServer
	StepRetrieveSymbols
	StepRetrieveReferences
	StepBuildArchitecture
	StepLiftCrossScope
	StepComputeMetrics
	StepSort
	StepLayout
	StepBuildViewModels
)

func (s Step) String() string {
	switch s {
	case StepReadFolder:
		return "readFolder"
	case StepConnectServer:
		return "connectServer"
	case StepRetrieveSymbols:
		return "retrieveSymbols"
	case StepRetrieveReferences:
		return "retrieveReferences"
	case StepBuildArchitecture:
		return "buildArchitecture"
	case StepLiftCrossScope:
		return "liftCrossScope"
	case StepComputeMetrics:
		return "computeMetrics"
	case StepSort:
		return "sort"
	case StepLayout:
		return "layout"
	case StepBuildViewModels:
		return "buildViewModels"
	default:
		return "none"
	}
}

// ViewModel is the render-ready summary published alongside the root
// artifact when the pipeline reaches Ready.
type ViewModel struct {
	RootName  string
	Width     float64
	Height    float64
	Artifacts int
	Folders   int
	Files     int
	Symbols   int
	Edges     int
	InCycles  int
}

// State is one observable snapshot of the pipeline. Transitions are atomic:
// observers always see a complete snapshot, never a partial update.
type State struct {
	Phase   Phase
	Step    Step
	Message string // failure message when Phase is PhaseFailed

	// Root and View are set only when Phase is PhaseReady. The tree is
	// read-only from that point on.
	Root *model.Tree
	View *ViewModel
}
