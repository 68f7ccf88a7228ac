package pdfparser

// stage models the per-document pipeline state machine. Every run walks
// forward through these states and always terminates in stageDone for a
// readable file; no state is re-entered.
type stage int

const (
	stagePrimaryExtracted stage = iota
	stageQualitySufficient
	stageQualityInsufficient
	stageOCREnhanced
	stageClassified
	stageValidated
	stageDone
)

var stageNames = map[stage]string{
	stagePrimaryExtracted:    "primary_extracted",
	stageQualitySufficient:   "quality_sufficient",
	stageQualityInsufficient: "quality_insufficient",
	stageOCREnhanced:         "ocr_enhanced",
	stageClassified:          "classified",
	stageValidated:           "validated",
	stageDone:                "done",
}

func (s stage) String() string {
	return stageNames[s]
}

// transitions is the legal edge set. Sufficient quality normally skips
// the OCR state but forced pages may still reach it; insufficient quality
// may skip it when OCR is disabled or unavailable.
var transitions = map[stage][]stage{
	stagePrimaryExtracted:    {stageQualitySufficient, stageQualityInsufficient},
	stageQualitySufficient:   {stageOCREnhanced, stageClassified},
	stageQualityInsufficient: {stageOCREnhanced, stageClassified},
	stageOCREnhanced:         {stageClassified},
	stageClassified:          {stageValidated},
	stageValidated:           {stageDone},
}

func (s stage) canAdvance(to stage) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// tracker records the traversal so it can be checked against the legal
// edge set.
type tracker struct {
	current stage
	visited []stage
}

func newTracker() *tracker {
	return &tracker{current: stagePrimaryExtracted, visited: []stage{stagePrimaryExtracted}}
}

// advance moves to the next stage. Illegal edges indicate a pipeline bug;
// they are recorded anyway so tests catch them via verify.
func (t *tracker) advance(to stage) {
	t.current = to
	t.visited = append(t.visited, to)
}

// verify reports whether every recorded edge is legal and the traversal
// ended in stageDone.
func (t *tracker) verify() bool {
	for i := 1; i < len(t.visited); i++ {
		if !t.visited[i-1].canAdvance(t.visited[i]) {
			return false
		}
	}
	return len(t.visited) > 0 && t.visited[len(t.visited)-1] == stageDone
}
