package model

import "sort"

// Document type labels. Every DocumentTypeScores map contains all of them.
const (
	TypeInvoice             = "invoice"
	TypeCommercialProposal  = "commercial_proposal"
	TypeCompetitiveDocument = "competitive_document"
	TypeContract            = "contract"
	TypeReport              = "report"
	TypeOther               = "other"
)

// TypeLabels returns the fixed set of document type labels, sorted.
func TypeLabels() []string {
	return []string{
		TypeCommercialProposal,
		TypeCompetitiveDocument,
		TypeContract,
		TypeInvoice,
		TypeOther,
		TypeReport,
	}
}

// DocumentTypeScores maps each document type label to a confidence in [0, 1].
// Scores are independent weighted matches, not a probability distribution;
// they need not sum to 1 and ties between labels are possible.
type DocumentTypeScores map[string]float64

// Best returns the label with the highest score. Ties are broken by
// lexicographic label order so the result is deterministic. Picking a
// decision threshold (for example "treat as invoice above 0.7") is left
// to the caller.
func (s DocumentTypeScores) Best() (label string, score float64) {
	labels := make([]string, 0, len(s))
	for l := range s {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		if label == "" || s[l] > score {
			label = l
			score = s[l]
		}
	}
	return label, score
}

// ValidationReport describes how well the combined text and table output
// holds up against the quality thresholds.
//
// OverallQuality is always the documented weighted combination of TextScore
// and TableScore; the same inputs always yield the same report.
type ValidationReport struct {
	OverallQuality float64
	TextScore      float64
	TableScore     float64
	Issues         []string
}
