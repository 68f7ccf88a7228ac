// Package classify assigns document type scores from normalized text using
// weighted keyword sets.
//
// Classification is a pure function of the text: no side effects, no I/O.
// Each document type owns a table of weighted keywords in both Russian and
// English; both language sets are always checked regardless of which OCR
// languages were configured. Scores are independent weighted matches, not a
// probability distribution, and choosing a winning label (or a decision
// threshold) is the caller's concern.
package classify

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/katyLiminche/pdf-parser-app/model"
)

// Keyword pairs a search term with its contribution to the type score.
// Terms are matched as substrings of the normalized text, case-insensitively.
// A term that appears multiple times still contributes its weight only once.
type Keyword struct {
	Term   string
	Weight float64
}

// Classifier scores text against a fixed set of document types.
type Classifier struct {
	types map[string][]Keyword
}

// New returns a Classifier with the built-in Russian and English keyword
// tables for invoices, commercial proposals, competitive documents,
// contracts, and reports.
func New() *Classifier {
	return NewWithTypes(defaultTypes())
}

// NewWithTypes returns a Classifier using the given keyword tables.
// The model.TypeOther label is always present in the output with no
// keywords of its own; it scores 1.0 only for empty input.
func NewWithTypes(types map[string][]Keyword) *Classifier {
	copied := make(map[string][]Keyword, len(types)+1)
	for label, kws := range types {
		copied[label] = append([]Keyword(nil), kws...)
	}
	if _, ok := copied[model.TypeOther]; !ok {
		copied[model.TypeOther] = nil
	}
	return &Classifier{types: copied}
}

// Classify scores the text against every document type. Every label the
// classifier knows is present in the result. Empty or whitespace-only text
// yields 0.0 for every label except "other", which gets 1.0 as the explicit
// fallback so the result is never ambiguous.
func (c *Classifier) Classify(text string) model.DocumentTypeScores {
	scores := make(model.DocumentTypeScores, len(c.types))
	normalized := Normalize(text)

	if normalized == "" {
		for label := range c.types {
			scores[label] = 0.0
		}
		scores[model.TypeOther] = 1.0
		return scores
	}

	for label, keywords := range c.types {
		var total, matched float64
		for _, kw := range keywords {
			total += kw.Weight
			if strings.Contains(normalized, kw.Term) {
				matched += kw.Weight
			}
		}
		if total == 0 {
			scores[label] = 0.0
			continue
		}
		scores[label] = clamp(matched/total, 0, 1)
	}

	return scores
}

var foldCaser = cases.Fold()

// Normalize lowercases the text via Unicode case folding, applies NFC
// normalization, and collapses all whitespace runs to single spaces.
func Normalize(text string) string {
	folded := foldCaser.String(norm.NFC.String(text))
	return strings.Join(strings.Fields(folded), " ")
}

func defaultTypes() map[string][]Keyword {
	return map[string][]Keyword{
		model.TypeInvoice: {
			{Term: "счет-фактура", Weight: 5},
			{Term: "счет на оплату", Weight: 5},
			{Term: "invoice", Weight: 5},
			{Term: "к оплате", Weight: 3},
			{Term: "total due", Weight: 3},
			{Term: "банковские реквизиты", Weight: 3},
			{Term: "ндс", Weight: 2},
			{Term: "итого", Weight: 2},
			{Term: "bill to", Weight: 2},
			{Term: "платеж", Weight: 1},
		},
		model.TypeCommercialProposal: {
			{Term: "коммерческое предложение", Weight: 5},
			{Term: "commercial proposal", Weight: 5},
			{Term: "quotation", Weight: 4},
			{Term: "условия поставки", Weight: 3},
			{Term: "сроки поставки", Weight: 3},
			{Term: "delivery terms", Weight: 3},
			{Term: "гарантия", Weight: 2},
			{Term: "спецификация", Weight: 2},
			{Term: "предложение действительно", Weight: 2},
		},
		model.TypeCompetitiveDocument: {
			{Term: "конкурсная документация", Weight: 5},
			{Term: "тендер", Weight: 4},
			{Term: "tender", Weight: 4},
			{Term: "аукцион", Weight: 3},
			{Term: "техническое задание", Weight: 3},
			{Term: "request for proposal", Weight: 3},
			{Term: "заявка на участие", Weight: 2},
		},
		model.TypeContract: {
			{Term: "договор", Weight: 5},
			{Term: "contract", Weight: 5},
			{Term: "agreement", Weight: 4},
			{Term: "соглашение", Weight: 4},
			{Term: "стороны обязуются", Weight: 3},
			{Term: "обязательства", Weight: 2},
			{Term: "ответственность сторон", Weight: 2},
			{Term: "форс-мажор", Weight: 2},
		},
		model.TypeReport: {
			{Term: "отчет", Weight: 5},
			{Term: "report", Weight: 5},
			{Term: "заключение", Weight: 3},
			{Term: "summary", Weight: 3},
			{Term: "результаты", Weight: 2},
			{Term: "findings", Weight: 2},
			{Term: "за период", Weight: 2},
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
