// Package scoring computes submission scores. It is pure: the same
// questions and answers always produce the same breakdown, and nothing
// here touches storage or the clock. The server is the only party that
// runs it — clients only ever see the result.
package scoring

import (
	"math"
	"strings"
)

// QuestionKind mirrors the two test question variants without importing
// the model package (model depends on scoring, not the other way round).
type QuestionKind string

const (
	KindObjective  QuestionKind = "objective"
	KindSubjective QuestionKind = "subjective"
)

// Question is the minimal view of a test question the engine needs.
type Question struct {
	Kind QuestionKind
	// CorrectOption is compared by exact equality for objective
	// questions. Ignored for subjective ones.
	CorrectOption string
}

// Breakdown is the computed score for one submission.
type Breakdown struct {
	CorrectCount   int     `json:"correct_count"`
	IncorrectCount int     `json:"incorrect_count"`
	MarksAwarded   float64 `json:"marks_awarded"`
	MarksDeducted  float64 `json:"marks_deducted"`
	Final          float64 `json:"final"`
}

// Score tallies an answer slice against the ordered questions.
//
// Objective: a nil entry counts toward neither tally; a non-nil entry is
// compared by exact equality to the correct option. Subjective: any
// non-blank text is credited as attempted and earns marksPerCorrect;
// there is no automatic grading of its content.
//
// Final = max(0, awarded - deducted), rounded to two decimals so
// fractional negative marking (1/3 and friends) displays cleanly. The
// floor guarantees a final score is never negative no matter how large
// negativeMarking is relative to marksPerCorrect.
func Score(questions []Question, answers []*string, marksPerCorrect, negativeMarking float64) Breakdown {
	var b Breakdown
	var subjectiveCredit float64

	for i, q := range questions {
		var ans *string
		if i < len(answers) {
			ans = answers[i]
		}
		if ans == nil {
			continue
		}

		switch q.Kind {
		case KindObjective:
			if *ans == q.CorrectOption {
				b.CorrectCount++
			} else {
				b.IncorrectCount++
			}
		case KindSubjective:
			if strings.TrimSpace(*ans) != "" {
				subjectiveCredit += marksPerCorrect
			}
		}
	}

	b.MarksAwarded = round2(float64(b.CorrectCount)*marksPerCorrect + subjectiveCredit)
	b.MarksDeducted = round2(float64(b.IncorrectCount) * negativeMarking)
	b.Final = round2(math.Max(0, b.MarksAwarded-b.MarksDeducted))

	return b
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
