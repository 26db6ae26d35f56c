package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func objectives(correct ...string) []Question {
	qs := make([]Question, 0, len(correct))
	for _, c := range correct {
		qs = append(qs, Question{Kind: KindObjective, CorrectOption: c})
	}
	return qs
}

func TestScoreAllNullIsZero(t *testing.T) {
	qs := objectives("A", "B", "C", "D")
	got := Score(qs, []*string{nil, nil, nil, nil}, 2, 0.5)

	assert.Equal(t, 0, got.CorrectCount)
	assert.Equal(t, 0, got.IncorrectCount)
	assert.Equal(t, 0.0, got.Final)
}

func TestScoreMixedAnswers(t *testing.T) {
	// marksPerCorrect=2, negativeMarking=0.5, correct [A,B,C],
	// candidate [A,X,null] -> 1 correct, 1 incorrect, final 1.5.
	qs := objectives("A", "B", "C")
	got := Score(qs, []*string{ptr("A"), ptr("X"), nil}, 2, 0.5)

	assert.Equal(t, 1, got.CorrectCount)
	assert.Equal(t, 1, got.IncorrectCount)
	assert.Equal(t, 2.0, got.MarksAwarded)
	assert.Equal(t, 0.5, got.MarksDeducted)
	assert.Equal(t, 1.5, got.Final)
}

func TestScoreAllCorrect(t *testing.T) {
	qs := objectives("A", "B", "C")
	got := Score(qs, []*string{ptr("A"), ptr("B"), ptr("C")}, 2, 0.5)

	assert.Equal(t, 3, got.CorrectCount)
	assert.Equal(t, 6.0, got.Final)
}

func TestScoreNeverNegative(t *testing.T) {
	// Negative marking far exceeding marks per correct must floor at 0.
	qs := objectives("A", "B", "C")
	got := Score(qs, []*string{ptr("X"), ptr("Y"), ptr("A")}, 1, 5)

	assert.Equal(t, 1, got.CorrectCount)
	assert.Equal(t, 2, got.IncorrectCount)
	assert.Equal(t, 10.0, got.MarksDeducted)
	assert.Equal(t, 0.0, got.Final)
}

func TestScoreFractionalNegativeMarkingRounds(t *testing.T) {
	qs := objectives("A", "B", "C", "D")
	nm := 1.0 / 3.0
	got := Score(qs, []*string{ptr("A"), ptr("X"), ptr("Y"), nil}, 1, nm)

	assert.Equal(t, 1, got.CorrectCount)
	assert.Equal(t, 2, got.IncorrectCount)
	assert.Equal(t, 0.67, got.MarksDeducted)
	assert.Equal(t, 0.33, got.Final)
}

func TestScoreSubjectiveCredit(t *testing.T) {
	qs := []Question{
		{Kind: KindObjective, CorrectOption: "A"},
		{Kind: KindSubjective},
		{Kind: KindSubjective},
		{Kind: KindSubjective},
	}
	// Non-blank subjective text earns full marks; whitespace-only and
	// nil do not.
	got := Score(qs, []*string{ptr("A"), ptr("an essay"), ptr("   "), nil}, 2, 1)

	assert.Equal(t, 1, got.CorrectCount)
	assert.Equal(t, 0, got.IncorrectCount)
	assert.Equal(t, 4.0, got.MarksAwarded)
	assert.Equal(t, 4.0, got.Final)
}

func TestScoreMonotonic(t *testing.T) {
	qs := objectives("A", "B", "C", "D")
	base := []*string{ptr("A"), ptr("X"), nil, nil}
	baseline := Score(qs, base, 2, 0.5).Final

	// Converting an unattempted answer to correct never decreases final.
	improved := Score(qs, []*string{ptr("A"), ptr("X"), ptr("C"), nil}, 2, 0.5).Final
	assert.GreaterOrEqual(t, improved, baseline)

	// Converting an unattempted answer to incorrect never increases it.
	worsened := Score(qs, []*string{ptr("A"), ptr("X"), ptr("Z"), nil}, 2, 0.5).Final
	assert.LessOrEqual(t, worsened, baseline)
}

func TestScoreShortAnswerSliceTreatedAsNull(t *testing.T) {
	qs := objectives("A", "B", "C")
	got := Score(qs, []*string{ptr("A")}, 1, 1)

	assert.Equal(t, 1, got.CorrectCount)
	assert.Equal(t, 0, got.IncorrectCount)
	assert.Equal(t, 1.0, got.Final)
}
