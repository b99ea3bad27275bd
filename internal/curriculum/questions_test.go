package curriculum

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assessmentText(count int) string {
	var b strings.Builder
	for i := 1; i <= count; i++ {
		fmt.Fprintf(&b, "Q: Question number %d?\n", i)
		b.WriteString("A) alpha\nB) beta\nC) gamma\nD) delta\n")
		fmt.Fprintf(&b, "Answer: %s\n\n", OptionLetters[(i-1)%4])
	}
	return b.String()
}

func TestParseQuestionsFullSet(t *testing.T) {
	policy := DefaultPolicy()
	questions := ParseQuestions(assessmentText(10), policy)

	require.Len(t, questions, 10)
	for i, q := range questions {
		assert.Equal(t, fmt.Sprintf("Question number %d?", i+1), q.Text)
		assert.Equal(t, [4]string{"alpha", "beta", "gamma", "delta"}, q.Options)
		assert.Equal(t, OptionLetters[i%4], q.Correct)
	}
}

func TestParseQuestionsTruncatesExtras(t *testing.T) {
	policy := DefaultPolicy()
	questions := ParseQuestions(assessmentText(13), policy)
	assert.Len(t, questions, policy.QuestionsPerWeek)
}

func TestParseQuestionsOptionsOrderIndependent(t *testing.T) {
	raw := "Q: Scrambled options?\nD) fourth\nB) second\nA) first\nC) third\nAnswer: C\n"
	questions := ParseQuestions(raw, DefaultPolicy())

	require.Len(t, questions, 1)
	assert.Equal(t, [4]string{"first", "second", "third", "fourth"}, questions[0].Options)
	assert.Equal(t, "C", questions[0].Correct)
}

func TestParseQuestionsDropsMalformedBlocks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing option slot", "Q: No D option?\nA) one\nB) two\nC) three\nAnswer: A\n"},
		{"missing answer", "Q: No answer?\nA) one\nB) two\nC) three\nD) four\n"},
		{"answer out of range", "Q: Bad answer?\nA) one\nB) two\nC) three\nD) four\nAnswer: E\n"},
		{"empty question text", "Q:\nA) one\nB) two\nC) three\nD) four\nAnswer: B\n"},
		{"no question marker", "A) orphan option\nB) two\nC) three\nD) four\nAnswer: A\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ParseQuestions(tt.raw, DefaultPolicy()))
		})
	}
}

func TestParseQuestionsCaseInsensitiveMarkers(t *testing.T) {
	raw := "q: lower case marker?\na) one\nb) two\nc) three\nd) four\nanswer: b\n"
	questions := ParseQuestions(raw, DefaultPolicy())

	require.Len(t, questions, 1)
	assert.Equal(t, "lower case marker?", questions[0].Text)
	assert.Equal(t, "B", questions[0].Correct)
}

func TestNormalizeQuestionsUsesParsedWhenEnough(t *testing.T) {
	policy := DefaultPolicy()
	questions := NormalizeQuestions(assessmentText(10), "Algebra", 1, policy)

	require.Len(t, questions, policy.QuestionsPerWeek)
	assert.Equal(t, "Question number 1?", questions[0].Text)
}

func TestNormalizeQuestionsAllOrNothing(t *testing.T) {
	// 有效题目不足额时整套替换为合成题，不混合补位
	policy := DefaultPolicy()
	questions := NormalizeQuestions(assessmentText(7), "Algebra", 1, policy)

	require.Len(t, questions, policy.QuestionsPerWeek)
	synthetic := SyntheticQuestions("Algebra", 1, policy)
	assert.Equal(t, synthetic, questions)
	for _, q := range questions {
		assert.NotContains(t, q.Text, "Question number")
	}
}

func TestNormalizeQuestionsEmptyInput(t *testing.T) {
	policy := DefaultPolicy()
	questions := NormalizeQuestions("", "Algebra", 3, policy)
	assert.Equal(t, SyntheticQuestions("Algebra", 3, policy), questions)
}

func TestSyntheticQuestionsDeterministic(t *testing.T) {
	policy := DefaultPolicy()
	first := SyntheticQuestions("Chemistry", 2, policy)
	second := SyntheticQuestions("Chemistry", 2, policy)

	assert.Equal(t, first, second)
	require.Len(t, first, policy.QuestionsPerWeek)

	for i, q := range first {
		assert.True(t, q.Valid(), "synthetic question %d should be valid", i)
		assert.Equal(t, OptionLetters[i%4], q.Correct)
		assert.Contains(t, q.Text, "Chemistry")
	}
}

func TestSyntheticQuestionsVaryByWeek(t *testing.T) {
	policy := DefaultPolicy()
	week1 := SyntheticQuestions("History", 1, policy)
	week3 := SyntheticQuestions("History", 3, policy)
	assert.NotEqual(t, week1[0].Text, week3[0].Text)
}

func TestWeekFocusClampsOutOfRange(t *testing.T) {
	assert.Equal(t, WeekFocus("Math", 1), WeekFocus("Math", 0))
	assert.Equal(t, WeekFocus("Math", 1), WeekFocus("Math", 99))
	assert.NotEqual(t, WeekFocus("Math", 1), WeekFocus("Math", 4))
}
