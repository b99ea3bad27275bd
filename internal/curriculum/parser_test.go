package curriculum

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCurriculum() string {
	var b strings.Builder
	b.WriteString("<CONCISE_SUMMARY>\n# Learning Plan: Algebra\nFour weeks from basics to mastery.\n</CONCISE_SUMMARY>\n")
	b.WriteString("<DETAILED_CURRICULUM>\n")
	for week := 1; week <= 4; week++ {
		fmt.Fprintf(&b, "## WEEK %d: Week %d Title\n\n", week, week)
		fmt.Fprintf(&b, "Body for week %d. Learn things.\n\n", week)
		b.WriteString("### Assessment Questions\n")
		for q := 1; q <= 10; q++ {
			fmt.Fprintf(&b, "Q: Week %d question %d?\n", week, q)
			b.WriteString("A) first option\n")
			b.WriteString("B) second option\n")
			b.WriteString("C) third option\n")
			b.WriteString("D) fourth option\n")
			fmt.Fprintf(&b, "Answer: %s\n\n", OptionLetters[(q-1)%4])
		}
	}
	b.WriteString("</DETAILED_CURRICULUM>\n")
	return b.String()
}

func TestSplitWithMarkers(t *testing.T) {
	summary, detailed := Split(sampleCurriculum())

	assert.Contains(t, summary, "Learning Plan: Algebra")
	assert.NotContains(t, summary, "## WEEK 1:")
	assert.Contains(t, detailed, "## WEEK 1:")
	assert.NotContains(t, detailed, "<DETAILED_CURRICULUM>")
}

func TestSplitPlainText(t *testing.T) {
	raw := "# Intro to Go\n\nGo is a compiled language.\n\n## WEEK 1: Basics\nContent here.\n"
	summary, detailed := Split(raw)

	// 无标记时整体视为详细课纲，摘要取正文开头几行
	assert.Equal(t, strings.TrimSpace(raw), detailed)
	assert.Contains(t, summary, "# Intro to Go")
	assert.NotEmpty(t, summary)
}

func TestSplitNonASCIIAroundMarkers(t *testing.T) {
	// 标记前的多字节字符不得影响标记定位
	padding := strings.Repeat("ɐ", 200)
	raw := padding + "<CONCISE_SUMMARY>overview line</CONCISE_SUMMARY>\n" +
		"<DETAILED_CURRICULUM>\n## WEEK 1: Unicode\nweek body\n</DETAILED_CURRICULUM>"

	summary, detailed := Split(raw)

	assert.Equal(t, "overview line", summary)
	assert.Contains(t, detailed, "## WEEK 1: Unicode")
	assert.NotContains(t, detailed, "ɐ")
}

func TestSplitMixedCaseMarkers(t *testing.T) {
	raw := "<concise_summary>short</Concise_Summary>\n<Detailed_Curriculum>\n## WEEK 1: T\nbody\n</detailed_curriculum>"

	summary, detailed := Split(raw)

	assert.Equal(t, "short", summary)
	assert.Contains(t, detailed, "## WEEK 1: T")
}

func TestParseWeekExcisesAssessment(t *testing.T) {
	raw := sampleCurriculum()
	policy := DefaultPolicy()

	for week := 1; week <= 4; week++ {
		wc := ParseWeek(raw, week, "Algebra", policy)

		require.True(t, wc.Found, "week %d should be found", week)
		assert.Equal(t, fmt.Sprintf("Week %d Title", week), wc.Title)
		assert.Contains(t, wc.Body, fmt.Sprintf("Body for week %d", week))

		// 正文不得残留任何测验标记
		assert.NotContains(t, wc.Body, "Assessment Questions")
		assert.NotContains(t, wc.Body, "Q:")
		assert.NotContains(t, wc.Body, "A) ")
		assert.NotContains(t, wc.Body, "Answer:")

		// 测验原文完整保留
		assert.Contains(t, wc.Assessment, fmt.Sprintf("Week %d question 1?", week))
		assert.Contains(t, wc.Assessment, fmt.Sprintf("Week %d question 10?", week))
	}
}

func TestParseWeekBoundedByNextHeader(t *testing.T) {
	raw := "## WEEK 1: One\nfirst body\n## WEEK 2: Two\nsecond body\n"
	wc := ParseWeek(raw, 1, "Topic", DefaultPolicy())

	require.True(t, wc.Found)
	assert.Contains(t, wc.Body, "first body")
	assert.NotContains(t, wc.Body, "second body")
}

func TestParseWeekBoundedByEndMarker(t *testing.T) {
	raw := "<DETAILED_CURRICULUM>\n## WEEK 4: Last\nfinal body\n</DETAILED_CURRICULUM>\ntrailing junk"
	wc := ParseWeek(raw, 4, "Topic", DefaultPolicy())

	require.True(t, wc.Found)
	assert.Contains(t, wc.Body, "final body")
	assert.NotContains(t, wc.Body, "trailing junk")
}

func TestParseWeekCaseInsensitiveHeader(t *testing.T) {
	raw := "## Week 2: Mixed Case\nweek two body\n"
	wc := ParseWeek(raw, 2, "Topic", DefaultPolicy())

	require.True(t, wc.Found)
	assert.Equal(t, "Mixed Case", wc.Title)
}

func TestParseWeekMissingReturnsPlaceholder(t *testing.T) {
	raw := "no week headers at all, just prose about algebra"
	wc := ParseWeek(raw, 3, "Algebra", DefaultPolicy())

	assert.False(t, wc.Found)
	assert.Contains(t, wc.Body, "Algebra")
	assert.Empty(t, wc.Assessment)
}

func TestParseWeekStripsLeakedMarkup(t *testing.T) {
	// 上游没有写 "### Assessment Questions" 标题，题目直接泄漏在正文里
	raw := "## WEEK 1: Leaky\nreal content line\nQ: leaked question?\nA) leaked option\nB) another\nAnswer: A\nmore real content\n"
	wc := ParseWeek(raw, 1, "Topic", DefaultPolicy())

	require.True(t, wc.Found)
	assert.Contains(t, wc.Body, "real content line")
	assert.Contains(t, wc.Body, "more real content")
	assert.NotContains(t, wc.Body, "leaked question")
	assert.NotContains(t, wc.Body, "leaked option")
	assert.NotContains(t, wc.Body, "Answer:")
}

func TestParseWeekIdempotent(t *testing.T) {
	raw := sampleCurriculum()
	policy := DefaultPolicy()

	first := ParseWeek(raw, 2, "Algebra", policy)
	second := ParseWeek(raw, 2, "Algebra", policy)

	assert.Equal(t, first, second)

	q1 := NormalizeQuestions(first.Assessment, "Algebra", 2, policy)
	q2 := NormalizeQuestions(second.Assessment, "Algebra", 2, policy)
	assert.Equal(t, q1, q2)
}

func TestWeekTitleFallback(t *testing.T) {
	assert.Equal(t, "Week 2", WeekTitle("no headers", 2))
	assert.Equal(t, "One", WeekTitle("## WEEK 1: One\nbody", 1))
}

func TestFallbackCurriculumParses(t *testing.T) {
	policy := DefaultPolicy()
	raw := FallbackCurriculum("Quantum Computing", "beginner", policy)

	summary, detailed := Split(raw)
	assert.Contains(t, summary, "Quantum Computing")

	for week := 1; week <= policy.TotalWeeks; week++ {
		wc := ParseWeek(detailed, week, "Quantum Computing", policy)
		require.True(t, wc.Found, "fallback week %d should parse", week)
		assert.NotEmpty(t, wc.Body)

		// 本地课纲不带测验小节，题目整套走合成
		questions := NormalizeQuestions(wc.Assessment, "Quantum Computing", week, policy)
		assert.Len(t, questions, policy.QuestionsPerWeek)
	}
}
