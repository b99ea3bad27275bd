package curriculum

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// answersWithCorrect 构造答案表：前 correct 道答对，其余选一个错误选项
func answersWithCorrect(questions []Question, correct int) map[int]string {
	answers := make(map[int]string, len(questions))
	for i, q := range questions {
		if i < correct {
			answers[i] = q.Correct
			continue
		}
		for _, letter := range OptionLetters {
			if letter != q.Correct {
				answers[i] = letter
				break
			}
		}
	}
	return answers
}

func TestScoreNormalizesAnswerLetters(t *testing.T) {
	policy := DefaultPolicy()
	questions := SyntheticQuestions("Math", 1, policy)

	// 客户端可能提交小写或带空白的字母，判分前统一归一化
	answers := make(map[int]string, len(questions))
	for i, q := range questions {
		answers[i] = " " + strings.ToLower(q.Correct) + " "
	}

	correct, score := Score(questions, answers, policy)
	assert.Equal(t, len(questions), correct)
	assert.Equal(t, 100, score)
}

func TestNewProgressInitialState(t *testing.T) {
	pr := NewProgress(DefaultPolicy())

	assert.Equal(t, 1, pr.CurrentWeek)
	assert.Equal(t, StateNew, pr.State)
	assert.Equal(t, 0, pr.Percent())
	assert.Equal(t, WeekUnlocked, pr.WeekState(1))
	assert.Equal(t, WeekLocked, pr.WeekState(2))
	assert.Equal(t, []int{1}, pr.UnlockedWeeks())
	assert.Empty(t, pr.CompletedWeeks())
}

func TestScoreRounding(t *testing.T) {
	policy := DefaultPolicy()
	questions := SyntheticQuestions("Math", 1, policy)

	tests := []struct {
		correct int
		score   int
	}{
		{0, 0},
		{5, 50},
		{6, 60},
		{7, 70},
		{10, 100},
	}
	for _, tt := range tests {
		gotCorrect, gotScore := Score(questions, answersWithCorrect(questions, tt.correct), policy)
		assert.Equal(t, tt.correct, gotCorrect)
		assert.Equal(t, tt.score, gotScore)
	}
}

func TestSubmitPassUnlocksNextWeek(t *testing.T) {
	policy := DefaultPolicy()
	pr := NewProgress(policy)
	questions := SyntheticQuestions("Math", 1, policy)

	// 6/10 恰好达到 60 分阈值
	result, err := pr.Submit(1, questions, answersWithCorrect(questions, 6), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 60, result.Score)
	assert.True(t, result.Passed)
	assert.Equal(t, 2, result.UnlockedWeek)
	assert.False(t, result.AllCompleted)
	assert.Equal(t, 25, result.Progress)

	assert.Equal(t, 2, pr.CurrentWeek)
	assert.Equal(t, StateActive, pr.State)
	assert.Equal(t, WeekCompleted, pr.WeekState(1))
	assert.Equal(t, WeekUnlocked, pr.WeekState(2))
	assert.Equal(t, WeekLocked, pr.WeekState(3))
}

func TestSubmitFailKeepsWeekLocked(t *testing.T) {
	policy := DefaultPolicy()
	pr := NewProgress(policy)
	questions := SyntheticQuestions("Math", 1, policy)

	// 5/10 只有 50 分，差一题不过线
	result, err := pr.Submit(1, questions, answersWithCorrect(questions, 5), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 50, result.Score)
	assert.False(t, result.Passed)
	assert.Zero(t, result.UnlockedWeek)
	assert.Equal(t, 1, pr.CurrentWeek)
	assert.Equal(t, WeekLocked, pr.WeekState(2))

	// 分数已记录，该周视为已完成，可重测
	assert.Equal(t, WeekCompleted, pr.WeekState(1))
	assert.Equal(t, 0, pr.Percent())
}

func TestSubmitLockedWeekRejected(t *testing.T) {
	policy := DefaultPolicy()
	pr := NewProgress(policy)
	questions := SyntheticQuestions("Math", 3, policy)

	_, err := pr.Submit(3, questions, answersWithCorrect(questions, 10), time.Now())
	assert.ErrorIs(t, err, ErrWeekLocked)

	// 被拒绝的提交不产生任何状态变化
	assert.Equal(t, 1, pr.CurrentWeek)
	assert.Equal(t, StateNew, pr.State)
	assert.Empty(t, pr.Scores)
}

func TestSubmitOutOfRangeRejected(t *testing.T) {
	pr := NewProgress(DefaultPolicy())
	_, err := pr.Submit(0, nil, nil, time.Now())
	assert.ErrorIs(t, err, ErrWeekOutOfRange)
	_, err = pr.Submit(5, nil, nil, time.Now())
	assert.ErrorIs(t, err, ErrWeekOutOfRange)
}

func TestResubmitOverwritesScore(t *testing.T) {
	policy := DefaultPolicy()
	pr := NewProgress(policy)
	questions := SyntheticQuestions("Math", 1, policy)

	_, err := pr.Submit(1, questions, answersWithCorrect(questions, 4), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 40, pr.Scores[1])

	// 重测直接覆盖，不取最高也不取平均
	_, err = pr.Submit(1, questions, answersWithCorrect(questions, 8), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 80, pr.Scores[1])

	_, err = pr.Submit(1, questions, answersWithCorrect(questions, 2), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 20, pr.Scores[1])

	// 低分重测不回收已解锁的周
	assert.Equal(t, 2, pr.CurrentWeek)
	assert.Equal(t, WeekUnlocked, pr.WeekState(2))
}

func TestSelectNavigation(t *testing.T) {
	policy := DefaultPolicy()
	pr := NewProgress(policy)

	assert.NoError(t, pr.Select(1))
	assert.ErrorIs(t, pr.Select(2), ErrWeekLocked)
	assert.ErrorIs(t, pr.Select(0), ErrWeekOutOfRange)
	assert.ErrorIs(t, pr.Select(5), ErrWeekOutOfRange)

	questions := SyntheticQuestions("Math", 1, policy)
	_, err := pr.Submit(1, questions, answersWithCorrect(questions, 10), time.Now())
	require.NoError(t, err)

	// 导航校验不改进度
	assert.NoError(t, pr.Select(2))
	assert.NoError(t, pr.Select(1))
	assert.Equal(t, 2, pr.CurrentWeek)
}

func TestFullCourseCompletion(t *testing.T) {
	policy := DefaultPolicy()
	pr := NewProgress(policy)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	expectedProgress := []int{25, 50, 75, 100}
	for week := 1; week <= policy.TotalWeeks; week++ {
		questions := SyntheticQuestions("Math", week, policy)
		result, err := pr.Submit(week, questions, answersWithCorrect(questions, 9), now)
		require.NoError(t, err)

		assert.Equal(t, 90, result.Score)
		assert.Equal(t, expectedProgress[week-1], result.Progress)

		if week < policy.TotalWeeks {
			assert.Equal(t, week+1, result.UnlockedWeek)
			assert.False(t, result.AllCompleted)
		} else {
			// 最后一周没有下一周可解锁
			assert.Zero(t, result.UnlockedWeek)
			assert.True(t, result.AllCompleted)
		}
	}

	assert.Equal(t, StateCompleted, pr.State)
	assert.Equal(t, 100, pr.Percent())
	assert.Equal(t, now, pr.CompletedAt)
	assert.Equal(t, []int{1, 2, 3, 4}, pr.CompletedWeeks())
}

func TestCompletionRequiresAllWeeksNotAllPasses(t *testing.T) {
	// 完赛看的是四周都提交过，最后一周不及格同样完赛
	policy := DefaultPolicy()
	pr := NewProgress(policy)
	now := time.Now()

	for week := 1; week <= 3; week++ {
		questions := SyntheticQuestions("Math", week, policy)
		_, err := pr.Submit(week, questions, answersWithCorrect(questions, 10), now)
		require.NoError(t, err)
	}

	questions := SyntheticQuestions("Math", 4, policy)
	result, err := pr.Submit(4, questions, answersWithCorrect(questions, 3), now)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.True(t, result.AllCompleted)
	assert.Equal(t, 100, result.Progress)
	assert.Equal(t, StateCompleted, pr.State)
}

func TestResumeClampsFields(t *testing.T) {
	policy := DefaultPolicy()

	pr := Resume(policy, 0, "", nil)
	assert.Equal(t, 1, pr.CurrentWeek)
	assert.Equal(t, StateNew, pr.State)
	assert.NotNil(t, pr.Scores)

	pr = Resume(policy, 9, StateActive, map[int]int{1: 80, 2: 70})
	assert.Equal(t, policy.TotalWeeks, pr.CurrentWeek)
	assert.Equal(t, []int{1, 2}, pr.CompletedWeeks())
	assert.Equal(t, 75, pr.Percent())
}

func TestEndToEndAlgebraScenario(t *testing.T) {
	// 完整走一遍：解析课纲 → 逐周答题 → 完赛
	policy := DefaultPolicy()
	raw := sampleCurriculum()
	_, detailed := Split(raw)

	pr := NewProgress(policy)
	now := time.Now()

	for week := 1; week <= policy.TotalWeeks; week++ {
		require.NoError(t, pr.Select(week))

		wc := ParseWeek(detailed, week, "Algebra", policy)
		require.True(t, wc.Found)

		questions := NormalizeQuestions(wc.Assessment, "Algebra", week, policy)
		require.Len(t, questions, policy.QuestionsPerWeek)

		result, err := pr.Submit(week, questions, answersWithCorrect(questions, 7), now)
		require.NoError(t, err)
		assert.True(t, result.Passed)
	}

	assert.Equal(t, StateCompleted, pr.State)
	assert.Equal(t, 100, pr.Percent())
}
