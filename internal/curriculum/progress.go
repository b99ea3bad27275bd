package curriculum

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"
)

// WeekState 单周状态机：locked → unlocked → completed，completed 可重测覆盖
type WeekState string

const (
	WeekLocked    WeekState = "locked"
	WeekUnlocked  WeekState = "unlocked"
	WeekCompleted WeekState = "completed"
)

// SessionState 会话级状态
type SessionState string

const (
	StateNew       SessionState = "new"
	StateActive    SessionState = "active"
	StateCompleted SessionState = "completed"
)

var ErrWeekLocked = errors.New("week is locked")
var ErrWeekOutOfRange = errors.New("week out of range")

// Progress 一个学习会话的进度。已解锁的周永远是 {1..CurrentWeek} 前缀，
// Scores 的键即已完成的周。零值不可用，用 NewProgress 构造。
type Progress struct {
	Policy      Policy
	CurrentWeek int
	State       SessionState
	Scores      map[int]int // 周 → 最近一次得分
	CompletedAt time.Time   // 全部完成的时刻，未完成时为零值
}

// NewProgress 初始进度：第1周解锁，其余锁定
func NewProgress(p Policy) Progress {
	return Progress{
		Policy:      p,
		CurrentWeek: 1,
		State:       StateNew,
		Scores:      make(map[int]int),
	}
}

// Resume 从持久化字段恢复进度（当前周与逐周得分）
func Resume(p Policy, currentWeek int, state SessionState, scores map[int]int) Progress {
	if currentWeek < 1 {
		currentWeek = 1
	}
	if currentWeek > p.TotalWeeks {
		currentWeek = p.TotalWeeks
	}
	if scores == nil {
		scores = make(map[int]int)
	}
	if state == "" {
		state = StateNew
	}
	return Progress{
		Policy:      p,
		CurrentWeek: currentWeek,
		State:       state,
		Scores:      scores,
	}
}

func (pr *Progress) WeekState(week int) WeekState {
	if _, ok := pr.Scores[week]; ok {
		return WeekCompleted
	}
	if week <= pr.CurrentWeek {
		return WeekUnlocked
	}
	return WeekLocked
}

// UnlockedWeeks 返回已解锁周的前缀 {1..CurrentWeek}
func (pr *Progress) UnlockedWeeks() []int {
	weeks := make([]int, 0, pr.CurrentWeek)
	for w := 1; w <= pr.CurrentWeek; w++ {
		weeks = append(weeks, w)
	}
	return weeks
}

func (pr *Progress) CompletedWeeks() []int {
	weeks := make([]int, 0, len(pr.Scores))
	for w := range pr.Scores {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

// Percent 总进度百分比，派生值：round((当前周-1)/总周数*100)，完赛恒为100
func (pr *Progress) Percent() int {
	if pr.State == StateCompleted {
		return 100
	}
	return int(math.Round(float64(pr.CurrentWeek-1) / float64(pr.Policy.TotalWeeks) * 100))
}

// Select 校验展示导航：锁定周拒绝访问。导航本身不改变进度。
func (pr *Progress) Select(week int) error {
	if week < 1 || week > pr.Policy.TotalWeeks {
		return ErrWeekOutOfRange
	}
	if pr.WeekState(week) == WeekLocked {
		return ErrWeekLocked
	}
	return nil
}

// SubmitResult 一次测验提交产生的状态变化
type SubmitResult struct {
	Week         int  `json:"week"`
	CorrectCount int  `json:"correctCount"`
	Score        int  `json:"score"`
	Passed       bool `json:"passed"`
	UnlockedWeek int  `json:"unlockedWeek,omitempty"` // 本次新解锁的周，无则为0
	AllCompleted bool `json:"allCompleted"`
	Progress     int  `json:"progress"`
}

// Score 按答案表对照题目计算百分制得分。答案字母忽略大小写与首尾空白。
func Score(questions []Question, answers map[int]string, p Policy) (correct int, score int) {
	for i, q := range questions {
		if strings.ToUpper(strings.TrimSpace(answers[i])) == q.Correct {
			correct++
		}
	}
	n := len(questions)
	if n == 0 {
		n = p.QuestionsPerWeek
	}
	score = int(math.Round(float64(correct) / float64(n) * 100))
	return correct, score
}

// Submit 提交第 week 周的测验。
// 重测永远允许且新分覆盖旧分；达到阈值且存在下一周时解锁下一周并推进
// 当前周；全部周完成后会话进入 completed 并记录完成时刻。
// 锁定周的提交被拒绝且不产生任何状态变化。
func (pr *Progress) Submit(week int, questions []Question, answers map[int]string, now time.Time) (SubmitResult, error) {
	if week < 1 || week > pr.Policy.TotalWeeks {
		return SubmitResult{}, ErrWeekOutOfRange
	}
	if pr.WeekState(week) == WeekLocked {
		return SubmitResult{}, ErrWeekLocked
	}

	correct, score := Score(questions, answers, pr.Policy)

	pr.Scores[week] = score
	if pr.State == StateNew {
		pr.State = StateActive
	}

	result := SubmitResult{
		Week:         week,
		CorrectCount: correct,
		Score:        score,
		Passed:       score >= pr.Policy.PassThreshold,
	}

	if result.Passed && week < pr.Policy.TotalWeeks && week+1 > pr.CurrentWeek {
		pr.CurrentWeek = week + 1
		result.UnlockedWeek = week + 1
	}

	if len(pr.Scores) == pr.Policy.TotalWeeks {
		pr.State = StateCompleted
		if pr.CompletedAt.IsZero() {
			pr.CompletedAt = now
		}
		result.AllCompleted = true
	}

	result.Progress = pr.Percent()
	return result, nil
}
