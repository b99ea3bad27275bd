package curriculum

import (
	"fmt"
	"strings"
)

// ParseQuestions 将测验原文切分为题块并逐块解析。
// 题块从每个 "Q:" 行开始到下一个 "Q:" 行为止；残缺题块静默丢弃——
// 自由文本生成里出现噪声是预期内的。返回的题目保持原文顺序，
// 超出 p.QuestionsPerWeek 的有效题目被截断。
func ParseQuestions(raw string, p Policy) []Question {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var questions []Question
	var block []string

	flush := func() {
		if len(block) == 0 {
			return
		}
		if q, ok := parseQuestionBlock(block); ok {
			questions = append(questions, q)
		}
		block = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToUpper(trimmed), questionMarker) {
			flush()
		}
		if trimmed != "" {
			block = append(block, trimmed)
		}
	}
	flush()

	if len(questions) > p.QuestionsPerWeek {
		questions = questions[:p.QuestionsPerWeek]
	}
	return questions
}

// parseQuestionBlock 解析单个题块：首行题干，选项按字母写入对应槽位
// （与行序无关），答案行声明正确字母。四个槽位齐全且答案合法才算有效。
func parseQuestionBlock(lines []string) (Question, bool) {
	first := lines[0]
	if !strings.HasPrefix(strings.ToUpper(first), questionMarker) {
		return Question{}, false
	}

	q := Question{Text: strings.TrimSpace(first[len(questionMarker):])}

	for _, line := range lines[1:] {
		upper := strings.ToUpper(line)

		matched := false
		for slot, letter := range OptionLetters {
			prefix := letter + ") "
			if strings.HasPrefix(upper, prefix) {
				q.Options[slot] = strings.TrimSpace(line[len(prefix):])
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if strings.HasPrefix(upper, answerMarker) {
			rest := strings.TrimSpace(line[len(answerMarker):])
			if rest != "" {
				letter := strings.ToUpper(rest[:1])
				switch letter {
				case "A", "B", "C", "D":
					q.Correct = letter
				}
			}
		}
	}

	return q, q.Valid()
}

// NormalizeQuestions 保证每周恰好 p.QuestionsPerWeek 道有效题目。
// 解析出的有效题目足额时取前 N 道；不足额（含为零或测验小节缺失）时
// 整套替换为确定性合成题——不把合成题混进真实题目里补位。
func NormalizeQuestions(raw string, topic string, week int, p Policy) []Question {
	parsed := ParseQuestions(raw, p)
	if len(parsed) >= p.QuestionsPerWeek {
		return parsed[:p.QuestionsPerWeek]
	}
	return SyntheticQuestions(topic, week, p)
}

var weekFocusTemplates = []string{
	"fundamentals and basics of %s",
	"core principles and applications of %s",
	"advanced techniques in %s",
	"mastery and real-world projects in %s",
}

var syntheticQuestionTemplates = []string{
	"What is a key aspect of %s?",
	"Which concept is essential for understanding %s?",
	"How does %s relate to practical applications?",
	"What distinguishes %s from related topics?",
	"Why is %s important in this field?",
	"Which approach is commonly used in %s?",
	"What challenges are associated with %s?",
	"How has %s evolved over time?",
	"What are the main components of %s?",
	"Which skill is most important for mastering %s?",
}

var syntheticOptions = [4]string{
	"An essential concept that forms the foundation",
	"A practical application used in real-world scenarios",
	"A common misunderstanding that should be addressed",
	"An advanced technique requiring specialized knowledge",
}

// WeekFocus 第 week 周的主题侧重点描述，越界时退回第一周的描述
func WeekFocus(topic string, week int) string {
	idx := week - 1
	if idx < 0 || idx >= len(weekFocusTemplates) {
		idx = 0
	}
	return fmt.Sprintf(weekFocusTemplates[idx], topic)
}

// SyntheticQuestions 生成整套确定性合成题：题干按模板轮转，
// 正确答案按 A,B,C,D 循环分布（下标 i mod 4），保证上游完全失效时
// 测验依然可用且可复现
func SyntheticQuestions(topic string, week int, p Policy) []Question {
	focus := WeekFocus(topic, week)

	questions := make([]Question, p.QuestionsPerWeek)
	for i := range questions {
		text := fmt.Sprintf(syntheticQuestionTemplates[i%len(syntheticQuestionTemplates)], focus)
		if i >= len(syntheticQuestionTemplates) {
			text = fmt.Sprintf("Week %d, Question %d: About %s", week, i+1, focus)
		}
		questions[i] = Question{
			Text:    text,
			Options: syntheticOptions,
			Correct: OptionLetters[i%len(OptionLetters)],
		}
	}
	return questions
}
