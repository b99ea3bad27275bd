package curriculum

import (
	"fmt"
	"strconv"
	"strings"
)

// 生成器输出里使用的区块标记。行首匹配均不区分大小写。
const (
	summaryOpenTag   = "<CONCISE_SUMMARY>"
	summaryCloseTag  = "</CONCISE_SUMMARY>"
	detailedOpenTag  = "<DETAILED_CURRICULUM>"
	detailedCloseTag = "</DETAILED_CURRICULUM>"

	weekHeaderPrefix     = "## WEEK "
	assessmentHeader     = "### ASSESSMENT QUESTIONS"
	questionMarker       = "Q:"
	answerMarker         = "ANSWER:"
	summaryFallbackLines = 3
)

// Split 将生成器原文拆为摘要与详细课纲两部分。
// 带显式标记的输出按标记拆分；无标记的输出整体视为详细课纲，
// 摘要由正文开头若干非空行合成。
func Split(raw string) (summary, detailed string) {
	if s, ok := between(raw, summaryOpenTag, summaryCloseTag); ok {
		summary = strings.TrimSpace(s)
	}
	if d, ok := between(raw, detailedOpenTag, detailedCloseTag); ok {
		detailed = strings.TrimSpace(d)
	}

	if detailed == "" {
		detailed = strings.TrimSpace(raw)
	}
	if summary == "" {
		summary = synthesizeSummary(detailed)
	}
	return summary, detailed
}

// indexFold 大小写不敏感的子串查找，返回 s 中的字节下标。
// 不能在 ToUpper 副本上算下标再切原串：多字节字符的大小写映射
// 会改变字节长度，下标会漂移甚至越界。
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

func between(s, open, close string) (string, bool) {
	start := indexFold(s, open)
	if start < 0 {
		return "", false
	}
	start += len(open)
	rest := s[start:]
	if end := indexFold(rest, close); end >= 0 {
		return rest[:end], true
	}
	return rest, true
}

func synthesizeSummary(detailed string) string {
	var lines []string
	for _, line := range strings.Split(detailed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == summaryFallbackLines {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// ParseWeek 定位第 week 周的区块并拆出展示正文与测验原文。
// 周区块从 "## WEEK n:" 标题行开始，到下一周标题、课纲结束标记或文末为止；
// 标题乱序或缺失时按"先到先止"截断，避免内容越界串周。
// 找不到区块时返回含主题占位正文的 WeekContent，Found 为 false——
// 缺失是正常结果而不是错误。
func ParseWeek(raw string, week int, topic string, p Policy) WeekContent {
	title, span, ok := weekSpan(raw, week)
	if !ok {
		return WeekContent{
			Week:  week,
			Title: fmt.Sprintf("Week %d", week),
			Body:  placeholderBody(week, topic),
			Found: false,
		}
	}

	body, assessment := splitAssessment(span)
	body = stripLeakedMarkup(body)

	return WeekContent{
		Week:       week,
		Title:      title,
		Body:       body,
		Assessment: assessment,
		Found:      true,
	}
}

// WeekTitle 仅提取标题，供周目录展示，失败时退回 "Week n"
func WeekTitle(raw string, week int) string {
	if title, _, ok := weekSpan(raw, week); ok && title != "" {
		return title
	}
	return fmt.Sprintf("Week %d", week)
}

// weekSpan 逐行扫描定位周区块。返回标题行冒号后的文本与区块内容。
func weekSpan(raw string, week int) (title, span string, ok bool) {
	lines := strings.Split(raw, "\n")

	start := -1
	for i, line := range lines {
		if n, t, isHeader := parseWeekHeader(line); isHeader && n == week {
			start = i + 1
			title = t
			break
		}
	}
	if start < 0 {
		return "", "", false
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if _, _, isHeader := parseWeekHeader(line); isHeader {
			end = i
			break
		}
		if strings.EqualFold(line, detailedCloseTag) {
			end = i
			break
		}
	}

	span = strings.TrimSpace(strings.Join(lines[start:end], "\n"))
	return title, span, true
}

// parseWeekHeader 识别 "## WEEK n: 标题" 形式的行，大小写不敏感
func parseWeekHeader(line string) (week int, title string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(weekHeaderPrefix) {
		return 0, "", false
	}
	if !strings.EqualFold(trimmed[:len(weekHeaderPrefix)], weekHeaderPrefix) {
		return 0, "", false
	}

	rest := trimmed[len(weekHeaderPrefix):]
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return 0, "", false
	}

	n, err := strconv.Atoi(strings.TrimSpace(rest[:colon]))
	if err != nil || n <= 0 {
		return 0, "", false
	}

	return n, strings.TrimSpace(rest[colon+1:]), true
}

// splitAssessment 在周区块内定位测验小节。小节从 "### Assessment Questions"
// 行开始，到下一个 "###" 标题或区块结束为止；正文为小节之前的内容。
func splitAssessment(span string) (body, assessment string) {
	lines := strings.Split(span, "\n")

	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToUpper(trimmed), assessmentHeader) {
			start = i
			break
		}
	}
	if start < 0 {
		return strings.TrimSpace(span), ""
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, "###") {
			end = i
			break
		}
	}

	body = strings.TrimSpace(strings.Join(lines[:start], "\n"))
	assessment = strings.TrimSpace(strings.Join(lines[start+1:end], "\n"))
	return body, assessment
}

// stripLeakedMarkup 清除正文里残留的题目标记行。
// 上游偶尔不闭合测验小节，题目行会泄漏到正文，这里兜底过滤。
func stripLeakedMarkup(body string) string {
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isQuestionMarkup(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isQuestionMarkup(line string) bool {
	trimmed := strings.TrimSpace(line)
	upper := strings.ToUpper(trimmed)
	if strings.HasPrefix(upper, questionMarker) {
		return true
	}
	if strings.HasPrefix(upper, answerMarker) {
		return true
	}
	for _, letter := range OptionLetters {
		if strings.HasPrefix(upper, letter+") ") {
			return true
		}
	}
	return false
}

func placeholderBody(week int, topic string) string {
	return fmt.Sprintf("# Week %d: %s\n\nDetailed content for %s is being prepared. Review the plan summary and come back soon.", week, topic, topic)
}
