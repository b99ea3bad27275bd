package curriculum

import (
	"fmt"
	"strings"
)

var fallbackWeekTitles = []string{
	"Foundations",
	"Core Principles",
	"Advanced Techniques",
	"Mastery & Projects",
}

// FallbackCurriculum 生成器不可用时的确定性本地课纲：固定周骨架，
// 内容由主题模板化。不带测验小节，题目交由合成题兜底，
// 保证学习者永远能看到可用内容并完成测验。
func FallbackCurriculum(topic, level string, p Policy) string {
	var b strings.Builder

	b.WriteString(summaryOpenTag + "\n")
	fmt.Fprintf(&b, "# Learning Plan: %s\n\n", topic)
	fmt.Fprintf(&b, "A %d-week structured path through %s for a %s level learner, generated locally while the AI service is unavailable.\n", p.TotalWeeks, topic, level)
	b.WriteString(summaryCloseTag + "\n")

	b.WriteString(detailedOpenTag + "\n")
	for week := 1; week <= p.TotalWeeks; week++ {
		title := fallbackWeekTitles[(week-1)%len(fallbackWeekTitles)]
		focus := WeekFocus(topic, week)

		fmt.Fprintf(&b, "## WEEK %d: %s\n\n", week, title)
		fmt.Fprintf(&b, "This week covers %s.\n\n", focus)
		fmt.Fprintf(&b, "### Learning Goals\n")
		fmt.Fprintf(&b, "1. Understand the key ideas behind %s\n", focus)
		fmt.Fprintf(&b, "2. Practice with guided exercises\n")
		fmt.Fprintf(&b, "3. Apply what you learned to a small project\n\n")
		fmt.Fprintf(&b, "### Study Notes\n")
		fmt.Fprintf(&b, "Work through %s step by step. Start with definitions and simple examples, then build toward %s.\n\n", topic, focus)
	}
	b.WriteString(detailedCloseTag + "\n")

	return b.String()
}
