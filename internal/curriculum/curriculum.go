// Package curriculum 将生成器返回的半结构化文本解析为按周组织的学习内容，
// 并维护逐周解锁的学习进度。所有解析函数都是纯函数：同样的输入永远得到
// 同样的输出，解析失败一律降级为占位内容或合成题目，从不返回错误。
package curriculum

// Policy 学习计划策略参数，来源于配置，解析与进度逻辑不持有默认值以外的常量
type Policy struct {
	TotalWeeks       int
	QuestionsPerWeek int
	PassThreshold    int // 百分制，>= 即通过
}

func DefaultPolicy() Policy {
	return Policy{
		TotalWeeks:       4,
		QuestionsPerWeek: 10,
		PassThreshold:    60,
	}
}

// Question 单选题，四个选项按字母 A-D 固定槽位
type Question struct {
	Text    string    `json:"text"`
	Options [4]string `json:"options"`
	Correct string    `json:"correct"` // A/B/C/D
}

// OptionLetters 选项字母表，下标即槽位
var OptionLetters = [4]string{"A", "B", "C", "D"}

// Valid 校验题目完整性：题干非空、四个选项齐全、答案字母合法
func (q Question) Valid() bool {
	if q.Text == "" {
		return false
	}
	for _, opt := range q.Options {
		if opt == "" {
			return false
		}
	}
	switch q.Correct {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

// WeekContent 解析出的单周内容。Found 为 false 表示原文中找不到该周的区块，
// Body 此时为占位文本，Assessment 为空
type WeekContent struct {
	Week       int    `json:"week"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Assessment string `json:"-"`
	Found      bool   `json:"found"`
}
