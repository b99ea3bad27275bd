package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"learnmate_backend/internal/config"
)

// AIService 对接 OpenAI 兼容的 chat completions 接口，
// 负责课纲生成与学习问答两类请求
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// curriculumSystemPrompt 约束生成器输出格式：带显式分隔标记、
// 固定周标题与每周测验小节。解析端按这些标记切分，
// 格式漂移时由解析端降级兜底。
const curriculumSystemPrompt = `You are an expert curriculum designer. Create a structured %d-week learning plan for the given topic and learner level.

Your response MUST use exactly this format:

<CONCISE_SUMMARY>
A short overview of the learning plan (a title line and 2-3 sentences).
</CONCISE_SUMMARY>

<DETAILED_CURRICULUM>
## WEEK 1: <week title>
<learning goals, study notes and exercises for the week, in Markdown>

### Assessment Questions
Q: <question text>
A) <option>
B) <option>
C) <option>
D) <option>
Answer: <correct letter>
(exactly %d questions per week, each with 4 options A-D and an Answer line)

## WEEK 2: <week title>
...
</DETAILED_CURRICULUM>

Every week section starts with "## WEEK n:" and contains a "### Assessment Questions" subsection. Do not add any text outside the two marked blocks.`

// GenerateCurriculum 请求生成完整课纲原文。调用方负责失败时的本地兜底。
func (s *AIService) GenerateCurriculum(ctx context.Context, topic, level string, totalWeeks, questionsPerWeek int) (string, error) {
	messages := []AIChatMessage{
		{
			Role:    "system",
			Content: fmt.Sprintf(curriculumSystemPrompt, totalWeeks, questionsPerWeek),
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("Topic: %s\nLearner level: %s", topic, level),
		},
	}
	return s.complete(ctx, messages)
}

// Chat 学习问答：可携带当前计划摘要作为背景知识与近期对话历史
func (s *AIService) Chat(ctx context.Context, prompt, background string, history []AIChatMessage) (string, error) {
	systemContent := "You are a friendly and knowledgeable learning assistant. Help the learner understand their study material and answer their questions clearly."
	if background != "" {
		systemContent = fmt.Sprintf("You are a friendly and knowledgeable learning assistant. The learner is following this study plan:\n\n%s\n\nAnswer their questions in the context of this plan.", background)
	}

	messages := []AIChatMessage{{Role: "system", Content: systemContent}}
	messages = append(messages, history...)
	messages = append(messages, AIChatMessage{Role: "user", Content: prompt})

	return s.complete(ctx, messages)
}

func (s *AIService) complete(ctx context.Context, messages []AIChatMessage) (string, error) {
	reqBody := ChatCompletionRequest{
		Model:    s.config.Model,
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) > 0 && result.Choices[0].Message.Content != "" {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("AI returned no choices")
}
