package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnmate_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAIService(handler http.HandlerFunc) (*AIService, *httptest.Server) {
	server := httptest.NewServer(handler)
	svc := NewAIService(config.AIConfig{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		Model:          "test-model",
		TimeoutSeconds: 5,
	})
	return svc, server
}

func completionBody(content string) []byte {
	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	body, _ := json.Marshal(resp)
	return body
}

func TestGenerateCurriculumSendsPromptAndAuth(t *testing.T) {
	var gotReq ChatCompletionRequest
	var gotAuth string

	svc, server := newTestAIService(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write(completionBody("<CONCISE_SUMMARY>plan</CONCISE_SUMMARY>"))
	})
	defer server.Close()

	raw, err := svc.GenerateCurriculum(context.Background(), "Algebra", "beginner", 4, 10)
	require.NoError(t, err)
	assert.Contains(t, raw, "CONCISE_SUMMARY")

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[0].Content, "## WEEK n:")
	assert.Contains(t, gotReq.Messages[0].Content, "Assessment Questions")
	assert.Contains(t, gotReq.Messages[1].Content, "Algebra")
	assert.Contains(t, gotReq.Messages[1].Content, "beginner")
}

func TestChatInjectsBackgroundAndHistory(t *testing.T) {
	var gotReq ChatCompletionRequest

	svc, server := newTestAIService(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write(completionBody("an answer"))
	})
	defer server.Close()

	history := []AIChatMessage{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	reply, err := svc.Chat(context.Background(), "What is a matrix?", "Algebra plan summary", history)
	require.NoError(t, err)
	assert.Equal(t, "an answer", reply)

	require.Len(t, gotReq.Messages, 4)
	assert.Contains(t, gotReq.Messages[0].Content, "Algebra plan summary")
	assert.Equal(t, "earlier question", gotReq.Messages[1].Content)
	assert.Equal(t, "What is a matrix?", gotReq.Messages[3].Content)
}

func TestCompleteErrorStatus(t *testing.T) {
	svc, server := newTestAIService(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	})
	defer server.Close()

	_, err := svc.GenerateCurriculum(context.Background(), "Algebra", "beginner", 4, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestCompleteAPIErrorField(t *testing.T) {
	svc, server := newTestAIService(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[],"error":{"message":"model not found"}}`))
	})
	defer server.Close()

	_, err := svc.Chat(context.Background(), "hello", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestCompleteEmptyChoices(t *testing.T) {
	svc, server := newTestAIService(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	defer server.Close()

	_, err := svc.Chat(context.Background(), "hello", "", nil)
	require.Error(t, err)
}

func TestCompleteContextCancellation(t *testing.T) {
	svc, server := newTestAIService(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody("too late"))
	})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GenerateCurriculum(ctx, "Algebra", "beginner", 4, 10)
	require.Error(t, err)
}
