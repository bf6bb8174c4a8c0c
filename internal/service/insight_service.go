package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"focusflow/internal/config"
	"focusflow/internal/model"
	"focusflow/internal/repository"
)

var (
	ErrNoSessions    = errors.New("no sessions available for suggestions")
	ErrNotConfigured = errors.New("missing OPENAI_API_KEY")
)

// UpstreamError carries the raw upstream error body for diagnostics
type UpstreamError struct {
	Message string
	Details string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

const insightSystemPrompt = "You are a focused work assistant. Summarize the last 3 sessions and provide concise, actionable next-step suggestions."

// maxRecentSessions bounds the payload sent upstream
const maxRecentSessions = 3

// InsightService gathers recent session data for a context, forwards it
// to a chat-completion API and persists the returned text as a report.
type InsightService struct {
	contextRepo    repository.ContextRepo
	sessionRepo    repository.SessionRepo
	reflectionRepo repository.ReflectionRepo
	reportRepo     repository.ReportRepo
	config         *config.InsightConfig
	client         *http.Client
}

// NewInsightService creates a new insight service
func NewInsightService(
	contextRepo repository.ContextRepo,
	sessionRepo repository.SessionRepo,
	reflectionRepo repository.ReflectionRepo,
	reportRepo repository.ReportRepo,
	cfg *config.InsightConfig,
) *InsightService {
	return &InsightService{
		contextRepo:    contextRepo,
		sessionRepo:    sessionRepo,
		reflectionRepo: reflectionRepo,
		reportRepo:     reportRepo,
		config:         cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// InsightResult is the stored report plus the input payload it was built from
type InsightResult struct {
	Report *model.Report      `json:"report"`
	Input  model.InsightInput `json:"input"`
}

// GenerateForContext builds the bounded payload from the context's most
// recent sessions, calls the upstream API and stores the result.
func (s *InsightService) GenerateForContext(ctx context.Context, contextID, userID string) (*InsightResult, error) {
	c, err := s.contextRepo.GetByID(ctx, contextID, userID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.ListRecentByContext(ctx, contextID, userID, maxRecentSessions)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}

	input := model.InsightInput{
		ContextInfo: model.InsightContextInfo{
			ContextTitle:       c.Title,
			ContextDescription: c.Description,
		},
	}
	for _, session := range sessions {
		entry := model.InsightSession{SessionNotes: session.Notes}
		if session.ReflectionID != "" {
			reflection, err := s.reflectionRepo.GetByID(ctx, session.ReflectionID, userID)
			if err == nil {
				entry.Reflection = &reflection.Reflection
			}
		}
		input.Last3Reflection = append(input.Last3Reflection, entry)
	}

	if !s.config.IsEnabled() {
		return nil, ErrNotConfigured
	}

	suggestion, err := s.callChatCompletions(ctx, input)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		UserID:     userID,
		ContextID:  contextID,
		ReportType: model.ReportTypeLast3Sessions,
		FullReport: suggestion,
	}
	id, err := s.reportRepo.Save(ctx, report)
	if err != nil {
		return nil, err
	}
	report.ID = id

	return &InsightResult{Report: report, Input: input}, nil
}

// Reports lists stored reports for a context, newest first
func (s *InsightService) Reports(ctx context.Context, contextID, userID string) ([]*model.Report, error) {
	if _, err := s.contextRepo.GetByID(ctx, contextID, userID); err != nil {
		return nil, err
	}
	return s.reportRepo.ListByContext(ctx, contextID, userID)
}

func (s *InsightService) callChatCompletions(ctx context.Context, input model.InsightInput) (string, error) {
	inputJSON, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", err
	}

	reqBody := map[string]interface{}{
		"model":       s.config.Model,
		"temperature": 0.3,
		"messages": []map[string]string{
			{"role": "system", "content": insightSystemPrompt},
			{"role": "user", "content": fmt.Sprintf("Use this JSON as your only source of truth:\n%s", inputJSON)},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.ChatCompletionsEndpoint(), bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &UpstreamError{Message: "insight request failed", Details: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Message: "insight request failed", Details: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Message: "insight request failed", Details: string(body)}
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", &UpstreamError{Message: "insight request failed", Details: err.Error()}
	}

	if len(completion.Choices) == 0 {
		return "", &UpstreamError{Message: "insight generator returned an empty response"}
	}
	suggestion := strings.TrimSpace(completion.Choices[0].Message.Content)
	if suggestion == "" {
		return "", &UpstreamError{Message: "insight generator returned an empty response"}
	}
	return suggestion, nil
}
