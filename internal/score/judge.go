package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"

	"github.com/oppscout/oppscout/internal/model"
)

// scoreMarker finds the first integer following a "score" marker in the
// judge's free-text response, tolerating phrasing like "Score: 85",
// "score is 85/100", or "**Score** - 85".
var scoreMarker = regexp.MustCompile(`(?i)score\D{0,12}?(\d{1,3})`)

// ParseJudgment extracts the base score from free judge text. Returns
// model.ErrUnparseable when no score marker is present, so the caller can
// substitute the neutral fallback without inspecting phrasing.
func ParseJudgment(text string) (model.Judgment, error) {
	m := scoreMarker.FindStringSubmatch(text)
	if m == nil {
		return model.Judgment{}, model.ErrUnparseable
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return model.Judgment{}, model.ErrUnparseable
	}
	return model.Judgment{Score: n, Text: text}, nil
}

// OpenAIJudge calls the OpenAI /v1/chat/completions endpoint and parses the
// free-text response into a Judgment.
type OpenAIJudge struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIJudge creates a judge targeting the OpenAI API.
func NewOpenAIJudge(baseURL, apiKey, model string, httpClient *http.Client) *OpenAIJudge {
	return &OpenAIJudge{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

// chatRequest mirrors the OpenAI /v1/chat/completions request body.
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse mirrors the relevant fields of the OpenAI response.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Judge sends the prompt and parses the response. Transport failures and
// unparseable output both surface as errors; the scorer absorbs them.
func (j *OpenAIJudge) Judge(ctx context.Context, prompt string) (model.Judgment, error) {
	reqBody := chatRequest{
		Model: j.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a precise job-fit evaluator for a senior candidate."},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 512,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return model.Judgment{}, fmt.Errorf("marshal judge request: %w", err)
	}

	url := j.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return model.Judgment{}, fmt.Errorf("create judge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+j.apiKey)

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return model.Judgment{}, fmt.Errorf("judge request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Judgment{}, fmt.Errorf("read judge response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return model.Judgment{}, fmt.Errorf("judge returned HTTP %d: %s", resp.StatusCode, string(respBytes))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return model.Judgment{}, fmt.Errorf("parse judge response: %w", err)
	}

	if chatResp.Error != nil {
		return model.Judgment{}, fmt.Errorf("judge error (%s): %s", chatResp.Error.Type, chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return model.Judgment{}, fmt.Errorf("judge returned no choices")
	}

	return ParseJudgment(chatResp.Choices[0].Message.Content)
}
