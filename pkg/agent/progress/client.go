// Package progress is the HTTP client for the spaced-repetition progress
// service. It is stateless: every call maps to exactly one request, and the
// caller owns all session state.
package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tiro-ai/voice-tutor/pkg/core"
	"github.com/tiro-ai/voice-tutor/pkg/core/types"
)

// Performance ratings accepted by the progress service. The service speaks
// string-typed ratings; only these two values exist.
const (
	RatingIncorrect = "1"
	RatingCorrect   = "3"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
	}
}

// FetchNextDueItem asks the service for the next item due for review.
// A nil item with nil error means nothing is due right now.
func (c *Client) FetchNextDueItem(ctx context.Context, userID, topicID string) (*types.Item, error) {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("topicId", topicID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/getNextQuestion?"+q.Encode(), nil)
	if err != nil {
		return nil, core.NewToolInvocationError("create fetch request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.NewToolInvocationError("fetch next due item", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return nil, core.NewToolInvocationError(
			fmt.Sprintf("progress service error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(b))), nil)
	}

	var decoded struct {
		Question struct {
			ID      string `json:"_id"`
			Content string `json:"content"`
		} `json:"question"`
		Answer *struct {
			Content string `json:"content"`
		} `json:"answer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, core.NewToolInvocationError("decode fetch response", err)
	}

	item := &types.Item{
		ItemID:        decoded.Question.ID,
		PromptContent: decoded.Question.Content,
	}
	if decoded.Answer != nil {
		item.ReferenceAnswer = decoded.Answer.Content
	}
	return item, nil
}

// Submission is one graded review outcome.
type Submission struct {
	UserID     string
	TopicID    string
	ItemID     string
	Rating     string
	UserAnswer string
}

// SubmitProgress records a graded outcome for an item.
func (c *Client) SubmitProgress(ctx context.Context, sub Submission) error {
	body, err := json.Marshal(map[string]string{
		"userId":            sub.UserID,
		"questionId":        sub.ItemID,
		"performanceRating": sub.Rating,
		"userAnswer":        sub.UserAnswer,
		"topicId":           sub.TopicID,
	})
	if err != nil {
		return core.NewToolInvocationError("marshal submission", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/updateFlashcardProgress", bytes.NewReader(body))
	if err != nil {
		return core.NewToolInvocationError("create submit request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.NewToolInvocationError("submit progress", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return core.NewToolInvocationError(
			fmt.Sprintf("progress service error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(b))), nil)
	}
	return nil
}
