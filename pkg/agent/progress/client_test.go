package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiro-ai/voice-tutor/pkg/core"
)

func TestFetchNextDueItem(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/getNextQuestion", r.URL.Path)
		gotQuery = map[string]string{
			"userId":  r.URL.Query().Get("userId"),
			"topicId": r.URL.Query().Get("topicId"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"question": {"_id": "q-42", "content": "What is the capital of France?"},
			"answer": {"content": "Paris"}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	item, err := client.FetchNextDueItem(context.Background(), "user-1", "topic-1")
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, "q-42", item.ItemID)
	assert.Equal(t, "What is the capital of France?", item.PromptContent)
	assert.Equal(t, "Paris", item.ReferenceAnswer)
	assert.Equal(t, "user-1", gotQuery["userId"])
	assert.Equal(t, "topic-1", gotQuery["topicId"])
}

func TestFetchNextDueItemMissingAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"question": {"_id": "q-1", "content": "Name three noble gases."}}`))
	}))
	defer srv.Close()

	item, err := NewClient(srv.URL, nil).FetchNextDueItem(context.Background(), "u", "t")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Empty(t, item.ReferenceAnswer)
}

func TestFetchNextDueItemNothingDue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no cards due", http.StatusNotFound)
	}))
	defer srv.Close()

	item, err := NewClient(srv.URL, nil).FetchNextDueItem(context.Background(), "u", "t")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestFetchNextDueItemServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	item, err := NewClient(srv.URL, nil).FetchNextDueItem(context.Background(), "u", "t")
	assert.Nil(t, item)

	var cerr *core.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, core.ErrToolInvocation, cerr.Type)
	assert.Contains(t, cerr.Message, "500")
	assert.Contains(t, cerr.Message, "boom")
	assert.False(t, cerr.IsFatal())
}

func TestSubmitProgress(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/updateFlashcardProgress", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).SubmitProgress(context.Background(), Submission{
		UserID:     "user-1",
		TopicID:    "topic-1",
		ItemID:     "q-42",
		Rating:     RatingCorrect,
		UserAnswer: "Paris",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"userId":            "user-1",
		"questionId":        "q-42",
		"performanceRating": "3",
		"userAnswer":        "Paris",
		"topicId":           "topic-1",
	}, gotBody)
}

func TestSubmitProgressServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "validation failed", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).SubmitProgress(context.Background(), Submission{
		UserID: "u", TopicID: "t", ItemID: "q", Rating: RatingIncorrect, UserAnswer: "",
	})

	var cerr *core.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, core.ErrToolInvocation, cerr.Type)
	assert.Contains(t, cerr.Message, "validation failed")
}
