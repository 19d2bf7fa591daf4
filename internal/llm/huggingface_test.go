package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuggingFaceRefine(t *testing.T) {
	var gotAuth string
	var gotReq hfRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode([]hfResult{{GeneratedText: "  simulated lung fields  "}})
	}))
	defer srv.Close()

	r := NewHuggingFaceRefiner(srv.Client(), srv.URL, "hf-key")
	text, err := r.Refine(context.Background(), "describe a synthetic chest x-ray")
	require.NoError(t, err)

	assert.Equal(t, "simulated lung fields", text)
	assert.Equal(t, "Bearer hf-key", gotAuth)
	assert.Equal(t, "describe a synthetic chest x-ray", gotReq.Inputs)
	assert.Equal(t, MaxTokens, gotReq.Parameters.MaxNewTokens)
	assert.False(t, gotReq.Parameters.ReturnFullText)
}

func TestHuggingFaceRefineErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		r := NewHuggingFaceRefiner(srv.Client(), srv.URL, "")
		_, err := r.Refine(context.Background(), "x")
		assert.ErrorContains(t, err, "503")
	})

	t.Run("empty completion", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]hfResult{})
		}))
		defer srv.Close()

		r := NewHuggingFaceRefiner(srv.Client(), srv.URL, "")
		_, err := r.Refine(context.Background(), "x")
		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})
}
