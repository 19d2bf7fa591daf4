package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/synthmed/radgen/internal/log"
)

const defaultHFURL = "https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.3"

// HuggingFaceRefiner calls the hosted Inference API for text generation.
type HuggingFaceRefiner struct {
	Client *http.Client
	URL    string
	Key    string
}

func NewHuggingFaceRefiner(client *http.Client, url, apiKey string) *HuggingFaceRefiner {
	if url == "" {
		url = defaultHFURL
	}
	return &HuggingFaceRefiner{Client: client, URL: url, Key: apiKey}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfResult struct {
	GeneratedText string `json:"generated_text"`
}

func (r *HuggingFaceRefiner) Refine(ctx context.Context, instruction string) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("huggingface").With("url", r.URL)
	log.Debug("refining prompt")

	body, err := json.Marshal(hfRequest{
		Inputs: instruction,
		Parameters: hfParameters{
			MaxNewTokens:   MaxTokens,
			Temperature:    Temperature,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Add("Content-Type", "application/json")
	if r.Key != "" {
		req.Header.Add("Authorization", "Bearer "+r.Key)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("inference api returned %d: %s", resp.StatusCode, data)
	}

	var results []hfResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(results[0].GeneratedText)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
