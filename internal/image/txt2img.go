package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/synthmed/radgen/internal/log"
)

// Txt2ImgGenerator talks to a stable-diffusion HTTP backend exposing the
// common txt2img contract: JSON params in, base64 PNG list out.
type Txt2ImgGenerator struct {
	Client *http.Client
	URL    string
	Key    string
}

type txt2imgResponse struct {
	Images []string `json:"images"`
}

func (g *Txt2ImgGenerator) Generate(ctx context.Context, params Params) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("txt2img").With(
		"url", g.URL,
		"resolution", params.Width,
		"steps", params.Steps,
		"seed", params.Seed,
	)
	log.Info("generating image")

	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	if g.Key != "" {
		req.Header.Add("Authorization", "Bearer "+g.Key)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("backend returned %d: %s", resp.StatusCode, data)
	}

	var out txt2imgResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Images) == 0 {
		return nil, fmt.Errorf("backend returned no images")
	}

	data, err := base64.StdEncoding.DecodeString(out.Images[0])
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}
	log.Info("received image", "bytes", len(data))
	return data, nil
}
