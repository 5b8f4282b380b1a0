package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const embeddingDimension = 1536

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

type embeddingEnvelope struct {
	Data []embeddingData `json:"data"`
}

// Name identifies this embedder in logs and stats.
func (c *Client) Name() string { return "openai:" + c.embedModel }

// Dimension is the vector dimension of the embedding model.
func (c *Client) Dimension() int { return embeddingDimension }

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one request, preserving input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordRequestMetric(ctx, c.embedModel, 0, 0, err)
			return nil, err
		}
		recordRateLimitWait(ctx, c.embedModel, time.Since(waitStart))
	}

	body, err := json.Marshal(embeddingRequest{Model: c.embedModel, Input: texts})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordRequestMetric(ctx, c.embedModel, 0, time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		recordRequestMetric(ctx, c.embedModel, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))
		return nil, fmt.Errorf("openai embeddings request failed with status %d", resp.StatusCode)
	}

	var envelope embeddingEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordRequestMetric(ctx, c.embedModel, resp.StatusCode, time.Since(start), err)
		return nil, err
	}
	if len(envelope.Data) != len(texts) {
		err := errors.New("openai embeddings response incomplete")
		recordRequestMetric(ctx, c.embedModel, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	vectors := make([][]float64, len(texts))
	for _, item := range envelope.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			err := fmt.Errorf("openai embeddings response index %d out of range", item.Index)
			recordRequestMetric(ctx, c.embedModel, resp.StatusCode, time.Since(start), err)
			return nil, err
		}
		vectors[item.Index] = item.Embedding
	}

	recordRequestMetric(ctx, c.embedModel, resp.StatusCode, time.Since(start), nil)
	return vectors, nil
}
