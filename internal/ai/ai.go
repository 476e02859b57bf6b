// Package ai wraps the Gemini embedding model and the vector helpers used
// by semantic search.
package ai

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// EmbeddingModel is the Gemini model used for teas and queries alike.
const EmbeddingModel = "text-embedding-004"

// ErrNoAPIKey is returned when semantic search is used without a key.
var ErrNoAPIKey = errors.New("GEMINI_API_KEY is required for semantic search")

// Embedder turns text into a vector, returned both as a storage blob and
// as floats.
type Embedder interface {
	EmbedString(ctx context.Context, text string) ([]byte, []float32, error)
}

// Client wraps the GenAI client.
type Client struct {
	genaiClient *genai.Client
	model       *genai.EmbeddingModel
}

var _ Embedder = (*Client)(nil)

// NewClient creates a connected AI client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	return &Client{
		genaiClient: c,
		model:       c.EmbeddingModel(EmbeddingModel),
	}, nil
}

// Close terminates the connection.
func (c *Client) Close() {
	if c.genaiClient != nil {
		c.genaiClient.Close()
	}
}

// EmbedString generates a vector for the given text.
func (c *Client) EmbedString(ctx context.Context, text string) ([]byte, []float32, error) {
	res, err := c.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, nil, err
	}
	if res.Embedding == nil {
		return nil, nil, fmt.Errorf("AI returned empty embedding")
	}

	blob, err := FloatsToBytes(res.Embedding.Values)
	if err != nil {
		return nil, nil, err
	}
	return blob, res.Embedding.Values, nil
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when the lengths differ or either vector is zero.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}

// FloatsToBytes packs a vector little-endian for the BLOB column.
func FloatsToBytes(floats []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, floats); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToFloats converts the stored byte slice back to []float32.
func BytesToFloats(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid byte length %d for float32 slice", len(b))
	}
	floats := make([]float32, len(b)/4)
	err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &floats)
	return floats, err
}
