// Package retrieval implements hybrid search over the per-category
// knowledge base: BM25 keyword ranking and embedding similarity fused
// with weighted reciprocal rank fusion, plus the multi-query merge used
// after query refinement.
package retrieval

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder computes vector embeddings for a batch of texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder talks to an OpenAI-compatible embeddings endpoint. A
// custom base URL points it at a local inference server.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an embedder for the given endpoint. An empty
// API key falls back to OPENAI_API_KEY.
func NewOpenAIEmbedder(apiKey, baseURL, model string) *OpenAIEmbedder {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("embeddings response index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// localEmbeddingDim is the dimensionality of the hashing embedder.
const localEmbeddingDim = 256

// LocalEmbedder is a deterministic feature-hashing embedder. It hashes
// token unigrams and bigrams into a fixed-size vector and L2-normalizes
// the result. Quality is well below a learned model, but it needs no
// network and the same text always maps to the same vector, which keeps
// the pipeline runnable offline and testable.
type LocalEmbedder struct{}

func NewLocalEmbedder() *LocalEmbedder {
	return &LocalEmbedder{}
}

func (e *LocalEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = hashEmbed(text)
	}
	return vectors, nil
}

func hashEmbed(text string) []float32 {
	vec := make([]float32, localEmbeddingDim)
	tokens := Tokenize(text)

	addFeature := func(feature string) {
		h := fnv.New32a()
		h.Write([]byte(feature))
		sum := h.Sum32()
		slot := sum % localEmbeddingDim
		// The next bit decides the sign so collisions partially cancel.
		if sum&(1<<31) != 0 {
			vec[slot] -= 1
		} else {
			vec[slot] += 1
		}
	}

	for i, tok := range tokens {
		addFeature(tok)
		if i+1 < len(tokens) {
			addFeature(tok + " " + tokens[i+1])
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

// Tokenize lowercases text and splits it into alphanumeric tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}

// cosineSimilarity computes the cosine similarity of two vectors. Vectors
// of different lengths or zero norm score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
