// Package chat answers user questions by retrieving relevant segments from
// the vector index and grounding a language-model prompt in them.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/geziefer/docchat/internal/adapter/cache"
	"github.com/geziefer/docchat/internal/domain"
	"github.com/geziefer/docchat/internal/logger"
	"github.com/geziefer/docchat/internal/port"
)

// Defaults for the retrieval policy.
const (
	DefaultTopK        = 3
	DefaultMinScore    = 0.75
	DefaultCallTimeout = 60 * time.Second
)

// answerPrompt wraps the user's question and the retrieved context. It is
// only used when at least one match clears the score threshold; otherwise the
// raw question goes to the model unmodified.
const answerPrompt = `Based on the following context information, please answer the user's question.
If the context doesn't contain relevant information, say so and provide a general answer.

Context:
%s

Question: %s

Answer:`

// DefaultMarkers are the "I don't know" phrases checked against the model's
// response before disclosing sources. Citing a document the model explicitly
// disclaimed using would be misleading. This is a substring heuristic for
// "did the model ground its answer in the context", not a semantic guarantee.
var DefaultMarkers = []string{
	"doesn't contain relevant information",
	"don't have information",
	"not mentioned in the context",
	"context doesn't provide",
	"no relevant information",
}

// Engine is the retrieval and composition engine. One instance serves
// concurrent requests.
type Engine struct {
	embedder    port.Embedder
	index       port.VectorIndex
	completer   port.Completer
	topK        int
	minScore    float64
	markers     []string
	callTimeout time.Duration
	answers     *cache.AnswerCache
}

// Option configures the engine.
type Option func(*Engine)

// WithTopK sets the number of nearest neighbours requested from the index.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithMinScore sets the minimum cosine similarity a match must clear.
func WithMinScore(s float64) Option {
	return func(e *Engine) {
		if s >= 0 && s <= 1 {
			e.minScore = s
		}
	}
}

// WithMarkers replaces the disclaimer marker phrases.
func WithMarkers(markers []string) Option {
	return func(e *Engine) {
		if len(markers) > 0 {
			e.markers = markers
		}
	}
}

// WithCallTimeout bounds each external call (embed, search, complete).
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.callTimeout = d
		}
	}
}

// WithAnswerCache memoises answers until the next document mutation.
func WithAnswerCache(c *cache.AnswerCache) Option {
	return func(e *Engine) { e.answers = c }
}

// New creates an engine with the given collaborators.
func New(embedder port.Embedder, index port.VectorIndex, completer port.Completer, opts ...Option) *Engine {
	e := &Engine{
		embedder:    embedder,
		index:       index,
		completer:   completer,
		topK:        DefaultTopK,
		minScore:    DefaultMinScore,
		markers:     DefaultMarkers,
		callTimeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InvalidateCache drops memoised answers. Callers invoke it after ingesting
// or deleting a document.
func (e *Engine) InvalidateCache() {
	if e.answers != nil {
		e.answers.Invalidate()
	}
}

// Answer responds to a user question. Retrieval failure never blocks
// answering: if embedding or search fails, the raw question is sent to the
// model ungrounded and no sources are reported.
func (e *Engine) Answer(ctx context.Context, userMessage string) (domain.ChatAnswer, error) {
	if e.answers != nil {
		if answer, ok := e.answers.Get(userMessage); ok {
			logger.Debug("answer served from cache")
			return answer, nil
		}
	}

	matches := e.retrieve(ctx, userMessage)

	prompt := userMessage
	if len(matches) > 0 {
		prompt = composePrompt(userMessage, matches)
	}

	response, err := e.complete(ctx, prompt)
	if err != nil && prompt != userMessage {
		// Grounded completion failed; availability wins over grounding.
		logger.Warn("grounded completion failed, retrying ungrounded: %v", err)
		matches = nil
		response, err = e.complete(ctx, userMessage)
	}
	if err != nil {
		return domain.ChatAnswer{}, fmt.Errorf("completion failed: %w", err)
	}

	answer := domain.ChatAnswer{
		Response: response,
		Sources:  e.sources(matches, response),
	}
	if e.answers != nil {
		e.answers.Put(userMessage, answer)
	}
	return answer, nil
}

// retrieve embeds the question and searches the index. Any failure degrades
// to no context. The index is asked to pre-filter by the minimum score, but
// the returned matches are re-filtered here as well; the index's own
// filtering is not trusted as the sole enforcement point.
func (e *Engine) retrieve(ctx context.Context, userMessage string) []port.Match {
	embedCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	queryVector, err := e.embedder.Embed(embedCtx, userMessage)
	if err != nil {
		logger.Warn("query embedding failed, answering without context: %v", err)
		return nil
	}

	searchCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	matches, err := e.index.Search(searchCtx, queryVector, e.topK, e.minScore)
	if err != nil {
		logger.Warn("vector search failed, answering without context: %v", err)
		return nil
	}

	relevant := matches[:0]
	for _, m := range matches {
		if m.Score >= e.minScore {
			relevant = append(relevant, m)
		}
	}
	logger.Debug("retrieved %d matches above score %.2f", len(relevant), e.minScore)
	return relevant
}

func (e *Engine) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	return e.completer.Complete(ctx, prompt)
}

// composePrompt concatenates the matched segment texts in descending score
// order, separated by blank lines, and wraps them with the question.
func composePrompt(userMessage string, matches []port.Match) string {
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Payload.Text
	}
	return fmt.Sprintf(answerPrompt, strings.Join(texts, "\n\n"), userMessage)
}

// sources returns the de-duplicated filenames of the matches, ordered by
// first occurrence. If the response contains a disclaimer marker, no sources
// are disclosed.
func (e *Engine) sources(matches []port.Match, response string) []string {
	if len(matches) == 0 || e.containsMarker(response) {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m.Payload.Filename
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (e *Engine) containsMarker(response string) bool {
	lower := strings.ToLower(response)
	for _, marker := range e.markers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
