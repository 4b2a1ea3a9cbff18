package core

import "context"

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is a single message sent to a generation provider.
type Message struct {
	Role    Role
	Content string
}

// Generator is the contract for text-generation backends.
type Generator interface {
	// Generate runs the messages through the model and returns the full response.
	Generate(ctx context.Context, messages []Message) (string, error)

	// GenerateStream returns a channel of response chunks. The channel is
	// closed when the stream ends; streams are finite and not restartable.
	GenerateStream(ctx context.Context, messages []Message) (<-chan string, error)
}

// SearchProvider is the contract for retrieval backends. Implementations are
// registered by name with the retrieval gateway.
type SearchProvider interface {
	// Name returns the provider identifier (e.g. "sogou", "tavily").
	Name() string

	// Search returns up to maxResults ranked results for the query.
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// QuoteProvider supplies pre-formatted market context for a query, or an
// empty string when the query names no recognizable instrument.
type QuoteProvider interface {
	QuoteContext(ctx context.Context, query string) (string, error)
}

// Exporter transforms a finished report into a publishing-specific string.
type Exporter interface {
	// Name returns the format identifier (e.g. "markdown", "wechat").
	Name() string

	// Export renders the content with the given metadata.
	Export(content string, meta map[string]string) (string, error)
}

// ProgressFunc receives human-readable status messages during a run.
type ProgressFunc func(message string)
