package knowledge

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/philippgille/chromem-go"

	contractx "github.com/kermits/telassist/agent/contract"
)

type Config struct {
	// Path persists the index on disk; empty keeps it in memory.
	Path       string `envconfig:"PATH" split_words:"true"`
	Compress   bool   `envconfig:"COMPRESS" split_words:"true"`
	Collection string `envconfig:"COLLECTION" split_words:"true" default:"telecom_faq"`

	EmbeddingBaseURL string `envconfig:"EMBEDDING_BASE_URL" split_words:"true"`
	EmbeddingAPIKey  string `envconfig:"EMBEDDING_API_KEY" split_words:"true"`
	EmbeddingModel   string `envconfig:"EMBEDDING_MODEL" split_words:"true" default:"text-embedding-3-small"`
}

// Store is the FAQ vector index.
type Store struct {
	collection *chromem.Collection
}

var _ contractx.KnowledgeBase = (*Store)(nil)

func NewStore(cfg Config) (*Store, error) {
	var (
		db  *chromem.DB
		err error
	)
	if path := strings.TrimSpace(cfg.Path); path != "" {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("knowledge path: %w", err)
		}
		db, err = chromem.NewPersistentDB(path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("open knowledge db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	var embed chromem.EmbeddingFunc
	if cfg.EmbeddingBaseURL != "" {
		embed = chromem.NewEmbeddingFuncOpenAICompat(
			strings.TrimRight(cfg.EmbeddingBaseURL, "/"),
			cfg.EmbeddingAPIKey,
			cfg.EmbeddingModel,
			nil,
		)
	}

	name := cfg.Collection
	if name == "" {
		name = "telecom_faq"
	}
	collection, err := db.GetOrCreateCollection(name, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("knowledge collection: %w", err)
	}
	return &Store{collection: collection}, nil
}

// Seed indexes FAQ entries. Entries are embedded once; re-seeding the same
// IDs overwrites in place.
func (s *Store) Seed(ctx context.Context, entries []contractx.FAQEntry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]chromem.Document, 0, len(entries))
	for i, e := range entries {
		docs = append(docs, chromem.Document{
			ID:      fmt.Sprintf("faq-%03d", i+1),
			Content: e.Question + "\n" + e.Answer,
			Metadata: map[string]string{
				"question": e.Question,
				"answer":   e.Answer,
				"source":   e.Source,
			},
		})
	}
	if err := s.collection.AddDocuments(ctx, docs, 2); err != nil {
		return fmt.Errorf("seed knowledge: %w", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, query string, topK int) ([]contractx.FAQEntry, error) {
	if topK <= 0 {
		topK = 3
	}
	if count := s.collection.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := s.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: knowledge query: %v", contractx.ErrDomainService, err)
	}

	entries := make([]contractx.FAQEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, contractx.FAQEntry{
			Question: r.Metadata["question"],
			Answer:   r.Metadata["answer"],
			Source:   r.Metadata["source"],
			Score:    r.Similarity,
		})
	}
	return entries, nil
}
