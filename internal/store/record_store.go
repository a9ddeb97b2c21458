package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/BILBIL17/physioconnect/internal/domain"
	"github.com/BILBIL17/physioconnect/internal/kvstore"
)

// DocumentKey is the storage key holding the entire application document.
const DocumentKey = "physcio_app_data"

// Persisted session marker keys. Read at startup, written on every relevant
// transition.
const (
	KeyCurrentView      = "current_view"
	KeyLoggedInUserID   = "logged_in_user_id"
	KeyAdminLoggedIn    = "is_admin_logged_in"
	KeyAIProvider       = "ai_provider"
	KeyGeminiAPIKey     = "gemini_api_key"
	KeyOpenAIAPIKey     = "openai_api_key"
	KeyGroqAPIKey       = "groq_api_key"
	KeyCustomAPIKey     = "custom_api_key"
	KeyCustomAPIBaseURL = "custom_api_base_url"
	KeyCustomAPIModel   = "custom_api_model"
)

// RecordStore owns the serialized application document. Every mutation is a
// whole-document overwrite, so all writers funnel through one mutex: two
// services updating different collections can never lose each other's write.
type RecordStore struct {
	mu sync.Mutex
	kv kvstore.Store
}

func NewRecordStore(kv kvstore.Store) *RecordStore {
	return &RecordStore{kv: kv}
}

// Load parses the persisted document. On absence or unparseable bytes it
// returns an empty document with all collections materialized; corruption is
// logged and recovered transparently, never surfaced to the caller.
func (s *RecordStore) Load(ctx context.Context) *domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// load reads without taking the mutex; callers hold it.
func (s *RecordStore) load(ctx context.Context) *domain.Document {
	data, err := s.kv.Get(ctx, DocumentKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrKeyNotFound) {
			log.Printf("ERROR: Failed to read application document: %v", err)
		}
		// First run: Normalize materializes collections and seeds journals.
		doc := &domain.Document{}
		doc.Normalize()
		return doc
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("WARN: Application document is corrupt, resetting to empty: %v", err)
		fresh := &domain.Document{}
		fresh.Normalize()
		return fresh
	}
	doc.Normalize()
	return &doc
}

// Save serializes and persists the complete document, fully overwriting the
// prior bytes.
func (s *RecordStore) Save(ctx context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, doc)
}

func (s *RecordStore) save(ctx context.Context, doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, DocumentKey, data)
}

// Update runs fn against the current document and persists the result, all
// under the store mutex. Services mutate exclusively through Update; the
// single-writer discipline is what keeps whole-document overwrites from
// losing concurrent changes.
func (s *RecordStore) Update(ctx context.Context, fn func(doc *domain.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load(ctx)
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(ctx, doc)
}

// Markers exposes the underlying key-value store for the small session
// marker keys, which live beside the document rather than inside it.
func (s *RecordStore) Markers() kvstore.Store {
	return s.kv
}
