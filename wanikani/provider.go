// Package wanikani serves card groups backed by a WaniKani account.
//
// The account's assignments and subjects live in a local cache blob kept by
// a CredentialStore. Lessons, reviews and forecasts are answered from that
// cache; finished reviews and lesson starts are sent to WaniKani through a
// rate-limited Client and the returned assignment is written back.
package wanikani

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/deck"
)

// CredentialStore keeps the API key and cache blob of each WaniKani source.
type CredentialStore interface {
	WanikaniKey(ctx context.Context, account, source uuid.UUID) (string, error)
	WanikaniCache(ctx context.Context, account, source uuid.UUID) ([]byte, error)
	SaveWanikaniCache(ctx context.Context, account, source uuid.UUID, data []byte) error
}

// ProviderConfig configures a Provider.
type ProviderConfig struct {
	Client *Client          // nil → NewClient(ClientConfig{})
	Logger *slog.Logger     // nil → slog.Default()
	Now    func() time.Time // nil → time.Now
}

// Provider implements deck.Provider over cached WaniKani accounts.
type Provider struct {
	store  CredentialStore
	client *Client
	log    *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	accounts map[uuid.UUID]*Account // by source ID
}

var _ deck.Provider = (*Provider)(nil)

// NewProvider returns a Provider reading credentials and caches from store.
func NewProvider(store CredentialStore, cfg ProviderConfig) *Provider {
	p := &Provider{
		store:    store,
		client:   cfg.Client,
		log:      cfg.Logger,
		now:      cfg.Now,
		accounts: make(map[uuid.UUID]*Account),
	}
	if p.client == nil {
		p.client = NewClient(ClientConfig{})
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Lessons returns the source's lessons in teaching order.
func (p *Provider) Lessons(ctx context.Context, account, source uuid.UUID) ([]flashcards.CardGroup, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, err := p.account(ctx, account, source)
	if err != nil {
		return nil, err
	}
	return a.CardGroups(a.Lessons(), p.log), nil
}

// Reviews returns the source's reviews available at now.
func (p *Provider) Reviews(ctx context.Context, account, source uuid.UUID, now time.Time) ([]flashcards.CardGroup, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, err := p.account(ctx, account, source)
	if err != nil {
		return nil, err
	}
	return a.CardGroups(a.Reviews(now), p.log), nil
}

// Forecast returns when the source's upcoming reviews become available.
func (p *Provider) Forecast(ctx context.Context, account, source uuid.UUID, now time.Time) ([]flashcards.ForecastEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, err := p.account(ctx, account, source)
	if err != nil {
		return nil, err
	}
	return a.Forecast(now), nil
}

// CreateReview submits a finished review and caches the updated assignment.
func (p *Provider) CreateReview(ctx context.Context, account, source uuid.UUID, assignment int64, meaningIncorrect, readingIncorrect int) error {
	key, err := p.key(ctx, account, source)
	if err != nil {
		return err
	}
	updated, err := p.client.CreateReview(ctx, key, assignment, meaningIncorrect, readingIncorrect, p.now())
	if err != nil {
		return err
	}
	return p.put(ctx, account, source, updated)
}

// StartAssignment starts a lesson and caches the updated assignment.
func (p *Provider) StartAssignment(ctx context.Context, account, source uuid.UUID, assignment int64) error {
	key, err := p.key(ctx, account, source)
	if err != nil {
		return err
	}
	updated, err := p.client.StartAssignment(ctx, key, assignment, p.now())
	if err != nil {
		return err
	}
	return p.put(ctx, account, source, updated)
}

// Invalidate drops the in-memory copy of a source's cache, so the next call
// reloads it from the store.
func (p *Provider) Invalidate(source uuid.UUID) {
	p.mu.Lock()
	delete(p.accounts, source)
	p.mu.Unlock()
}

func (p *Provider) key(ctx context.Context, account, source uuid.UUID) (string, error) {
	key, err := p.store.WanikaniKey(ctx, account, source)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("%w: %s", ErrNoCredentials, source)
	}
	return key, nil
}

// account returns the cached account of source. p.mu must be held.
func (p *Provider) account(ctx context.Context, account, source uuid.UUID) (*Account, error) {
	if a, ok := p.accounts[source]; ok {
		return a, nil
	}
	data, err := p.store.WanikaniCache(ctx, account, source)
	if err != nil {
		return nil, err
	}
	a := DecodeAccount(data, p.log.With("source", source))
	p.accounts[source] = a
	return a, nil
}

func (p *Provider) put(ctx context.Context, account, source uuid.UUID, o Object[Assignment]) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, err := p.account(ctx, account, source)
	if err != nil {
		return err
	}
	a.PutAssignment(o)
	data, err := a.Encode()
	if err != nil {
		return fmt.Errorf("encode provider cache: %w", err)
	}
	return p.store.SaveWanikaniCache(ctx, account, source, data)
}
