package usecase

import (
	"context"
	"errors"

	"jobpulse-backend/internal/mailconn/domain"
	"jobpulse-backend/internal/mailconn/repository"
	"jobpulse-backend/internal/metrics"
	"jobpulse-backend/pkg/mailprovider"
	"jobpulse-backend/pkg/oauth"
	"jobpulse-backend/pkg/tokencache"
)

// ErrReauthRequired signals that the stored connection can no longer mint
// access tokens and the user has to go through OAuth consent again.
var ErrReauthRequired = errors.New("mail re-auth required")

// Access is a usable provider session: a fresh access token plus the
// connection identity it belongs to.
type Access struct {
	Provider    mailprovider.Provider
	Email       string
	AccessToken string
}

// Broker turns stored refresh tokens into short-lived access tokens. Tokens
// are served cache-first; a provider 401 invalidates the cache and forces one
// refresh. A failed refresh burns the stored connection, since a dead refresh
// token never recovers on its own.
type Broker struct {
	repo       repository.MailConnectionRepository
	cache      *tokencache.Cache
	refreshers map[mailprovider.Provider]oauth.RefreshFunc
	metrics    *metrics.Metrics
}

// NewBroker creates a Broker
func NewBroker(repo repository.MailConnectionRepository, cache *tokencache.Cache, refreshers map[mailprovider.Provider]oauth.RefreshFunc) *Broker {
	return &Broker{
		repo:       repo,
		cache:      cache,
		refreshers: refreshers,
	}
}

// SetMetrics attaches Prometheus counters; nil leaves the broker unmetered
func (b *Broker) SetMetrics(m *metrics.Metrics) {
	b.metrics = m
}

// IsConnected reports whether the user has a stored mail connection
func (b *Broker) IsConnected(userID string) (bool, error) {
	conn, err := b.repo.Get(userID)
	if err != nil {
		return false, err
	}
	return conn != nil, nil
}

// Connection returns the stored connection without the refresh token
func (b *Broker) Connection(userID string) (*domain.MailConnection, error) {
	conn, err := b.repo.Get(userID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, nil
	}
	conn.RefreshToken = ""
	return conn, nil
}

// SaveConnection stores a new connection and drops any cached token for the
// previous one
func (b *Broker) SaveConnection(userID string, provider mailprovider.Provider, email, refreshToken string) error {
	if !provider.Valid() {
		return mailprovider.ErrUnknownProvider
	}
	b.cache.Invalidate(userID)
	return b.repo.Upsert(&domain.MailConnection{
		UserID:       userID,
		Provider:     string(provider),
		Email:        email,
		RefreshToken: refreshToken,
	})
}

// RemoveConnection disconnects the user's mailbox
func (b *Broker) RemoveConnection(userID string) error {
	b.cache.Invalidate(userID)
	return b.repo.Delete(userID)
}

// GetAccessToken returns a token cache-first; on a miss it refreshes from the
// stored connection. It only mints tokens, it never probes the provider API.
func (b *Broker) GetAccessToken(ctx context.Context, userID string) (*Access, error) {
	if cached, ok := b.cache.Get(userID); ok {
		return &Access{
			Provider:    mailprovider.Provider(cached.Provider),
			Email:       cached.Email,
			AccessToken: cached.AccessToken,
		}, nil
	}
	return b.refreshInto(ctx, userID)
}

// HandleUnauthorized is called only after a provider returned 401: the cached
// token is stale, so it is dropped before refreshing.
func (b *Broker) HandleUnauthorized(ctx context.Context, userID string) (*Access, error) {
	b.cache.Invalidate(userID)
	return b.refreshInto(ctx, userID)
}

func (b *Broker) refreshInto(ctx context.Context, userID string) (*Access, error) {
	conn, err := b.repo.Get(userID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, ErrReauthRequired
	}

	refresh, ok := b.refreshers[mailprovider.Provider(conn.Provider)]
	if !ok {
		return nil, mailprovider.ErrUnknownProvider
	}

	accessToken, err := refresh(ctx, conn.RefreshToken)
	if err != nil {
		return nil, b.reauth(userID)
	}
	if b.metrics != nil {
		b.metrics.TokenRefreshes.Inc()
	}

	b.cache.Set(userID, tokencache.Entry{
		Provider:    conn.Provider,
		Email:       conn.Email,
		AccessToken: accessToken,
	})
	return &Access{
		Provider:    mailprovider.Provider(conn.Provider),
		Email:       conn.Email,
		AccessToken: accessToken,
	}, nil
}

// reauth burns the stored connection and reports the sentinel
func (b *Broker) reauth(userID string) error {
	_ = b.repo.Delete(userID)
	b.cache.Invalidate(userID)
	if b.metrics != nil {
		b.metrics.ReauthSignals.Inc()
	}
	return ErrReauthRequired
}

// WithMailAccess runs call with a valid access token, retrying exactly once
// after a provider 401. Any other error passes through untouched.
func WithMailAccess[T any](ctx context.Context, b *Broker, userID string, call func(Access) (T, error)) (T, error) {
	var zero T

	first, err := b.GetAccessToken(ctx, userID)
	if err != nil {
		return zero, err
	}

	out, err := call(*first)
	if err == nil || !errors.Is(err, mailprovider.ErrUnauthorized) {
		return out, err
	}

	second, err := b.HandleUnauthorized(ctx, userID)
	if err != nil {
		return zero, err
	}

	out, err = call(*second)
	if err != nil && errors.Is(err, mailprovider.ErrUnauthorized) {
		// A fresh token was still rejected: the connection is beyond repair
		// from here.
		return zero, ErrReauthRequired
	}
	return out, err
}
