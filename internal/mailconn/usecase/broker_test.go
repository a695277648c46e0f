package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpulse-backend/internal/mailconn/domain"
	"jobpulse-backend/pkg/mailprovider"
	"jobpulse-backend/pkg/oauth"
	"jobpulse-backend/pkg/tokencache"
)

type fakeConnRepo struct {
	conns map[string]*domain.MailConnection
}

func newFakeConnRepo() *fakeConnRepo {
	return &fakeConnRepo{conns: map[string]*domain.MailConnection{}}
}

func (r *fakeConnRepo) Get(userID string) (*domain.MailConnection, error) {
	c, ok := r.conns[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConnRepo) Upsert(conn *domain.MailConnection) error {
	cp := *conn
	r.conns[conn.UserID] = &cp
	return nil
}

func (r *fakeConnRepo) Delete(userID string) error {
	delete(r.conns, userID)
	return nil
}

type fakeRefresher struct {
	calls  int
	tokens []string
	err    error
}

func (f *fakeRefresher) refresh(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	token := f.tokens[0]
	if len(f.tokens) > 1 {
		f.tokens = f.tokens[1:]
	}
	return token, nil
}

func newTestBroker(refresher *fakeRefresher) (*fakeConnRepo, *Broker) {
	repo := newFakeConnRepo()
	cache := tokencache.New(16, time.Minute)
	broker := NewBroker(repo, cache, map[mailprovider.Provider]oauth.RefreshFunc{
		mailprovider.ProviderGmail: refresher.refresh,
	})
	return repo, broker
}

func connect(t *testing.T, b *Broker) {
	t.Helper()
	require.NoError(t, b.SaveConnection("u1", mailprovider.ProviderGmail, "me@gmail.com", "refresh-1"))
}

func TestGetAccessTokenCacheFirst(t *testing.T) {
	refresher := &fakeRefresher{tokens: []string{"tok-1"}}
	_, broker := newTestBroker(refresher)
	connect(t, broker)

	first, err := broker.GetAccessToken(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", first.AccessToken)
	assert.Equal(t, mailprovider.ProviderGmail, first.Provider)
	assert.Equal(t, "me@gmail.com", first.Email)
	assert.Equal(t, 1, refresher.calls)

	// Second call served from cache, no extra refresh.
	second, err := broker.GetAccessToken(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", second.AccessToken)
	assert.Equal(t, 1, refresher.calls)
}

func TestGetAccessTokenWithoutConnection(t *testing.T) {
	refresher := &fakeRefresher{tokens: []string{"tok-1"}}
	_, broker := newTestBroker(refresher)

	_, err := broker.GetAccessToken(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrReauthRequired)
	assert.Zero(t, refresher.calls)
}

func TestHandleUnauthorizedDropsCacheBeforeRefresh(t *testing.T) {
	refresher := &fakeRefresher{tokens: []string{"tok-1", "tok-2"}}
	_, broker := newTestBroker(refresher)
	connect(t, broker)

	_, err := broker.GetAccessToken(context.Background(), "u1")
	require.NoError(t, err)

	access, err := broker.HandleUnauthorized(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", access.AccessToken)
	assert.Equal(t, 2, refresher.calls)
}

func TestRefreshFailureBurnsConnection(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("invalid_grant")}
	repo, broker := newTestBroker(refresher)
	connect(t, broker)

	_, err := broker.GetAccessToken(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrReauthRequired)

	// The stored connection is gone; the next attempt fails fast.
	assert.Empty(t, repo.conns)
	refresher.err = nil
	refresher.tokens = []string{"tok-1"}
	_, err = broker.GetAccessToken(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrReauthRequired)
	assert.Equal(t, 1, refresher.calls)
}

func TestWithMailAccessRetriesOnceOn401(t *testing.T) {
	refresher := &fakeRefresher{tokens: []string{"stale", "fresh"}}
	_, broker := newTestBroker(refresher)
	connect(t, broker)

	var seen []string
	out, err := WithMailAccess(context.Background(), broker, "u1", func(a Access) (string, error) {
		seen = append(seen, a.AccessToken)
		if a.AccessToken == "stale" {
			return "", mailprovider.ErrUnauthorized
		}
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, []string{"stale", "fresh"}, seen)
}

func TestWithMailAccessGivesUpAfterSecond401(t *testing.T) {
	refresher := &fakeRefresher{tokens: []string{"stale", "still-stale"}}
	_, broker := newTestBroker(refresher)
	connect(t, broker)

	calls := 0
	_, err := WithMailAccess(context.Background(), broker, "u1", func(a Access) (string, error) {
		calls++
		return "", mailprovider.ErrUnauthorized
	})
	assert.ErrorIs(t, err, ErrReauthRequired)
	assert.Equal(t, 2, calls)
}

func TestWithMailAccessPassesThroughOtherErrors(t *testing.T) {
	refresher := &fakeRefresher{tokens: []string{"tok-1"}}
	_, broker := newTestBroker(refresher)
	connect(t, broker)

	boom := errors.New("rate limited")
	calls := 0
	_, err := WithMailAccess(context.Background(), broker, "u1", func(a Access) (string, error) {
		calls++
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestSaveConnectionInvalidatesCache(t *testing.T) {
	refresher := &fakeRefresher{tokens: []string{"tok-1", "tok-2"}}
	_, broker := newTestBroker(refresher)
	connect(t, broker)

	_, err := broker.GetAccessToken(context.Background(), "u1")
	require.NoError(t, err)

	require.NoError(t, broker.SaveConnection("u1", mailprovider.ProviderGmail, "new@gmail.com", "refresh-2"))
	access, err := broker.GetAccessToken(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", access.AccessToken)
	assert.Equal(t, "new@gmail.com", access.Email)
}
