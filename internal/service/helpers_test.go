package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/business_site/internal/hash"
	"github.com/Skotchmaster/business_site/internal/models"
	"github.com/Skotchmaster/business_site/internal/repo"
	"github.com/Skotchmaster/business_site/internal/search"
	"github.com/Skotchmaster/business_site/internal/testutil"
	"github.com/Skotchmaster/business_site/internal/tokens"
)

type recordedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, _ := event.(map[string]any)
	p.events = append(p.events, recordedEvent{Topic: topic, Key: key, Event: m})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

type fakeIndex struct {
	docs map[string]search.Document
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[string]search.Document{}}
}

func (f *fakeIndex) Put(_ context.Context, doc search.Document) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) (int64, []search.Document, error) {
	out := make([]search.Document, 0, len(f.docs))
	for _, d := range f.docs {
		if d.Published {
			out = append(out, d)
		}
	}
	return int64(len(out)), out, nil
}

type testEnv struct {
	Repo      *repo.GormRepo
	Hasher    *hash.Hasher
	Codec     *tokens.Codec
	Issuer    *tokens.Issuer
	Publisher *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	codec := tokens.NewCodec(tokens.Secrets{
		Access:  []byte("test-jwt-secret"),
		Refresh: []byte("test-refresh-secret"),
	})
	return &testEnv{
		Repo:      &repo.GormRepo{DB: testutil.InitTestDB(t)},
		Hasher:    hash.NewHasher([]byte("test-pepper")),
		Codec:     codec,
		Issuer:    tokens.NewIssuer(codec),
		Publisher: &fakePublisher{},
	}
}

func (e *testEnv) authService() *AuthService {
	return &AuthService{
		Accounts: e.Repo,
		Hasher:   e.Hasher,
		Issuer:   e.Issuer,
		Verifier: e.Codec,
		Producer: e.Publisher,
	}
}

func (e *testEnv) userService() *UserService {
	return &UserService{Repo: e.Repo, Hasher: e.Hasher, Producer: e.Publisher}
}

func (e *testEnv) createAccount(t *testing.T, email, password string, isAdmin bool) *models.User {
	t.Helper()

	pwHash, err := e.Hasher.HashPassword(password)
	require.NoError(t, err)

	u := &models.User{Email: email, PasswordHash: pwHash, FirstName: "Test", LastName: "User", IsAdmin: isAdmin}
	require.NoError(t, e.Repo.CreateAccount(context.Background(), u))
	return u
}
