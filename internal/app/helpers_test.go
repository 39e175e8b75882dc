package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"warbler/internal/model"
	"warbler/internal/platform/database"
	"warbler/internal/repository"
)

const testPassword = "correct horse"

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type recordingRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (r *recordingRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = make(map[string]time.Duration)
	}
	r.revoked[tokenID] = ttl
	return nil
}

type fixture struct {
	db        *gorm.DB
	store     *repository.Store
	services  *Services
	publisher *recordingPublisher
	revoker   *recordingRevoker
}

// stepClock returns increasing times one second apart.
func stepClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.New(context.Background(), database.Options{Driver: database.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := repository.NewStore(db)
	publisher := &recordingPublisher{}
	revoker := &recordingRevoker{}
	services := NewServices(store, AuthConfig{
		JWTSecret:     "test-secret",
		JWTExpiration: time.Hour,
		BcryptCost:    bcrypt.MinCost,
	}, revoker, publisher, log)
	services.Messages.WithClock(stepClock())

	return &fixture{db: db, store: store, services: services, publisher: publisher, revoker: revoker}
}

func (f *fixture) signup(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := f.services.Auth.Signup(context.Background(), SignupInput{
		Username: username,
		Email:    strings.ToLower(username) + "@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) post(t *testing.T, author *model.User, text string) *model.Message {
	t.Helper()
	message, err := f.services.Messages.Post(context.Background(), author.ID, text)
	require.NoError(t, err)
	return message
}

func messageIDs(messages []model.Message) []uint {
	ids := make([]uint, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}
	return ids
}

func userIDs(users []model.User) []uint {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

// interceptWrite runs fn inside the caller's transaction right before the
// first INSERT (or UPDATE when update is set) on table. It stands in for a
// concurrent writer that commits between a service's checks and its write.
func (f *fixture) interceptWrite(t *testing.T, table string, update bool, fn func(tx *gorm.DB)) {
	t.Helper()

	name := "test:intercept_" + table
	var fired bool
	hook := func(db *gorm.DB) {
		if fired || db.Statement.Schema == nil || db.Statement.Schema.Table != table {
			return
		}
		fired = true
		fn(db.Session(&gorm.Session{NewDB: true}))
	}

	if update {
		require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register(name, hook))
		t.Cleanup(func() { _ = f.db.Callback().Update().Remove(name) })
	} else {
		require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register(name, hook))
		t.Cleanup(func() { _ = f.db.Callback().Create().Remove(name) })
	}
	t.Cleanup(func() { require.True(t, fired, "write on %s was never intercepted", table) })
}

func insertUser(t *testing.T, tx *gorm.DB, username, email string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, tx.Exec(
		"INSERT INTO users (username, email, password_hash, image_url, header_image_url, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		username, email, "x", model.DefaultImageURL, model.DefaultHeaderImageURL, now, now,
	).Error)
}
