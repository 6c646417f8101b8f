package service

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/tip2talk/server/internal/db"
	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/realtime"
	"github.com/tip2talk/server/internal/repository"
	_ "modernc.org/sqlite"
)

// memStorage keeps uploads in memory so service tests run without S3.
type memStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{files: make(map[string][]byte)}
}

func (m *memStorage) Save(path string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = bytes.Clone(data)
	return nil
}

func (m *memStorage) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

func (m *memStorage) URL(path string) string {
	return "mem://" + path
}

type testDeps struct {
	db           *sqlx.DB
	profiles     repository.ProfileRepository
	messages     repository.MessageRepository
	purchases    repository.PurchaseRepository
	tips         repository.TipRepository
	transactions repository.TransactionRepository
	storage      *memStorage
	hub          *realtime.Hub
	chat         *ChatService
	ledger       *LedgerService
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()

	database, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	profiles := repository.NewProfileRepository(database)
	conversations := repository.NewConversationRepository(database)
	messages := repository.NewMessageRepository(database)
	purchases := repository.NewPurchaseRepository(database)
	tips := repository.NewTipRepository(database)
	transactions := repository.NewTransactionRepository(database)

	fileStorage := newMemStorage()
	hub := realtime.NewHub()

	chat := NewChatService(conversations, messages, purchases, fileStorage, hub)
	ledger := NewLedgerService(transactions, purchases, tips, profiles, chat)

	return &testDeps{
		db:           database,
		profiles:     profiles,
		messages:     messages,
		purchases:    purchases,
		tips:         tips,
		transactions: transactions,
		storage:      fileStorage,
		hub:          hub,
		chat:         chat,
		ledger:       ledger,
	}
}

func (d *testDeps) profile(t *testing.T, username string, isCreator bool) *model.Profile {
	t.Helper()

	profile := &model.Profile{
		Email:        username + "@example.com",
		Username:     username,
		DisplayName:  username,
		PasswordHash: "x",
		IsCreator:    isCreator,
	}
	require.NoError(t, d.profiles.Create(profile))
	return profile
}

func (d *testDeps) conversation(t *testing.T, creator, fan *model.Profile) *model.Conversation {
	t.Helper()

	conversation, err := d.chat.StartConversation(creator, fan.ID)
	require.NoError(t, err)
	return conversation
}
