package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/tip2talk/server/internal/ctxkeys"
	"github.com/tip2talk/server/internal/db"
	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/realtime"
	"github.com/tip2talk/server/internal/repository"
	"github.com/tip2talk/server/internal/service"
	"github.com/tip2talk/server/internal/service/payment"
	_ "modernc.org/sqlite"
)

// memStorage stands in for S3 in handler tests.
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
	m.files[path] = data
	return nil
}

func (m *memStorage) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

func (m *memStorage) URL(path string) string { return "mem://" + path }

// fakeProvider records calls and returns canned results.
type fakeProvider struct {
	createErr   error
	lastInput   payment.CreatePaymentInput
	checkResult *model.Transaction
	checkErr    error
	webhookErr  error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) CreatePayment(in payment.CreatePaymentInput) (*payment.PaymentIntent, error) {
	f.lastInput = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &payment.PaymentIntent{ClientSecret: "cs_test", PaymentIntentID: "pi_test"}, nil
}

func (f *fakeProvider) CheckPayment(paymentIntentID string) (*model.Transaction, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	return f.checkResult, nil
}

func (f *fakeProvider) SetupPayout(in payment.PayoutSetupInput) (*payment.PayoutSetup, error) {
	return &payment.PayoutSetup{AccountID: "acct_test", OnboardingURL: "https://example.com/onboard"}, nil
}

func (f *fakeProvider) HandleWebhook(payload []byte, headers http.Header) error {
	return f.webhookErr
}

type testApp struct {
	db       *sqlx.DB
	profiles repository.ProfileRepository
	chat     *service.ChatService
	provider *fakeProvider
}

func newTestApp(t *testing.T) *testApp {
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

	chat := service.NewChatService(conversations, messages, purchases, newMemStorage(), realtime.NewHub())

	return &testApp{
		db:       database,
		profiles: profiles,
		chat:     chat,
		provider: &fakeProvider{},
	}
}

func (a *testApp) profile(t *testing.T, username string, isCreator bool) *model.Profile {
	t.Helper()

	profile := &model.Profile{
		Email:        username + "@example.com",
		Username:     username,
		DisplayName:  username,
		PasswordHash: "x",
		IsCreator:    isCreator,
	}
	require.NoError(t, a.profiles.Create(profile))
	return profile
}

type fakeFile struct{ *bytes.Reader }

func (f fakeFile) Close() error { return nil }

func uploadFile(filename, contentType string, content []byte) (multipart.File, *multipart.FileHeader) {
	header := &multipart.FileHeader{
		Filename: filename,
		Size:     int64(len(content)),
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
	return fakeFile{bytes.NewReader(content)}, header
}

// request builds an authenticated JSON request the way the auth middleware
// would hand it to a handler.
func request(t *testing.T, method, target string, body any, as *model.Profile) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if as != nil {
		req = req.WithContext(ctxkeys.WithProfile(context.Background(), as))
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
