package server

import (
	"bytes"
	"context"
	"dm-lab/auth"
	"dm-lab/infrastructure/storage"
	"dm-lab/runtime"
	"dm-lab/runtime/workers"
	"dm-lab/services"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	http         *httptest.Server
	tokens       *auth.TokenManager
	users        *storage.UserRepository
	orchestrator *runtime.Orchestrator
}

type wireFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := storage.OpenInMemory()
	req.NoError(err)
	writer, err := storage.OpenIndexWriter("")
	req.NoError(err)

	users := storage.NewUserRepository(db)
	messages := storage.NewMessageRepository(db, log)
	contacts := storage.NewContactRepository(db, log)
	directory := services.NewDirectory(users)
	tokens := auth.NewTokenManager("test-secret-that-is-long-enough", time.Hour)

	hub := runtime.NewHub(log, runtime.NewRegistry(), tokens, time.Second)
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 0), hub, 128, time.Minute, time.Second)
	locks := runtime.NewKeyedMutex()

	ctx, cancel := context.WithCancel(context.Background())
	go orchestrator.Start(ctx)

	s := NewServer(ctx, log,
		services.NewAuthService(users, tokens),
		services.NewMessageService(log, messages, storage.NewMessageIndex(writer, log), directory, orchestrator, nil, locks, time.Now),
		services.NewContactService(log, contacts, directory, orchestrator, locks),
		services.NewChatListService(log, messages, contacts, directory),
		directory, tokens, hub, orchestrator,
		Options{CookieDuration: time.Hour, ConnectionBufferSize: 16, WriteTimeout: time.Second},
	)
	srv := httptest.NewServer(s.Routes())

	t.Cleanup(func() {
		cancel()
		srv.Close()
		_ = writer.Close()
		_ = db.Close()
	})
	return &testServer{http: srv, tokens: tokens, users: users, orchestrator: orchestrator}
}

// user stores an identity directly and returns it with a valid session token.
func (ts *testServer) user(t *testing.T, name, email string) (string, string) {
	t.Helper()
	id, err := ts.users.CreateUser(name, email, "not-a-real-hash")
	require.NoError(t, err)
	token, err := ts.tokens.GenerateToken(id, []string{"user"})
	require.NoError(t, err)
	return id, token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	r, err := http.NewRequest(method, ts.http.URL+path, reader)
	require.NoError(t, err)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.http.Client().Do(r)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func (ts *testServer) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var frame wireFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}
