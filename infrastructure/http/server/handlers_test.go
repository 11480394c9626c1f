package server

import (
	"dm-lab/auth"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestREST_RegisterLoginAndMe(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	body := `{"name":"alice","email":"alice@example.com","password":"Str0ng&Secret!"}`
	resp, err := ts.http.Client().Post(ts.http.URL+"/api/users/register", "application/json", strings.NewReader(body))
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusCreated, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	req.NotNil(cookie)
	req.True(cookie.HttpOnly)

	var registered struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			ID    string `json:"_id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	req.NoError(json.NewDecoder(resp.Body).Decode(&registered))
	req.True(registered.Success)
	req.Equal(cookie.Value, registered.Token)

	status, payload := ts.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "alice@example.com", "password": "Str0ng&Secret!",
	})
	req.Equal(http.StatusOK, status)
	token := payload["token"].(string)

	status, payload = ts.do(t, http.MethodGet, "/api/users/me", token, nil)
	req.Equal(http.StatusOK, status)
	req.Equal(registered.User.ID, payload["user"].(map[string]any)["_id"])

	status, _ = ts.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	req.Equal(http.StatusUnauthorized, status)
}

func TestREST_StatusMapping(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	_, aliceToken := ts.user(t, "alice", "alice@example.com")
	bobID, bobToken := ts.user(t, "bob", "bob@example.com")

	status, body := ts.do(t, http.MethodGet, "/api/users/me", "", nil)
	req.Equal(http.StatusUnauthorized, status)
	req.Equal(false, body["success"])

	status, _ = ts.do(t, http.MethodPost, "/api/messages/unknown-user", aliceToken, map[string]string{"message": "hi"})
	req.Equal(http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodPost, "/api/messages/"+bobID, aliceToken, map[string]string{"message": "   "})
	req.Equal(http.StatusBadRequest, status)

	status, body = ts.do(t, http.MethodPost, "/api/messages/"+bobID, aliceToken, map[string]string{"message": "hi"})
	req.Equal(http.StatusCreated, status)
	messageID := body["newMessage"].(map[string]any)["id"].(string)

	status, _ = ts.do(t, http.MethodPut, "/api/messages/"+messageID, bobToken, map[string]string{"message": "hijack"})
	req.Equal(http.StatusForbidden, status)

	status, _ = ts.do(t, http.MethodDelete, "/api/messages/missing", aliceToken, nil)
	req.Equal(http.StatusNotFound, status)

	contact := map[string]string{"email": "bob@example.com", "displayName": "Bobby"}
	status, _ = ts.do(t, http.MethodPost, "/api/contacts", aliceToken, contact)
	req.Equal(http.StatusCreated, status)
	status, _ = ts.do(t, http.MethodPost, "/api/contacts", aliceToken, contact)
	req.Equal(http.StatusConflict, status)
}

func TestREST_ConversationAndChatList(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	aliceID, aliceToken := ts.user(t, "alice", "alice@example.com")
	bobID, bobToken := ts.user(t, "bob", "bob@example.com")

	for _, text := range []string{"hello there", "general kenobi"} {
		status, _ := ts.do(t, http.MethodPost, "/api/messages/"+bobID, aliceToken, map[string]string{"message": text})
		req.Equal(http.StatusCreated, status)
	}

	status, body := ts.do(t, http.MethodGet, "/api/messages/"+aliceID+"?page=1", bobToken, nil)
	req.Equal(http.StatusOK, status)
	req.EqualValues(1, body["page"])
	req.EqualValues(25, body["limit"])
	req.EqualValues(2, body["count"])

	status, body = ts.do(t, http.MethodGet, "/api/messages/"+aliceID+"/search?q=kenobi", bobToken, nil)
	req.Equal(http.StatusOK, status)
	req.Len(body["messages"], 1)

	status, body = ts.do(t, http.MethodPost, "/api/contacts", bobToken, map[string]string{"name": "alice", "displayName": "Ally"})
	req.Equal(http.StatusCreated, status)
	contactID := body["contact"].(map[string]any)["id"].(string)

	status, body = ts.do(t, http.MethodGet, "/api/users/chatlist", bobToken, nil)
	req.Equal(http.StatusOK, status)
	chats := body["chats"].([]any)
	req.Len(chats, 1)
	req.Equal("Ally", chats[0].(map[string]any)["displayName"])

	status, body = ts.do(t, http.MethodPut, "/api/contacts/"+contactID, bobToken, map[string]string{"displayName": "Alice W."})
	req.Equal(http.StatusOK, status)
	req.Equal("Alice W.", body["contact"].(map[string]any)["displayName"])

	status, body = ts.do(t, http.MethodGet, "/api/contacts", bobToken, nil)
	req.Equal(http.StatusOK, status)
	req.EqualValues(1, body["count"])

	status, _ = ts.do(t, http.MethodDelete, "/api/contacts/"+contactID, bobToken, nil)
	req.Equal(http.StatusOK, status)
	status, _ = ts.do(t, http.MethodGet, "/api/contacts/"+contactID, bobToken, nil)
	req.Equal(http.StatusNotFound, status)
}

func TestREST_Health(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodGet, "/healthz", "", nil)

	req.Equal(http.StatusOK, status)
	req.Equal("ok", body["status"])
	req.EqualValues(0, body["connections"])
}
