package server

import (
	"dm-lab/auth"
	"dm-lab/services"
	"net/http"
	"time"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := s.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	s.sendSession(w, http.StatusCreated, session, "User registered successfully")
}

func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	s.sendSession(w, http.StatusOK, session, "Logged in successfully")
}

func (s *Server) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.options.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, envelope{"message": "Logged out successfully"})
}

func (s *Server) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	user, err := s.authService.Me(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"user": user})
}

func (s *Server) HandleSearchUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.authService.SearchByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"user": user})
}

func (s *Server) HandleChatList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	chats, err := s.chatListService.BuildChatList(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"chats": chats})
}

// sendSession sets the session cookie and echoes the token for clients that cannot keep cookies.
func (s *Server) sendSession(w http.ResponseWriter, status int, session services.Session, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    string(session.Token),
		Path:     "/",
		Expires:  time.Now().Add(s.options.CookieDuration),
		HttpOnly: true,
		Secure:   s.options.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, status, envelope{
		"message": message,
		"user":    session.User,
		"token":   session.Token,
	})
}
