package server

import (
	"dm-lab/auth"
	"dm-lab/domain"
	"net/http"
	"strconv"
)

type messageRequest struct {
	Message string `json:"message"`
}

// HandleSendMessage sends the body to the user named in the path.
func (s *Server) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	message, err := s.messageService.Send(r.Context(), domain.SendMessageCommand{
		SenderID:   userID,
		ReceiverID: r.PathValue("id"),
		Text:       req.Message,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"message": "Message sent successfully", "newMessage": message})
}

// HandleListMessages pages through the conversation with the user named in the path.
func (s *Server) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	result, err := s.messageService.ListBetween(r.Context(), domain.ListMessagesCommand{
		UserID:    userID,
		PartnerID: r.PathValue("id"),
		Page:      page,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"page":     result.Page,
		"limit":    result.Limit,
		"count":    result.Count,
		"messages": result.Messages,
	})
}

// HandleEditMessage replaces the text of the message named in the path.
func (s *Server) HandleEditMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	message, err := s.messageService.Edit(r.Context(), domain.EditMessageCommand{
		CallerID:  userID,
		MessageID: r.PathValue("id"),
		Text:      req.Message,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Message updated successfully", "updatedMessage": message})
}

func (s *Server) HandleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	err := s.messageService.Delete(r.Context(), domain.DeleteMessageCommand{
		CallerID:  userID,
		MessageID: r.PathValue("id"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Message deleted successfully"})
}

// HandleMarkRead acknowledges everything the user named in the path sent to the caller.
func (s *Server) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	count, err := s.messageService.MarkRead(r.Context(), domain.MarkReadCommand{
		ReaderID:  userID,
		PartnerID: r.PathValue("id"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": strconv.Itoa(count) + " messages marked as read", "count": count})
}

func (s *Server) HandleSearchMessages(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	messages, err := s.messageService.Search(r.Context(), domain.SearchMessagesCommand{
		UserID:    userID,
		PartnerID: r.PathValue("id"),
		Terms:     r.URL.Query().Get("q"),
		Limit:     limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"count": len(messages), "messages": messages})
}
