package server

import (
	"dm-lab/auth"
	"dm-lab/domain"
	"net/http"
)

type contactRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

func (s *Server) HandleCreateContact(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	contact, err := s.contactService.Create(r.Context(), domain.CreateContactCommand{
		OwnerID:     userID,
		Name:        req.Name,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"message": "Contact created successfully", "contact": contact})
}

func (s *Server) HandleListContacts(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	contacts, err := s.contactService.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"count": len(contacts), "contacts": contacts})
}

func (s *Server) HandleGetContact(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	contact, err := s.contactService.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"contact": contact})
}

func (s *Server) HandleRenameContact(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	contact, err := s.contactService.Rename(r.Context(), domain.RenameContactCommand{
		OwnerID:     userID,
		ContactID:   r.PathValue("id"),
		DisplayName: req.DisplayName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Contact updated successfully", "contact": contact})
}

func (s *Server) HandleDeleteContact(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := s.contactService.Remove(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Contact deleted successfully"})
}
