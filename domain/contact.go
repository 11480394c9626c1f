package domain

// Contact is an owner-private display name for another user.
// At most one Contact exists per (OwnerID, ContactUserID).
type Contact struct {
	ID            string `json:"id"`
	OwnerID       string `json:"ownerId"`
	ContactUserID string `json:"contactUserId"`
	DisplayName   string `json:"displayName"`
}

// ContactView is a Contact resolved with its target identity.
type ContactView struct {
	Contact
	ContactUser Identity `json:"contactUser"`
}
