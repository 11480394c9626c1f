package domain

// Identity is a registered user as seen by the conversation engine.
type Identity struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
