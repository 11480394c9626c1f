package domain

type SendMessageCommand struct {
	SenderID   string `validate:"required"`
	ReceiverID string `validate:"required,nefield=SenderID"`
	Text       string `validate:"required,max=1000"`
}

type EditMessageCommand struct {
	CallerID  string `validate:"required"`
	MessageID string `validate:"required"`
	Text      string `validate:"required,max=1000"`
}

type DeleteMessageCommand struct {
	CallerID  string `validate:"required"`
	MessageID string `validate:"required"`
}

type ListMessagesCommand struct {
	UserID    string `validate:"required"`
	PartnerID string `validate:"required"`
	Page      int
}

type MarkReadCommand struct {
	ReaderID  string `validate:"required"`
	PartnerID string `validate:"required,nefield=ReaderID"`
}

type SearchMessagesCommand struct {
	UserID    string `validate:"required"`
	PartnerID string `validate:"required"`
	Terms     string `validate:"required,max=200"`
	Limit     int
}

// CreateContactCommand targets a user by exact name or email; at least one is required.
type CreateContactCommand struct {
	OwnerID     string `validate:"required"`
	Name        string `validate:"required_without=Email"`
	Email       string `validate:"omitempty,email"`
	DisplayName string `validate:"required,max=100"`
}

type RenameContactCommand struct {
	OwnerID     string `validate:"required"`
	ContactID   string `validate:"required"`
	DisplayName string `validate:"max=100"`
}
