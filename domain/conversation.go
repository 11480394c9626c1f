package domain

import (
	"sort"
	"time"
)

// ConversationSummary is one row of a user's chat list. It is derived, never stored.
type ConversationSummary struct {
	PartnerUserID   string    `json:"partnerUserId"`
	DisplayName     string    `json:"displayName"`
	LastMessageText string    `json:"lastMessageText"`
	LastMessageAt   time.Time `json:"lastMessageAt"`
	Read            bool      `json:"read"`
	PartnerEmail    string    `json:"partnerEmail"`
}

// ChatList folds a stream of messages into the latest message per partner.
// It holds at most one message per distinct partner regardless of the stream length.
type ChatList struct {
	userID string
	latest map[string]Message
}

func NewChatList(userID string) *ChatList {
	return &ChatList{userID: userID, latest: make(map[string]Message)}
}

// Observe keeps m if it is newer than what is known for its partner.
// Messages not involving the owner of the list are ignored.
func (c *ChatList) Observe(m Message) {
	if m.SenderID != c.userID && m.ReceiverID != c.userID {
		return
	}
	partner := m.PartnerOf(c.userID)
	current, ok := c.latest[partner]
	if !ok || isMoreRecent(m, current) {
		c.latest[partner] = m
	}
}

// Partners returns the distinct partners observed so far.
func (c *ChatList) Partners() []string {
	partners := make([]string, 0, len(c.latest))
	for p := range c.latest {
		partners = append(partners, p)
	}
	sort.Strings(partners)
	return partners
}

// Summaries resolves each partner row. displayNames holds the owner's custom names keyed by partner id.
// Partners that identities cannot resolve are dropped.
func (c *ChatList) Summaries(displayNames map[string]string, identities map[string]Identity) []ConversationSummary {
	summaries := make([]ConversationSummary, 0, len(c.latest))
	for partner, m := range c.latest {
		identity, ok := identities[partner]
		if !ok {
			continue
		}
		name := identity.Name
		if custom, ok := displayNames[partner]; ok {
			name = custom
		}
		summaries = append(summaries, ConversationSummary{
			PartnerUserID:   partner,
			DisplayName:     name,
			LastMessageText: m.Text,
			LastMessageAt:   m.CreatedAt,
			Read:            m.Read,
			PartnerEmail:    identity.Email,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].LastMessageAt.Equal(summaries[j].LastMessageAt) {
			return summaries[i].PartnerUserID < summaries[j].PartnerUserID
		}
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})
	return summaries
}

// isMoreRecent orders by creation time, then by id so that ties are deterministic.
func isMoreRecent(a, b Message) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}
