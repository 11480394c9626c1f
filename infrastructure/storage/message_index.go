//go:generate go run go.uber.org/mock/mockgen -source=message_index.go -destination=../../mocks/mock_message_index.go -package=mocks
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"
)

const (
	fieldConversation = "conversation"
	fieldText         = "text"
)

type IMessageIndex interface {
	Index(message DiskMessage) error
	Remove(messageID string) error
	Search(ctx context.Context, userA, userB, terms string, limit int) ([]string, error)
}

// MessageIndex keeps a full-text index of message texts, partitioned by conversation.
// Badger stays the source of truth: the index only yields message ids.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// OpenIndexWriter opens an on-disk index, or an in-memory one when path is empty.
func OpenIndexWriter(path string) (*bluge.Writer, error) {
	config := bluge.InMemoryOnlyConfig()
	if path != "" {
		config = bluge.DefaultConfig(path)
	}
	writer, err := bluge.OpenWriter(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return writer, nil
}

// Index inserts or replaces the document of a message.
func (i *MessageIndex) Index(message DiskMessage) error {
	doc := bluge.NewDocument(message.ID).
		AddField(bluge.NewKeywordField(fieldConversation, conversationKeyPrefix(message.SenderID, message.ReceiverID))).
		AddField(bluge.NewTextField(fieldText, message.Text))
	return i.writer.Update(doc.ID(), doc)
}

func (i *MessageIndex) Remove(messageID string) error {
	return i.writer.Delete(bluge.Identifier(messageID))
}

// Search returns ids of messages of the (userA, userB) conversation matching terms, best match first.
func (i *MessageIndex) Search(ctx context.Context, userA, userB, terms string, limit int) ([]string, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Failed to close index reader", "error", err)
		}
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(conversationKeyPrefix(userA, userB)).SetField(fieldConversation)).
		AddMust(bluge.NewMatchQuery(terms).SetField(fieldText))
	request := bluge.NewTopNSearch(limit, query)

	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	var ids []string
	match, err := matches.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, string(value))
				return false
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}
