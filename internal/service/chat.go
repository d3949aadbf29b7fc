package service

import "strings"

// Canned replies of the chat widget.
const (
	ReplyHello   = "Hi there! Welcome to Sage and Silk. How can I help you?"
	ReplyHelp    = "I can assist you with orders, product inquiries, and more!"
	ReplyOrder   = "To check your order status, please provide your order ID."
	ReplyDefault = "I'm not sure about that. Can you rephrase?"
)

type ChatService struct {
	replies map[string]string
}

func NewChatService() *ChatService {
	return &ChatService{replies: map[string]string{
		"hello": ReplyHello,
		"help":  ReplyHelp,
		"order": ReplyOrder,
	}}
}

// Reply matches the whole trimmed message case-insensitively.
func (s *ChatService) Reply(message string) string {
	if r, ok := s.replies[strings.ToLower(strings.TrimSpace(message))]; ok {
		return r
	}
	return ReplyDefault
}
