package services

import (
	"chat-relay/domain"
	"chat-relay/repositories"
)

type IChatService interface {
	History(requesterID, otherID string) ([]domain.Message, error)
	People() ([]domain.Identity, error)
}

// ChatService serves the request/response side of the product: message
// history between two identities and the people directory. The realtime
// side lives in the runtime package.
type ChatService struct {
	messageRepository repositories.IMessageRepository
	userRepository    repositories.IUserRepository
}

func NewChatService(messages repositories.IMessageRepository, users repositories.IUserRepository) *ChatService {
	return &ChatService{messageRepository: messages, userRepository: users}
}

// History returns every message between the two identities, ordered by
// creation time ascending.
func (s *ChatService) History(requesterID, otherID string) ([]domain.Message, error) {
	return s.messageRepository.Between(requesterID, otherID)
}

// People lists every registered identity, online or not.
func (s *ChatService) People() ([]domain.Identity, error) {
	return s.userRepository.ListUsers()
}
