package app

import (
	"github.com/sirupsen/logrus"

	"warbler/internal/repository"
)

// Services bundles the domain services built on one Store.
type Services struct {
	Auth     *AuthService
	Users    *UserService
	Follows  *FollowService
	Messages *MessageService
	Likes    *LikeService
	Feed     *FeedService
}

func NewServices(store *repository.Store, auth AuthConfig, revoker TokenRevoker, publisher EventPublisher, log logrus.FieldLogger) *Services {
	return &Services{
		Auth:     NewAuthService(store, revoker, auth, publisher, log),
		Users:    NewUserService(store, publisher, log),
		Follows:  NewFollowService(store, publisher, log),
		Messages: NewMessageService(store, publisher, log),
		Likes:    NewLikeService(store, publisher, log),
		Feed:     NewFeedService(store),
	}
}
