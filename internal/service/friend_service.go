package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// defaultAvatar is shown for friends added without one.
const defaultAvatar = "👤"

// FriendService manages the caller's contacts.
type FriendService struct {
	friends storage.FriendStore
	logger  *slog.Logger
}

// NewFriendService creates a FriendService.
func NewFriendService(friends storage.FriendStore, logger *slog.Logger) *FriendService {
	return &FriendService{friends: friends, logger: logger}
}

// AddFriend creates a friend owned by the caller.
func (s *FriendService) AddFriend(ctx context.Context, req *connect.Request[api.AddFriendRequest]) (*connect.Response[api.AddFriendResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("friend name is required")
	}
	avatar := req.Msg.Avatar
	if avatar == "" {
		avatar = defaultAvatar
	}

	friend := &models.Friend{OwnerID: userID, Name: name, Avatar: avatar}
	if err := s.friends.CreateFriend(ctx, friend); err != nil {
		s.logger.Error("AddFriend failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Friend added", "user_id", userID, "friend_id", friend.ID)
	return connect.NewResponse(&api.AddFriendResponse{Friend: toAPIFriend(friend)}), nil
}

// ListFriends returns the caller's friends ordered by name.
func (s *FriendService) ListFriends(ctx context.Context, req *connect.Request[api.ListFriendsRequest]) (*connect.Response[api.ListFriendsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	friends, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		s.logger.Error("ListFriends failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Friend, len(friends))
	for i, f := range friends {
		out[i] = toAPIFriend(f)
	}
	return connect.NewResponse(&api.ListFriendsResponse{Friends: out}), nil
}

// DeleteFriend removes one of the caller's friends. Records the friend took
// part in are kept.
func (s *FriendService) DeleteFriend(ctx context.Context, req *connect.Request[api.DeleteFriendRequest]) (*connect.Response[api.DeleteFriendResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.FriendID == "" {
		return nil, invalidArgument("friend_id required")
	}

	if err := s.friends.DeleteFriend(ctx, userID, req.Msg.FriendID); err != nil {
		s.logger.Warn("DeleteFriend failed", "user_id", userID, "friend_id", req.Msg.FriendID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Friend deleted", "user_id", userID, "friend_id", req.Msg.FriendID)
	return connect.NewResponse(&api.DeleteFriendResponse{}), nil
}
