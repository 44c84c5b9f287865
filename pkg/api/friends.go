package api

// Friend is a contact owned by the caller. Its ID is usable as a
// participant ID in expenses and payments.
type Friend struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type AddFriendRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type AddFriendResponse struct {
	Friend *Friend `json:"friend"`
}

type ListFriendsRequest struct{}

type ListFriendsResponse struct {
	Friends []*Friend `json:"friends"`
}

type DeleteFriendRequest struct {
	FriendID string `json:"friend_id"`
}

type DeleteFriendResponse struct{}
