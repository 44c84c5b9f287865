// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// UserStore persists registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// FriendStore persists friends. Friends are always scoped to their owner.
type FriendStore interface {
	// CreateFriend persists a new friend. ID and CreatedAt are populated by the store.
	CreateFriend(ctx context.Context, friend *models.Friend) error

	// ListFriends returns the owner's friends ordered by name.
	ListFriends(ctx context.Context, ownerID string) ([]*models.Friend, error)

	// DeleteFriend removes a friend owned by ownerID.
	DeleteFriend(ctx context.Context, ownerID, friendID string) error
}

// GroupStore persists groups and their members.
type GroupStore interface {
	// CreateGroup persists a new group. The creator is added as a member.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForMember returns every group participantID belongs to.
	ListGroupsForMember(ctx context.Context, participantID string) ([]*models.Group, error)

	// UpdateGroup replaces the name and member list of an existing group.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes the group. Records tagged with it are kept and untagged.
	DeleteGroup(ctx context.Context, groupID string) error
}

// RecordStore persists expenses and payments. It is the record source for
// balance calculations: list methods return complete snapshots.
type RecordStore interface {
	// CreateRecord persists a new record. ID and CreatedAt are populated by the store.
	CreateRecord(ctx context.Context, record models.Record) error
	GetRecord(ctx context.Context, recordID string) (models.Record, error)

	// ReplaceRecord overwrites an existing record in full, shares included.
	// The record keeps its ID and CreatedAt.
	ReplaceRecord(ctx context.Context, record models.Record) error
	DeleteRecord(ctx context.Context, recordID string) error

	// ListRecordsForParticipant returns every record participantID takes part in,
	// newest date first.
	ListRecordsForParticipant(ctx context.Context, participantID string) ([]models.Record, error)

	// ListRecordsByGroup returns every record tagged with groupID, newest date first.
	ListRecordsByGroup(ctx context.Context, groupID string) ([]models.Record, error)
}

// Store defines the full storage surface.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	FriendStore
	GroupStore
	RecordStore

	// Close releases any resources held by the store.
	Close() error
}
