package models

import "time"

type FriendshipState string

const (
	FriendshipStateNone    FriendshipState = "none"
	FriendshipStatePending FriendshipState = "pending"
	FriendshipStateMutual  FriendshipState = "mutual"
)

// FriendRequestOutcome reports what a friend request did to the pair.
type FriendRequestOutcome string

const (
	// FriendRequestRequested: a new pending request was recorded.
	FriendRequestRequested FriendRequestOutcome = "requested"
	// FriendRequestConfirmed: the counterpart's pending request was accepted.
	FriendRequestConfirmed FriendRequestOutcome = "confirmed"
	// FriendRequestAlreadyRequested: the requester already had an edge to the target.
	FriendRequestAlreadyRequested FriendRequestOutcome = "already_requested"
)

// Friendship is the relationship between an unordered pair of users, keyed by
// (UserLowID, UserHighID) with UserLowID < UserHighID. A pair with no row is in
// state none. RequestedBy is only meaningful while the state is pending.
type Friendship struct {
	ID          uint            `json:"-" gorm:"primaryKey"`
	UserLowID   int64           `json:"user_low_id" gorm:"not null;uniqueIndex:uk_friendships_pair,priority:1"`
	UserHighID  int64           `json:"user_high_id" gorm:"not null;uniqueIndex:uk_friendships_pair,priority:2;index"`
	State       FriendshipState `json:"state" gorm:"not null;size:20"`
	RequestedBy int64           `json:"requested_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PairKey is the canonical unordered key of two distinct users.
type PairKey struct {
	Low  int64
	High int64
}

// NewPairKey orders a and b.
func NewPairKey(a, b int64) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}

// NewFriendship returns the empty (state none) relationship for a pair.
func NewFriendship(key PairKey) Friendship {
	return Friendship{UserLowID: key.Low, UserHighID: key.High, State: FriendshipStateNone}
}

// Key returns the pair key of the relationship.
func (f Friendship) Key() PairKey {
	return PairKey{Low: f.UserLowID, High: f.UserHighID}
}

// Other returns the member of the pair that is not id.
func (f Friendship) Other(id int64) int64 {
	if f.UserLowID == id {
		return f.UserHighID
	}
	return f.UserLowID
}

// HasEdgeFrom reports whether id has an outgoing edge in this relationship:
// either its own pending request or a mutual friendship.
func (f Friendship) HasEdgeFrom(id int64) bool {
	switch f.State {
	case FriendshipStateMutual:
		return true
	case FriendshipStatePending:
		return f.RequestedBy == id
	default:
		return false
	}
}

// FriendshipStatus is the relationship as seen by UserID. Outcome is set only
// in replies to friend requests; RequestedBy only while the pair is pending.
type FriendshipStatus struct {
	UserID      int64                `json:"user_id"`
	FriendID    int64                `json:"friend_id"`
	State       FriendshipState      `json:"state"`
	RequestedBy int64                `json:"requested_by,omitempty"`
	Outcome     FriendRequestOutcome `json:"outcome,omitempty"`
}

// EntityKind names a record type held by the entity directory.
type EntityKind string

const (
	EntityUser EntityKind = "user"
	EntityFilm EntityKind = "film"
)
