// File: /services/friendship_service.go
package services

import (
	"context"
	"log/slog"
	"slices"

	"filmogram-api/metrics"
	"filmogram-api/models"
	"filmogram-api/repositories"
)

// FriendshipGraph runs the request/confirm state machine between pairs of users.
//
// A pair is in one of three states: none, pending (one side asked) or mutual.
// Visibility is asymmetric: a user sees everyone they have asked, confirmed or
// not, but is seen by the other side only once the request is confirmed.
type FriendshipGraph struct {
	dir    repositories.Directory
	store  repositories.FriendshipStore
	logger *slog.Logger
}

func NewFriendshipGraph(dir repositories.Directory, store repositories.FriendshipStore, logger *slog.Logger) *FriendshipGraph {
	return &FriendshipGraph{
		dir:    dir,
		store:  store,
		logger: loggerOrDefault(logger).With("component", "friendship_graph"),
	}
}

func (g *FriendshipGraph) requirePair(ctx context.Context, op string, userID, friendID int64) error {
	if userID == friendID {
		return models.InvalidArgument("friendship", op, "a user cannot befriend themself")
	}
	if err := requireExists(ctx, g.dir, "friendship", op, models.EntityUser, userID); err != nil {
		return err
	}
	return requireExists(ctx, g.dir, "friendship", op, models.EntityUser, friendID)
}

// RequestFriend records that userID wants friendID as a friend.
//
// If userID already has an edge to friendID nothing changes. If friendID had a
// pending request to userID, that request is confirmed and the pair becomes
// mutual. Otherwise a new pending request is created.
func (g *FriendshipGraph) RequestFriend(ctx context.Context, userID, friendID int64) (models.FriendshipStatus, error) {
	const op = "RequestFriend"
	status := models.FriendshipStatus{UserID: userID, FriendID: friendID}
	if err := g.requirePair(ctx, op, userID, friendID); err != nil {
		return status, err
	}

	var outcome models.FriendRequestOutcome
	f, err := g.store.Update(ctx, userID, friendID, func(cur models.Friendship) (models.Friendship, error) {
		switch {
		case cur.HasEdgeFrom(userID):
			outcome = models.FriendRequestAlreadyRequested
		case cur.State == models.FriendshipStatePending:
			outcome = models.FriendRequestConfirmed
			cur.State = models.FriendshipStateMutual
		default:
			outcome = models.FriendRequestRequested
			cur.State = models.FriendshipStatePending
			cur.RequestedBy = userID
		}
		return cur, nil
	})
	if err != nil {
		return status, translate(err, "friendship", op, models.EntityUser, userID)
	}

	status.State = f.State
	status.Outcome = outcome
	metrics.FriendRequests.WithLabelValues(string(outcome)).Inc()

	if outcome == models.FriendRequestAlreadyRequested {
		g.logger.Debug("friend request already exists", "user_id", userID, "friend_id", friendID, "state", f.State)
	} else {
		g.logger.Info("friend request applied", "user_id", userID, "friend_id", friendID, "outcome", outcome, "state", f.State)
	}
	return status, nil
}

// RemoveFriend deletes userID's edge to friendID. A pending request by userID
// is withdrawn and a mutual friendship is revoked for both sides. A request
// made by friendID is left alone.
func (g *FriendshipGraph) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	const op = "RemoveFriend"
	if err := g.requirePair(ctx, op, userID, friendID); err != nil {
		return err
	}

	var previous models.FriendshipState
	removed := false
	_, err := g.store.Update(ctx, userID, friendID, func(cur models.Friendship) (models.Friendship, error) {
		previous = cur.State
		removed = cur.HasEdgeFrom(userID)
		if !removed {
			return cur, nil
		}
		return models.NewFriendship(cur.Key()), nil
	})
	if err != nil {
		return translate(err, "friendship", op, models.EntityUser, userID)
	}

	if !removed {
		metrics.FriendRemovals.WithLabelValues("noop").Inc()
		g.logger.Debug("no edge to remove", "user_id", userID, "friend_id", friendID, "state", previous)
		return nil
	}
	metrics.FriendRemovals.WithLabelValues(string(previous)).Inc()
	g.logger.Info("friend removed", "user_id", userID, "friend_id", friendID, "previous_state", previous)
	return nil
}

// FriendsOf returns, in ascending order, everyone userID has asked plus everyone
// whose request userID confirmed.
func (g *FriendshipGraph) FriendsOf(ctx context.Context, userID int64) ([]int64, error) {
	const op = "FriendsOf"
	if err := requireExists(ctx, g.dir, "friendship", op, models.EntityUser, userID); err != nil {
		return nil, err
	}
	return g.friendIDs(ctx, op, userID)
}

func (g *FriendshipGraph) friendIDs(ctx context.Context, op string, userID int64) ([]int64, error) {
	relations, err := g.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, translate(err, "friendship", op, models.EntityUser, userID)
	}

	friends := make([]int64, 0, len(relations))
	for _, f := range relations {
		if f.HasEdgeFrom(userID) {
			friends = append(friends, f.Other(userID))
		}
	}
	slices.Sort(friends)
	return slices.Compact(friends), nil
}

// CommonFriends returns the intersection of the friend sets of both users.
func (g *FriendshipGraph) CommonFriends(ctx context.Context, userID, otherID int64) ([]int64, error) {
	const op = "CommonFriends"
	if err := requireExists(ctx, g.dir, "friendship", op, models.EntityUser, userID); err != nil {
		return nil, err
	}
	if err := requireExists(ctx, g.dir, "friendship", op, models.EntityUser, otherID); err != nil {
		return nil, err
	}

	mine, err := g.friendIDs(ctx, op, userID)
	if err != nil {
		return nil, err
	}
	theirs, err := g.friendIDs(ctx, op, otherID)
	if err != nil {
		return nil, err
	}
	return intersectSorted(mine, theirs), nil
}

// Status returns the stored relationship between two users.
func (g *FriendshipGraph) Status(ctx context.Context, userID, friendID int64) (models.Friendship, error) {
	const op = "Status"
	if err := g.requirePair(ctx, op, userID, friendID); err != nil {
		return models.Friendship{}, err
	}
	f, err := g.store.Get(ctx, userID, friendID)
	if err != nil {
		return f, translate(err, "friendship", op, models.EntityUser, userID)
	}
	return f, nil
}

// FriendUsers resolves FriendsOf to user records.
func (g *FriendshipGraph) FriendUsers(ctx context.Context, userID int64) ([]models.User, error) {
	ids, err := g.FriendsOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return g.dir.GetUsers(ctx, ids)
}

// CommonFriendUsers resolves CommonFriends to user records.
func (g *FriendshipGraph) CommonFriendUsers(ctx context.Context, userID, otherID int64) ([]models.User, error) {
	ids, err := g.CommonFriends(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	return g.dir.GetUsers(ctx, ids)
}

// intersectSorted merges two ascending, duplicate-free slices.
func intersectSorted(a, b []int64) []int64 {
	out := make([]int64, 0, min(len(a), len(b)))
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
