package services

import (
	"context"
	"testing"

	"lingohub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory FriendStore with the same semantics as the Mongo
// implementation, including the unique pending-pair constraint and
// set-semantics friend linking.
type memStore struct {
	users         map[primitive.ObjectID]*models.User
	requests      map[primitive.ObjectID]*models.FriendRequest
	notifications []*models.Notification
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[primitive.ObjectID]*models.User),
		requests: make(map[primitive.ObjectID]*models.FriendRequest),
	}
}

func (m *memStore) addUser(name string) primitive.ObjectID {
	id := primitive.NewObjectID()
	m.users[id] = &models.User{ID: id, FullName: name}
	return id
}

func (m *memStore) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return m.users[id], nil
}

func (m *memStore) PendingBetween(_ context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error) {
	key := models.PairKey(a, b)
	for _, req := range m.requests {
		if req.PairKey == key && req.Status == models.FriendRequestPending {
			return req, nil
		}
	}
	return nil, nil
}

func (m *memStore) InsertFriendRequest(_ context.Context, req *models.FriendRequest) error {
	for _, existing := range m.requests {
		if existing.PairKey == req.PairKey && existing.Status == models.FriendRequestPending {
			return ErrDuplicateRequest
		}
	}
	clone := *req
	m.requests[req.ID] = &clone
	return nil
}

func (m *memStore) FriendRequestByID(_ context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	return m.requests[id], nil
}

func (m *memStore) MarkFriendRequestAccepted(_ context.Context, id primitive.ObjectID) error {
	req, ok := m.requests[id]
	if !ok || req.Status != models.FriendRequestPending {
		return ErrNotPending
	}
	req.Status = models.FriendRequestAccepted
	return nil
}

func (m *memStore) DeleteFriendRequest(_ context.Context, id primitive.ObjectID) error {
	delete(m.requests, id)
	return nil
}

func (m *memStore) LinkFriends(_ context.Context, a, b primitive.ObjectID) error {
	addToSet := func(user *models.User, id primitive.ObjectID) {
		for _, existing := range user.Friends {
			if existing == id {
				return
			}
		}
		user.Friends = append(user.Friends, id)
	}
	addToSet(m.users[a], b)
	addToSet(m.users[b], a)
	return nil
}

func (m *memStore) InsertNotification(_ context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *memStore) DeleteRequestNotification(_ context.Context, recipient, requestID primitive.ObjectID) error {
	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if n.Recipient == recipient && n.RelatedID == requestID && n.Type == models.NotificationFriendRequestReceived {
			continue
		}
		kept = append(kept, n)
	}
	m.notifications = kept
	return nil
}

func (m *memStore) PendingInvolving(_ context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, req := range m.requests {
		if req.Status == models.FriendRequestPending && (req.Sender == userID || req.Recipient == userID) {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memStore) UsersExcluding(_ context.Context, exclude []primitive.ObjectID, limit int64) ([]models.UserCard, error) {
	excluded := make(map[primitive.ObjectID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	var out []models.UserCard
	for id, user := range m.users {
		if excluded[id] || int64(len(out)) >= limit {
			continue
		}
		out = append(out, models.UserCard{ID: id, FullName: user.FullName})
	}
	return out, nil
}

func (m *memStore) notificationsFor(recipient primitive.ObjectID) []*models.Notification {
	var out []*models.Notification
	for _, n := range m.notifications {
		if n.Recipient == recipient {
			out = append(out, n)
		}
	}
	return out
}

func TestPairKeyDirectionIndependent(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	assert.Equal(t, models.PairKey(a, b), models.PairKey(b, a))
	assert.NotEqual(t, models.PairKey(a, b), models.PairKey(a, primitive.NewObjectID()))
}

func TestSendCreatesRequestAndNotification(t *testing.T) {
	store := newMemStore()
	svc := NewFriendService(store)
	ctx := context.Background()

	alice := store.addUser("Alice")
	bob := store.addUser("Bob")

	req, notif, err := svc.Send(ctx, alice, bob)
	require.NoError(t, err)

	assert.Equal(t, models.FriendRequestPending, req.Status)
	assert.Equal(t, alice, req.Sender)
	assert.Equal(t, bob, req.Recipient)

	assert.Equal(t, models.NotificationFriendRequestReceived, notif.Type)
	assert.Equal(t, bob, notif.Recipient)
	assert.Equal(t, req.ID, notif.RelatedID)
}

func TestSendRejectsSelfAndMissingRecipient(t *testing.T) {
	store := newMemStore()
	svc := NewFriendService(store)
	ctx := context.Background()

	alice := store.addUser("Alice")

	_, _, err := svc.Send(ctx, alice, alice)
	assert.ErrorIs(t, err, ErrSelfRequest)

	_, _, err = svc.Send(ctx, alice, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendConflictsOnDuplicateEitherDirection(t *testing.T) {
	store := newMemStore()
	svc := NewFriendService(store)
	ctx := context.Background()

	alice := store.addUser("Alice")
	bob := store.addUser("Bob")

	_, _, err := svc.Send(ctx, alice, bob)
	require.NoError(t, err)

	_, _, err = svc.Send(ctx, alice, bob)
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	// Reverse direction conflicts too
	_, _, err = svc.Send(ctx, bob, alice)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestSendConflictsWhenAlreadyFriends(t *testing.T) {
	store := newMemStore()
	svc := NewFriendService(store)
	ctx := context.Background()

	alice := store.addUser("Alice")
	bob := store.addUser("Bob")
	require.NoError(t, store.LinkFriends(ctx, alice, bob))

	_, _, err := svc.Send(ctx, alice, bob)
	assert.ErrorIs(t, err, ErrAlreadyFriends)
}

func TestAcceptEndToEnd(t *testing.T) {
	store := newMemStore()
	svc := NewFriendService(store)
	ctx := context.Background()

	alice := store.addUser("Alice")
	bob := store.addUser("Bob")

	req, _, err := svc.Send(ctx, alice, bob)
	require.NoError(t, err)

	notif, err := svc.Accept(ctx, req.ID, bob)
	require.NoError(t, err)

	// Friendship is symmetric
	assert.Contains(t, store.users[alice].Friends, bob)
	assert.Contains(t, store.users[bob].Friends, alice)

	// Request is kept with accepted status
	assert.Equal(t, models.FriendRequestAccepted, store.requests[req.ID].Status)

	// Sender got an accepted notification, recipient's received one is gone
	assert.Equal(t, alice, notif.Recipient)
	assert.Equal(t, models.NotificationFriendRequestAccepted, notif.Type)
	assert.Empty(t, store.notificationsFor(bob))
}

func TestAcceptAuthorization(t *testing.T) {
	store := newMemStore()
	svc := NewFriendService(store)
	ctx := context.Background()

	alice := store.addUser("Alice")
	bob := store.addUser("Bob")
	carol := store.addUser("Carol")

	req, _, err := svc.Send(ctx, alice, bob)
	require.NoError(t, err)

	// Neither the sender nor a third party may accept
	_, err = svc.Accept(ctx, req.ID, alice)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Accept(ctx, req.ID, carol)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Accept(ctx, primitive.NewObjectID(), bob)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptIdempotentFriendsSet(t *testing.T) {
	store := newMemStore()
	svc := NewFriendService(store)
	ctx := context.Background()

	alice := store.addUser("Alice")
	bob := store.addUser("Bob")

	req, _, err := svc.Send(ctx, alice, bob)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, req.ID, bob)
	require.NoError(t, err)

	// A raced second accept loses on the status re-check but the friend
	// linking it would have repeated is idempotent either way
	_, err = svc.Accept(ctx, req.ID, bob)
	assert.ErrorIs(t, err, ErrNotPending)

	require.NoError(t, store.LinkFriends(ctx, alice, bob))
	assert.Len(t, store.users[alice].Friends, 1)
	assert.Len(t, store.users[bob].Friends, 1)
}

func TestRejectRemovesRequestAndNotification(t *testing.T) {
	store := newMemStore()
	svc := NewFriendService(store)
	ctx := context.Background()

	alice := store.addUser("Alice")
	bob := store.addUser("Bob")

	req, _, err := svc.Send(ctx, alice, bob)
	require.NoError(t, err)
	require.Len(t, store.notificationsFor(bob), 1)

	require.NoError(t, svc.Reject(ctx, req.ID, bob))

	assert.Nil(t, store.requests[req.ID])
	assert.Empty(t, store.notificationsFor(bob))

	// A rejected pair can try again
	_, _, err = svc.Send(ctx, alice, bob)
	assert.NoError(t, err)
}

func TestRejectAuthorization(t *testing.T) {
	store := newMemStore()
	svc := NewFriendService(store)
	ctx := context.Background()

	alice := store.addUser("Alice")
	bob := store.addUser("Bob")

	req, _, err := svc.Send(ctx, alice, bob)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Reject(ctx, req.ID, alice), ErrUnauthorized)
	assert.ErrorIs(t, svc.Reject(ctx, primitive.NewObjectID(), bob), ErrNotFound)
}

func TestRecommendedExcludesRelationships(t *testing.T) {
	store := newMemStore()
	svc := NewFriendService(store)
	ctx := context.Background()

	alice := store.addUser("Alice")
	friend := store.addUser("Friend")
	outgoing := store.addUser("Outgoing")
	incoming := store.addUser("Incoming")
	stranger := store.addUser("Stranger")

	require.NoError(t, store.LinkFriends(ctx, alice, friend))
	_, _, err := svc.Send(ctx, alice, outgoing)
	require.NoError(t, err)
	_, _, err = svc.Send(ctx, incoming, alice)
	require.NoError(t, err)

	recommended, err := svc.Recommended(ctx, alice)
	require.NoError(t, err)

	require.Len(t, recommended, 1)
	assert.Equal(t, stranger, recommended[0].ID)
}
