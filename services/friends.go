package services

import (
	"context"
	"errors"
	"time"

	"lingohub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Classified failures of the friend-request state machine. Controllers map
// these to HTTP status codes; nothing below this layer retries.
var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("not the recipient of this request")
	ErrSelfRequest      = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrDuplicateRequest = errors.New("friend request already exists")
	ErrNotPending       = errors.New("request is no longer pending")
)

// FriendStore is the persistence surface the state machine needs. Lookup
// methods return (nil, nil) when the document does not exist.
type FriendStore interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	PendingBetween(ctx context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error)
	InsertFriendRequest(ctx context.Context, req *models.FriendRequest) error
	FriendRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error)
	MarkFriendRequestAccepted(ctx context.Context, id primitive.ObjectID) error
	DeleteFriendRequest(ctx context.Context, id primitive.ObjectID) error
	LinkFriends(ctx context.Context, a, b primitive.ObjectID) error
	InsertNotification(ctx context.Context, n *models.Notification) error
	DeleteRequestNotification(ctx context.Context, recipient, requestID primitive.ObjectID) error
	PendingInvolving(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error)
	UsersExcluding(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]models.UserCard, error)
}

// FriendService drives the friend-request lifecycle: none -> pending ->
// accepted, or removal on reject. Each transition is a single all-or-nothing
// record mutation; the two-document friends-set update on accept is idempotent
// so a crash between the writes is repaired by retrying the accept.
type FriendService struct {
	store FriendStore
}

func NewFriendService(store FriendStore) *FriendService {
	return &FriendService{store: store}
}

const recommendedLimit = 20

// Send creates a pending request from sender to recipient plus the
// notification announcing it. Valid only from the "none" state: not self, not
// already friends, no pending request in either direction.
func (s *FriendService) Send(ctx context.Context, sender, recipient primitive.ObjectID) (*models.FriendRequest, *models.Notification, error) {
	if sender == recipient {
		return nil, nil, ErrSelfRequest
	}

	target, err := s.store.UserByID(ctx, recipient)
	if err != nil {
		return nil, nil, err
	}
	if target == nil {
		return nil, nil, ErrNotFound
	}
	for _, friend := range target.Friends {
		if friend == sender {
			return nil, nil, ErrAlreadyFriends
		}
	}

	existing, err := s.store.PendingBetween(ctx, sender, recipient)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrDuplicateRequest
	}

	req := &models.FriendRequest{
		ID:        primitive.NewObjectID(),
		Sender:    sender,
		Recipient: recipient,
		Status:    models.FriendRequestPending,
		PairKey:   models.PairKey(sender, recipient),
		CreatedAt: time.Now(),
	}
	// The unique pairKey index catches concurrent duplicate sends that slip
	// past the existence check above.
	if err := s.store.InsertFriendRequest(ctx, req); err != nil {
		return nil, nil, err
	}

	notif := &models.Notification{
		Recipient: recipient,
		Sender:    sender,
		Type:      models.NotificationFriendRequestReceived,
		RelatedID: req.ID,
		CreatedAt: time.Now(),
	}
	if err := s.store.InsertNotification(ctx, notif); err != nil {
		return nil, nil, err
	}

	return req, notif, nil
}

// Accept transitions a pending request to accepted. Only the recipient may
// accept. Consumes the received notification, notifies the sender, and links
// the two friends sets.
func (s *FriendService) Accept(ctx context.Context, requestID, actor primitive.ObjectID) (*models.Notification, error) {
	req, err := s.store.FriendRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	if req.Recipient != actor {
		return nil, ErrUnauthorized
	}

	if err := s.store.MarkFriendRequestAccepted(ctx, requestID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteRequestNotification(ctx, actor, requestID); err != nil {
		return nil, err
	}

	notif := &models.Notification{
		Recipient: req.Sender,
		Sender:    actor,
		Type:      models.NotificationFriendRequestAccepted,
		RelatedID: req.ID,
		CreatedAt: time.Now(),
	}
	if err := s.store.InsertNotification(ctx, notif); err != nil {
		return nil, err
	}

	if err := s.store.LinkFriends(ctx, req.Sender, req.Recipient); err != nil {
		return nil, err
	}

	return notif, nil
}

// Reject deletes a pending request and its received notification outright.
// Only the recipient may reject.
func (s *FriendService) Reject(ctx context.Context, requestID, actor primitive.ObjectID) error {
	req, err := s.store.FriendRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrNotFound
	}
	if req.Recipient != actor {
		return ErrUnauthorized
	}
	if req.Status != models.FriendRequestPending {
		return ErrNotPending
	}

	if err := s.store.DeleteFriendRequest(ctx, requestID); err != nil {
		return err
	}
	return s.store.DeleteRequestNotification(ctx, actor, requestID)
}

// Recommended returns users the caller could befriend: everyone except the
// caller, existing friends, and both ends of any pending request involving
// the caller. Order is unspecified; the result is capped.
func (s *FriendService) Recommended(ctx context.Context, userID primitive.ObjectID) ([]models.UserCard, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	pending, err := s.store.PendingInvolving(ctx, userID)
	if err != nil {
		return nil, err
	}

	exclude := []primitive.ObjectID{userID}
	exclude = append(exclude, user.Friends...)
	for _, req := range pending {
		exclude = append(exclude, req.Sender, req.Recipient)
	}

	return s.store.UsersExcluding(ctx, exclude, recommendedLimit)
}
