package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ebalakin/costmate/internal/common"
)

func TestAddFriend(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	pub := &recordingPublisher{}
	s := NewFriendService(db, rm, pub)

	alice := seedUser(t, rm, "alice")
	bob := seedUser(t, rm, "bob")

	ctx := context.Background()

	// Only the user themselves can touch their friend list.
	if _, err := s.Add(ctx, bob, alice, bob); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if _, err := s.Add(ctx, alice, alice, alice); !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for self-friendship, got %v", err)
	}

	if _, err := s.Add(ctx, alice, alice, "u-ghost"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown friend, got %v", err)
	}

	friend, err := s.Add(ctx, alice, alice, bob)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if friend.Username != "bob" {
		t.Fatalf("unexpected friend: %+v", friend)
	}
	if len(pub.subjects) != 1 {
		t.Fatalf("expected one published event, got %v", pub.subjects)
	}
}

func TestGetFriend_RowIsTheAuthority(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	s := NewFriendService(db, rm, &recordingPublisher{})

	alice := seedUser(t, rm, "alice")
	bob := seedUser(t, rm, "bob")

	ctx := context.Background()

	// Bob exists as a user but is not a friend: the pivot decides.
	if _, err := s.Get(ctx, alice, alice, bob); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a friendship row, got %v", err)
	}

	if _, err := s.Add(ctx, alice, alice, bob); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	friend, err := s.Get(ctx, alice, alice, bob)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if friend.ID != bob {
		t.Fatalf("unexpected friend: %+v", friend)
	}
}

func TestRemoveFriend(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	s := NewFriendService(db, rm, &recordingPublisher{})

	alice := seedUser(t, rm, "alice")
	bob := seedUser(t, rm, "bob")

	ctx := context.Background()

	if err := s.Remove(ctx, alice, alice, bob); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for absent friendship, got %v", err)
	}

	if _, err := s.Add(ctx, alice, alice, bob); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if err := s.Remove(ctx, alice, alice, bob); err != nil {
		t.Fatalf("Remove error: %v", err)
	}

	friends, err := s.List(ctx, alice, alice)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(friends) != 0 {
		t.Fatalf("expected empty friend list, got %+v", friends)
	}
}

func TestListFriends_SelfAccessOnly(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	s := NewFriendService(db, rm, &recordingPublisher{})

	alice := seedUser(t, rm, "alice")
	bob := seedUser(t, rm, "bob")

	if _, err := s.List(context.Background(), bob, alice); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
