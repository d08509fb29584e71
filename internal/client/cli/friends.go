package cli

import (
	"context"
	"fmt"
	"os"
)

// Friends prints the friend list, falling back to the cache when offline.
func (a *App) Friends(ctx context.Context) error {
	friends, cached, err := a.friends.List(ctx)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	if cached {
		fmt.Println("(offline, showing cached friends)")
	}

	for _, f := range friends {
		fmt.Printf("%s  %s (%s %s)\n", f.ID, f.Username, f.FirstName, f.LastName)
	}
	return nil
}

// AddFriend records a friendship to another user by id.
func (a *App) AddFriend(ctx context.Context) error {
	friendID, err := GetSimpleText(a.reader, "Friend user id", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	friend, err := a.friends.Add(ctx, friendID)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Printf("Added %s as a friend\n", friend.Username)
	return nil
}

// RemoveFriend deletes a friendship by user id.
func (a *App) RemoveFriend(ctx context.Context) error {
	friendID, err := GetSimpleText(a.reader, "Friend user id", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	if err := a.friends.Remove(ctx, friendID); err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Println("Removed.")
	return nil
}

// SearchUsers finds users by username fragment.
func (a *App) SearchUsers(ctx context.Context) error {
	query, err := GetSimpleText(a.reader, "Search for", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	users, err := a.friends.Search(ctx, query)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	for _, u := range users {
		fmt.Printf("%s  %s (%s %s)\n", u.ID, u.Username, u.FirstName, u.LastName)
	}
	return nil
}

// SetAvatar uploads a local image as the user's avatar.
func (a *App) SetAvatar(ctx context.Context) error {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	path, err := GetSimpleText(a.reader, "Image path", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	assetID, err := a.auth.SetAvatar(ctx, user.ID, data)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Printf("Avatar set (asset %s)\n", assetID)
	return nil
}
