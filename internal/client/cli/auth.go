package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ebalakin/costmate/internal/client/api"
)

// Register prompts for account details and creates the account. The session
// returned by the server is persisted, so the user is logged in afterwards.
func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	firstName, err := GetSimpleText(a.reader, "First name (optional)", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	lastName, err := GetSimpleText(a.reader, "Last name (optional)", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	email, err := GetSimpleText(a.reader, "Email (optional)", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	user, err := a.auth.SignUp(ctx, api.SignUpParams{
		Username:  username,
		Password:  string(password),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	})
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Welcome, %s!\n", user.Username)
	return nil
}

// Login prompts for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	user, err := a.auth.Login(ctx, username, password)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Welcome back, %s!\n", user.Username)
	return nil
}

// Logout revokes the session and clears local state.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

// WhoAmI prints the cached identity.
func (a *App) WhoAmI(ctx context.Context) error {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Printf("%s (%s %s) <%s>\n", user.Username, user.FirstName, user.LastName, user.Email)
	return nil
}
