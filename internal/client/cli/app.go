// Package cli implements the interactive CostMate client: a small REPL over
// the client services with prompt helpers for text and password input.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/ebalakin/costmate/internal/client/api"
	"github.com/ebalakin/costmate/internal/client/config"
	"github.com/ebalakin/costmate/internal/client/services"
)

// App wires the client services behind the REPL commands.
type App struct {
	config  *config.Config
	stores  *services.Stores
	auth    *services.AuthService
	records *services.RecordService
	friends *services.FriendService
	reader  *bufio.Reader
}

// NewApp opens the local store and builds the service stack.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	stores, err := services.OpenStores(ctx, cfg.DatabaseDSN, cfg.StoreSecret)
	if err != nil {
		return nil, err
	}

	client := api.NewHTTPClient(cfg.ServerURL, services.NewTokenStore(stores.Secure), nil)
	auth := services.NewAuthService(client, stores, cfg.OSName, cfg.TimeZone)

	return &App{
		config:  cfg,
		stores:  stores,
		auth:    auth,
		records: services.NewRecordService(client, stores),
		friends: services.NewFriendService(client, stores, auth),
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the REPL and blocks until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.stores.Close()
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

// status names the logged-in user for the prompt, or "guest".
func (a *App) status(ctx context.Context) string {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return "guest"
	}
	return user.Username
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	_, err := a.auth.CurrentUser(ctx)
	return err == nil
}
