package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ebalakin/costmate/internal/common"
	"github.com/ebalakin/costmate/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

// fakeUserAuth accepts exactly one credential pair and one token value.
type fakeUserAuth struct {
	username string
	password string
	token    string
	user     *models.User
}

func (f *fakeUserAuth) AuthenticateBasic(ctx context.Context, username, password string) (*models.User, error) {
	if username == f.username && password == f.password {
		return f.user, nil
	}
	return nil, common.ErrUnauthorized
}

func (f *fakeUserAuth) AuthenticateToken(ctx context.Context, value string) (*models.User, *models.Token, error) {
	if value == f.token {
		return f.user, &models.Token{ID: "t-1", UserID: f.user.ID, Token: value}, nil
	}
	return nil, nil, common.ErrInvalidToken
}

func newAuthTestApp(auth Authenticator) *fiber.App {
	app := fiber.New()
	app.Get("/protected", auth.Middleware(), func(c *fiber.Ctx) error {
		p, ok := principalFrom(c)
		if !ok {
			return fail(c, fiber.StatusInternalServerError, "no principal")
		}
		return c.JSON(fiber.Map{"user_id": p.User.ID})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, body
}

func TestBearerMiddleware(t *testing.T) {
	users := &fakeUserAuth{token: "tok-1", user: &models.User{ID: "u-1", Username: "alice"}}
	app := newAuthTestApp(NewBearerAuthenticator(users))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"empty token", "Bearer ", fiber.StatusUnauthorized},
		{"unknown token", "Bearer nope", fiber.StatusUnauthorized},
		{"valid token", "Bearer tok-1", fiber.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doRequest(t, app, tc.header)
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tc.status, body)
			}
			if tc.status != fiber.StatusOK {
				var eb errorBody
				if err := json.Unmarshal(body, &eb); err != nil || !eb.Error {
					t.Fatalf("expected error body, got %s", body)
				}
			}
		})
	}
}

func TestBasicMiddleware(t *testing.T) {
	users := &fakeUserAuth{username: "alice", password: "secret", user: &models.User{ID: "u-1"}}
	app := newAuthTestApp(NewBasicAuthenticator(users))

	encode := func(user, pass string) string {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
	}

	resp, _ := doRequest(t, app, encode("alice", "secret"))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("valid credentials rejected: %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, encode("alice", "wrong"))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("wrong password accepted: %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, "Basic %%%garbage")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("malformed header accepted: %d", resp.StatusCode)
	}
}

func TestParseBearer(t *testing.T) {
	if _, ok := parseBearer("Bearer abc123"); !ok {
		t.Fatal("valid bearer rejected")
	}
	for _, header := range []string{"", "Bearer", "Bearer ", "bearer abc", "Bearer a b"} {
		if _, ok := parseBearer(header); ok {
			t.Fatalf("accepted malformed header %q", header)
		}
	}
}

func TestParseBasic(t *testing.T) {
	header := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:se:cret"))
	user, pass, ok := parseBasic(header)
	if !ok || user != "alice" || pass != "se:cret" {
		t.Fatalf("parseBasic = %q %q %v", user, pass, ok)
	}
	if _, _, ok := parseBasic("Bearer abc"); ok {
		t.Fatal("accepted non-basic header")
	}
}
