// Package api is the HTTP facade the client applications talk through. Each
// server operation maps to one blocking method; every response passes through
// the sanitize pipeline before decoding, so callers only ever see
// *sanitize.Error values on failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ebalakin/costmate/internal/client/sanitize"
)

// TokenSource yields the stored session token for authenticated calls. It
// must return sanitize.ErrMissingToken when no token is stored; the facade
// then fails before any network I/O happens.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is the request facade. All methods block until the call completes
// or ctx is cancelled.
type Client interface {
	SignUp(ctx context.Context, p SignUpParams) (*AuthResult, error)
	Login(ctx context.Context, username, password, osName, timeZone string) (*AuthResult, error)
	Logout(ctx context.Context, osName, timeZone string) error

	GetUser(ctx context.Context, id string) (*User, error)
	UpdateUser(ctx context.Context, id string, p ProfileParams) (*User, error)
	SearchUsers(ctx context.Context, query string) ([]User, error)
	SetAvatar(ctx context.Context, userID string, data []byte) (string, error)
	AvatarFile(ctx context.Context, userID, assetID string) ([]byte, error)

	ListFriends(ctx context.Context, userID string) ([]User, error)
	AddFriend(ctx context.Context, userID, friendID string) (*User, error)
	GetFriend(ctx context.Context, userID, friendID string) (*User, error)
	RemoveFriend(ctx context.Context, userID, friendID string) error

	ListRecords(ctx context.Context) ([]Record, error)
	CreateRecord(ctx context.Context, p RecordParams) (*Record, error)
	GetRecord(ctx context.Context, id string) (*Record, error)
	UpdateRecord(ctx context.Context, id string, p RecordParams) (*Record, error)
	DeleteRecord(ctx context.Context, id string) error
	AddCompanion(ctx context.Context, recordID, userID string) error
	RemoveCompanion(ctx context.Context, recordID, userID string) error

	UploadAttachment(ctx context.Context, recordID string, data []byte) (string, error)
	AttachmentFile(ctx context.Context, recordID, assetID string) ([]byte, error)
	DeleteAttachment(ctx context.Context, recordID, assetID string) error
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient constructs the facade. httpc may be nil, in which case
// http.DefaultClient is used.
func NewHTTPClient(baseURL string, tokens TokenSource, httpc *http.Client) *HTTPClient {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		tokens:  tokens,
	}
}

// authMode selects how a request is authenticated.
type authMode int

const (
	authNone authMode = iota
	authBasic
	authBearer
)

// call builds the request, executes it, and runs the sanitizer over the
// outcome. The response body is always fully read and closed. On success the
// sanitized payload is unmarshalled into out when out is non-nil.
func (c *HTTPClient) call(ctx context.Context, method, path string, mode authMode, basicUser, basicPass string, body []byte, contentType string, out any) error {
	var tok string
	if mode == authBearer {
		var err error
		tok, err = c.tokens.Token(ctx)
		if err != nil {
			return err
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &sanitize.Error{Kind: sanitize.KindNetworkFailure, Reason: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	switch mode {
	case authBasic:
		req.SetBasicAuth(basicUser, basicPass)
	case authBearer:
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, transportErr := c.httpc.Do(req)

	var payload []byte
	if resp != nil {
		payload, _ = io.ReadAll(resp.Body)
		resp.Body.Close()
	}

	sanitized, err := sanitize.Run(payload, resp, transportErr)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(sanitized, out); err != nil {
		return &sanitize.Error{Kind: sanitize.KindUnexpectedResponse, Reason: err.Error()}
	}
	return nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, mode authMode, basicUser, basicPass string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, mode, basicUser, basicPass, in, out)
}

func (c *HTTPClient) sendJSON(ctx context.Context, method, path string, mode authMode, basicUser, basicPass string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return &sanitize.Error{Kind: sanitize.KindBadRequest, Reason: err.Error()}
		}
	}
	return c.call(ctx, method, path, mode, basicUser, basicPass, body, "application/json", out)
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	return c.call(ctx, http.MethodGet, path, authBearer, "", "", nil, "", out)
}

// SignUp registers a new account. No authentication.
func (c *HTTPClient) SignUp(ctx context.Context, p SignUpParams) (*AuthResult, error) {
	var result AuthResult
	if err := c.postJSON(ctx, "/v1/users/signup", authNone, "", "", p, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates with basic credentials and returns the device's
// session token, reusing an active one when the server has it.
func (c *HTTPClient) Login(ctx context.Context, username, password, osName, timeZone string) (*AuthResult, error) {
	var result AuthResult
	in := map[string]string{"os_name": osName, "time_zone": timeZone}
	if err := c.postJSON(ctx, "/v1/users/login", authBasic, username, password, in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout revokes the current session token for the given device scope.
func (c *HTTPClient) Logout(ctx context.Context, osName, timeZone string) error {
	in := map[string]string{"os_name": osName, "time_zone": timeZone}
	return c.sendJSON(ctx, http.MethodDelete, "/v1/users/logout", authBearer, "", "", in, nil)
}

func (c *HTTPClient) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.getJSON(ctx, "/v1/users/"+url.PathEscape(id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, id string, p ProfileParams) (*User, error) {
	var u User
	if err := c.sendJSON(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(id), authBearer, "", "", p, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) SearchUsers(ctx context.Context, query string) ([]User, error) {
	var users []User
	path := "/v1/users/search?q=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetAvatar uploads raw image bytes and returns the new asset id.
func (c *HTTPClient) SetAvatar(ctx context.Context, userID string, data []byte) (string, error) {
	var asset Asset
	path := fmt.Sprintf("/v1/users/%s/avatar", url.PathEscape(userID))
	if err := c.call(ctx, http.MethodPut, path, authBearer, "", "", data, "application/octet-stream", &asset); err != nil {
		return "", err
	}
	return asset.ID, nil
}

// AvatarFile downloads avatar bytes. The server answers with a redirect to a
// short-lived URL, which the underlying http.Client follows.
func (c *HTTPClient) AvatarFile(ctx context.Context, userID, assetID string) ([]byte, error) {
	path := fmt.Sprintf("/v1/users/%s/avatar/%s/file", url.PathEscape(userID), url.PathEscape(assetID))
	return c.download(ctx, path)
}

func (c *HTTPClient) ListFriends(ctx context.Context, userID string) ([]User, error) {
	var users []User
	path := fmt.Sprintf("/v1/users/%s/friends", url.PathEscape(userID))
	if err := c.getJSON(ctx, path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) AddFriend(ctx context.Context, userID, friendID string) (*User, error) {
	var u User
	path := fmt.Sprintf("/v1/users/%s/friends", url.PathEscape(userID))
	in := map[string]string{"friend_id": friendID}
	if err := c.postJSON(ctx, path, authBearer, "", "", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) GetFriend(ctx context.Context, userID, friendID string) (*User, error) {
	var u User
	path := fmt.Sprintf("/v1/users/%s/friends/%s", url.PathEscape(userID), url.PathEscape(friendID))
	if err := c.getJSON(ctx, path, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) RemoveFriend(ctx context.Context, userID, friendID string) error {
	path := fmt.Sprintf("/v1/users/%s/friends/%s", url.PathEscape(userID), url.PathEscape(friendID))
	return c.call(ctx, http.MethodDelete, path, authBearer, "", "", nil, "", nil)
}

func (c *HTTPClient) ListRecords(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := c.getJSON(ctx, "/v1/records/", &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) CreateRecord(ctx context.Context, p RecordParams) (*Record, error) {
	var r Record
	if err := c.postJSON(ctx, "/v1/records/", authBearer, "", "", p, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) GetRecord(ctx context.Context, id string) (*Record, error) {
	var r Record
	if err := c.getJSON(ctx, "/v1/records/"+url.PathEscape(id), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) UpdateRecord(ctx context.Context, id string, p RecordParams) (*Record, error) {
	var r Record
	if err := c.sendJSON(ctx, http.MethodPut, "/v1/records/"+url.PathEscape(id), authBearer, "", "", p, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) DeleteRecord(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/v1/records/"+url.PathEscape(id), authBearer, "", "", nil, "", nil)
}

func (c *HTTPClient) AddCompanion(ctx context.Context, recordID, userID string) error {
	path := fmt.Sprintf("/v1/records/%s/companions/%s", url.PathEscape(recordID), url.PathEscape(userID))
	return c.call(ctx, http.MethodPost, path, authBearer, "", "", nil, "", nil)
}

func (c *HTTPClient) RemoveCompanion(ctx context.Context, recordID, userID string) error {
	path := fmt.Sprintf("/v1/records/%s/companions/%s", url.PathEscape(recordID), url.PathEscape(userID))
	return c.call(ctx, http.MethodDelete, path, authBearer, "", "", nil, "", nil)
}

// UploadAttachment uploads raw file bytes to a record and returns the new
// asset id.
func (c *HTTPClient) UploadAttachment(ctx context.Context, recordID string, data []byte) (string, error) {
	var asset Asset
	path := fmt.Sprintf("/v1/records/%s/attachments", url.PathEscape(recordID))
	if err := c.call(ctx, http.MethodPost, path, authBearer, "", "", data, "application/octet-stream", &asset); err != nil {
		return "", err
	}
	return asset.ID, nil
}

// AttachmentFile downloads attachment bytes, following the server's redirect
// to the short-lived URL.
func (c *HTTPClient) AttachmentFile(ctx context.Context, recordID, assetID string) ([]byte, error) {
	path := fmt.Sprintf("/v1/records/%s/attachments/%s/file", url.PathEscape(recordID), url.PathEscape(assetID))
	return c.download(ctx, path)
}

func (c *HTTPClient) DeleteAttachment(ctx context.Context, recordID, assetID string) error {
	path := fmt.Sprintf("/v1/records/%s/attachments/%s", url.PathEscape(recordID), url.PathEscape(assetID))
	return c.call(ctx, http.MethodDelete, path, authBearer, "", "", nil, "", nil)
}

// download fetches binary content through the sanitizer's binary path, which
// classifies only transport failures and statuses. The full pipeline would
// rewrite an empty blob to the canonical success body and could mistake a
// JSON attachment for the error shape.
func (c *HTTPClient) download(ctx context.Context, path string) ([]byte, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &sanitize.Error{Kind: sanitize.KindNetworkFailure, Reason: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, transportErr := c.httpc.Do(req)

	var payload []byte
	if resp != nil {
		payload, _ = io.ReadAll(resp.Body)
		resp.Body.Close()
	}
	return sanitize.RunBinary(payload, resp, transportErr)
}
