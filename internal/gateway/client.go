package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bulletinboard/internal/model"
)

const maxBodyBytes = 4 << 20

// Client calls the forum API. A Client is safe for concurrent use; WithToken
// derives a per-user copy that shares the underlying http.Client.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a client rooted at baseURL (e.g. "http://localhost:8080/api").
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient creates a client using the given http.Client.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Token returns the bearer credential, if any.
func (c *Client) Token() string {
	return c.token
}

// ListPosts returns one page of the board listing.
func (c *Client) ListPosts(ctx context.Context, page, size int) (*model.PostListResponse, error) {
	const op = "list posts"
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	body, err := c.do(ctx, op, http.MethodGet, "/post?"+q.Encode(), nil, "")
	if err != nil {
		return nil, err
	}
	var s postListSchema
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	resp, err := s.toModel()
	if err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	return resp, nil
}

// FetchPost returns the post with its attachments.
func (c *Client) FetchPost(ctx context.Context, postID int64) (*model.Post, error) {
	const op = "fetch post"
	body, err := c.do(ctx, op, http.MethodGet, fmt.Sprintf("/post/%d/detail", postID), nil, "")
	if err != nil {
		return nil, err
	}
	var s postSchema
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	post, err := s.toModel()
	if err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	return post, nil
}

// DeletePost deletes a post owned by the caller.
func (c *Client) DeletePost(ctx context.Context, postID int64) (*model.DeletePostResponse, error) {
	const op = "delete post"
	body, err := c.do(ctx, op, http.MethodDelete, fmt.Sprintf("/post/%d", postID), nil, "")
	if err != nil {
		return nil, err
	}
	var s deleteSchema
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	if s.Success == nil {
		return nil, &DecodeError{Op: op, Err: fmt.Errorf("response requires success")}
	}
	return &model.DeletePostResponse{Success: *s.Success, Message: s.Message}, nil
}

// FetchComments returns the post's comments in display order.
func (c *Client) FetchComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	const op = "fetch comments"
	body, err := c.do(ctx, op, http.MethodGet, commentsPath(postID), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeComments(op, body, postID)
}

// CreateComment posts a comment and returns the refreshed list. parentID 0
// with depth 0 creates a top-level comment.
func (c *Client) CreateComment(ctx context.Context, postID, parentID int64, depth int, content string) ([]model.Comment, error) {
	const op = "create comment"
	form := url.Values{}
	form.Set("commentContent", content)
	form.Set("parentCommentId", strconv.FormatInt(parentID, 10))
	form.Set("depth", strconv.Itoa(depth))

	body, err := c.do(ctx, op, http.MethodPost, commentsPath(postID), strings.NewReader(form.Encode()), formContentType)
	if err != nil {
		return nil, err
	}
	return decodeComments(op, body, postID)
}

// UpdateComment replaces a comment's content and returns the refreshed list.
func (c *Client) UpdateComment(ctx context.Context, postID, commentID int64, content string) ([]model.Comment, error) {
	const op = "update comment"
	form := url.Values{}
	form.Set("commentContent", content)

	body, err := c.do(ctx, op, http.MethodPut, commentPath(postID, commentID), strings.NewReader(form.Encode()), formContentType)
	if err != nil {
		return nil, err
	}
	return decodeComments(op, body, postID)
}

// DeleteComment soft-deletes a comment and returns the refreshed list.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID int64) ([]model.Comment, error) {
	const op = "delete comment"
	body, err := c.do(ctx, op, http.MethodDelete, commentPath(postID, commentID), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeComments(op, body, postID)
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	const op = "login"
	payload, err := json.Marshal(model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, op, http.MethodPost, "/login", bytes.NewReader(payload), jsonContentType)
	if err != nil {
		return nil, err
	}
	var s loginSchema
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	if s.Username == nil || s.AccessToken == nil {
		return nil, &DecodeError{Op: op, Err: fmt.Errorf("response requires username and accessToken")}
	}
	return &model.LoginResponse{
		Success:     s.Success,
		Username:    *s.Username,
		Nickname:    s.Nickname,
		AccessToken: *s.AccessToken,
		ExpiresIn:   s.ExpiresIn,
	}, nil
}

// Logout ends the server-side session for the current token.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, "logout", http.MethodGet, "/logout", nil, "")
	return err
}

// Me reports who the current token belongs to.
func (c *Client) Me(ctx context.Context) (*model.MeResponse, error) {
	const op = "me"
	body, err := c.do(ctx, op, http.MethodGet, "/auth/me", nil, "")
	if err != nil {
		return nil, err
	}
	var s meSchema
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	if s.Authenticated == nil {
		return nil, &DecodeError{Op: op, Err: fmt.Errorf("response requires authenticated")}
	}
	return &model.MeResponse{Authenticated: *s.Authenticated, Username: s.Username, Nickname: s.Nickname}, nil
}

// CheckNickname reports whether nickname is still available.
func (c *Client) CheckNickname(ctx context.Context, nickname string) (bool, error) {
	return c.check(ctx, "check nickname", "/nicknameCheck", "nickname", nickname)
}

// CheckEmail reports whether email is still available.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	return c.check(ctx, "check email", "/emailCheck", "email", email)
}

// Register creates a member account.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (bool, error) {
	const op = "register"
	payload, err := json.Marshal(req)
	if err != nil {
		return false, err
	}
	body, err := c.do(ctx, op, http.MethodPost, "/register", bytes.NewReader(payload), jsonContentType)
	if err != nil {
		return false, err
	}
	ok, err := successFlag(body)
	if err != nil {
		return false, &DecodeError{Op: op, Err: err}
	}
	return ok, nil
}

// FileURL is the download link for an attachment. The server answers it
// with a redirect to object storage.
func (c *Client) FileURL(fileID int64) string {
	return fmt.Sprintf("%s/files/%d/download", c.baseURL, fileID)
}

func (c *Client) check(ctx context.Context, op, path, key, value string) (bool, error) {
	q := url.Values{}
	q.Set(key, value)
	body, err := c.do(ctx, op, http.MethodGet, path+"?"+q.Encode(), nil, "")
	if err != nil {
		return false, err
	}
	ok, err := successFlag(body)
	if err != nil {
		return false, &DecodeError{Op: op, Err: err}
	}
	return ok, nil
}

const (
	formContentType = "application/x-www-form-urlencoded"
	jsonContentType = "application/json"
)

func commentsPath(postID int64) string {
	return fmt.Sprintf("/post/%d/comment", postID)
}

func commentPath(postID, commentID int64) string {
	return fmt.Sprintf("/post/%d/comment/%d", postID, commentID)
}

// do sends one request and returns the body of a 2xx response. Requests are
// never retried.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, networkError(op, err)
	}
	req.Header.Set("Accept", jsonContentType)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("[Gateway] %s %s failed: %v", method, path, err)
		return nil, networkError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, networkError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Op: op, Status: resp.StatusCode, kind: kindForStatus(resp.StatusCode)}
		var envelope errorSchema
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		if resp.StatusCode >= 500 {
			log.Printf("[Gateway] %s %s returned %d", method, path, resp.StatusCode)
		}
		return nil, apiErr
	}
	return data, nil
}
