package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/artem13815/tasktracker/pkg/auth"
	"github.com/artem13815/tasktracker/pkg/task"
)

// DefaultBaseURL is used when neither a flag nor a stored session name a server.
const DefaultBaseURL = "http://localhost:5000/api"

// Client is a minimal Task Tracker API client.
type Client struct {
	BaseURL string
	Token   string
	httpDo  *http.Client
}

func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		httpDo: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Session is what register and login return.
type Session struct {
	Token string          `json:"token"`
	User  auth.PublicUser `json:"user"`
}

type Task struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	AssignedTo  task.Assignee `json:"assignedTo"`
	DueDate     string        `json:"dueDate"`
	Status      task.Status   `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type TaskList struct {
	Tasks      []Task          `json:"tasks"`
	Pagination task.Pagination `json:"pagination"`
}

type Stats struct {
	Pending    int64 `json:"Pending"`
	InProgress int64 `json:"In Progress"`
	Completed  int64 `json:"Completed"`
	Total      int64 `json:"total"`
}

// ListParams are the optional filters of ListTasks; zero values are omitted.
type ListParams struct {
	Status     string
	AssignedTo string
	Page       int
	Limit      int
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.AssignedTo != "" {
		q.Set("assignedTo", p.AssignedTo)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo"`
	DueDate     string `json:"dueDate"`
}

func (c *Client) Register(ctx context.Context, name, email, password string, role auth.Role) (Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, map[string]string{
		"name": name, "email": email, "password": password, "role": string(role),
	}, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"email": email, "password": password,
	}, &out)
	return out, err
}

func (c *Client) Me(ctx context.Context) (auth.PublicUser, error) {
	var out struct {
		User auth.PublicUser `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out)
	return out.User, err
}

func (c *Client) ListTasks(ctx context.Context, p ListParams) (TaskList, error) {
	var out TaskList
	err := c.do(ctx, http.MethodGet, "/tasks", p.query(), nil, &out)
	return out, err
}

func (c *Client) GetTask(ctx context.Context, id string) (Task, error) {
	var out Task
	err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, in NewTask) (Task, error) {
	var out Task
	err := c.do(ctx, http.MethodPost, "/tasks", nil, in, &out)
	return out, err
}

// UpdateStatus changes only the status of a task.
func (c *Client) UpdateStatus(ctx context.Context, id string, status task.Status) (Task, error) {
	var out Task
	err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), nil, map[string]string{"status": string(status)}, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Employees(ctx context.Context) ([]auth.PublicUser, error) {
	var out []auth.PublicUser
	err := c.do(ctx, http.MethodGet, "/tasks/users", nil, nil, &out)
	return out, err
}

func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := c.do(ctx, http.MethodGet, "/tasks/stats", nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpDo.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeError reads either {"error": "..."} or {"errors": [{field, message}]}.
func decodeError(resp *http.Response) error {
	var payload struct {
		Error  string `json:"error"`
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	msg := payload.Error
	if len(payload.Errors) > 0 {
		parts := make([]string, 0, len(payload.Errors))
		for _, fe := range payload.Errors {
			parts = append(parts, fe.Message)
		}
		msg = strings.Join(parts, "; ")
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
