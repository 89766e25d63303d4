package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sarathsathish07/Task-Manager-App/internal/model"
)

// APIError 携带服务端返回的 HTTP 状态码与错误消息。
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Profile 服务端返回的公开用户信息。
type Profile struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskFields 更新任务时的部分字段，空字段不会覆盖服务端已有值。
type TaskFields struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	AssignedTo  string `json:"assignedTo,omitempty"`
}

// Client 是任务服务 REST 接口的 HTTP 客户端。
//
// 会话 Cookie 由内部的 CookieJar 维护：登录成功后自动携带。
type Client struct {
	baseURL string
	http    *http.Client
}

// New 创建客户端。baseURL 形如 "http://localhost:5000"。
func New(baseURL string) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("new cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

// Register 注册新用户并建立会话。
func (c *Client) Register(ctx context.Context, name, email, password string) (*Profile, error) {
	var profile Profile
	err := c.do(ctx, http.MethodPost, "/users", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Login 用邮箱密码登录并建立会话。
func (c *Client) Login(ctx context.Context, email, password string) (*Profile, error) {
	var profile Profile
	err := c.do(ctx, http.MethodPost, "/users/auth", map[string]string{
		"email":    email,
		"password": password,
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GoogleLogin 用 Google 身份断言登录并建立会话。
func (c *Client) GoogleLogin(ctx context.Context, name, email string) (*Profile, error) {
	var profile Profile
	err := c.do(ctx, http.MethodPost, "/users/googleLogin", map[string]string{
		"googleName":  name,
		"googleEmail": email,
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Logout 结束会话。
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/users/logout", nil, nil)
}

// CreateTask 创建任务，状态由服务端默认为 todo。
func (c *Client) CreateTask(ctx context.Context, title, description, assignedTo string) (*model.Task, error) {
	var task model.Task
	err := c.do(ctx, http.MethodPost, "/users/create-task", map[string]string{
		"title":       title,
		"description": description,
		"assignedTo":  assignedTo,
	}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks 拉取任务列表。search 过滤标题，sort 取 "title" 或 "recent"。
func (c *Client) ListTasks(ctx context.Context, search, sort string) ([]model.Task, error) {
	values := url.Values{}
	if search != "" {
		values.Set("search", search)
	}
	if sort != "" {
		values.Set("sort", sort)
	}
	path := "/users/get-tasks"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTaskFields 更新任务的标题/描述/负责人。
func (c *Client) UpdateTaskFields(ctx context.Context, id uint, fields TaskFields) (*model.Task, error) {
	var task model.Task
	err := c.do(ctx, http.MethodPut, "/users/update-task/"+formatID(id), map[string]interface{}{
		"taskData": fields,
	}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTaskStatus 迁移任务状态。
func (c *Client) UpdateTaskStatus(ctx context.Context, id uint, status model.TaskStatus) (*model.Task, error) {
	var task model.Task
	err := c.do(ctx, http.MethodPut, "/users/update-task/"+formatID(id), map[string]interface{}{
		"status": status,
	}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask 删除任务。
func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/users/delete-task/"+formatID(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: string(data)}
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &msg); err == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
