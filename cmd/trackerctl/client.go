package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"sprint-tracker/internal/session"
)

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status  int
	Message string
	Missing []string
}

func (e *apiError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s (missing: %s)", e.Message, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

var errNotSignedIn = errors.New("not signed in, run: trackerctl signin")

type apiClient struct {
	http  *resty.Client
	token string
}

func newAPIClient(server, token string) *apiClient {
	return &apiClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(server, "/")).
			SetTimeout(30 * time.Second).
			SetHeader("Accept", "application/json"),
		token: token,
	}
}

// call sends body as JSON and returns the raw response body.
func (c *apiClient) call(ctx context.Context, method, path string, query map[string]string, body any) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	for k, v := range query {
		if v != "" {
			req.SetQueryParam(k, v)
		}
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		var payload struct {
			Error   string   `json:"error"`
			Missing []string `json:"missing"`
		}
		_ = json.Unmarshal(resp.Body(), &payload)
		if payload.Error == "" {
			payload.Error = resp.Status()
		}
		return nil, &apiError{Status: resp.StatusCode(), Message: payload.Error, Missing: payload.Missing}
	}
	return resp.Body(), nil
}

func (c *apiClient) send(ctx context.Context, method, path string, body, out any) error {
	data, err := c.call(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// savedSession is what signin leaves on disk, plus the last sort of
// each list view.
type savedSession struct {
	Server  string               `json:"server"`
	Token   string               `json:"token"`
	Session session.Session      `json:"session"`
	Sorts   map[string]sortState `json:"sorts,omitempty"`
}

type sortState struct {
	Column string `json:"column,omitempty"`
	Order  string `json:"order,omitempty"`
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".trackerctl", "session.json")
	}
	return filepath.Join(home, ".trackerctl", "session.json")
}

func loadSession(path string) (savedSession, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return savedSession{}, errNotSignedIn
	}
	if err != nil {
		return savedSession{}, fmt.Errorf("read session: %w", err)
	}
	var s savedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return savedSession{}, fmt.Errorf("decode session: %w", err)
	}
	if s.Token == "" {
		return savedSession{}, errNotSignedIn
	}
	return s, nil
}

func saveSession(path string, s savedSession) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func clearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
