package api

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

	"github.com/google/uuid"

	"github.com/five82/odo/internal/session"
)

// Backend is the subset of the client used by the auth service and poller.
// It is implemented by *Client and faked in tests.
type Backend interface {
	Login(ctx context.Context, email, password string) (Token, error)
	Register(ctx context.Context, req RegisterRequest) (session.User, error)
	Me(ctx context.Context, token string) (session.User, error)
	UpdateMe(ctx context.Context, token string, update UserUpdate) (session.User, error)
	Vehicles(ctx context.Context, token string) ([]Vehicle, error)
	Reminders(ctx context.Context, token string) ([]Reminder, error)
	UpcomingReminders(ctx context.Context, token string, days int) ([]Reminder, error)
	OverdueReminders(ctx context.Context, token string) ([]Reminder, error)
	MaintenanceLogs(ctx context.Context, token string, vehicleID int64) ([]MaintenanceLog, error)
	FuelLogs(ctx context.Context, token string, vehicleID int64) ([]FuelLog, error)
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)

// Client talks to the vehicle-maintenance HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultBaseURL   = "127.0.0.1:8000"
	defaultUserAgent = "odo/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for the given base URL or host:port.
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	form := url.Values{}
	form.Set("username", strings.TrimSpace(email))
	form.Set("password", password)

	var tok Token
	req := request{
		method:      http.MethodPost,
		path:        "/auth/token",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}
	if err := c.do(ctx, req, &tok); err != nil {
		return Token{}, err
	}
	if strings.TrimSpace(tok.AccessToken) == "" {
		return Token{}, fmt.Errorf("login: empty access token")
	}
	return tok, nil
}

// Register creates an account and returns its profile.
func (c *Client) Register(ctx context.Context, body RegisterRequest) (session.User, error) {
	if body.MileageType == "" {
		body.MileageType = session.MileageKilometers
	}
	var user session.User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", "", body, &user); err != nil {
		return session.User{}, err
	}
	return user, nil
}

// Me fetches the profile for token.
func (c *Client) Me(ctx context.Context, token string) (session.User, error) {
	var user session.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", token, nil, &user); err != nil {
		return session.User{}, err
	}
	return user, nil
}

// UpdateMe saves profile changes and returns the updated profile.
func (c *Client) UpdateMe(ctx context.Context, token string, update UserUpdate) (session.User, error) {
	var user session.User
	if err := c.doJSON(ctx, http.MethodPut, "/users/me", token, update, &user); err != nil {
		return session.User{}, err
	}
	return user, nil
}

// Vehicles lists the user's vehicles.
func (c *Client) Vehicles(ctx context.Context, token string) ([]Vehicle, error) {
	var out []Vehicle
	if err := c.doJSON(ctx, http.MethodGet, "/vehicles/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reminders lists every reminder.
func (c *Client) Reminders(ctx context.Context, token string) ([]Reminder, error) {
	var out []Reminder
	if err := c.doJSON(ctx, http.MethodGet, "/reminders/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpcomingReminders lists reminders due within days.
func (c *Client) UpcomingReminders(ctx context.Context, token string, days int) ([]Reminder, error) {
	if days <= 0 {
		days = 7
	}
	path := "/reminders/upcoming?days=" + strconv.Itoa(days)
	var out []Reminder
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OverdueReminders lists reminders past their due date.
func (c *Client) OverdueReminders(ctx context.Context, token string) ([]Reminder, error) {
	var out []Reminder
	if err := c.doJSON(ctx, http.MethodGet, "/reminders/overdue", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MaintenanceLogs lists service history for a vehicle.
func (c *Client) MaintenanceLogs(ctx context.Context, token string, vehicleID int64) ([]MaintenanceLog, error) {
	if vehicleID <= 0 {
		return nil, fmt.Errorf("vehicle id required")
	}
	var out []MaintenanceLog
	path := "/maintenance/vehicle/" + strconv.FormatInt(vehicleID, 10)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FuelLogs lists fill-ups for a vehicle.
func (c *Client) FuelLogs(ctx context.Context, token string, vehicleID int64) ([]FuelLog, error) {
	if vehicleID <= 0 {
		return nil, fmt.Errorf("vehicle id required")
	}
	var out []FuelLog
	path := "/fuel/vehicle/" + strconv.FormatInt(vehicleID, 10)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type request struct {
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body any, dest any) error {
	req := request{method: method, path: path, token: token}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		req.body = bytes.NewReader(payload)
		req.contentType = "application/json"
	}
	return c.do(ctx, req, dest)
}

func (c *Client) do(ctx context.Context, r request, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel, err := url.Parse(r.path)
	if err != nil {
		return fmt.Errorf("parse path %q: %w", r.path, err)
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, r.method, reqURL.String(), r.body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return parseError(resp, rel.Path)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
