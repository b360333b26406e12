// Package client provides a typed HTTP client for the program admin API.
// Authentication is session based; the client keeps the session cookie in
// its jar after a successful Login.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a session-authenticated API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is
// attached if the given client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int                 `json:"-"`
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("api: request failed with status %d", e.StatusCode)
}

// Pagination is the listing metadata returned alongside collections.
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

// User is an account visible through the API.
type User struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	ProgramID *string `json:"program_id"`
	Status    string  `json:"status"`
}

// Organization is the owning tenant of a program.
type Organization struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Program is a program with its listing counts when returned from List.
type Program struct {
	ID                        string        `json:"id"`
	OrganizationID            string        `json:"organization_id"`
	GroupHeadID               *string       `json:"group_head_id"`
	Name                      string        `json:"name"`
	Code                      string        `json:"code"`
	Description               string        `json:"description"`
	Logo                      string        `json:"logo"`
	StartDate                 *time.Time    `json:"start_date"`
	EndDate                   *time.Time    `json:"end_date"`
	Status                    string        `json:"status"`
	IsMultilingual            bool          `json:"is_multilingual"`
	Languages                 []string      `json:"languages"`
	Organization              *Organization `json:"organization,omitempty"`
	ActivitiesCount           int64         `json:"activities_count"`
	ParticipantsCount         int64         `json:"participants_count"`
	ActiveParticipants        int64         `json:"active_participants_count"`
	InactiveParticipants      int64         `json:"inactive_participants_count"`
	AuthenticatedParticipants int64         `json:"authenticated_participants_count"`
	GuestParticipants         int64         `json:"guest_participants_count"`
	Progress                  float64       `json:"progress"`
}

// Activity is a program activity exposed as a role event.
type Activity struct {
	ID        string `json:"id"`
	ProgramID string `json:"program_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Status    string `json:"status"`
}

// ProgramRole is a program-scoped service account.
type ProgramRole struct {
	ID          string     `json:"id"`
	ProgramID   string     `json:"program_id"`
	RoleName    string     `json:"role_name"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Events      []Activity `json:"events,omitempty"`
}

// Service is a permission catalog entry.
type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// GeneratedCredentials are one-time credentials returned on program creation
// and password resets. The API never returns the password again.
type GeneratedCredentials struct {
	UserID   string `json:"user_id,omitempty"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Statistics summarizes a program.
type Statistics struct {
	TotalActivities   int64    `json:"total_activities"`
	TotalParticipants int64    `json:"total_participants"`
	IsMultilingual    bool     `json:"is_multilingual"`
	Languages         []string `json:"languages"`
	Status            string   `json:"status"`
	DaysRemaining     *int     `json:"days_remaining"`
}

// AvailableActivities pairs the permission catalog with assignable events.
type AvailableActivities struct {
	Services []Service  `json:"services"`
	Events   []Activity `json:"events"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Login authenticates and stores the session cookie for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout clears the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// CurrentUser returns the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListProgramsOptions filters a program listing.
type ListProgramsOptions struct {
	Search         string
	OrganizationID string
	GroupHeadID    string
	Status         string
	WithTrashed    bool
	Page           int
	PerPage        int
}

func (o ListProgramsOptions) query() string {
	q := url.Values{}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.OrganizationID != "" {
		q.Set("organization_id", o.OrganizationID)
	}
	if o.GroupHeadID != "" {
		q.Set("group_head_id", o.GroupHeadID)
	}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.WithTrashed {
		q.Set("with_trashed", "true")
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(o.PerPage))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListPrograms lists programs with their counts.
func (c *Client) ListPrograms(ctx context.Context, opts ListProgramsOptions) ([]Program, *Pagination, error) {
	var response struct {
		Data       []Program  `json:"data"`
		Pagination Pagination `json:"pagination"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/programs"+opts.query(), nil, &response); err != nil {
		return nil, nil, err
	}
	return response.Data, &response.Pagination, nil
}

// CreateProgramRequest is the payload for CreateProgram.
type CreateProgramRequest struct {
	OrganizationID    string   `json:"organization_id"`
	GroupHeadID       *string  `json:"group_head_id,omitempty"`
	Name              string   `json:"name"`
	Code              string   `json:"code"`
	Description       string   `json:"description,omitempty"`
	Logo              string   `json:"logo,omitempty"`
	StartDate         string   `json:"start_date,omitempty"`
	EndDate           string   `json:"end_date,omitempty"`
	IsMultilingual    bool     `json:"is_multilingual,omitempty"`
	Languages         []string `json:"languages,omitempty"`
	Status            string   `json:"status,omitempty"`
	GenerateAdmin     *bool    `json:"generate_admin,omitempty"`
	GenerateManager   *bool    `json:"generate_manager,omitempty"`
	GenerateModerator *bool    `json:"generate_moderator,omitempty"`
}

// CreateProgramResult is a created program with its one-time credentials.
type CreateProgramResult struct {
	Program        Program                         `json:"data"`
	GeneratedUsers map[string]GeneratedCredentials `json:"generated_users"`
	Note           string                          `json:"note"`
}

// CreateProgram creates a program. Save the returned credentials: the
// passwords are not retrievable afterwards.
func (c *Client) CreateProgram(ctx context.Context, req CreateProgramRequest) (*CreateProgramResult, error) {
	var result CreateProgramResult
	if err := c.do(ctx, http.MethodPost, "/api/programs", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProgram fetches a single program.
func (c *Client) GetProgram(ctx context.Context, id string) (*Program, error) {
	var response struct {
		Data Program `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/programs/"+id, nil, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// UpdateProgramRequest carries a partial program update. Nil fields are
// left unchanged.
type UpdateProgramRequest struct {
	OrganizationID *string  `json:"organization_id,omitempty"`
	GroupHeadID    *string  `json:"group_head_id,omitempty"`
	Name           *string  `json:"name,omitempty"`
	Code           *string  `json:"code,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Logo           *string  `json:"logo,omitempty"`
	StartDate      *string  `json:"start_date,omitempty"`
	EndDate        *string  `json:"end_date,omitempty"`
	IsMultilingual *bool    `json:"is_multilingual,omitempty"`
	Languages      []string `json:"languages,omitempty"`
	Status         *string  `json:"status,omitempty"`
}

// UpdateProgram applies a partial update.
func (c *Client) UpdateProgram(ctx context.Context, id string, req UpdateProgramRequest) (*Program, error) {
	var response struct {
		Data Program `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/programs/"+id, req, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// DeleteProgram soft deletes a program.
func (c *Client) DeleteProgram(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/programs/"+id, nil, nil)
}

// ActivateProgram activates a program. Expired programs are rejected.
func (c *Client) ActivateProgram(ctx context.Context, id string) (*Program, error) {
	var response struct {
		Data Program `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/programs/"+id+"/activate", nil, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// DeactivateProgram deactivates a program.
func (c *Client) DeactivateProgram(ctx context.Context, id string) (*Program, error) {
	var response struct {
		Data Program `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/programs/"+id+"/deactivate", nil, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// RestoreProgram restores a soft-deleted program.
func (c *Client) RestoreProgram(ctx context.Context, id string) (*Program, error) {
	var response struct {
		Data Program `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/programs/"+id+"/restore", nil, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// ForceDeleteProgram permanently deletes a program.
func (c *Client) ForceDeleteProgram(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/programs/"+id+"/force", nil, nil)
}

// GetStatistics returns program statistics.
func (c *Client) GetStatistics(ctx context.Context, id string) (*Statistics, error) {
	var response struct {
		Statistics Statistics `json:"statistics"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/programs/"+id+"/statistics", nil, &response); err != nil {
		return nil, err
	}
	return &response.Statistics, nil
}

// ListProgramUsers lists a program's auto-generated users.
func (c *Client) ListProgramUsers(ctx context.Context, programID string) ([]User, error) {
	var response struct {
		Data []User `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/programs/"+programID+"/users", nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// UpdateProgramUserRequest carries a partial program-user update.
type UpdateProgramUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UpdateProgramUser updates a program user.
func (c *Client) UpdateProgramUser(ctx context.Context, programID, userID string, req UpdateProgramUserRequest) (*User, error) {
	var response struct {
		Data User `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/programs/"+programID+"/users/"+userID, req, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// DeleteProgramUser removes a program user.
func (c *Client) DeleteProgramUser(ctx context.Context, programID, userID string) error {
	return c.do(ctx, http.MethodDelete, "/api/programs/"+programID+"/users/"+userID, nil, nil)
}

// ResetProgramUserPassword issues a new one-time password for a program user.
func (c *Client) ResetProgramUserPassword(ctx context.Context, programID, userID string) (*GeneratedCredentials, error) {
	var response struct {
		Data GeneratedCredentials `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/programs/"+programID+"/users/"+userID+"/reset-password", nil, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// ListRoles lists the roles of a program.
func (c *Client) ListRoles(ctx context.Context, programID string) ([]ProgramRole, error) {
	var response struct {
		Data []ProgramRole `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/programs/"+programID+"/roles", nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetRole fetches a single role with its events.
func (c *Client) GetRole(ctx context.Context, programID, roleID string) (*ProgramRole, error) {
	var response struct {
		Data ProgramRole `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/programs/"+programID+"/roles/"+roleID, nil, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// CreateRoleRequest is the payload for CreateRole.
type CreateRoleRequest struct {
	RoleName    string   `json:"role_name"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Description string   `json:"description,omitempty"`
	ServiceIDs  []string `json:"serviceIds,omitempty"`
	EventIDs    []string `json:"eventIds,omitempty"`
}

// CreateRole creates a role within a program.
func (c *Client) CreateRole(ctx context.Context, programID string, req CreateRoleRequest) (*ProgramRole, error) {
	var response struct {
		Data ProgramRole `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/programs/"+programID+"/roles", req, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// UpdateRoleRequest carries a partial role update.
type UpdateRoleRequest struct {
	RoleName    *string   `json:"role_name,omitempty"`
	Username    *string   `json:"username,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Password    *string   `json:"password,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *string   `json:"status,omitempty"`
	ServiceIDs  *[]string `json:"serviceIds,omitempty"`
	EventIDs    *[]string `json:"eventIds,omitempty"`
}

// UpdateRole applies a partial update to a role.
func (c *Client) UpdateRole(ctx context.Context, programID, roleID string, req UpdateRoleRequest) (*ProgramRole, error) {
	var response struct {
		Data ProgramRole `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/programs/"+programID+"/roles/"+roleID, req, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// DeleteRole soft deletes a role.
func (c *Client) DeleteRole(ctx context.Context, programID, roleID string) error {
	return c.do(ctx, http.MethodDelete, "/api/programs/"+programID+"/roles/"+roleID, nil, nil)
}

// RestoreRole restores a soft-deleted role.
func (c *Client) RestoreRole(ctx context.Context, programID, roleID string) (*ProgramRole, error) {
	var response struct {
		Data ProgramRole `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/programs/"+programID+"/roles/"+roleID+"/restore", nil, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// ListAvailableActivities returns the permission catalog and assignable events.
func (c *Client) ListAvailableActivities(ctx context.Context, programID string) (*AvailableActivities, error) {
	var response struct {
		Data AvailableActivities `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/programs/"+programID+"/roles/available-activities", nil, &response); err != nil {
		return nil, err
	}
	return &response.Data, nil
}
