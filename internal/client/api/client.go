// Package api is the HTTP client of the endgame server used by the
// interactive debug client. Every request and its status are echoed.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"endgame/internal/client/display"
)

type Client struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
	Verbose    bool
	Out        io.Writer
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			// outlasts the server's 25s long-poll window
			Timeout: 40 * time.Second,
		},
		Out: os.Stdout,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) SetToken(token string) {
	c.AuthToken = token
}

func (c *Client) printf(color, format string, args ...any) {
	fmt.Fprintf(c.Out, color+format+display.Reset, args...)
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	var bodyReader io.Reader
	var bodyJSON []byte
	if body != nil {
		var err error
		if bodyJSON, err = json.Marshal(body); err != nil {
			return err
		}
		bodyReader = bytes.NewReader(bodyJSON)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	c.printf(display.Blue, "\n[API] %s %s\n", method, path)
	if len(bodyJSON) > 0 {
		if c.Verbose {
			c.printf(display.Cyan, "Request Body:\n")
			fmt.Fprintln(c.Out, display.Indent(bodyJSON))
		} else {
			c.printf(display.Blue, "%s\n", bodyJSON)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.printf(display.Red, "[ERROR] %s\n", err)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	c.printf(statusColor, "[%d %s]\n", resp.StatusCode, http.StatusText(resp.StatusCode))

	if c.Verbose && len(respBody) > 0 {
		c.printf(display.Cyan, "Response Body:\n")
		fmt.Fprintln(c.Out, display.Indent(respBody))
	}

	if resp.StatusCode >= 400 {
		serr := &StatusError{Status: resp.StatusCode}
		if json.Unmarshal(respBody, &serr.Response) == nil && serr.Response.Error != "" {
			if !c.Verbose {
				c.printf(display.Red, "Error: %s\n", serr.Response.Error)
				if serr.Response.Code != "" {
					c.printf(display.Red, "Code: %s\n", serr.Response.Code)
				}
				if serr.Response.Details != "" {
					c.printf(display.Red, "Details: %s\n", serr.Response.Details)
				}
			}
		} else if !c.Verbose && len(respBody) > 0 {
			c.printf(display.Red, "%s\n", respBody)
		}
		return serr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			c.printf(display.Red, "Response parse error: %s\n", err)
			c.printf(display.Green, "Raw response: %s\n", respBody)
			return err
		}
	}
	return nil
}

func gamePath(gameID string, rest ...string) string {
	return "/api/v1/games/" + url.PathEscape(gameID) + strings.Join(rest, "")
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest("GET", "/health", nil, &resp)
	return &resp, err
}

func (c *Client) CreateGame(req *CreateGameRequest) (*GameResponse, error) {
	var resp GameResponse
	err := c.doRequest("POST", "/api/v1/games", req, &resp)
	return &resp, err
}

func (c *Client) GetGame(gameID string) (*GameResponse, error) {
	var resp GameResponse
	err := c.doRequest("GET", gamePath(gameID), nil, &resp)
	return &resp, err
}

// GetGameWithPoll blocks server-side until the game's revision differs
// from revision or the poll window closes
func (c *Client) GetGameWithPoll(gameID string, revision int) (*GameResponse, error) {
	var resp GameResponse
	err := c.doRequest("GET", gamePath(gameID, fmt.Sprintf("?wait=true&revision=%d", revision)), nil, &resp)
	return &resp, err
}

func (c *Client) DeleteGame(gameID string) error {
	return c.doRequest("DELETE", gamePath(gameID), nil, nil)
}

func (c *Client) MakeMove(gameID string, move string) (*TurnResponse, error) {
	var resp TurnResponse
	err := c.doRequest("POST", gamePath(gameID, "/moves"), &MoveRequest{Move: move}, &resp)
	return &resp, err
}

func (c *Client) ResetGame(gameID string) (*GameResponse, error) {
	var resp GameResponse
	err := c.doRequest("POST", gamePath(gameID, "/reset"), nil, &resp)
	return &resp, err
}

func (c *Client) GetBoard(gameID string) (*BoardResponse, error) {
	var resp BoardResponse
	err := c.doRequest("GET", gamePath(gameID, "/board"), nil, &resp)
	return &resp, err
}

func (c *Client) LegalMoves(gameID, from string) (*LegalMovesResponse, error) {
	var resp LegalMovesResponse
	err := c.doRequest("GET", gamePath(gameID, "/legal?from="+url.QueryEscape(from)), nil, &resp)
	return &resp, err
}

func (c *Client) Register(username, password, email string) (*AuthResponse, error) {
	req := &RegisterRequest{
		Username: username,
		Password: password,
		Email:    email,
	}
	var resp AuthResponse
	err := c.doRequest("POST", "/api/v1/auth/register", req, &resp)
	return &resp, err
}

func (c *Client) Login(identifier, password string) (*AuthResponse, error) {
	req := &LoginRequest{
		Identifier: identifier,
		Password:   password,
	}
	var resp AuthResponse
	err := c.doRequest("POST", "/api/v1/auth/login", req, &resp)
	return &resp, err
}

// Logout ends the server session behind the current token
func (c *Client) Logout() error {
	return c.doRequest("POST", "/api/v1/auth/logout", nil, nil)
}

func (c *Client) GetCurrentUser() (*UserResponse, error) {
	var resp UserResponse
	err := c.doRequest("GET", "/api/v1/auth/me", nil, &resp)
	return &resp, err
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData any
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			// send as a JSON string
			bodyData = body
		}
	}
	return c.doRequest(method, path, bodyData, nil)
}
