// Package session holds the state of one interactive client run.
package session

import (
	"endgame/internal/client/api"
)

// Session tracks the API target, the signed-in user and the current game
type Session struct {
	APIBaseURL string
	Client     *api.Client
	Verbose    bool

	AuthToken string
	UserID    string
	Username  string

	CurrentGame  string
	LastRevision int
	GameState    *api.GameResponse
}

func New(baseURL string) *Session {
	return &Session{
		APIBaseURL: baseURL,
		Client:     api.New(baseURL),
	}
}

func (s *Session) GetAPIBaseURL() string { return s.APIBaseURL }

func (s *Session) SetAPIBaseURL(url string) {
	s.APIBaseURL = url
	s.Client.SetBaseURL(url)
}

func (s *Session) GetCurrentGame() string { return s.CurrentGame }

// SetCurrentGame switches games; cached state of the old one is dropped
func (s *Session) SetCurrentGame(id string) {
	if id != s.CurrentGame {
		s.GameState = nil
		s.LastRevision = 0
	}
	s.CurrentGame = id
}

func (s *Session) GetUserID() string { return s.UserID }

func (s *Session) GetUsername() string { return s.Username }

func (s *Session) GetAuthToken() string { return s.AuthToken }

// SignIn stores credentials and hands the token to the client
func (s *Session) SignIn(token, userID, username string) {
	s.AuthToken = token
	s.UserID = userID
	s.Username = username
	s.Client.SetToken(token)
}

func (s *Session) SignOut() {
	s.SignIn("", "", "")
}

func (s *Session) GetLastRevision() int { return s.LastRevision }

func (s *Session) GetGameState() *api.GameResponse { return s.GameState }

// SetGameState caches the latest view of the current game
func (s *Session) SetGameState(g *api.GameResponse) {
	s.GameState = g
	if g != nil {
		s.LastRevision = g.Revision
	}
}

func (s *Session) GetClient() *api.Client { return s.Client }

func (s *Session) IsVerbose() bool { return s.Verbose }
