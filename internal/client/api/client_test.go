package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(srv.URL + "/")
	c.Out = io.Discard
	return c
}

func TestRequestShape(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotAuth, gotType string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.RawQuery
		gotAuth, gotType = r.Header.Get("Authorization"), r.Header.Get("Content-Type")
		gotBody = nil
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"gameId":"g1","revision":3,"played":{"move":"e2e3","playerColor":"w"},"reply":{"move":"e8d8","playerColor":"b","tier":"king-move"}}`))
	})
	c.SetToken("tok")

	turn, err := c.MakeMove("g1", "e2e3")
	if err != nil {
		t.Fatal(err)
	}
	if gotMethod != "POST" || gotPath != "/api/v1/games/g1/moves" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer tok" || gotType != "application/json" {
		t.Errorf("headers: auth %q, type %q", gotAuth, gotType)
	}
	if gotBody["move"] != "e2e3" {
		t.Errorf("body = %v", gotBody)
	}
	if turn.Revision != 3 || turn.Played.Move != "e2e3" || turn.Reply.Tier != "king-move" {
		t.Errorf("turn = %+v", turn)
	}

	if _, err := c.GetGameWithPoll("g1", 7); err != nil {
		t.Fatal(err)
	}
	if gotMethod != "GET" || gotPath != "/api/v1/games/g1" || gotQuery != "wait=true&revision=7" {
		t.Errorf("poll request = %s %s?%s", gotMethod, gotPath, gotQuery)
	}
	if gotType != "" {
		t.Errorf("GET sent Content-Type %q", gotType)
	}

	if _, err := c.LegalMoves("g1", "e2"); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/api/v1/games/g1/legal" || gotQuery != "from=e2" {
		t.Errorf("legal request = %s?%s", gotPath, gotQuery)
	}

	if _, err := c.ResetGame("g1"); err != nil {
		t.Fatal(err)
	}
	if gotMethod != "POST" || gotPath != "/api/v1/games/g1/reset" || gotBody != nil {
		t.Errorf("reset request = %s %s body %v", gotMethod, gotPath, gotBody)
	}
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"game is over","code":"GAME_OVER"}`))
	})

	_, err := c.MakeMove("g1", "e2e3")
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if serr.Status != http.StatusConflict || serr.Response.Code != "GAME_OVER" {
		t.Errorf("status error = %+v", serr)
	}
}

func TestStatusErrorNonJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	err := c.DeleteGame("g1")
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Status != http.StatusBadGateway || serr.Response.Code != "" {
		t.Errorf("err = %v", err)
	}
}

func TestRawRequest(t *testing.T) {
	var body []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.RawRequest("POST", "/api/v1/games", `{"seed": 5}`); err != nil {
		t.Fatal(err)
	}
	if string(body) != `{"seed":5}` {
		t.Errorf("json body = %s", body)
	}

	if err := c.RawRequest("POST", "/api/v1/games", `not json`); err != nil {
		t.Fatal(err)
	}
	if string(body) != `"not json"` {
		t.Errorf("string body = %s", body)
	}
}
