package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(handler http.Handler) (*Client, func()) {
	srv := httptest.NewServer(handler)
	c := NewClient()
	c.BaseURL = srv.URL
	return c, srv.Close
}

func TestUserAbout(t *testing.T) {
	created := time.Date(2020, time.June, 1, 12, 0, 0, 0, time.UTC).Unix()
	c, done := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/spez/about" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `{"data": {"name": "spez", "created_utc": %d, "total_karma": 5000, "comment_karma": 3000}}`, created)
	}))
	defer done()

	user, err := c.UserAbout(context.Background(), "spez")
	if err != nil {
		t.Fatal(err)
	}
	if user.Name != "spez" || user.TotalKarma != 5000 || user.CommentKarma != 3000 {
		t.Errorf("got %+v", user)
	}
	if want := time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC); !user.CreatedAt.Equal(want) {
		t.Errorf("created: got %v, want %v", user.CreatedAt, want)
	}
}

func TestComments(t *testing.T) {
	c, done := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "2" {
			t.Errorf("limit: got %q, want 2", r.URL.Query().Get("limit"))
		}
		fmt.Fprint(w, `{"data": {"children": [
			{"data": {"id": "c1", "subreddit": "borrow", "score": 4, "created_utc": 1709300000}},
			{"data": {"id": "c2", "subreddit": "AskReddit", "score": 120, "created_utc": 1709200000}}
		]}}`)
	}))
	defer done()

	comments, err := c.Comments(context.Background(), "spez", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0].ID != "c1" || comments[0].Subreddit != "borrow" || comments[0].Karma != 4 {
		t.Errorf("first comment: %+v", comments[0])
	}
}

func TestSubmission(t *testing.T) {
	c, done := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/info" || r.URL.Query().Get("id") != "t3_abc123" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"data": {"children": [
			{"data": {"id": "abc123", "title": "[REQ] ($500) (repay $550 by 3/15)", "created_utc": 1709300000}}
		]}}`)
	}))
	defer done()

	post, err := c.Submission(context.Background(), "abc123")
	if err != nil {
		t.Fatal(err)
	}
	if post.ID != "abc123" {
		t.Errorf("id: got %q", post.ID)
	}
	if post.Title != "[REQ] ($500) (repay $550 by 3/15)" {
		t.Errorf("title: got %q", post.Title)
	}
}

func TestSubmissionNotFound(t *testing.T) {
	c, done := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"children": []}}`)
	}))
	defer done()

	if _, err := c.Submission(context.Background(), "nope"); err == nil {
		t.Error("expected error for empty listing")
	}
}

func TestInUSL(t *testing.T) {
	c, done := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/r/RegExrSwapBot/wiki/confirmations/scammer.json" {
			fmt.Fprint(w, `{"kind": "wikipage"}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer done()

	listed, err := c.InUSL(context.Background(), "Scammer")
	if err != nil {
		t.Fatal(err)
	}
	if !listed {
		t.Error("expected listed user (lowercased lookup)")
	}

	listed, err = c.InUSL(context.Background(), "honest_user")
	if err != nil {
		t.Fatal(err)
	}
	if listed {
		t.Error("expected unlisted user on 404")
	}
}
