// Package reddit is a thin client for the public Reddit JSON API: user
// profiles, recent comments, submissions, and the universal scammer list
// wiki probe. No OAuth; the endpoints used here are public.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/credditor/credditor/internal/models"
)

const (
	DefaultBaseURL = "https://api.reddit.com"
	userAgent      = "credditor/1.0"
)

// Client is safe for concurrent use.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// User is the subset of a Reddit profile the vetting flow needs.
type User struct {
	Name         string
	CreatedAt    time.Time
	TotalKarma   int
	CommentKarma int
}

// Submission is a link post.
type Submission struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

type aboutResponse struct {
	Data struct {
		Name         string  `json:"name"`
		CreatedUTC   float64 `json:"created_utc"`
		TotalKarma   int     `json:"total_karma"`
		CommentKarma int     `json:"comment_karma"`
	} `json:"data"`
}

type listingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				Subreddit  string  `json:"subreddit"`
				Score      int     `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// UserAbout fetches profile basics for a username.
func (c *Client) UserAbout(ctx context.Context, username string) (User, error) {
	var raw aboutResponse
	u := fmt.Sprintf("%s/user/%s/about", c.BaseURL, url.PathEscape(username))
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return User{}, errors.Wrapf(err, "fetch user %q", username)
	}
	return User{
		Name:         raw.Data.Name,
		CreatedAt:    dayOfUnix(int64(raw.Data.CreatedUTC)),
		TotalKarma:   raw.Data.TotalKarma,
		CommentKarma: raw.Data.CommentKarma,
	}, nil
}

// Comments fetches the user's newest comments, up to limit.
func (c *Client) Comments(ctx context.Context, username string, limit int) ([]models.Comment, error) {
	var raw listingResponse
	u := fmt.Sprintf("%s/user/%s/comments?sort=new&limit=%d", c.BaseURL, url.PathEscape(username), limit)
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, errors.Wrapf(err, "fetch comments for %q", username)
	}

	comments := make([]models.Comment, 0, len(raw.Data.Children))
	for _, child := range raw.Data.Children {
		comments = append(comments, models.Comment{
			ID:        child.Data.ID,
			Subreddit: child.Data.Subreddit,
			CreatedAt: dayOfUnix(int64(child.Data.CreatedUTC)),
			Karma:     child.Data.Score,
		})
	}
	return comments, nil
}

// Submission looks up a post by its id.
func (c *Client) Submission(ctx context.Context, postID string) (Submission, error) {
	var raw listingResponse
	u := fmt.Sprintf("%s/api/info?id=t3_%s", c.BaseURL, url.QueryEscape(postID))
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return Submission{}, errors.Wrapf(err, "fetch submission %q", postID)
	}
	if len(raw.Data.Children) == 0 {
		return Submission{}, errors.Errorf("submission %q not found", postID)
	}
	post := raw.Data.Children[0].Data
	return Submission{
		ID:        post.ID,
		Title:     post.Title,
		CreatedAt: dayOfUnix(int64(post.CreatedUTC)),
	}, nil
}

// InUSL reports whether the user has a universal scammer list confirmation
// page. The wiki returns 404 exactly when the user is not listed.
func (c *Client) InUSL(ctx context.Context, username string) (bool, error) {
	u := fmt.Sprintf("%s/r/RegExrSwapBot/wiki/confirmations/%s.json", c.BaseURL, url.PathEscape(strings.ToLower(username)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, errors.Wrapf(err, "usl check for %q", username)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode != http.StatusNotFound, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func dayOfUnix(ts int64) time.Time {
	y, m, d := time.Unix(ts, 0).UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
