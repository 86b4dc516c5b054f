// Package collab holds HTTP clients for the in-process collaborator
// interfaces the feed core consumes: the social-graph service (friend sets)
// and the post service (hydration). Both are external systems of record; the
// feed core itself stores only ids.
package collab

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-feed-nosql/internal/domain"
	"github.com/go-resty/resty/v2"
)

// FriendClient resolves friend sets from the social-graph service.
type FriendClient struct {
	http *resty.Client
}

func NewFriendClient(baseURL string, timeout time.Duration) *FriendClient {
	return &FriendClient{
		http: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
	}
}

// Friends returns the complete friend set of userID. An empty set is a valid
// answer and distinct from an error.
func (c *FriendClient) Friends(ctx context.Context, userID string) ([]string, error) {
	var out struct {
		Friends []string `json:"friends"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", userID).
		SetResult(&out).
		Get("/users/{id}/friends")
	if err != nil {
		return nil, fmt.Errorf("friends lookup for %s: %w", userID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("friends lookup for %s: status %d", userID, resp.StatusCode())
	}
	return out.Friends, nil
}

// PostClient hydrates post ids against the post service.
type PostClient struct {
	http *resty.Client
}

func NewPostClient(baseURL string, timeout time.Duration) *PostClient {
	return &PostClient{
		http: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
	}
}

// Resolve returns the post payload as visible to viewerID. Deleted posts map
// to ErrNotFound and privacy-restricted ones to ErrForbidden, which the feed
// reader drops silently.
func (c *PostClient) Resolve(ctx context.Context, postID, viewerID string) (*domain.Post, error) {
	var post domain.Post
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", postID).
		SetQueryParam("viewer", viewerID).
		SetResult(&post).
		Get("/posts/{id}")
	if err != nil {
		return nil, fmt.Errorf("resolve post %s: %w", postID, err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("post %s: %w", postID, domain.ErrNotFound)
	case resp.StatusCode() == http.StatusForbidden:
		return nil, fmt.Errorf("post %s: %w", postID, domain.ErrForbidden)
	case resp.IsError():
		return nil, fmt.Errorf("resolve post %s: status %d", postID, resp.StatusCode())
	}
	return &post, nil
}
