package domain

import "context"

// FriendResolver returns the complete friend set of a user. Implemented by
// the social-graph service; an empty set is a valid answer.
type FriendResolver interface {
	Friends(ctx context.Context, userID string) ([]string, error)
}

// PostResolver resolves a post id into its full payload for a given viewer.
// Implemented by the post service; returns ErrNotFound when the post no
// longer exists and ErrForbidden when the viewer may not see it.
type PostResolver interface {
	Resolve(ctx context.Context, postID, viewerID string) (*Post, error)
}
