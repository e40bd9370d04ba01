// Package graph implements the GraphQL schema, its resolvers and the HTTP
// transport that mounts them on /graphql.
package graph

import (
	"context"

	"feedboard/models"
)

// UserStore is the persistence surface the resolvers need for users.
// Implemented by repositories.UserRepository; tests use in-memory fakes.
type UserStore interface {
	Insert(ctx context.Context, u *models.User) (string, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	AddPost(ctx context.Context, userID string, postID string) error
	RemovePost(ctx context.Context, userID string, postID string) error
}

// PostStore is the persistence surface the resolvers need for posts.
type PostStore interface {
	Insert(ctx context.Context, p *models.Post) (string, error)
	FindByID(ctx context.Context, id string) (*models.Post, error)
	FindPage(ctx context.Context, page, perPage int) ([]*models.Post, int64, error)
	FindByCreator(ctx context.Context, creatorID string) ([]*models.Post, error)
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id string) error
}

// ImageStore removes stored images that a deleted or updated post no
// longer references. Deletion is best effort at every call site.
type ImageStore interface {
	Remove(path string) error
}
