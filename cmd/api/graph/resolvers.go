package graph

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"feedboard/apperr"
	"feedboard/cmd/api/auth"
	"feedboard/cmd/internal/logger"
	"feedboard/models"
	"feedboard/repositories"
)

// postsPerPage is the fixed feed page size.
const postsPerPage = 2

// Resolver implements the business logic behind every schema field.
type Resolver struct {
	users    UserStore
	posts    PostStore
	images   ImageStore
	jwt      *auth.JWTManager
	validate *validator.Validate
}

func NewResolver(users UserStore, posts PostStore, images ImageStore, jwt *auth.JWTManager) *Resolver {
	return &Resolver{
		users:    users,
		posts:    posts,
		images:   images,
		jwt:      jwt,
		validate: validator.New(),
	}
}

// AuthData is the login result.
type AuthData struct {
	Token  string
	UserID string
}

// PostPage is one page of the feed plus the total post count.
type PostPage struct {
	Posts      []*models.Post
	TotalPosts int64
}

// ValidationIssue is one entry of the data payload of a 422 error.
type ValidationIssue struct {
	Message string `json:"message"`
}

// UserInput carries the createUser arguments.
type UserInput struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"required"`
	Password string `validate:"required,min=5"`
}

// PostInput carries the createPost/updatePost arguments.
type PostInput struct {
	Title    string `validate:"required,min=5"`
	Content  string `validate:"required,min=5"`
	ImageURL string
}

// userInputIssues maps validator failures to the client-facing messages.
func userInputIssues(err error) []ValidationIssue {
	var issues []ValidationIssue
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationIssue{{Message: "Invalid input."}}
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "Email":
			issues = append(issues, ValidationIssue{Message: "E-Mail is invalid."})
		case "Password":
			issues = append(issues, ValidationIssue{Message: "Password too short!"})
		case "Name":
			issues = append(issues, ValidationIssue{Message: "Name is required."})
		}
	}
	return issues
}

func postInputIssues(err error) []ValidationIssue {
	var issues []ValidationIssue
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationIssue{{Message: "Invalid input."}}
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "Title":
			issues = append(issues, ValidationIssue{Message: "Title is invalid."})
		case "Content":
			issues = append(issues, ValidationIssue{Message: "Content is invalid."})
		}
	}
	return issues
}

// requireAuth returns the caller's identity or a 401 domain error.
func requireAuth(ctx context.Context) (auth.Identity, error) {
	id := auth.IdentityFrom(ctx)
	if !id.Authenticated {
		return auth.Identity{}, apperr.New(http.StatusUnauthorized, "Not authenticated!")
	}
	return id, nil
}

// CreateUser registers a new account with a bcrypt-hashed password.
func (r *Resolver) CreateUser(ctx context.Context, input UserInput) (*models.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := r.validate.Struct(input); err != nil {
		return nil, apperr.WithData(http.StatusUnprocessableEntity, "Invalid input.", userInputIssues(err))
	}

	if _, err := r.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.New(http.StatusUnprocessableEntity, "User exists already!")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), 12)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Email:    input.Email,
		Password: string(hashed),
		Name:     input.Name,
		Status:   "I am new!",
	}
	if _, err := r.users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a signed token.
func (r *Resolver) Login(ctx context.Context, email, password string) (*AuthData, error) {
	user, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(http.StatusUnauthorized, "User not found.")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.New(http.StatusUnauthorized, "Password is incorrect.")
	}

	token, err := r.jwt.Sign(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthData{Token: token, UserID: user.ID.Hex()}, nil
}

// CreatePost stores a new post for the authenticated user.
func (r *Resolver) CreatePost(ctx context.Context, input PostInput) (*models.Post, error) {
	id, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.validate.Struct(input); err != nil {
		return nil, apperr.WithData(http.StatusUnprocessableEntity, "Invalid input.", postInputIssues(err))
	}

	user, err := r.users.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(http.StatusUnauthorized, "Invalid user.")
		}
		return nil, err
	}

	p := &models.Post{
		Title:       input.Title,
		Content:     input.Content,
		ImageURL:    input.ImageURL,
		CreatorID:   user.ID,
		CreatorName: user.Name,
	}
	postID, err := r.posts.Insert(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := r.users.AddPost(ctx, id.UserID, postID); err != nil {
		return nil, err
	}
	return p, nil
}

// Posts returns one feed page, newest first.
func (r *Resolver) Posts(ctx context.Context, page int) (*PostPage, error) {
	if _, err := requireAuth(ctx); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	posts, total, err := r.posts.FindPage(ctx, page, postsPerPage)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, TotalPosts: total}, nil
}

// Post returns a single post by id.
func (r *Resolver) Post(ctx context.Context, postID string) (*models.Post, error) {
	if _, err := requireAuth(ctx); err != nil {
		return nil, err
	}
	post, err := r.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(http.StatusNotFound, "No post found!")
		}
		return nil, err
	}
	return post, nil
}

// UpdatePost edits a post owned by the caller. An imageUrl of "undefined"
// keeps the stored image (the client sends that marker when the image was
// not re-uploaded).
func (r *Resolver) UpdatePost(ctx context.Context, postID string, input PostInput) (*models.Post, error) {
	id, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	post, err := r.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(http.StatusNotFound, "No post found!")
		}
		return nil, err
	}
	if post.CreatorID.Hex() != id.UserID {
		return nil, apperr.New(http.StatusForbidden, "Not authorized!")
	}

	if err := r.validate.Struct(input); err != nil {
		return nil, apperr.WithData(http.StatusUnprocessableEntity, "Invalid input.", postInputIssues(err))
	}

	post.Title = input.Title
	post.Content = input.Content
	if input.ImageURL != "" && input.ImageURL != "undefined" {
		post.ImageURL = input.ImageURL
	}
	if err := r.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post owned by the caller, its stored image and the
// user's reference to it. The image delete is best effort.
func (r *Resolver) DeletePost(ctx context.Context, postID string) (bool, error) {
	id, err := requireAuth(ctx)
	if err != nil {
		return false, err
	}

	post, err := r.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, apperr.New(http.StatusNotFound, "No post found!")
		}
		return false, err
	}
	if post.CreatorID.Hex() != id.UserID {
		return false, apperr.New(http.StatusForbidden, "Not authorized!")
	}

	if err := r.posts.Delete(ctx, postID); err != nil {
		return false, err
	}
	if post.ImageURL != "" {
		if err := r.images.Remove(post.ImageURL); err != nil {
			logger.Log.Warnf("failed to remove image of deleted post %s: %v", postID, err)
		}
	}
	if err := r.users.RemovePost(ctx, id.UserID, postID); err != nil {
		return false, err
	}
	return true, nil
}

// User returns the authenticated user's profile.
func (r *Resolver) User(ctx context.Context) (*models.User, error) {
	id, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	user, err := r.users.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(http.StatusNotFound, "No user found!")
		}
		return nil, err
	}
	return user, nil
}

// UpdateStatus changes the authenticated user's status line.
func (r *Resolver) UpdateStatus(ctx context.Context, status string) (*models.User, error) {
	id, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.users.UpdateStatus(ctx, id.UserID, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(http.StatusNotFound, "No user found!")
		}
		return nil, err
	}
	return r.users.FindByID(ctx, id.UserID)
}

// creatorOf resolves the creator field of a post.
func (r *Resolver) creatorOf(ctx context.Context, creatorID primitive.ObjectID) (*models.User, error) {
	return r.users.FindByID(ctx, creatorID.Hex())
}

// postsOf resolves the posts field of a user.
func (r *Resolver) postsOf(ctx context.Context, userID primitive.ObjectID) ([]*models.Post, error) {
	return r.posts.FindByCreator(ctx, userID.Hex())
}
