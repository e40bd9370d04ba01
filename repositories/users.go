package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"feedboard/models"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

// Insert stores a new user and returns its generated ObjectID hex.
func (r *UserRepository) Insert(ctx context.Context, u *models.User) (string, error) {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.PostIDs == nil {
		u.PostIDs = []primitive.ObjectID{}
	}

	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return "", err
	}
	oid, _ := res.InsertedID.(primitive.ObjectID)
	u.ID = oid
	return oid.Hex(), nil
}

// FindByEmail returns the user with the given email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByID returns the user with the given ObjectID hex.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateStatus sets the user's status line.
func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.col.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddPost appends a post reference to the user's post list.
func (r *UserRepository) AddPost(ctx context.Context, userID string, postID string) error {
	uoid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNotFound
	}
	poid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.col.UpdateByID(ctx, uoid, bson.M{
		"$addToSet": bson.M{"post_ids": poid},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}

// RemovePost drops a post reference from the user's post list.
func (r *UserRepository) RemovePost(ctx context.Context, userID string, postID string) error {
	uoid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNotFound
	}
	poid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.col.UpdateByID(ctx, uoid, bson.M{
		"$pull": bson.M{"post_ids": poid},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}
