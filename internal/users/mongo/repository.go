// Package mongo provides MongoDB implementation of the users repository.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/runningsport/internal/domain"
	"github.com/bissquit/runningsport/internal/users"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const emailActiveIndex = "users_email_active"

var _ users.Repository = (*Repository)(nil)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	FirstName string             `bson:"firstname"`
	LastName  string             `bson:"lastname"`
	BirthDate string             `bson:"birthdate"`
	Phone     string             `bson:"phone"`
	Password  string             `bson:"password"`
	Status    bool               `bson:"status"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *userDocument) toDomain() domain.User {
	return domain.User{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		BirthDate: d.BirthDate,
		Phone:     d.Phone,
		Password:  d.Password,
		Status:    d.Status,
		Role:      domain.Role(d.Role),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// Repository implements the users.Repository interface on a MongoDB collection.
type Repository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewRepository creates a new MongoDB repository over the given collection.
func NewRepository(coll *mongo.Collection) *Repository {
	return &Repository{
		coll: coll,
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes creates the partial unique index that allows one active record per email.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName(emailActiveIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": true}),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("users_status_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

// ListActive retrieves all active users ordered by creation time.
func (r *Repository) ListActive(ctx context.Context) ([]domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.coll.Find(ctx, bson.M{"status": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	list := make([]domain.User, 0, len(docs))
	for i := range docs {
		list = append(list, docs[i].toDomain())
	}
	return list, nil
}

// GetActiveByEmail retrieves the active user with the given email.
func (r *Repository) GetActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.M{"email": email, "status": true}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	user := doc.toDomain()
	return &user, nil
}

// Create inserts a new user and fills in the generated fields.
func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	now := r.now()
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		BirthDate: user.BirthDate,
		Phone:     user.Phone,
		Password:  user.Password,
		Status:    user.Status,
		Role:      string(user.Role),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return users.ErrEmailExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// UpdateProfile replaces first name, last name and phone of an active user.
func (r *Repository) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) error {
	return r.updateActive(ctx, id, bson.M{
		"firstname": patch.FirstName,
		"lastname":  patch.LastName,
		"phone":     patch.Phone,
	})
}

// Deactivate flips an active user to inactive.
func (r *Repository) Deactivate(ctx context.Context, id string) error {
	return r.updateActive(ctx, id, bson.M{"status": false})
}

// updateActive applies set to the active document with the given id.
// A write that matches no active document is reported as users.ErrNotApplied.
func (r *Repository) updateActive(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("parse user id %q: %w", id, err)
	}

	set["updated_at"] = r.now()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "status": true},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return users.ErrNotApplied
	}
	return nil
}
