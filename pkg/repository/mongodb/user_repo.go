package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/artem13815/tasktracker/pkg/auth"
	store "github.com/artem13815/tasktracker/pkg/storage/mongodb"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func toUserDoc(u auth.User) userDoc {
	return userDoc{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

func (d userDoc) user() (auth.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return auth.User{}, err
	}
	return auth.User{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         auth.Role(d.Role),
		CreatedAt:    d.CreatedAt.UTC(),
	}, nil
}

// UserRepository implements auth.UserRepository over a MongoDB collection.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(store.UsersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user auth.User) error {
	_, err := r.coll.InsertOne(ctx, toUserDoc(user))
	if mongo.IsDuplicateKeyError(err) {
		return auth.ErrUserAlreadyExists
	}
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (auth.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: strings.ToLower(email)}})
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (auth.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]auth.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	return r.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: keys}}}})
}

func (r *UserRepository) ListByRole(ctx context.Context, role auth.Role) ([]auth.User, error) {
	return r.find(ctx, bson.D{{Key: "role", Value: string(role)}})
}

// Reset removes every user; used by the seed command.
func (r *UserRepository) Reset(ctx context.Context) error {
	_, err := r.coll.DeleteMany(ctx, bson.D{})
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D) (auth.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return auth.User{}, auth.ErrNotFound
		}
		return auth.User{}, err
	}
	return doc.user()
}

func (r *UserRepository) find(ctx context.Context, filter bson.D) ([]auth.User, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	res := make([]auth.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.user()
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, nil
}
