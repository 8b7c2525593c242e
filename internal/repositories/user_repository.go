package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/userhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// UsersCollection is the name of the collection holding user documents
const UsersCollection = "users"

// userRepository implements UserRepository
type userRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
	now        func() time.Time
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *mongo.Database, logger *zap.Logger) *userRepository {
	return &userRepository{
		collection: db.Collection(UsersCollection),
		logger:     logger,
		now:        time.Now,
	}
}

// timestamp returns the current time at the precision BSON dates keep
func (r *userRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

// Create inserts a new user, filling in its ID and timestamps
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := r.timestamp()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrEmailExists
		}
		r.logger.Error("failed to create user", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by its hex ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrInvalidUserID
	}

	return r.findOne(ctx, bson.M{"_id": oid}, "id", id)
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "email", email)
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M, field, value string) (*models.User, error) {
	user := &models.User{}
	err := r.collection.FindOne(ctx, filter).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user", zap.Error(err), zap.String(field, value))
		return nil, fmt.Errorf("failed to get user by %s: %w", field, err)
	}

	return user, nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"email": email},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return true, nil
}

// List retrieves a page of users, newest first, together with the total number of matches
func (r *userRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error) {
	query := bson.M{}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		r.logger.Error("failed to count users", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	skip := int64(filter.Page-1) * int64(filter.Count)
	if skip >= total {
		return []models.User{}, total, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(filter.Count))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		r.logger.Error("failed to list users", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0, filter.Count)
	if err := cursor.All(ctx, &users); err != nil {
		r.logger.Error("failed to decode users", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to decode users: %w", err)
	}

	return users, total, nil
}

// Update applies the non-nil fields of update and returns the updated user
func (r *userRepository) Update(ctx context.Context, id string, update *models.UserUpdate) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrInvalidUserID
	}

	set := bson.M{"updatedAt": r.timestamp()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Mobile != nil {
		set["mobile"] = *update.Mobile
	}
	if update.PasswordHash != nil {
		set["password"] = *update.PasswordHash
	}
	if update.ProfileImage != nil {
		set["profileImage"] = *update.ProfileImage
	}

	user := &models.User{}
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrEmailExists
		}
		r.logger.Error("failed to update user", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// Delete removes a user and returns the deleted document
func (r *userRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrInvalidUserID
	}

	user := &models.User{}
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to delete user", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	return user, nil
}

// ListProfileImages returns every distinct image filename referenced by a user
func (r *userRepository) ListProfileImages(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "profileImage", bson.M{"profileImage": bson.M{"$nin": bson.A{nil, ""}}})
	if err != nil {
		r.logger.Error("failed to list profile images", zap.Error(err))
		return nil, fmt.Errorf("failed to list profile images: %w", err)
	}

	images := make([]string, 0, len(values))
	for _, value := range values {
		if name, ok := value.(string); ok {
			images = append(images, name)
		}
	}

	return images, nil
}
