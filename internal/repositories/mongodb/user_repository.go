package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"safewatch/internal/models"
	"safewatch/internal/repositories/interfaces"
	"safewatch/internal/utils"
	"safewatch/pkg/cache"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const UsersCollection = "users"

type userRepository struct {
	collection *mongo.Collection
	cache      cache.Cache
	cacheTTL   time.Duration
}

// NewUserRepository returns a Mongo-backed repository. cache may be nil.
func NewUserRepository(db *mongo.Database, c cache.Cache, cacheTTL time.Duration) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection(UsersCollection),
		cache:      c,
		cacheTTL:   cacheTTL,
	}
}

// Basic CRUD operations
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	if user.EmergencyContacts == nil {
		user.EmergencyContacts = []models.EmergencyContact{}
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w: %v", models.ErrPersistence, err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.readThrough(ctx, id, func(ctx context.Context) (*models.User, error) {
		var user models.User
		if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
			return nil, r.lookupError("get user", err)
		}
		return &user, nil
	})
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w: %v", models.ErrPersistence, err)
	}
	r.invalidateUserCache(ctx, id)

	if res.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// Identity lookups
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, r.lookupError("get user by email", err)
	}
	return &user, nil
}

// GetByEmailAndPhone always reads from the store so an alert sees the
// current contact list.
func (r *userRepository) GetByEmailAndPhone(ctx context.Context, email, phone string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{
		"email": email,
		"phone": phone,
	}).Decode(&user)
	if err != nil {
		return nil, r.lookupError("get user by email and phone", err)
	}
	return &user, nil
}

// Location and activity
func (r *userRepository) UpdateLastLocation(ctx context.Context, id primitive.ObjectID, location models.LastLocation) error {
	return r.Update(ctx, id, map[string]interface{}{
		"last_location":  location,
		"last_active_at": location.Timestamp,
	})
}

func (r *userRepository) UpdateLastActive(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	return r.Update(ctx, id, map[string]interface{}{
		"last_active_at": &now,
	})
}

func (r *userRepository) AppendActivity(ctx context.Context, id primitive.ObjectID, activity models.Activity) error {
	return r.push(ctx, id, "recent_activity", activity)
}

// Emergency contacts
func (r *userRepository) AddContact(ctx context.Context, id primitive.ObjectID, contact models.EmergencyContact) error {
	return r.push(ctx, id, "emergency_contacts", contact)
}

// RemoveContact pulls the contact by id. An id that is not in the list
// leaves it unchanged and is not an error.
func (r *userRepository) RemoveContact(ctx context.Context, id, contactID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$pull": bson.M{"emergency_contacts": bson.M{"_id": contactID}},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove contact: %w: %v", models.ErrPersistence, err)
	}
	r.invalidateUserCache(ctx, id)

	if res.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// Admin
func (r *userRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.UserStatus) error {
	return r.Update(ctx, id, map[string]interface{}{
		"status": status,
	})
}

func (r *userRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	filter := bson.M{}
	if params.Search != "" {
		filter = params.GetSearchFilter([]string{"name", "email", "phone"})
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w: %v", models.ErrPersistence, err)
	}

	opts := params.GetSortOptions()
	opts.SetProjection(bson.M{"password": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find users: %w: %v", models.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	users := make([]*models.User, 0, params.GetLimit())
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, 0, fmt.Errorf("failed to decode user: %w: %v", models.ErrPersistence, err)
		}
		users = append(users, &user)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w: %v", models.ErrPersistence, err)
	}

	return users, total, nil
}

// Helper methods
func (r *userRepository) push(ctx context.Context, id primitive.ObjectID, field string, value interface{}) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{field: value},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to push %s: %w: %v", field, models.ErrPersistence, err)
	}
	r.invalidateUserCache(ctx, id)

	if res.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) lookupError(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrUserNotFound
	}
	return fmt.Errorf("failed to %s: %w: %v", op, models.ErrPersistence, err)
}

// Cache operations
//
// Every write bumps a per-user generation before dropping the cached user.
// A reader only caches what it loaded if the generation did not move while
// it was reading, so a write racing a cache miss cannot leave a stale copy.
func userCacheKey(id primitive.ObjectID) string {
	return fmt.Sprintf("user:%s", id.Hex())
}

func userGenerationKey(id primitive.ObjectID) string {
	return fmt.Sprintf("user:gen:%s", id.Hex())
}

func (r *userRepository) readThrough(ctx context.Context, id primitive.ObjectID, load func(context.Context) (*models.User, error)) (*models.User, error) {
	if user := r.getUserFromCache(ctx, id); user != nil {
		return user, nil
	}

	gen := r.cacheGeneration(ctx, id)
	user, err := load(ctx)
	if err != nil {
		return nil, err
	}
	r.cacheUser(ctx, user, gen)

	return user, nil
}

func (r *userRepository) cacheGeneration(ctx context.Context, id primitive.ObjectID) int64 {
	if r.cache == nil {
		return 0
	}
	var gen int64
	if err := r.cache.Get(ctx, userGenerationKey(id), &gen); err != nil {
		return 0
	}
	return gen
}

func (r *userRepository) cacheUser(ctx context.Context, user *models.User, gen int64) {
	if r.cache == nil || r.cacheGeneration(ctx, user.ID) != gen {
		return
	}
	r.cache.Set(ctx, userCacheKey(user.ID), user, r.cacheTTL)

	// A write may have landed between the check and the set.
	if r.cacheGeneration(ctx, user.ID) != gen {
		r.cache.Delete(ctx, userCacheKey(user.ID))
	}
}

func (r *userRepository) getUserFromCache(ctx context.Context, id primitive.ObjectID) *models.User {
	if r.cache == nil {
		return nil
	}

	var user models.User
	if err := r.cache.Get(ctx, userCacheKey(id), &user); err != nil {
		return nil
	}
	return &user
}

// invalidateUserCache must bump the generation before deleting so a reader
// that sets after the delete always sees the new generation.
func (r *userRepository) invalidateUserCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ctx, userGenerationKey(id), time.Now().UnixNano(), 2*r.cacheTTL)
	r.cache.Delete(ctx, userCacheKey(id))
}
