package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongolib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository"
)

type userRepository struct {
	coll *mongolib.Collection
}

// NewUserRepository instantiates a MongoDB-backed user repository.
func NewUserRepository(db *mongolib.Database) repository.UserRepository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: strings.ToLower(strings.TrimSpace(email))}})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongolib.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	ts := now()
	doc := userDocument{
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Role:      string(user.Role),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if user.Preferences != nil {
		prefs := newPreferencesDocument(*user.Preferences)
		doc.Preferences = &prefs
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongolib.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	user.CreatedAt = ts
	user.UpdatedAt = ts
	return nil
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(filter.Skip)).
		SetLimit(clampLimit(filter.Limit)).
		SetProjection(bson.D{{Key: "password", Value: 0}})

	cursor, err := r.coll.Find(ctx, userFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, *docs[i].toDomain())
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context, filter repository.UserFilter) (int64, error) {
	return r.coll.CountDocuments(ctx, userFilter(filter))
}

func (r *userRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (domain.Role, error) {
	oid, err := objectID(id)
	if err != nil {
		return "", err
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "role", Value: string(role)},
		{Key: "updatedAt", Value: now()},
	}}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(bson.D{{Key: "role", Value: 1}})

	var previous struct {
		Role string `bson:"role"`
	}
	if err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&previous); err != nil {
		if errors.Is(err, mongolib.ErrNoDocuments) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("update role: %w", err)
	}
	return domain.Role(previous.Role), nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// MergePreferences runs a pipeline update so the merge happens server-side in a single document write.
func (r *userRepository) MergePreferences(ctx context.Context, id string, patch domain.PreferencesPatch) (*domain.Preferences, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	defaults := newPreferencesDocument(domain.DefaultPreferences())
	update := mongolib.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "preferences", Value: bson.D{{Key: "$mergeObjects", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$preferences", bson.D{{Key: "$literal", Value: defaults}}}}},
				patchDocument(patch),
			}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: "preferences", Value: 1}})

	var doc userDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongolib.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("merge preferences: %w", err)
	}
	if doc.Preferences == nil {
		prefs := domain.DefaultPreferences()
		return &prefs, nil
	}
	prefs := doc.Preferences.toDomain()
	return &prefs, nil
}

func (r *userRepository) SetPreferences(ctx context.Context, id string, prefs domain.Preferences) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "preferences", Value: newPreferencesDocument(prefs)},
		{Key: "updatedAt", Value: now()},
	}}}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, update)
	if err != nil {
		return fmt.Errorf("set preferences: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) CountByRole(ctx context.Context) ([]domain.GroupCount, error) {
	return countGroups(ctx, r.coll, nil, "role")
}

func (r *userRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return countSince(ctx, r.coll, since)
}

func userFilter(filter repository.UserFilter) bson.D {
	query := bson.D{}
	if filter.Role != "" {
		query = append(query, bson.E{Key: "role", Value: filter.Role})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		query = append(query, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "username", Value: pattern}},
			bson.D{{Key: "email", Value: pattern}},
		}})
	}
	return query
}

// patchDocument wraps each value in $literal so user input is never read as a field path or operator.
func patchDocument(p domain.PreferencesPatch) bson.D {
	doc := bson.D{}
	set := func(key string, value interface{}) {
		doc = append(doc, bson.E{Key: key, Value: bson.D{{Key: "$literal", Value: value}}})
	}
	if p.Theme != nil {
		set("theme", string(*p.Theme))
	}
	if p.Language != nil {
		set("language", string(*p.Language))
	}
	if p.Timezone != nil {
		set("timezone", *p.Timezone)
	}
	if p.EmailNotifications != nil {
		set("emailNotifications", *p.EmailNotifications)
	}
	if p.DeadlineReminders != nil {
		set("deadlineReminders", *p.DeadlineReminders)
	}
	if p.TaskAssignmentNotifications != nil {
		set("taskAssignmentNotifications", *p.TaskAssignmentNotifications)
	}
	if p.WeeklyDigest != nil {
		set("weeklyDigest", *p.WeeklyDigest)
	}
	return doc
}
