package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongolib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository"
)

type taskRepository struct {
	coll *mongolib.Collection
}

// NewTaskRepository returns a MongoDB-backed implementation of TaskRepository.
func NewTaskRepository(db *mongolib.Database) repository.TaskRepository {
	return &taskRepository{coll: db.Collection(tasksCollection)}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc taskDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongolib.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	task := doc.toDomain()
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query, err := taskFilter(filter)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(filter.Skip)).
		SetLimit(clampLimit(filter.Limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toDomain())
	}
	return tasks, nil
}

// ListWithOwners joins each task with its owner's public fields.
func (r *taskRepository) ListWithOwners(ctx context.Context, filter repository.TaskFilter) ([]domain.TaskWithOwner, error) {
	query, err := taskFilter(filter)
	if err != nil {
		return nil, err
	}

	cursor, err := r.coll.Aggregate(ctx, tasksWithOwnersPipeline(query, filter))
	if err != nil {
		return nil, fmt.Errorf("list tasks with owners: %w", err)
	}
	var docs []taskWithOwnerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks with owners: %w", err)
	}

	out := make([]domain.TaskWithOwner, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *taskRepository) Count(ctx context.Context, filter repository.TaskFilter) (int64, error) {
	query, err := taskFilter(filter)
	if err != nil {
		return 0, err
	}
	return r.coll.CountDocuments(ctx, query)
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	doc, err := newTaskDocument(task)
	if err != nil {
		return nil, err
	}

	ts := now()
	doc.CreatedAt = ts
	doc.UpdatedAt = ts

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		task.ID = oid.Hex()
	}
	task.CreatedAt = ts
	task.UpdatedAt = ts
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	oid, err := objectID(task.ID)
	if err != nil {
		return err
	}
	doc, err := newTaskDocument(task)
	if err != nil {
		return err
	}

	ts := now()
	set := bson.D{
		{Key: "title", Value: doc.Title},
		{Key: "description", Value: doc.Description},
		{Key: "status", Value: doc.Status},
		{Key: "priority", Value: doc.Priority},
		{Key: "dueDate", Value: doc.DueDate},
		{Key: "assignedTo", Value: doc.AssignedTo},
		{Key: "overdueEmailSent", Value: doc.OverdueEmailSent},
		{Key: "updatedAt", Value: ts},
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	task.UpdatedAt = ts
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	oid, err := objectID(userID)
	if err != nil {
		return 0, err
	}
	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "userId", Value: oid}})
	if err != nil {
		return 0, fmt.Errorf("delete user tasks: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *taskRepository) CountByStatus(ctx context.Context, filter repository.TaskFilter) ([]domain.GroupCount, error) {
	query, err := taskFilter(filter)
	if err != nil {
		return nil, err
	}
	return countGroups(ctx, r.coll, query, "status")
}

func (r *taskRepository) CountByPriority(ctx context.Context) ([]domain.GroupCount, error) {
	return countGroups(ctx, r.coll, nil, "priority")
}

// TopOwners ranks owners by task count. Owners that no longer exist are skipped.
func (r *taskRepository) TopOwners(ctx context.Context, limit int) ([]domain.TopUser, error) {
	cursor, err := r.coll.Aggregate(ctx, topOwnersPipeline(limit))
	if err != nil {
		return nil, fmt.Errorf("top owners: %w", err)
	}
	var docs []topUserDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode top owners: %w", err)
	}

	out := make([]domain.TopUser, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.TopUser{
			UserID:    d.ID.Hex(),
			Username:  d.Username,
			Email:     d.Email,
			TaskCount: d.TaskCount,
		})
	}
	return out, nil
}

func (r *taskRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return countSince(ctx, r.coll, since)
}

func (r *taskRepository) ListOverdue(ctx context.Context, at time.Time, limit int) ([]domain.Task, error) {
	query := bson.D{
		{Key: "dueDate", Value: bson.D{{Key: "$lt", Value: at}}},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: string(domain.StatusDone)}}},
		{Key: "overdueEmailSent", Value: false},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "dueDate", Value: 1}}).
		SetLimit(clampLimit(limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode overdue tasks: %w", err)
	}
	tasks := make([]domain.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toDomain())
	}
	return tasks, nil
}

func (r *taskRepository) MarkOverdueNotified(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "overdueEmailSent", Value: true},
		{Key: "updatedAt", Value: now()},
	}}}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, update)
	if err != nil {
		return fmt.Errorf("mark overdue notified: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func taskFilter(filter repository.TaskFilter) (bson.D, error) {
	query := bson.D{}
	if filter.UserID != "" {
		oid, err := objectID(filter.UserID)
		if err != nil {
			return nil, err
		}
		query = append(query, bson.E{Key: "userId", Value: oid})
	}
	if filter.Status != "" {
		query = append(query, bson.E{Key: "status", Value: filter.Status})
	}
	if filter.Priority != "" {
		query = append(query, bson.E{Key: "priority", Value: filter.Priority})
	}
	return query, nil
}

func newTaskDocument(task *domain.Task) (taskDocument, error) {
	owner, err := objectID(task.UserID)
	if err != nil {
		return taskDocument{}, err
	}
	doc := taskDocument{
		UserID:           owner,
		Title:            task.Title,
		Description:      task.Description,
		Status:           string(task.Status),
		Priority:         task.Priority,
		DueDate:          task.DueDate,
		OverdueEmailSent: task.OverdueEmailSent,
	}
	if task.AssignedTo != "" {
		assignee, err := objectID(task.AssignedTo)
		if err != nil {
			return taskDocument{}, err
		}
		doc.AssignedTo = &assignee
	}
	return doc, nil
}

func tasksWithOwnersPipeline(query bson.D, filter repository.TaskFilter) mongolib.Pipeline {
	return mongolib.Pipeline{
		{{Key: "$match", Value: query}},
		{{Key: "$sort", Value: newestFirst}},
		{{Key: "$skip", Value: int64(filter.Skip)}},
		{{Key: "$limit", Value: clampLimit(filter.Limit)}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "userId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$owner"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "owner.password", Value: 0},
			{Key: "owner.preferences", Value: 0},
			{Key: "owner.createdAt", Value: 0},
			{Key: "owner.updatedAt", Value: 0},
		}}},
	}
}

// topOwnersPipeline drops owners without a user document before the limit applies.
func topOwnersPipeline(limit int) mongolib.Pipeline {
	return mongolib.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$userId"},
			{Key: "taskCount", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "taskCount", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$project", Value: bson.D{
			{Key: "username", Value: "$user.username"},
			{Key: "email", Value: "$user.email"},
			{Key: "taskCount", Value: 1},
		}}},
	}
}
