package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongolib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository"
)

type commentRepository struct {
	coll *mongolib.Collection
}

// NewCommentRepository returns a MongoDB-backed implementation of CommentRepository.
func NewCommentRepository(db *mongolib.Database) repository.CommentRepository {
	return &commentRepository{coll: db.Collection(commentsCollection)}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	if comment == nil {
		return nil, domain.ErrInvalidPayload
	}
	taskID, err := objectID(comment.TaskID)
	if err != nil {
		return nil, err
	}
	author, err := objectID(comment.AuthorID)
	if err != nil {
		return nil, err
	}

	ts := now()
	res, err := r.coll.InsertOne(ctx, commentDocument{
		TaskID:    taskID,
		Author:    author,
		Text:      comment.Text,
		CreatedAt: ts,
		UpdatedAt: ts,
	})
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		comment.ID = oid.Hex()
	}
	comment.CreatedAt = ts
	comment.UpdatedAt = ts
	return comment, nil
}

func (r *commentRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error) {
	oid, err := objectID(taskID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "taskId", Value: oid}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	var docs []commentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	comments := make([]domain.Comment, 0, len(docs))
	for i := range docs {
		comments = append(comments, docs[i].toDomain())
	}
	return comments, nil
}
