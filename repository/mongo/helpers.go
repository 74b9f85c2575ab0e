package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongolib "go.mongodb.org/mongo-driver/mongo"

	"github.com/fastygo/taskdesk/domain"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}

func countGroups(ctx context.Context, coll *mongolib.Collection, match bson.D, field string) ([]domain.GroupCount, error) {
	pipeline := mongolib.Pipeline{}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	)

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var docs []groupCountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return toGroupCounts(docs), nil
}

func countSince(ctx context.Context, coll *mongolib.Collection, since time.Time) (int64, error) {
	return coll.CountDocuments(ctx, bson.D{{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: since}}}})
}

func clampLimit(limit int) int64 {
	if limit <= 0 || limit > domain.MaxPageLimit {
		return domain.MaxPageLimit
	}
	return int64(limit)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
