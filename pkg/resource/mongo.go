package resource

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	mongostore "github.com/CR-8/clubcore/pkg/store/mongodb"
)

// MongoCollection adapts the MongoDB adapter to the Collection contract
// for one named collection.
type MongoCollection struct {
	adapter *mongostore.Adapter
	name    string
}

// NewMongoCollection creates a MongoCollection over an adapter.
func NewMongoCollection(adapter *mongostore.Adapter, name string) (*MongoCollection, error) {
	if adapter == nil {
		return nil, errors.New("mongodb adapter is required")
	}
	if name == "" {
		return nil, errors.New("collection name is required")
	}
	return &MongoCollection{adapter: adapter, name: name}, nil
}

func (c *MongoCollection) InsertOne(ctx context.Context, doc map[string]interface{}) error {
	_, err := c.adapter.InsertOne(ctx, c.name, bson.M(doc))
	if mongostore.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (c *MongoCollection) FindOne(ctx context.Context, filter bson.M) (map[string]interface{}, error) {
	out := bson.M{}
	if err := c.adapter.FindOne(ctx, c.name, filter, &out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return map[string]interface{}(out), nil
}

func (c *MongoCollection) Find(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]map[string]interface{}, error) {
	docs, err := c.adapter.Find(ctx, c.name, filter, sort, skip, limit)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(docs))
	for _, d := range docs {
		out = append(out, map[string]interface{}(d))
	}
	return out, nil
}

func (c *MongoCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	return c.adapter.CountDocuments(ctx, c.name, filter)
}

// SumField sums a numeric field with a $group pipeline. $toDouble with
// $convert's onError keeps malformed values from failing the whole sum.
func (c *MongoCollection) SumField(ctx context.Context, filter bson.M, field string) (float64, error) {
	pipeline := []bson.M{
		{"$match": filter},
		{"$group": bson.M{
			"_id": nil,
			"total": bson.M{"$sum": bson.M{"$convert": bson.M{
				"input":   "$" + field,
				"to":      "double",
				"onError": 0,
				"onNull":  0,
			}}},
		}},
	}
	results, err := c.adapter.Aggregate(ctx, c.name, pipeline)
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	total, err := toFloat(results[0]["total"])
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (c *MongoCollection) UpdateByID(ctx context.Context, id string, set bson.M) (bool, error) {
	result, err := c.adapter.UpdateOne(ctx, c.name, bson.M{"_id": id}, bson.M{"$set": set})
	if mongostore.IsDuplicateKeyError(err) {
		return false, ErrDuplicate
	}
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (c *MongoCollection) IncByID(ctx context.Context, id string, field string, delta int64) error {
	_, err := c.adapter.UpdateOne(ctx, c.name, bson.M{"_id": id}, bson.M{"$inc": bson.M{field: delta}})
	return err
}

func (c *MongoCollection) DeleteByID(ctx context.Context, id string) (bool, error) {
	result, err := c.adapter.DeleteOne(ctx, c.name, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
