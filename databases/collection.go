package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection implements the typed read/write methods shared by every XxxDatabase
type collection[T any] struct {
	db   DatabaseHelper
	name string
}

func (c *collection[T]) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*T, error) {
	doc := new(T)
	err := c.db.Collection(c.name).FindOne(ctx, filter, opts...).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *collection[T]) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	var docs []T
	curr, err := c.db.Collection(c.name).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &docs)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *collection[T]) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(c.name).CountDocuments(ctx, filter, opts...)
}

func (c *collection[T]) InsertOne(ctx context.Context, document T, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(c.name).InsertOne(ctx, document, opts...)
}

func (c *collection[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(c.name).UpdateOne(ctx, filter, update, opts...)
}

func (c *collection[T]) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(c.name).UpdateMany(ctx, filter, update, opts...)
}

func (c *collection[T]) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return c.db.Collection(c.name).DeleteMany(ctx, filter, opts...)
}

func (c *collection[T]) Aggregate(ctx context.Context, pipeline interface{}, results interface{}) error {
	curr, err := c.db.Collection(c.name).Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer curr.Close(ctx)
	return curr.All(ctx, results)
}
