package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the uniqueness constraints the services rely on:
// one account per email, one quiz name per course, one response per
// (quiz, student) pair.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("quizzes").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "quiz_name", Value: 1}, {Key: "course", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("quiz_responses").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "quiz", Value: 1}, {Key: "student", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
