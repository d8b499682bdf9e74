package repository

import (
	"context"
	"fmt"

	"iquiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// QuestionRepository keeps one collection per question kind, mirroring the
// four variant document types. All calls dispatch on the kind tag.
type QuestionRepository struct {
	cols map[models.QuestionKind]*mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{
		cols: map[models.QuestionKind]*mongo.Collection{
			models.KindMCQ: db.Collection("mcq_questions"),
			models.KindMSQ: db.Collection("msq_questions"),
			models.KindCLO: db.Collection("clo_questions"),
			models.KindOEQ: db.Collection("oeq_questions"),
		},
	}
}

func (r *QuestionRepository) col(kind models.QuestionKind) (*mongo.Collection, error) {
	col, ok := r.cols[kind]
	if !ok {
		return nil, fmt.Errorf("unknown question kind %s", kind)
	}
	return col, nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, kind models.QuestionKind, id string) (*models.Question, error) {
	col, err := r.col(kind)
	if err != nil {
		return nil, err
	}
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var question models.Question
	err = col.FindOne(ctx, bson.M{"_id": objID}).Decode(&question)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) Create(ctx context.Context, kind models.QuestionKind, question *models.Question) error {
	col, err := r.col(kind)
	if err != nil {
		return err
	}
	res, err := col.InsertOne(ctx, question)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		question.ID = oid.Hex()
	}
	return nil
}

func (r *QuestionRepository) Update(ctx context.Context, kind models.QuestionKind, id string, question *models.Question) error {
	col, err := r.col(kind)
	if err != nil {
		return err
	}
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"prompt":    question.Prompt,
		"max_score": question.MaxScore,
		"choices":   question.Choices,
		"answers":   question.Answers,
		"criteria":  question.Criteria,
	}
	_, err = col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update})
	return err
}

func (r *QuestionRepository) Delete(ctx context.Context, kind models.QuestionKind, id string) error {
	col, err := r.col(kind)
	if err != nil {
		return err
	}
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = col.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}
