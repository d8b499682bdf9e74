package repository

import (
	"context"

	"iquiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ResponseRepository struct {
	Col *mongo.Collection
}

func NewResponseRepository(db *mongo.Database) *ResponseRepository {
	return &ResponseRepository{Col: db.Collection("quiz_responses")}
}

func (r *ResponseRepository) FindByQuizAndStudent(ctx context.Context, quizID, studentID string) (*models.QuizResponse, error) {
	var response models.QuizResponse
	err := r.Col.FindOne(ctx, bson.M{"quiz": quizID, "student": studentID}).Decode(&response)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *ResponseRepository) FindByQuiz(ctx context.Context, quizID string) ([]models.QuizResponse, error) {
	cur, err := r.Col.Find(ctx, bson.M{"quiz": quizID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var responses []models.QuizResponse
	for cur.Next(ctx) {
		var resp models.QuizResponse
		if err := cur.Decode(&resp); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (r *ResponseRepository) Create(ctx context.Context, response *models.QuizResponse) error {
	res, err := r.Col.InsertOne(ctx, response)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		response.ID = oid.Hex()
	}
	return nil
}

func (r *ResponseRepository) Update(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update})
	return err
}
