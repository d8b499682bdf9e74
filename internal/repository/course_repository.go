package repository

import (
	"context"
	"strconv"

	"iquiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CourseRepository struct {
	Col *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{Col: db.Collection("courses")}
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var course models.Course
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&course)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	res, err := r.Col.InsertOne(ctx, course)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		course.ID = oid.Hex()
	}
	return nil
}

func (r *CourseRepository) Update(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update})
	return err
}

func (r *CourseRepository) AppendQuiz(ctx context.Context, id, quizID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$push": bson.M{"quizzes": quizID}})
	return err
}

func (r *CourseRepository) RemoveQuiz(ctx context.Context, id, quizID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$pull": bson.M{"quizzes": quizID}})
	return err
}

func (r *CourseRepository) AddStudent(ctx context.Context, id string, sessionIndex int, studentID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	field := "sessions." + strconv.Itoa(sessionIndex) + ".students"
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$addToSet": bson.M{field: studentID}})
	return err
}

func (r *CourseRepository) RemoveStudent(ctx context.Context, id, studentID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID},
		bson.M{"$pull": bson.M{"sessions.$[].students": studentID}})
	return err
}
