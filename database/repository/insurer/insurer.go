package insurerRepo

import (
	"context"
	"fmt"
	"time"

	"insurepay/database/repository"
	"insurepay/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsurerRepository defines methods for insurer data access.
type InsurerRepository interface {
	GetByID(ctx context.Context, id string) (*models.Insurer, error)
	GetByEmail(ctx context.Context, email string) (*models.Insurer, error)
	GetAll(ctx context.Context) ([]models.Insurer, error)
	Create(ctx context.Context, insurer *models.Insurer) error
}

// MongoInsurerRepo implements InsurerRepository using MongoDB.
type MongoInsurerRepo struct {
	coll *mongo.Collection
}

func NewMongoInsurerRepo(db *mongo.Database) InsurerRepository {
	repo := &MongoInsurerRepo{coll: db.Collection("insurers")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		fmt.Printf("failed to create insurer indexes: %v\n", err)
	}
	return repo
}

func (r *MongoInsurerRepo) GetByID(ctx context.Context, id string) (*models.Insurer, error) {
	return r.findOne(ctx, bson.M{"id": id}, id)
}

func (r *MongoInsurerRepo) GetByEmail(ctx context.Context, email string) (*models.Insurer, error) {
	return r.findOne(ctx, bson.M{"email": email}, email)
}

func (r *MongoInsurerRepo) findOne(ctx context.Context, filter bson.M, key string) (*models.Insurer, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var ins models.Insurer
	if err := r.coll.FindOne(ctx, filter).Decode(&ins); err != nil {
		return nil, repository.Classify(err, "get insurer", "insurer", key)
	}
	return &ins, nil
}

func (r *MongoInsurerRepo) GetAll(ctx context.Context) ([]models.Insurer, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, repository.Classify(err, "list insurers", "insurers", "")
	}
	defer cursor.Close(ctx)

	insurers := []models.Insurer{}
	if err := cursor.All(ctx, &insurers); err != nil {
		return nil, repository.Classify(err, "list insurers", "insurers", "")
	}
	return insurers, nil
}

func (r *MongoInsurerRepo) Create(ctx context.Context, insurer *models.Insurer) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	insurer.CreatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, insurer); err != nil {
		return repository.Classify(err, "create insurer", "insurer", insurer.Email)
	}
	return nil
}
