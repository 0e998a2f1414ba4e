package customerRepo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"insurepay/database/repository"
	"insurepay/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCustomerRepo implements CustomerRepository using MongoDB.
type MongoCustomerRepo struct {
	coll *mongo.Collection
}

// NewMongoCustomerRepo creates a CustomerRepository on the "customers" collection.
func NewMongoCustomerRepo(db *mongo.Database) CustomerRepository {
	repo := &MongoCustomerRepo{coll: db.Collection("customers")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create customer indexes: %v\n", err)
	}
	return repo
}

func (r *MongoCustomerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var c models.Customer
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&c); err != nil {
		return nil, repository.Classify(err, "get customer", "customer", id)
	}
	return &c, nil
}

func (r *MongoCustomerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var c models.Customer
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&c); err != nil {
		return nil, repository.Classify(err, "get customer by email", "customer", email)
	}
	return &c, nil
}

func (r *MongoCustomerRepo) GetAll(ctx context.Context) ([]models.Customer, error) {
	return r.find(ctx, bson.M{}, "list customers")
}

func (r *MongoCustomerRepo) SearchByName(ctx context.Context, fragment string) ([]models.Customer, error) {
	filter := bson.M{"name": bson.M{"$regex": regexp.QuoteMeta(fragment), "$options": "i"}}
	return r.find(ctx, filter, "search customers")
}

func (r *MongoCustomerRepo) ListByPolicyIDs(ctx context.Context, policyIDs []string) ([]models.Customer, error) {
	return r.find(ctx, bson.M{"policyIds": bson.M{"$in": policyIDs}}, "list customers by policy")
}

func (r *MongoCustomerRepo) find(ctx context.Context, filter bson.M, op string) ([]models.Customer, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, repository.Classify(err, op, "customers", "")
	}
	defer cursor.Close(ctx)

	customers := []models.Customer{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, repository.Classify(err, op, "customers", "")
	}
	return customers, nil
}

func (r *MongoCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	if customer.PolicyIDs == nil {
		customer.PolicyIDs = []string{}
	}
	if customer.PaymentHistory == nil {
		customer.PaymentHistory = []models.PaymentHistory{}
	}

	if _, err := r.coll.InsertOne(ctx, customer); err != nil {
		return repository.Classify(err, "create customer", "customer", customer.Email)
	}
	return nil
}

func (r *MongoCustomerRepo) Save(ctx context.Context, customer *models.Customer) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	customer.UpdatedAt = time.Now()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"id": customer.ID}, customer)
	if err != nil {
		return repository.Classify(err, "save customer", "customer", customer.ID)
	}
	if result.MatchedCount == 0 {
		return repository.NotFound("customer", customer.ID)
	}
	return nil
}
