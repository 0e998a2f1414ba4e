package policyRepo

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

// MongoPolicyRepo implements PolicyRepository on the "policies" and
// "taxRates" collections.
type MongoPolicyRepo struct {
	coll    *mongo.Collection
	taxColl *mongo.Collection
}

func NewMongoPolicyRepo(db *mongo.Database) PolicyRepository {
	repo := &MongoPolicyRepo{
		coll:    db.Collection("policies"),
		taxColl: db.Collection("taxRates"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create policy indexes: %v\n", err)
	}
	return repo
}

func (r *MongoPolicyRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "insurerId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create policy indexes: %w", err)
	}
	if _, err := r.taxColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "policyType", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create tax rate indexes: %w", err)
	}
	return nil
}

func (r *MongoPolicyRepo) GetByID(ctx context.Context, id string) (*models.Policy, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var p models.Policy
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p); err != nil {
		return nil, repository.Classify(err, "get policy", "policy", id)
	}
	return &p, nil
}

func (r *MongoPolicyRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Policy, error) {
	return r.find(ctx, bson.M{"id": bson.M{"$in": ids}}, "get policies")
}

func (r *MongoPolicyRepo) ListByInsurer(ctx context.Context, insurerID string) ([]models.Policy, error) {
	return r.find(ctx, bson.M{"insurerId": insurerID}, "list insurer policies")
}

func (r *MongoPolicyRepo) ListActive(ctx context.Context) ([]models.Policy, error) {
	return r.find(ctx, bson.M{"active": true}, "list active policies")
}

func (r *MongoPolicyRepo) find(ctx context.Context, filter bson.M, op string) ([]models.Policy, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, repository.Classify(err, op, "policies", "")
	}
	defer cursor.Close(ctx)

	policies := []models.Policy{}
	if err := cursor.All(ctx, &policies); err != nil {
		return nil, repository.Classify(err, op, "policies", "")
	}
	return policies, nil
}

func (r *MongoPolicyRepo) Create(ctx context.Context, policy *models.Policy) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, policy); err != nil {
		return repository.Classify(err, "create policy", "policy", policy.ID)
	}
	return nil
}

func (r *MongoPolicyRepo) GetTaxRate(ctx context.Context, policyType string) (*models.TaxRate, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var rate models.TaxRate
	if err := r.taxColl.FindOne(ctx, bson.M{"policyType": policyType}).Decode(&rate); err != nil {
		return nil, repository.Classify(err, "get tax rate", "tax rate for policy type", policyType)
	}
	return &rate, nil
}

func (r *MongoPolicyRepo) UpsertTaxRate(ctx context.Context, rate *models.TaxRate) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	rate.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	if _, err := r.taxColl.ReplaceOne(ctx, bson.M{"policyType": rate.PolicyType}, rate, opts); err != nil {
		return repository.Classify(err, "save tax rate", "tax rate", rate.PolicyType)
	}
	return nil
}

func (r *MongoPolicyRepo) ListTaxRates(ctx context.Context) ([]models.TaxRate, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.taxColl.Find(ctx, bson.M{})
	if err != nil {
		return nil, repository.Classify(err, "list tax rates", "tax rates", "")
	}
	defer cursor.Close(ctx)

	rates := []models.TaxRate{}
	if err := cursor.All(ctx, &rates); err != nil {
		return nil, repository.Classify(err, "list tax rates", "tax rates", "")
	}
	return rates, nil
}
