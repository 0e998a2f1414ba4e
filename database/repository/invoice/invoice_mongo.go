package invoiceRepo

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

// MongoInvoiceRepo implements InvoiceRepository using MongoDB.
type MongoInvoiceRepo struct {
	coll *mongo.Collection
}

func NewMongoInvoiceRepo(db *mongo.Database) InvoiceRepository {
	repo := &MongoInvoiceRepo{coll: db.Collection("invoices")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create invoice indexes: %v\n", err)
	}
	return repo
}

func (r *MongoInvoiceRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "gatewayOrderId", Value: 1}}},
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "insurerId", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoInvoiceRepo) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	return r.findOne(ctx, bson.M{"id": id}, "get invoice", id)
}

func (r *MongoInvoiceRepo) GetByGatewayOrderID(ctx context.Context, orderID string) (*models.Invoice, error) {
	return r.findOne(ctx, bson.M{"gatewayOrderId": orderID}, "get invoice by order", orderID)
}

func (r *MongoInvoiceRepo) findOne(ctx context.Context, filter bson.M, op, key string) (*models.Invoice, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var inv models.Invoice
	if err := r.coll.FindOne(ctx, filter).Decode(&inv); err != nil {
		return nil, repository.Classify(err, op, "invoice", key)
	}
	return &inv, nil
}

func (r *MongoInvoiceRepo) ListByCustomerAndStatusIn(ctx context.Context, customerID string, statuses []models.InvoiceStatus) ([]models.Invoice, error) {
	filter := bson.M{"customerId": customerID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return r.find(ctx, filter, "list customer invoices")
}

func (r *MongoInvoiceRepo) ListByInsurer(ctx context.Context, insurerID string) ([]models.Invoice, error) {
	return r.find(ctx, bson.M{"insurerId": insurerID}, "list insurer invoices")
}

func (r *MongoInvoiceRepo) find(ctx context.Context, filter bson.M, op string) ([]models.Invoice, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, repository.Classify(err, op, "invoices", "")
	}
	defer cursor.Close(ctx)

	invoices := []models.Invoice{}
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, repository.Classify(err, op, "invoices", "")
	}
	return invoices, nil
}

func (r *MongoInvoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, invoice); err != nil {
		return repository.Classify(err, "create invoice", "invoice", invoice.ID)
	}
	return nil
}

func (r *MongoInvoiceRepo) Save(ctx context.Context, invoice *models.Invoice) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	invoice.UpdatedAt = time.Now()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"id": invoice.ID}, invoice)
	if err != nil {
		return repository.Classify(err, "save invoice", "invoice", invoice.ID)
	}
	if result.MatchedCount == 0 {
		return repository.NotFound("invoice", invoice.ID)
	}
	return nil
}
