package paymentRepo

import (
	"context"
	"time"

	"insurepay/database/repository"
	ierr "insurepay/errors"
	"insurepay/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	coll *mongo.Collection
}

// NewMongoPaymentRepo fails when the indexes cannot be built: the unique
// gatewayPaymentId index is what keeps payment recording idempotent.
func NewMongoPaymentRepo(db *mongo.Database) (PaymentRepository, error) {
	repo := &MongoPaymentRepo{coll: db.Collection("payments")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

// ensureIndexes makes gatewayPaymentId unique among documents that carry
// one; cash payments have none.
func (r *MongoPaymentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "gatewayPaymentId", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
				"gatewayPaymentId": bson.M{"$type": "string", "$gt": ""},
			}),
		},
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "paidAt", Value: -1}}},
		{Keys: bson.D{{Key: "invoiceId", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return ierr.WithError(err).
			WithMessage("failed to create payment indexes").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *MongoPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, payment); err != nil {
		return repository.Classify(err, "create payment", "payment", payment.GatewayPaymentID)
	}
	return nil
}

func (r *MongoPaymentRepo) GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.Payment, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var p models.Payment
	if err := r.coll.FindOne(ctx, bson.M{"gatewayPaymentId": gatewayPaymentID}).Decode(&p); err != nil {
		return nil, repository.Classify(err, "get payment", "payment", gatewayPaymentID)
	}
	return &p, nil
}

func (r *MongoPaymentRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Payment, error) {
	return r.find(ctx, bson.M{"customerId": customerID}, "list customer payments")
}

func (r *MongoPaymentRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]models.Payment, error) {
	return r.find(ctx, bson.M{"invoiceId": invoiceID}, "list invoice payments")
}

func (r *MongoPaymentRepo) find(ctx context.Context, filter bson.M, op string) ([]models.Payment, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "paidAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, repository.Classify(err, op, "payments", "")
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, repository.Classify(err, op, "payments", "")
	}
	return payments, nil
}
