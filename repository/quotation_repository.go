package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/simplexsales/backend/models"
	"github.com/simplexsales/backend/utils"
)

type mongoQuotationRepository struct {
	col *mongo.Collection
}

func NewQuotationRepository(db *mongo.Database) QuotationRepository {
	return &mongoQuotationRepository{col: db.Collection("quotation_requests")}
}

func (r *mongoQuotationRepository) Insert(ctx context.Context, qr *models.QuotationRequest) error {
	if qr.ID.IsZero() {
		qr.ID = bson.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, qr); err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *mongoQuotationRepository) FindByQRID(ctx context.Context, qrID string) (*models.QuotationRequest, error) {
	var qr models.QuotationRequest
	if err := r.col.FindOne(ctx, bson.M{"qrId": qrID}).Decode(&qr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &qr, nil
}

func (r *mongoQuotationRepository) Save(ctx context.Context, qr *models.QuotationRequest) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": qr.ID}, qr)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoQuotationRepository) List(ctx context.Context) ([]models.QuotationRequest, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := make([]models.QuotationRequest, 0)
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}
