package repository

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/simplexsales/backend/models"
	"github.com/simplexsales/backend/utils"
)

type mongoProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{col: db.Collection("products")}
}

func (r *mongoProductRepository) Insert(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = bson.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, product); err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *mongoProductRepository) FindByRef(ctx context.Context, ref ProductRef) (*models.Product, error) {
	var product models.Product
	if err := r.col.FindOne(ctx, ref.Filter()).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *mongoProductRepository) List(ctx context.Context, nameQuery string, page, limit int) ([]models.Product, int64, error) {
	filter := bson.M{}
	if nameQuery != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(nameQuery), "$options": "i"}
	}

	skip := int64((page - 1) * limit)
	findOpts := options.Find().
		SetSkip(skip).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *mongoProductRepository) Save(ctx context.Context, product *models.Product) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, ref ProductRef) error {
	res, err := r.col.DeleteOne(ctx, ref.Filter())
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
