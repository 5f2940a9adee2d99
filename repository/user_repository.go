package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/simplexsales/backend/models"
	"github.com/simplexsales/backend/utils"
)

type mongoUserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{col: db.Collection("users")}
}

func (r *mongoUserRepository) Insert(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"phone": phone},
	}}
	count, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoUserRepository) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	skip := int64((page - 1) * limit)
	findOpts := options.Find().
		SetSkip(skip).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.col.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *mongoUserRepository) SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error {
	update := bson.M{
		"$set": bson.M{"refreshToken": token, "updatedAt": time.Now().UTC()},
	}
	if token == "" {
		update = bson.M{
			"$unset": bson.M{"refreshToken": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
	}
	res, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) RotateRefreshToken(ctx context.Context, id bson.ObjectID, old, new string) (bool, error) {
	// Conditional on the old value still being stored: concurrent rotations
	// with the same stale token cannot both succeed.
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "refreshToken": old},
		bson.M{"$set": bson.M{"refreshToken": new, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *mongoUserRepository) SetPasswordHash(ctx context.Context, id bson.ObjectID, hash string) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"passwordHash": hash, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) SetResetToken(ctx context.Context, id bson.ObjectID, token string, expiry time.Time) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"forgotPasswordToken":  token,
			"forgotPasswordExpiry": expiry,
			"updatedAt":            time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"forgotPasswordToken": token})
}

func (r *mongoUserRepository) ConsumeResetToken(ctx context.Context, id bson.ObjectID, hash string) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"passwordHash": hash, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"forgotPasswordToken": "", "forgotPasswordExpiry": ""},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) SetVerificationToken(ctx context.Context, id bson.ObjectID, token string, expiry time.Time) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"emailVerificationToken":  token,
			"emailVerificationExpiry": expiry,
			"updatedAt":               time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) FindByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"emailVerificationToken": token})
}

func (r *mongoUserRepository) MarkEmailVerified(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"isEmailVerified": true, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"emailVerificationToken": "", "emailVerificationExpiry": ""},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
