package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/simplexsales/backend/models"
)

// ErrNotFound is returned when a looked-up record does not exist. Services
// decide how to classify it (404, 401 for enumeration-sensitive flows, ...).
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = errors.New("duplicate record")

type UserRepository interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)

	// SetRefreshToken overwrites the stored refresh token; an empty token
	// clears it (logout).
	SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error
	// RotateRefreshToken replaces old with new only if old is still the
	// stored value. Returns false when another rotation won the race.
	RotateRefreshToken(ctx context.Context, id bson.ObjectID, old, new string) (bool, error)

	SetPasswordHash(ctx context.Context, id bson.ObjectID, hash string) error

	SetResetToken(ctx context.Context, id bson.ObjectID, token string, expiry time.Time) error
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	// ConsumeResetToken sets the new hash and clears the token/expiry pair in
	// one write.
	ConsumeResetToken(ctx context.Context, id bson.ObjectID, hash string) error

	SetVerificationToken(ctx context.Context, id bson.ObjectID, token string, expiry time.Time) error
	FindByVerificationToken(ctx context.Context, token string) (*models.User, error)
	// MarkEmailVerified flips the flag and clears the token/expiry pair in
	// one write.
	MarkEmailVerified(ctx context.Context, id bson.ObjectID) error
}

type ProductRepository interface {
	Insert(ctx context.Context, product *models.Product) error
	FindByRef(ctx context.Context, ref ProductRef) (*models.Product, error)
	List(ctx context.Context, nameQuery string, page, limit int) ([]models.Product, int64, error)
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, ref ProductRef) error
}

type QuotationRepository interface {
	Insert(ctx context.Context, qr *models.QuotationRequest) error
	FindByQRID(ctx context.Context, qrID string) (*models.QuotationRequest, error)
	Save(ctx context.Context, qr *models.QuotationRequest) error
	// List returns all requests, newest first.
	List(ctx context.Context) ([]models.QuotationRequest, error)
}

// ProductRef identifies a product by internal ObjectID or public id. A raw
// path parameter is parsed once; the repository resolves whichever side
// matches.
type ProductRef struct {
	oid      bson.ObjectID
	hasOID   bool
	publicID string
}

func ParseProductRef(raw string) ProductRef {
	ref := ProductRef{publicID: raw}
	if oid, err := bson.ObjectIDFromHex(raw); err == nil {
		ref.oid = oid
		ref.hasOID = true
	}
	return ref
}

func RefByID(id bson.ObjectID) ProductRef {
	return ProductRef{oid: id, hasOID: true}
}

func (r ProductRef) Filter() bson.M {
	if r.hasOID {
		return bson.M{"$or": bson.A{
			bson.M{"_id": r.oid},
			bson.M{"publicId": r.publicID},
		}}
	}
	return bson.M{"publicId": r.publicID}
}

// Matches reports whether the ref points at the given product. Used by
// in-memory implementations.
func (r ProductRef) Matches(p *models.Product) bool {
	if r.hasOID && p.ID == r.oid {
		return true
	}
	return r.publicID != "" && p.PublicID == r.publicID
}
