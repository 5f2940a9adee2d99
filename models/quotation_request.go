package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type QuotationStatus string

const (
	QuotationStatusPending   QuotationStatus = "pending"
	QuotationStatusResponded QuotationStatus = "responded"
	QuotationStatusClosed    QuotationStatus = "closed"
)

// CanTransitionTo reports whether moving from s to next is allowed.
// pending is the initial state and is never re-entered; closed is terminal.
func (s QuotationStatus) CanTransitionTo(next QuotationStatus) bool {
	switch s {
	case QuotationStatusPending:
		return next == QuotationStatusResponded || next == QuotationStatusClosed
	case QuotationStatusResponded:
		return next == QuotationStatusClosed
	default:
		return false
	}
}

type QuotationRequest struct {
	ID bson.ObjectID `bson:"_id,omitempty" json:"id"`

	// QRID is the human-readable identifier (QR-...), distinct from _id.
	QRID string `bson:"qrId" json:"qrId"`

	UserID bson.ObjectID `bson:"userId" json:"userId"`
	// UserName and ProductName are snapshots taken at creation time;
	// they do not follow later renames of the source records.
	UserName    string        `bson:"userName" json:"userName"`
	ProductID   bson.ObjectID `bson:"productId" json:"productId"`
	ProductName string        `bson:"productName" json:"productName"`

	RequestText   string          `bson:"requestText" json:"requestText"`
	Status        QuotationStatus `bson:"status" json:"status"`
	AdminResponse string          `bson:"adminResponse" json:"adminResponse"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
