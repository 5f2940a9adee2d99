package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/simplexsales/backend/apperr"
	"github.com/simplexsales/backend/models"
	"github.com/simplexsales/backend/notify"
	"github.com/simplexsales/backend/repository"
	"github.com/simplexsales/backend/utils"
)

type QuotationService struct {
	quotations repository.QuotationRepository
	products   repository.ProductRepository
	users      repository.UserRepository
	notifier   notify.Notifier
}

func NewQuotationService(
	quotations repository.QuotationRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	notifier notify.Notifier,
) *QuotationService {
	return &QuotationService{quotations: quotations, products: products, users: users, notifier: notifier}
}

// Create opens a request in the pending state, snapshotting the requester and
// product display names as they are right now.
func (s *QuotationService) Create(ctx context.Context, userID, productRef, requestText string) (*models.QuotationRequest, error) {
	requestText = strings.TrimSpace(requestText)
	if requestText == "" {
		return nil, apperr.BadRequest("requestText is required")
	}

	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByRef(ctx, repository.ParseProductRef(productRef))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}

	now := time.Now().UTC()
	qr := &models.QuotationRequest{
		QRID:        utils.GeneratePublicID("QR"),
		UserID:      user.ID,
		UserName:    user.DisplayName(),
		ProductID:   product.ID,
		ProductName: product.Name,
		RequestText: requestText,
		Status:      models.QuotationStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.quotations.Insert(ctx, qr); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Your quotation request (%s) has been submitted for product %s.", qr.QRID, product.Name)
	s.notifyRequester(ctx, user.Email, user.Phone, "Quotation request received", msg)

	return qr, nil
}

// Respond records the admin response and moves the request to responded.
func (s *QuotationService) Respond(ctx context.Context, qrID, adminResponse string) (*models.QuotationRequest, error) {
	adminResponse = strings.TrimSpace(adminResponse)
	if adminResponse == "" {
		return nil, apperr.BadRequest("adminResponse is required")
	}

	qr, err := s.quotations.FindByQRID(ctx, qrID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Quotation request not found")
		}
		return nil, err
	}

	if qr.Status != models.QuotationStatusResponded && !qr.Status.CanTransitionTo(models.QuotationStatusResponded) {
		return nil, apperr.BadRequest("Quotation request is closed")
	}

	qr.AdminResponse = adminResponse
	qr.Status = models.QuotationStatusResponded
	qr.UpdatedAt = time.Now().UTC()

	if err := s.quotations.Save(ctx, qr); err != nil {
		return nil, err
	}

	if user, err := s.users.FindByID(ctx, qr.UserID); err == nil {
		s.notifyRequester(ctx, user.Email, user.Phone, "Quotation response", adminResponse)
	}

	return qr, nil
}

func (s *QuotationService) List(ctx context.Context) ([]models.QuotationRequest, error) {
	return s.quotations.List(ctx)
}

func (s *QuotationService) notifyRequester(ctx context.Context, email, phone, subject, msg string) {
	if email != "" {
		if err := s.notifier.SendEmail(ctx, email, subject, msg); err != nil {
			log.Printf("notify: email to %s failed: %v", email, err)
		}
	}
	if phone != "" {
		if err := s.notifier.SendSMS(ctx, phone, msg); err != nil {
			log.Printf("notify: sms to %s failed: %v", phone, err)
		}
	}
}
