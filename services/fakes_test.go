package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/simplexsales/backend/models"
	"github.com/simplexsales/backend/repository"
)

// In-memory repository fakes backing the workflow tests.

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[bson.ObjectID]*models.User)}
}

func (r *memoryUserRepo) Insert(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Phone == user.Phone {
			return repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memoryUserRepo) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Email == email })
}

func (r *memoryUserRepo) FindByResetToken(_ context.Context, token string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.ForgotPasswordToken == token })
}

func (r *memoryUserRepo) FindByVerificationToken(_ context.Context, token string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.EmailVerificationToken == token })
}

func (r *memoryUserRepo) findBy(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepo) ExistsByEmailOrPhone(_ context.Context, email, phone string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email || u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepo) List(_ context.Context, page, limit int) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *memoryUserRepo) SetRefreshToken(_ context.Context, id bson.ObjectID, token string) error {
	return r.update(id, func(u *models.User) { u.RefreshToken = token })
}

func (r *memoryUserRepo) RotateRefreshToken(_ context.Context, id bson.ObjectID, old, new string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.RefreshToken != old {
		return false, nil
	}
	u.RefreshToken = new
	return true, nil
}

func (r *memoryUserRepo) SetPasswordHash(_ context.Context, id bson.ObjectID, hash string) error {
	return r.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (r *memoryUserRepo) SetResetToken(_ context.Context, id bson.ObjectID, token string, expiry time.Time) error {
	return r.update(id, func(u *models.User) {
		u.ForgotPasswordToken = token
		u.ForgotPasswordExpiry = &expiry
	})
}

func (r *memoryUserRepo) ConsumeResetToken(_ context.Context, id bson.ObjectID, hash string) error {
	return r.update(id, func(u *models.User) {
		u.PasswordHash = hash
		u.ForgotPasswordToken = ""
		u.ForgotPasswordExpiry = nil
	})
}

func (r *memoryUserRepo) SetVerificationToken(_ context.Context, id bson.ObjectID, token string, expiry time.Time) error {
	return r.update(id, func(u *models.User) {
		u.EmailVerificationToken = token
		u.EmailVerificationExpiry = &expiry
	})
}

func (r *memoryUserRepo) MarkEmailVerified(_ context.Context, id bson.ObjectID) error {
	return r.update(id, func(u *models.User) {
		u.IsEmailVerified = true
		u.EmailVerificationToken = ""
		u.EmailVerificationExpiry = nil
	})
}

func (r *memoryUserRepo) update(id bson.ObjectID, apply func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	apply(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

type memoryProductRepo struct {
	mu       sync.Mutex
	products []*models.Product
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{}
}

func (r *memoryProductRepo) Insert(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = bson.NewObjectID()
	}
	cp := *product
	r.products = append(r.products, &cp)
	return nil
}

func (r *memoryProductRepo) FindByRef(_ context.Context, ref repository.ProductRef) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if ref.Matches(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryProductRepo) List(_ context.Context, nameQuery string, page, limit int) ([]models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if nameQuery == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(nameQuery)) {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryProductRepo) Save(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.products {
		if p.ID == product.ID {
			cp := *product
			r.products[i] = &cp
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memoryProductRepo) Delete(_ context.Context, ref repository.ProductRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.products {
		if ref.Matches(p) {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memoryQuotationRepo struct {
	mu       sync.Mutex
	requests []*models.QuotationRequest
}

func newMemoryQuotationRepo() *memoryQuotationRepo {
	return &memoryQuotationRepo{}
}

func (r *memoryQuotationRepo) Insert(_ context.Context, qr *models.QuotationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if qr.ID.IsZero() {
		qr.ID = bson.NewObjectID()
	}
	cp := *qr
	r.requests = append(r.requests, &cp)
	return nil
}

func (r *memoryQuotationRepo) FindByQRID(_ context.Context, qrID string) (*models.QuotationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, qr := range r.requests {
		if qr.QRID == qrID {
			cp := *qr
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryQuotationRepo) Save(_ context.Context, qr *models.QuotationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.requests {
		if existing.ID == qr.ID {
			cp := *qr
			r.requests[i] = &cp
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memoryQuotationRepo) List(_ context.Context) ([]models.QuotationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// newest first
	out := make([]models.QuotationRequest, 0, len(r.requests))
	for i := len(r.requests) - 1; i >= 0; i-- {
		out = append(out, *r.requests[i])
	}
	return out, nil
}

// recordingNotifier captures sends instead of delivering them.
type notification struct {
	kind    string
	to      string
	subject string
	body    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) SendEmail(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{kind: "email", to: to, subject: subject, body: body})
	return nil
}

func (n *recordingNotifier) SendSMS(_ context.Context, phone, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{kind: "sms", to: phone, body: message})
	return nil
}

func (n *recordingNotifier) emailsWithSubject(subject string) []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification, 0)
	for _, s := range n.sent {
		if s.kind == "email" && s.subject == subject {
			out = append(out, s)
		}
	}
	return out
}
