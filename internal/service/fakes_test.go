package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/domain"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/repository"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == strings.ToLower(email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memCertRepo struct {
	mu    sync.Mutex
	certs map[string]*domain.Certificate
}

func newMemCertRepo() *memCertRepo {
	return &memCertRepo{certs: make(map[string]*domain.Certificate)}
}

func (r *memCertRepo) Create(_ context.Context, cert *domain.Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cert.ID = uuid.NewString()
	cert.CreatedAt = time.Now()
	cert.UpdatedAt = cert.CreatedAt
	clone := *cert
	r.certs[cert.ID] = &clone
	return nil
}

func (r *memCertRepo) Update(_ context.Context, cert *domain.Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.certs[cert.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *cert
	r.certs[cert.ID] = &clone
	return nil
}

func (r *memCertRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.certs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.certs, id)
	return nil
}

func (r *memCertRepo) GetByID(_ context.Context, id string) (*domain.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cert, ok := r.certs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *cert
	return &clone, nil
}

func (r *memCertRepo) List(_ context.Context, filter repository.CertificateFilter) ([]domain.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Certificate
	for _, cert := range r.certs {
		if filter.OwnerID != nil && cert.CreatedBy != *filter.OwnerID {
			continue
		}
		if filter.CreatedBy != nil && cert.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.Type != nil && cert.Type != *filter.Type {
			continue
		}
		if filter.SerialNo != nil && cert.SerialNo != *filter.SerialNo {
			continue
		}
		if filter.Customer != nil && !strings.Contains(strings.ToLower(cert.IssuedTo), strings.ToLower(*filter.Customer)) {
			continue
		}
		out = append(out, *cert)
	}
	return out, nil
}

func (r *memCertRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.certs)), nil
}

func (r *memCertRepo) SetApproved(_ context.Context, id string, approvedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cert, ok := r.certs[id]
	if !ok || cert.Approved {
		return false, nil
	}
	cert.Approved = true
	cert.ApprovedAt = &approvedAt
	return true, nil
}

// captureSender records the last dispatched code so tests can replay it.
type captureSender struct {
	mu       sync.Mutex
	lastCode string
	fail     bool
}

func (s *captureSender) Send(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("gateway unreachable")
	}
	s.lastCode = code
	return nil
}

func (s *captureSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCode
}
