package contact

import (
	"context"
	"fmt"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/db"
	"github.com/UsamaZuberi/portfolio-v2/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Submission outcomes recorded in metrics.
const (
	OutcomeAccepted = "accepted"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// MessageStore archives accepted submissions.
type MessageStore interface {
	SaveContactMessage(ctx context.Context, m *db.ContactMessage) error
}

// Receipt identifies an accepted submission.
type Receipt struct {
	ID         uuid.UUID `json:"id"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Meta is request context stored alongside a submission.
type Meta struct {
	RemoteAddr string
	UserAgent  string
}

// Service validates submissions, logs them and optionally archives them.
type Service struct {
	validator *Validator
	store     MessageStore
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService creates a service. store may be nil, in which case messages are only logged.
func NewService(store MessageStore, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		validator: NewValidator(),
		store:     store,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Archiving reports whether accepted messages are persisted.
func (s *Service) Archiving() bool {
	return s.store != nil
}

// Submit validates form and records it.
// Validation failures return *ValidationError.
func (s *Service) Submit(ctx context.Context, form Form, meta Meta) (Receipt, error) {
	if err := s.validator.Validate(form); err != nil {
		s.metrics.RecordContact(OutcomeInvalid)
		return Receipt{}, err
	}

	form = form.Normalized()
	receipt := Receipt{ID: uuid.New(), ReceivedAt: s.now().UTC()}

	s.logger.Info("contact form submission",
		zap.String("id", receipt.ID.String()),
		zap.String("full_name", form.FullName),
		zap.String("email", form.Email),
		zap.Int("message_length", len(form.Message)),
	)

	if s.store != nil {
		msg := &db.ContactMessage{
			ID:         receipt.ID,
			FullName:   form.FullName,
			Email:      form.Email,
			Message:    form.Message,
			RemoteAddr: meta.RemoteAddr,
			UserAgent:  meta.UserAgent,
			ReceivedAt: receipt.ReceivedAt,
		}
		if err := s.store.SaveContactMessage(ctx, msg); err != nil {
			s.metrics.RecordContact(OutcomeError)
			return Receipt{}, fmt.Errorf("failed to archive contact message: %w", err)
		}
	}

	s.metrics.RecordContact(OutcomeAccepted)
	return receipt, nil
}
