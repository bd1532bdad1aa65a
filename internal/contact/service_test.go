package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/db"
	"github.com/UsamaZuberi/portfolio-v2/internal/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	saved []*db.ContactMessage
	err   error
}

func (m *memoryStore) SaveContactMessage(_ context.Context, msg *db.ContactMessage) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, msg)
	return nil
}

func TestService_SubmitWithoutStore(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(nil, nil, m)
	assert.False(t, svc.Archiving())

	receipt, err := svc.Submit(context.Background(), validForm(), Meta{})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, receipt.ID)
	assert.False(t, receipt.ReceivedAt.IsZero())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContactSubmissions.WithLabelValues(OutcomeAccepted)))
}

func TestService_SubmitArchivesNormalizedMessage(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, nil, nil)
	fixed := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	form := Form{FullName: "  Jane Doe ", Email: "jane@example.com", Message: "  Let's build something great.  "}
	receipt, err := svc.Submit(context.Background(), form, Meta{RemoteAddr: "203.0.113.7", UserAgent: "test"})
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	saved := store.saved[0]
	assert.Equal(t, receipt.ID, saved.ID)
	assert.Equal(t, fixed, saved.ReceivedAt)
	assert.Equal(t, "Jane Doe", saved.FullName)
	assert.Equal(t, "Let's build something great.", saved.Message)
	assert.Equal(t, "203.0.113.7", saved.RemoteAddr)
	assert.Equal(t, "test", saved.UserAgent)
}

func TestService_SubmitInvalid(t *testing.T) {
	store := &memoryStore{}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(store, nil, m)

	_, err := svc.Submit(context.Background(), Form{FullName: "Jane"}, Meta{})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, store.saved)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContactSubmissions.WithLabelValues(OutcomeInvalid)))
}

func TestService_SubmitStoreFailure(t *testing.T) {
	store := &memoryStore{err: errors.New("connection reset")}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(store, nil, m)

	_, err := svc.Submit(context.Background(), validForm(), Meta{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to archive contact message")

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContactSubmissions.WithLabelValues(OutcomeError)))
}
