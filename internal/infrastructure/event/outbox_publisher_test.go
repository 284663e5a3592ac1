package event

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workforce/backend/internal/domain/shared"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupPublisherMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func newTestPublisher() *OutboxPublisher {
	serializer := NewEventSerializer()
	serializer.Register("TestEvent", &testEvent{})
	return NewOutboxPublisher(serializer)
}

func TestOutboxPublisher_PublishWithTx(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name   string
		events []shared.DomainEvent
	}{
		{"single event", []shared.DomainEvent{newTestEvent("TestEvent", tenantID)}},
		{"batch", []shared.DomainEvent{
			newTestEvent("TestEvent", tenantID),
			newTestEvent("TestEvent", tenantID),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupPublisherMockDB(t)
			publisher := newTestPublisher()

			rows := sqlmock.NewRows([]string{"created_at", "updated_at"})
			for _, e := range tt.events {
				rows.AddRow(e.OccurredAt(), e.OccurredAt())
			}
			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).WillReturnRows(rows)
			mock.ExpectCommit()

			err := db.Transaction(func(tx *gorm.DB) error {
				return publisher.PublishWithTx(context.Background(), tx, tt.events...)
			})
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOutboxPublisher_NoEventsWritesNothing(t *testing.T) {
	db, mock := setupPublisherMockDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := db.Transaction(func(tx *gorm.DB) error {
		return newTestPublisher().PublishWithTx(context.Background(), tx)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxPublisher_UnregisteredEventAbortsTransaction(t *testing.T) {
	db, mock := setupPublisherMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := db.Transaction(func(tx *gorm.DB) error {
		return newTestPublisher().PublishWithTx(context.Background(), tx, newTestEvent("Unknown", uuid.New()))
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event type Unknown is not registered")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxPublisher_RollbackDiscardsEntries(t *testing.T) {
	db, mock := setupPublisherMockDB(t)
	event := newTestEvent("TestEvent", uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(event.OccurredAt(), event.OccurredAt()))
	mock.ExpectRollback()

	aggregateErr := errors.New("version conflict")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := newTestPublisher().PublishWithTx(context.Background(), tx, event); err != nil {
			return err
		}
		return aggregateErr
	})
	assert.ErrorIs(t, err, aggregateErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxPublisher_SaveEventsRequiresGormTx(t *testing.T) {
	err := newTestPublisher().SaveEvents(context.Background(), "not a tx", newTestEvent("TestEvent", uuid.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "txProvider must be a *gorm.DB")
}
