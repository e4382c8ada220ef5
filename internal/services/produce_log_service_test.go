package services_test

import (
	"fmt"
	"testing"

	"datafarm/internal/models"
	"datafarm/internal/repositories"
	"datafarm/internal/schema"
	"datafarm/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProduceLogs(t *testing.T) (*services.ProduceLogService, *MockEventPublisher) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.ProduceLog{}))

	events := new(MockEventPublisher)
	repo := repositories.NewGORMProduceLogRepository(db, schema.DefaultBinding())
	return services.NewProduceLogService(repo, events), events
}

func TestProduceLogAddAndList(t *testing.T) {
	svc, events := setupProduceLogs(t)
	events.On("Publish", "produce.logged", mock.Anything).Return(nil).Times(3)

	_, err := svc.Add(1, "rice", 120.5, "2026-05-01")
	assert.NoError(t, err)
	_, err = svc.Add(1, "strawberry", 30, "2026-07-15")
	assert.NoError(t, err)
	_, err = svc.Add(2, "apple", 80, "2026-06-01")
	assert.NoError(t, err)

	// Only the user's own logs, newest production date first.
	logs, err := svc.List(1)
	assert.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.Equal(t, "strawberry", logs[0].CropName)
	assert.Equal(t, "rice", logs[1].CropName)
	events.AssertExpectations(t)
}

func TestProduceLogAddRejectsBadDate(t *testing.T) {
	svc, _ := setupProduceLogs(t)

	_, err := svc.Add(1, "rice", 10, "01-05-2026")
	assert.Error(t, err)
}

func TestProduceLogDelete(t *testing.T) {
	svc, events := setupProduceLogs(t)
	events.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	entry, err := svc.Add(1, "rice", 10, "2026-05-01")
	assert.NoError(t, err)

	assert.NoError(t, svc.Delete(entry.ID))
	assert.ErrorIs(t, svc.Delete(entry.ID), services.ErrLogNotFound)

	logs, err := svc.List(1)
	assert.NoError(t, err)
	assert.Empty(t, logs)
}
