package chathub_test

import (
	"errors"
	"testing"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/chathub"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCounters_ReconcileRewritesCache(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	authoritative := map[string]int64{"chat-1": 3, "chat-2": 1}
	storageMock.On("CountUnreadFromDB", "user-1").Return(authoritative, nil)
	storageMock.On("SetUnreadCounts", "user-1", authoritative).Return(nil)
	counters := chathub.NewCounters(storageMock)

	// Act
	counts, err := counters.Reconcile("user-1")

	// Assert: the database counts replace the cache verbatim
	assert.NoError(t, err)
	assert.Equal(t, authoritative, counts)
	storageMock.AssertExpectations(t)
}

func TestCounters_ReconcileDatabaseError(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	storageMock.On("CountUnreadFromDB", "user-1").Return(nil, errors.New("db down"))
	counters := chathub.NewCounters(storageMock)

	// Act
	counts, err := counters.Reconcile("user-1")

	// Assert: the cache is left alone when the source of truth is unreachable
	assert.Error(t, err)
	assert.Nil(t, counts)
	storageMock.AssertNotCalled(t, "SetUnreadCounts")
}

func TestRequestCounter_ApplyEvents(t *testing.T) {
	// Arrange
	rc := &chathub.RequestCounter{}

	// Act & Assert
	rc.Apply(models.EventNewRequest)
	rc.Apply(models.EventNewRequest)
	assert.Equal(t, 2, rc.Value())

	rc.Apply(models.EventRequestAccepted)
	assert.Equal(t, 1, rc.Value())

	rc.Apply(models.EventRequestRejected)
	assert.Equal(t, 0, rc.Value())
}

func TestRequestCounter_NeverNegative(t *testing.T) {
	// Arrange
	rc := &chathub.RequestCounter{}

	// Act: a decrement with nothing counted means a missed event
	rc.Apply(models.EventRequestRejected)
	rc.Apply(models.EventRequestAccepted)

	// Assert
	assert.Equal(t, 0, rc.Value())
}

func TestRequestCounter_SeedReconciles(t *testing.T) {
	// Arrange
	rc := &chathub.RequestCounter{}
	rc.Apply(models.EventNewRequest)

	// Act: the authoritative pending list says 5, drift is overwritten
	rc.Seed(5)

	// Assert
	assert.Equal(t, 5, rc.Value())
	rc.Apply(models.EventRequestAccepted)
	assert.Equal(t, 4, rc.Value())
}

func TestRequestCounter_IgnoresUnrelatedEvents(t *testing.T) {
	// Arrange
	rc := &chathub.RequestCounter{}
	rc.Seed(2)

	// Act
	rc.Apply(models.EventNewMessage)
	rc.Apply(models.EventTyping)

	// Assert
	assert.Equal(t, 2, rc.Value())
}
