package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/services/dispatch"
)

func makeItem(tripID string, priority int, enqueuedAt time.Time) models.QueueItem {
	return models.QueueItem{
		TripID:     tripID,
		CustomerID: "customer-" + tripID,
		Priority:   priority,
		EnqueuedAt: enqueuedAt,
		Pickup:     models.GeoLocation{Latitude: -6.175392, Longitude: 106.827153},
	}
}

func TestEnqueue_DuplicateRefused(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewTripQueueRepository(redisClient)
	ctx := context.Background()

	assert.NoError(t, repo.Enqueue(ctx, "driver-1", makeItem("trip-1", 1, time.Now())))
	err := repo.Enqueue(ctx, "driver-1", makeItem("trip-1", 0, time.Now()))
	assert.ErrorIs(t, err, dispatch.ErrTripAlreadyQueued)
}

func TestBeginProcessing_PriorityThenFIFO(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewTripQueueRepository(redisClient)
	ctx := context.Background()
	base := time.Now()

	// Two low-priority offers around one high-priority offer
	assert.NoError(t, repo.Enqueue(ctx, "driver-1", makeItem("trip-a", 2, base)))
	assert.NoError(t, repo.Enqueue(ctx, "driver-1", makeItem("trip-b", 1, base.Add(time.Second))))
	assert.NoError(t, repo.Enqueue(ctx, "driver-1", makeItem("trip-c", 2, base.Add(2*time.Second))))

	item, err := repo.BeginProcessing(ctx, "driver-1", time.Now())
	assert.NoError(t, err)
	assert.Equal(t, "trip-b", item.TripID)
	assert.Equal(t, "customer-trip-b", item.CustomerID)

	_, err = repo.ResolveProcessing(ctx, "driver-1")
	assert.NoError(t, err)

	// Same priority drains in enqueue order
	item, err = repo.BeginProcessing(ctx, "driver-1", time.Now())
	assert.NoError(t, err)
	assert.Equal(t, "trip-a", item.TripID)

	_, err = repo.ResolveProcessing(ctx, "driver-1")
	assert.NoError(t, err)

	item, err = repo.BeginProcessing(ctx, "driver-1", time.Now())
	assert.NoError(t, err)
	assert.Equal(t, "trip-c", item.TripID)
}

func TestBeginProcessing_SlotIsExclusive(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewTripQueueRepository(redisClient)
	ctx := context.Background()

	assert.NoError(t, repo.Enqueue(ctx, "driver-1", makeItem("trip-1", 1, time.Now())))
	assert.NoError(t, repo.Enqueue(ctx, "driver-1", makeItem("trip-2", 1, time.Now().Add(time.Second))))

	item, err := repo.BeginProcessing(ctx, "driver-1", time.Now())
	assert.NoError(t, err)
	assert.Equal(t, "trip-1", item.TripID)

	// Second pop is refused while the slot is occupied
	item, err = repo.BeginProcessing(ctx, "driver-1", time.Now())
	assert.NoError(t, err)
	assert.Nil(t, item)

	slot, err := repo.GetProcessing(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, "trip-1", slot.TripID)
	assert.NotNil(t, slot.Item)
	assert.Equal(t, "trip-1", slot.Item.TripID)
}

func TestBeginProcessing_EmptyQueue(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewTripQueueRepository(redisClient)
	ctx := context.Background()

	item, err := repo.BeginProcessing(ctx, "driver-1", time.Now())
	assert.NoError(t, err)
	assert.Nil(t, item)
}

func TestResolveProcessing(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewTripQueueRepository(redisClient)
	ctx := context.Background()

	// Empty slot resolves to nothing
	slot, err := repo.ResolveProcessing(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Nil(t, slot)

	assert.NoError(t, repo.Enqueue(ctx, "driver-1", makeItem("trip-1", 1, time.Now())))
	_, err = repo.BeginProcessing(ctx, "driver-1", time.Now())
	assert.NoError(t, err)

	slot, err = repo.ResolveProcessing(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, "trip-1", slot.TripID)

	// Slot is free again
	current, err := repo.GetProcessing(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Nil(t, current)
}

func TestPeekNext(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewTripQueueRepository(redisClient)
	ctx := context.Background()

	item, err := repo.PeekNext(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Nil(t, item)

	assert.NoError(t, repo.Enqueue(ctx, "driver-1", makeItem("trip-1", 1, time.Now())))

	item, err = repo.PeekNext(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, "trip-1", item.TripID)

	// Peek does not consume
	item, err = repo.PeekNext(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, "trip-1", item.TripID)
}

func TestQueueSnapshotAndDriverIDs(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewTripQueueRepository(redisClient)
	ctx := context.Background()
	base := time.Now()

	assert.NoError(t, repo.Enqueue(ctx, "driver-1", makeItem("trip-1", 1, base)))
	assert.NoError(t, repo.Enqueue(ctx, "driver-1", makeItem("trip-2", 2, base.Add(time.Second))))
	assert.NoError(t, repo.Enqueue(ctx, "driver-2", makeItem("trip-3", 1, base)))

	_, err := repo.BeginProcessing(ctx, "driver-2", base)
	assert.NoError(t, err)

	snapshot, err := repo.QueueSnapshot(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Len(t, snapshot.Items, 2)
	assert.Equal(t, "trip-1", snapshot.Items[0].TripID)
	assert.Nil(t, snapshot.Processing)

	// driver-2 drained its queue but occupies a slot
	snapshot, err = repo.QueueSnapshot(ctx, "driver-2")
	assert.NoError(t, err)
	assert.Empty(t, snapshot.Items)
	assert.NotNil(t, snapshot.Processing)

	ids, err := repo.DriverIDsWithQueueData(ctx)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"driver-1", "driver-2"}, ids)
}

func TestRemoveOrphanedItems(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewTripQueueRepository(redisClient)
	ctx := context.Background()

	assert.NoError(t, repo.Enqueue(ctx, "driver-1", makeItem("trip-1", 1, time.Now())))

	// Plant a payload with no queue entry
	err := redisClient.HSet(ctx, "driver:queue:items:driver-1", map[string]interface{}{
		"trip-ghost": `{"trip_id":"trip-ghost"}`,
	})
	assert.NoError(t, err)

	removed, err := repo.RemoveOrphanedItems(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, removed)

	// Live payload survived
	item, err := repo.PeekNext(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, "customer-trip-1", item.CustomerID)
}
