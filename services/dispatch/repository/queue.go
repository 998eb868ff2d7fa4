package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/openride/dispatch/internal/pkg/constants"
	"github.com/openride/dispatch/internal/pkg/database"
	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/services/dispatch"
)

// priorityBand separates priority classes in the sorted-set score while
// leaving room for a millisecond enqueue timestamp as the tiebreak.
// Lower priority dispatches first; within a priority, FIFO.
const priorityBand = 1e13

// beginProcessingScript pops the queue head into the processing slot in
// one atomic step. Two concurrent dispatch calls can never both observe
// an empty slot and both pop: the EXISTS check and the pop happen under
// the same script execution.
const beginProcessingScript = `
if redis.call('EXISTS', KEYS[2]) == 1 then
	return false
end
local head = redis.call('ZRANGE', KEYS[1], 0, 0)
if #head == 0 then
	return false
end
local tripID = head[1]
redis.call('ZREM', KEYS[1], tripID)
local item = redis.call('HGET', KEYS[3], tripID)
redis.call('HDEL', KEYS[3], tripID)
if not item then
	item = cjson.encode({trip_id = tripID})
end
redis.call('HSET', KEYS[2], 'trip_id', tripID, 'started_at', ARGV[1], 'item', item)
return item
`

type queueRepo struct {
	redisClient *database.RedisClient
}

// NewTripQueueRepository creates a Redis-backed trip queue repository
func NewTripQueueRepository(redisClient *database.RedisClient) dispatch.TripQueueRepo {
	return &queueRepo{redisClient: redisClient}
}

func queueKey(driverID string) string {
	return fmt.Sprintf(constants.KeyDriverQueue, driverID)
}

func itemsKey(driverID string) string {
	return fmt.Sprintf(constants.KeyDriverQueueItems, driverID)
}

func slotKey(driverID string) string {
	return fmt.Sprintf(constants.KeyProcessingSlot, driverID)
}

func queueScore(item models.QueueItem) float64 {
	return float64(item.Priority)*priorityBand + float64(item.EnqueuedAt.UnixMilli())
}

// Enqueue appends an offer ordered by priority then enqueue time.
// A trip already present in this driver's queue is refused.
func (r *queueRepo) Enqueue(ctx context.Context, driverID string, item models.QueueItem) error {
	added, err := r.redisClient.ZAddNX(ctx, queueKey(driverID), queueScore(item), item.TripID)
	if err != nil {
		return fmt.Errorf("failed to enqueue trip offer: %w", err)
	}
	if !added {
		return dispatch.ErrTripAlreadyQueued
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal queue item: %w", err)
	}
	if err := r.redisClient.HSet(ctx, itemsKey(driverID), map[string]interface{}{item.TripID: payload}); err != nil {
		return fmt.Errorf("failed to store queue item payload: %w", err)
	}
	return nil
}

// PeekNext returns the queue head without removing it, or nil when the
// queue is empty. An empty queue and no queue at all are the same state.
func (r *queueRepo) PeekNext(ctx context.Context, driverID string) (*models.QueueItem, error) {
	head, err := r.redisClient.ZRange(ctx, queueKey(driverID), 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to peek queue: %w", err)
	}
	if len(head) == 0 {
		return nil, nil
	}
	return r.loadItem(ctx, driverID, head[0])
}

// BeginProcessing atomically pops the head into the processing slot.
// Returns nil when the queue is empty or the slot is already occupied;
// both are expected concurrent-access outcomes, not faults.
func (r *queueRepo) BeginProcessing(ctx context.Context, driverID string, at time.Time) (*models.QueueItem, error) {
	res, err := r.redisClient.Eval(ctx, beginProcessingScript,
		[]string{queueKey(driverID), slotKey(driverID), itemsKey(driverID)},
		strconv.FormatInt(at.Unix(), 10))
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to begin processing: %w", err)
	}

	payload, ok := res.(string)
	if !ok {
		return nil, nil
	}
	var item models.QueueItem
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue item: %w", err)
	}
	return &item, nil
}

// GetProcessing returns the in-flight offer, or nil when the slot is empty
func (r *queueRepo) GetProcessing(ctx context.Context, driverID string) (*models.ProcessingSlot, error) {
	values, err := r.redisClient.HGetAll(ctx, slotKey(driverID))
	if err != nil {
		return nil, fmt.Errorf("failed to get processing slot: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return slotFromHash(values)
}

// ResolveProcessing clears the slot and returns what occupied it.
// The trip is not re-enqueued here; re-offering is the matcher's job.
func (r *queueRepo) ResolveProcessing(ctx context.Context, driverID string) (*models.ProcessingSlot, error) {
	slot, err := r.GetProcessing(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, nil
	}
	if _, err := r.redisClient.Delete(ctx, slotKey(driverID)); err != nil {
		return nil, fmt.Errorf("failed to clear processing slot: %w", err)
	}
	return slot, nil
}

// QueueSnapshot is a read-only view of one driver's queue and slot
func (r *queueRepo) QueueSnapshot(ctx context.Context, driverID string) (*models.DriverQueueSnapshot, error) {
	tripIDs, err := r.redisClient.ZRange(ctx, queueKey(driverID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}

	snapshot := &models.DriverQueueSnapshot{
		DriverID: driverID,
		Items:    make([]models.QueueItem, 0, len(tripIDs)),
	}
	for _, tripID := range tripIDs {
		item, err := r.loadItem(ctx, driverID, tripID)
		if err != nil {
			return nil, err
		}
		snapshot.Items = append(snapshot.Items, *item)
	}

	slot, err := r.GetProcessing(ctx, driverID)
	if err != nil {
		return nil, err
	}
	snapshot.Processing = slot
	return snapshot, nil
}

// DriverIDsWithQueueData lists drivers with queued items or an occupied
// slot. SCAN-based: absence of keys is the natural empty state.
func (r *queueRepo) DriverIDsWithQueueData(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)

	queueKeys, err := r.redisClient.ScanKeys(ctx, "driver:queue:*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan queue keys: %w", err)
	}
	for _, key := range queueKeys {
		id := strings.TrimPrefix(key, "driver:queue:")
		// Payload hashes share the prefix
		id = strings.TrimPrefix(id, "items:")
		seen[id] = true
	}

	slotKeys, err := r.redisClient.ScanKeys(ctx, "driver:processing:*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan processing keys: %w", err)
	}
	for _, key := range slotKeys {
		seen[strings.TrimPrefix(key, "driver:processing:")] = true
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}

// RemoveOrphanedItems drops payload entries whose trip is no longer in
// the sorted set. Housekeeping for the daily sweep.
func (r *queueRepo) RemoveOrphanedItems(ctx context.Context, driverID string) (int, error) {
	fields, err := r.redisClient.HKeys(ctx, itemsKey(driverID))
	if err != nil {
		return 0, fmt.Errorf("failed to list queue item payloads: %w", err)
	}

	removed := 0
	for _, tripID := range fields {
		_, exists, err := r.redisClient.ZScore(ctx, queueKey(driverID), tripID)
		if err != nil {
			return removed, fmt.Errorf("failed to check queue membership: %w", err)
		}
		if !exists {
			if err := r.redisClient.HDel(ctx, itemsKey(driverID), tripID); err != nil {
				return removed, fmt.Errorf("failed to remove orphaned payload: %w", err)
			}
			removed++
		}
	}
	return removed, nil
}

func (r *queueRepo) loadItem(ctx context.Context, driverID, tripID string) (*models.QueueItem, error) {
	payload, err := r.redisClient.HGet(ctx, itemsKey(driverID), tripID)
	if err == redis.Nil {
		return &models.QueueItem{TripID: tripID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load queue item: %w", err)
	}
	var item models.QueueItem
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue item: %w", err)
	}
	return &item, nil
}

func slotFromHash(values map[string]string) (*models.ProcessingSlot, error) {
	slot := &models.ProcessingSlot{
		TripID: values[constants.FieldTripID],
	}
	if ts, err := strconv.ParseInt(values[constants.FieldStartedAt], 10, 64); err == nil && ts > 0 {
		slot.StartedAt = time.Unix(ts, 0)
	}
	if payload := values[constants.FieldItem]; payload != "" {
		var item models.QueueItem
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal slot item: %w", err)
		}
		slot.Item = &item
	}
	return slot, nil
}
