package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/openride/dispatch/internal/pkg/database"
	"github.com/openride/dispatch/internal/pkg/lock"
	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/services/dispatch"
	"github.com/openride/dispatch/services/dispatch/repository"
)

// fakeGateway records outbound events instead of publishing them
type fakeGateway struct {
	mu            sync.Mutex
	offline       []*models.DriverOfflineEvent
	resolved      []*models.OfferResolvedEvent
	locations     []*models.LocationEvent
	notifications []notification
}

type notification struct {
	userID  string
	event   string
	payload interface{}
}

func (g *fakeGateway) PublishDriverOffline(ctx context.Context, event *models.DriverOfflineEvent) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.offline = append(g.offline, event)
	return nil
}

func (g *fakeGateway) PublishOfferResolved(ctx context.Context, event *models.OfferResolvedEvent) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resolved = append(g.resolved, event)
	return nil
}

func (g *fakeGateway) PublishLocationUpdate(ctx context.Context, event *models.LocationEvent) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locations = append(g.locations, event)
	return nil
}

func (g *fakeGateway) NotifyUser(userID, event string, payload interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notifications = append(g.notifications, notification{userID: userID, event: event, payload: payload})
}

func (g *fakeGateway) notificationsFor(userID string) []notification {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []notification
	for _, n := range g.notifications {
		if n.userID == userID {
			out = append(out, n)
		}
	}
	return out
}

type testEnv struct {
	uc          *DispatchUC
	gw          *fakeGateway
	statusRepo  dispatch.DriverStatusRepo
	queueRepo   dispatch.TripQueueRepo
	redisClient *database.RedisClient
	mr          *miniredis.Miniredis
}

func testConfig() *models.Config {
	return &models.Config{
		Dispatch: models.DispatchConfig{
			HeartbeatInterval:    30,
			HeartbeatTimeout:     120,
			BackgroundDemoteSec:  300,
			OfferResponseTimeout: 30,
			LockTTL:              30,
			LockRetries:          1,
			LockRetryDelayMs:     10,
			LocationTTLHours:     24,
		},
	}
}

func setupUsecase(t *testing.T) *testEnv {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	redisClient := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	cfg := testConfig()
	statusRepo := repository.NewDriverStatusRepository(redisClient)
	queueRepo := repository.NewTripQueueRepository(redisClient)
	locationRepo := repository.NewLocationRepository(redisClient, 24*time.Hour)
	gw := &fakeGateway{}

	uc := NewDispatchUC(cfg, statusRepo, queueRepo, locationRepo, lock.NewManager(redisClient), gw)
	return &testEnv{
		uc:          uc,
		gw:          gw,
		statusRepo:  statusRepo,
		queueRepo:   queueRepo,
		redisClient: redisClient,
		mr:          mr,
	}
}
