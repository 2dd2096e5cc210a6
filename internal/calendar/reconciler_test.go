package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rental-calendar-hub/backend/internal/storage"
	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

// feedServer serves a swappable ICS body so tests can change the feed
// between reconciliation runs.
type feedServer struct {
	*httptest.Server

	mu     sync.Mutex
	body   string
	status int
}

func newFeedServer(t *testing.T, body string) *feedServer {
	t.Helper()

	fs := &feedServer{body: body, status: http.StatusOK}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		body, status := fs.body, fs.status
		fs.mu.Unlock()

		if status != http.StatusOK {
			http.Error(w, "feed unavailable", status)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(body))
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *feedServer) set(body string, status int) {
	fs.mu.Lock()
	fs.body = body
	fs.status = status
	fs.mu.Unlock()
}

type syncEnv struct {
	connectionRepo  *storage.ConnectionRepository
	propertyRepo    *storage.PropertyRepository
	reservationRepo *storage.ReservationRepository
	syncLogRepo     *storage.SyncLogRepository
	reconciler      *Reconciler
	unitID          string
	propertyID      string
}

func newSyncEnv(t *testing.T) *syncEnv {
	t.Helper()

	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.RunMigrations(db, zap.NewNop()))

	ctx := context.Background()
	env := &syncEnv{
		connectionRepo:  storage.NewConnectionRepository(db),
		propertyRepo:    storage.NewPropertyRepository(db),
		reservationRepo: storage.NewReservationRepository(db),
		syncLogRepo:     storage.NewSyncLogRepository(db),
	}

	property := &models.Property{Name: "Lakeview Cabin"}
	require.NoError(t, env.propertyRepo.Create(ctx, property))
	env.propertyID = property.ID

	unit := &models.Unit{PropertyID: property.ID, Name: "Lakeview Cabin", IsPrimary: true}
	require.NoError(t, env.propertyRepo.CreateUnit(ctx, unit))
	env.unitID = unit.ID

	env.reconciler = NewReconciler(
		env.connectionRepo, env.propertyRepo, env.reservationRepo, env.syncLogRepo,
		NewFetcher(2*time.Second), zap.NewNop(),
	)

	return env
}

func (env *syncEnv) addConnection(t *testing.T, channel models.Channel, feedURL string, calendarRead bool) *models.ChannelConnection {
	t.Helper()

	conn := &models.ChannelConnection{
		PropertyID:   env.propertyID,
		Channel:      channel,
		FeedURL:      feedURL,
		Capabilities: models.Capabilities{CalendarRead: calendarRead},
	}
	require.NoError(t, env.connectionRepo.Create(context.Background(), conn))
	return conn
}

func twoStayFeed() string {
	return icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Airbnb Inc//Hosting Calendar 1.0//EN",
		"BEGIN:VEVENT",
		"UID:stay-1@airbnb.com",
		"SUMMARY:Jane Smith",
		"DTSTART;VALUE=DATE:20260401",
		"DTEND;VALUE=DATE:20260405",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:stay-2@airbnb.com",
		"SUMMARY:Tom Park",
		"DTSTART;VALUE=DATE:20260410",
		"DTEND;VALUE=DATE:20260413",
		"END:VEVENT",
		"END:VCALENDAR",
	)
}

func TestReconcile_CreatesReservationsFromFeed(t *testing.T) {
	env := newSyncEnv(t)
	feed := newFeedServer(t, twoStayFeed())
	conn := env.addConnection(t, models.ChannelAirbnb, feed.URL, true)
	ctx := context.Background()

	result, err := env.reconciler.Reconcile(ctx, conn.ID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.EventsFound)
	assert.Equal(t, 2, result.EventsCreated)
	assert.Equal(t, 0, result.EventsUpdated)

	reservations, err := env.reservationRepo.ListByUnit(ctx, env.unitID)
	require.NoError(t, err)
	require.Len(t, reservations, 2)
	for _, res := range reservations {
		assert.Equal(t, models.ChannelAirbnb, res.Channel)
		assert.Equal(t, models.ReservationStatusConfirmed, res.Status)
		require.NotNil(t, res.ExternalID)
	}

	// The connection now carries a last-sync timestamp and no error.
	updated, err := env.connectionRepo.GetByID(ctx, conn.ID)
	require.NoError(t, err)
	assert.NotNil(t, updated.LastSyncAt)
	assert.Nil(t, updated.LastSyncError)

	logs, err := env.syncLogRepo.ListByConnection(ctx, conn.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.SyncStatusSuccess, logs[0].Status)
	assert.Equal(t, 2, logs[0].EventsCreated)
}

func TestReconcile_SecondRunIsNoop(t *testing.T) {
	env := newSyncEnv(t)
	feed := newFeedServer(t, twoStayFeed())
	conn := env.addConnection(t, models.ChannelAirbnb, feed.URL, true)
	ctx := context.Background()

	_, err := env.reconciler.Reconcile(ctx, conn.ID)
	require.NoError(t, err)

	result, err := env.reconciler.Reconcile(ctx, conn.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.EventsFound)
	assert.Equal(t, 0, result.EventsCreated)
	assert.Equal(t, 0, result.EventsUpdated)

	reservations, err := env.reservationRepo.ListByUnit(ctx, env.unitID)
	require.NoError(t, err)
	assert.Len(t, reservations, 2)
}

func TestReconcile_UpdatesChangedStayPreservingStatus(t *testing.T) {
	env := newSyncEnv(t)
	feed := newFeedServer(t, twoStayFeed())
	conn := env.addConnection(t, models.ChannelAirbnb, feed.URL, true)
	ctx := context.Background()

	_, err := env.reconciler.Reconcile(ctx, conn.ID)
	require.NoError(t, err)

	externalID := models.ExternalReservationID(models.ChannelAirbnb, "stay-1@airbnb.com")
	existing, err := env.reservationRepo.GetByExternalID(ctx, externalID)
	require.NoError(t, err)
	require.NotNil(t, existing)

	// The host marks the stay completed locally; the feed later extends it.
	require.NoError(t, env.reservationRepo.UpdateStatus(ctx, existing.ID, models.ReservationStatusCompleted))

	feed.set(icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Airbnb Inc//Hosting Calendar 1.0//EN",
		"BEGIN:VEVENT",
		"UID:stay-1@airbnb.com",
		"SUMMARY:Jane Smith",
		"DTSTART;VALUE=DATE:20260401",
		"DTEND;VALUE=DATE:20260407",
		"END:VEVENT",
		"END:VCALENDAR",
	), http.StatusOK)

	result, err := env.reconciler.Reconcile(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.EventsUpdated)
	assert.Equal(t, 0, result.EventsCreated)

	after, err := env.reservationRepo.GetByExternalID(ctx, externalID)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, existing.ID, after.ID)
	assert.Equal(t, 7, after.CheckOut.Day())
	assert.Equal(t, models.ReservationStatusCompleted, after.Status)
}

func TestReconcile_SkipsEntriesWithEmptyInterval(t *testing.T) {
	env := newSyncEnv(t)
	feed := newFeedServer(t, icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Test//Test//EN",
		"BEGIN:VEVENT",
		"UID:zero-length@vrbo.com",
		"SUMMARY:Zero nights",
		"DTSTART;VALUE=DATE:20260401",
		"DTEND;VALUE=DATE:20260401",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:fine@vrbo.com",
		"SUMMARY:One night",
		"DTSTART;VALUE=DATE:20260402",
		"DTEND;VALUE=DATE:20260403",
		"END:VEVENT",
		"END:VCALENDAR",
	))
	conn := env.addConnection(t, models.ChannelVrbo, feed.URL, true)
	ctx := context.Background()

	result, err := env.reconciler.Reconcile(ctx, conn.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.EventsFound)
	assert.Equal(t, 1, result.EventsCreated)
	assert.Equal(t, 1, result.EventsSkipped)

	reservations, err := env.reservationRepo.ListByUnit(ctx, env.unitID)
	require.NoError(t, err)
	assert.Len(t, reservations, 1)
}

func TestReconcile_NoFeedURLIsConfigurationError(t *testing.T) {
	env := newSyncEnv(t)
	conn := env.addConnection(t, models.ChannelDirect, "", true)
	ctx := context.Background()

	result, err := env.reconciler.Reconcile(ctx, conn.ID)
	require.ErrorIs(t, err, ErrNoFeedConfigured)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)

	logs, err := env.syncLogRepo.ListByConnection(ctx, conn.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.SyncStatusFailure, logs[0].Status)
}

func TestReconcile_NoCalendarReadCapability(t *testing.T) {
	env := newSyncEnv(t)
	feed := newFeedServer(t, twoStayFeed())
	conn := env.addConnection(t, models.ChannelAirbnb, feed.URL, false)

	_, err := env.reconciler.Reconcile(context.Background(), conn.ID)
	require.ErrorIs(t, err, ErrNoCalendarRead)
}

func TestReconcile_UnknownConnection(t *testing.T) {
	env := newSyncEnv(t)

	result, err := env.reconciler.Reconcile(context.Background(), "no-such-id")
	require.ErrorIs(t, err, ErrConnectionNotFound)
	require.NotNil(t, result)
	assert.Equal(t, "no-such-id", result.ConnectionID)
}

func TestReconcile_FetchFailureKeepsLastSyncTimestamp(t *testing.T) {
	env := newSyncEnv(t)
	feed := newFeedServer(t, twoStayFeed())
	conn := env.addConnection(t, models.ChannelAirbnb, feed.URL, true)
	ctx := context.Background()

	_, err := env.reconciler.Reconcile(ctx, conn.ID)
	require.NoError(t, err)

	synced, err := env.connectionRepo.GetByID(ctx, conn.ID)
	require.NoError(t, err)
	require.NotNil(t, synced.LastSyncAt)
	firstSync := *synced.LastSyncAt

	feed.set("", http.StatusInternalServerError)

	result, err := env.reconciler.Reconcile(ctx, conn.ID)
	require.Error(t, err)
	assert.False(t, result.Success)

	after, err := env.connectionRepo.GetByID(ctx, conn.ID)
	require.NoError(t, err)
	require.NotNil(t, after.LastSyncAt)
	assert.True(t, after.LastSyncAt.Equal(firstSync), "failed run must not advance last_sync_at")
	require.NotNil(t, after.LastSyncError)

	logs, err := env.syncLogRepo.ListByConnection(ctx, conn.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.SyncStatusFailure, logs[0].Status)
	assert.Equal(t, models.SyncStatusSuccess, logs[1].Status)
}

func TestReconcile_UnparsableFeed(t *testing.T) {
	env := newSyncEnv(t)
	feed := newFeedServer(t, "<html>not a calendar</html>")
	conn := env.addConnection(t, models.ChannelOther, feed.URL, true)

	result, err := env.reconciler.Reconcile(context.Background(), conn.ID)
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.EventsFound)
}
