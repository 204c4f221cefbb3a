package flights

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/Domenick1991/flightledger/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetActiveFlights(ctx context.Context, today time.Time, version uint64) ([]domain.Flight, error) {
	args := m.Called(ctx, today, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetActiveFlights(ctx context.Context, today time.Time, version uint64, flights []domain.Flight) error {
	args := m.Called(ctx, today, version, flights)
	return args.Error(0)
}

func (m *MockCache) InvalidateActiveFlights(ctx context.Context, today time.Time) error {
	args := m.Called(ctx, today)
	return args.Error(0)
}

// memoryCache keeps one entry per date like the Redis cache does. onSet runs
// before the entry is stored.
type memoryCache struct {
	mu      sync.Mutex
	entries map[time.Time]memoryEntry
	onSet   func()
}

type memoryEntry struct {
	version uint64
	flights []domain.Flight
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[time.Time]memoryEntry)}
}

func (c *memoryCache) GetActiveFlights(_ context.Context, today time.Time, version uint64) ([]domain.Flight, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[today]
	if !ok || entry.version != version {
		return nil, nil
	}
	return entry.flights, nil
}

func (c *memoryCache) SetActiveFlights(_ context.Context, today time.Time, version uint64, flights []domain.Flight) error {
	if c.onSet != nil {
		hook := c.onSet
		c.onSet = nil
		hook()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[today] = memoryEntry{version: version, flights: flights}
	return nil
}

func (c *memoryCache) InvalidateActiveFlights(_ context.Context, today time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, today)
	return nil
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

var today = domain.Date(2020, time.November, 11)

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l := ledger.New(today)
	_, err := l.AddFlight(domain.Flight{ID: 1, FlightNumber: "LX101", Origin: "London", Destination: "Zurich", DepartureDate: today.AddDate(0, 0, 10), Seats: 40, Price: 120})
	require.NoError(t, err)
	_, err = l.AddFlight(domain.Flight{ID: 2, FlightNumber: "OLD", Origin: "London", Destination: "Dublin", DepartureDate: today.AddDate(0, 0, -3), Seats: 40, Price: 80})
	require.NoError(t, err)
	return l
}

func TestFlightService_ListActive_CacheMiss(t *testing.T) {
	l := newLedger(t)
	mockCache := &MockCache{}
	service := NewFlightService(l, mockCache, nil)

	ctx := context.Background()
	expected, version := l.ActiveFlightsVersion()

	mockCache.On("GetActiveFlights", ctx, today, version).Return(nil, nil).Once()
	mockCache.On("SetActiveFlights", ctx, today, version, expected).Return(nil).Once()

	flights, err := service.ListActive(ctx)

	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "LX101", flights[0].FlightNumber)
	mockCache.AssertExpectations(t)
}

func TestFlightService_ListActive_CacheHit(t *testing.T) {
	l := newLedger(t)
	mockCache := &MockCache{}
	service := NewFlightService(l, mockCache, nil)

	ctx := context.Background()
	cached := []domain.Flight{{ID: 7, FlightNumber: "CACHED"}}

	mockCache.On("GetActiveFlights", ctx, today, l.FlightsVersion()).Return(cached, nil).Once()

	flights, err := service.ListActive(ctx)

	require.NoError(t, err)
	assert.Equal(t, cached, flights)
	mockCache.AssertNotCalled(t, "SetActiveFlights", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_ListActive_CacheError(t *testing.T) {
	l := newLedger(t)
	mockCache := &MockCache{}
	service := NewFlightService(l, mockCache, nil)

	ctx := context.Background()
	mockCache.On("GetActiveFlights", ctx, today, mock.Anything).Return(nil, errors.New("redis down")).Once()
	mockCache.On("SetActiveFlights", ctx, today, mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	flights, err := service.ListActive(ctx)

	require.NoError(t, err)
	assert.Len(t, flights, 1)
	mockCache.AssertExpectations(t)
}

func TestFlightService_ListActive_CreateDuringWriteBack(t *testing.T) {
	l := newLedger(t)
	cache := newMemoryCache()
	service := NewFlightService(l, cache, nil)
	ctx := context.Background()

	cache.onSet = func() {
		_, err := service.Create(ctx, CreateFlightInput{
			FlightNumber:  "KL303",
			Origin:        "Amsterdam",
			Destination:   "Oslo",
			DepartureDate: today.AddDate(0, 0, 20),
			Seats:         120,
		})
		require.NoError(t, err)
	}

	first, err := service.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := service.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, l.ActiveFlights(), second)
	assert.Len(t, second, 2)

	// the fresh list is now cached under the current version
	third, err := service.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestFlightService_ListActive_DeleteDuringWriteBack(t *testing.T) {
	l := newLedger(t)
	cache := newMemoryCache()
	service := NewFlightService(l, cache, nil)
	ctx := context.Background()

	cache.onSet = func() {
		_, err := service.Delete(ctx, 1)
		require.NoError(t, err)
	}

	_, err := service.ListActive(ctx)
	require.NoError(t, err)

	flights, err := service.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, flights)
}

func TestFlightService_ResetCache(t *testing.T) {
	l := newLedger(t)
	mockCache := &MockCache{}
	service := NewFlightService(l, mockCache, nil)

	ctx := context.Background()
	mockCache.On("InvalidateActiveFlights", ctx, today).Return(errors.New("redis down")).Once()

	service.ResetCache(ctx)
	mockCache.AssertExpectations(t)

	NewFlightService(l, nil, nil).ResetCache(ctx)
}

func TestFlightService_ListActive_NoCache(t *testing.T) {
	service := NewFlightService(newLedger(t), nil, nil)

	flights, err := service.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, flights, 1)

	all, err := service.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFlightService_Create(t *testing.T) {
	l := newLedger(t)
	mockCache := &MockCache{}
	service := NewFlightService(l, mockCache, nil)

	ctx := context.Background()
	mockCache.On("InvalidateActiveFlights", ctx, today).Return(nil).Once()

	flight, err := service.Create(ctx, CreateFlightInput{
		FlightNumber:  "KL303",
		Origin:        "Amsterdam",
		Destination:   "Oslo",
		DepartureDate: today.AddDate(0, 0, 20),
		Seats:         120,
		Price:         75,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), flight.ID)

	_, err = service.Create(ctx, CreateFlightInput{
		FlightNumber:  "KL303",
		Origin:        "Amsterdam",
		Destination:   "Oslo",
		DepartureDate: today.AddDate(0, 0, 20),
		Seats:         120,
	})
	assert.ErrorIs(t, err, ledger.ErrScheduleConflict)

	_, err = service.Create(ctx, CreateFlightInput{FlightNumber: "X1", Origin: "A", Destination: "B", DepartureDate: today})
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	mockCache.AssertExpectations(t)
}

func TestFlightService_Delete(t *testing.T) {
	l := newLedger(t)
	_, err := l.AddCustomer(domain.Customer{ID: 1, Name: "John Doe", Email: "john@example.com"})
	require.NoError(t, err)
	_, err = l.AddCustomer(domain.Customer{ID: 2, Name: "Jane Roe", Email: "jane@example.com"})
	require.NoError(t, err)
	_, err = l.AddBooking(1, 1, today)
	require.NoError(t, err)
	_, err = l.AddBooking(2, 1, today)
	require.NoError(t, err)

	mockCache := &MockCache{}
	mockProducer := &MockProducer{}
	service := NewFlightService(l, mockCache, booking.NewNotifier(mockProducer, "ledger_topic"))

	ctx := context.Background()
	mockCache.On("InvalidateActiveFlights", ctx, today).Return(nil).Once()
	mockProducer.On("Publish", ctx, "ledger_topic", mock.Anything, mock.MatchedBy(func(e kafka.LedgerEvent) bool {
		return e.Type == kafka.EventBookingCancelled && e.Reason == "flight withdrawn" && e.FlightNumber == "LX101" && e.Email != ""
	})).Return(nil).Twice()

	removed, err := service.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.Empty(t, l.Bookings())

	_, err = service.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = service.Delete(ctx, 1)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	mockCache.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestFlightService_PassengersAndQuote(t *testing.T) {
	l := newLedger(t)
	_, err := l.AddCustomer(domain.Customer{ID: 1, Name: "John Doe"})
	require.NoError(t, err)
	_, err = l.AddBooking(1, 1, today)
	require.NoError(t, err)

	service := NewFlightService(l, nil, nil)
	ctx := context.Background()

	passengers, err := service.Passengers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, passengers, 1)
	assert.Equal(t, "John Doe", passengers[0].Name)

	bookings, err := service.Bookings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, int64(1), bookings[0].CustomerID)

	price, err := service.Quote(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(250), price)

	_, err = service.Quote(ctx, 99)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
