package game

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// --- WebsocketConnection ---

type MockWebsocketConnection struct {
	mock.Mock
}

func (m *MockWebsocketConnection) Close() {
	m.Called()
}

func (m *MockWebsocketConnection) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockWebsocketConnection) WriteBinary(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockWebsocketConnection) Read() ([]byte, bool, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockWebsocketConnection) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- PeriodicTickerChannelCreator ---

type MockPeriodicTickerChannelCreator struct {
	mock.Mock
}

func (m *MockPeriodicTickerChannelCreator) Create(duration time.Duration) <-chan time.Time {
	args := m.Called(duration)
	return args.Get(0).(chan time.Time)
}

// --- Player ---

type MockPlayer struct {
	mock.Mock
	id string
}

// newMockPlayer tolerates room bookkeeping calls; tests assert on them when they matter.
func newMockPlayer(id string) *MockPlayer {
	p := &MockPlayer{id: id}
	p.On("SetRoom", mock.Anything).Return().Maybe()
	p.On("CancelAndRelease").Return().Maybe()
	p.On("Ping").Return(nil).Maybe()
	return p
}

func (m *MockPlayer) ID() string {
	return m.id
}

func (m *MockPlayer) Send(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockPlayer) SendBinary(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockPlayer) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockPlayer) SetRoom(r Room) {
	m.Called(r)
}

func (m *MockPlayer) CancelAndRelease() {
	m.Called()
}

// --- Room ---

type MockRoom struct {
	mock.Mock
}

func (m *MockRoom) PingPlayers() {
	m.Called()
}

func (m *MockRoom) Send(ctx context.Context, e ClientEnvelope) {
	m.Called(ctx, e)
}

func (m *MockRoom) RemoveMe(ctx context.Context, p Player) {
	m.Called(ctx, p)
}

func (m *MockRoom) RequestJoin(jreq joinRequest) {
	m.Called(jreq)
}

func (m *MockRoom) Tick(now time.Time) {
	m.Called(now)
}

func (m *MockRoom) GameLoop() {
	m.Called()
}

func (m *MockRoom) CloseAndRelease() {
	m.Called()
}

func (m *MockRoom) Description() RoomDescription {
	args := m.Called()
	return args.Get(0).(RoomDescription)
}

// --- Registry ---

type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) RequestJoin(ctx context.Context, jreq joinRequest) {
	m.Called(ctx, jreq)
}

func (m *MockRegistry) RequestUpdateDescription(desc RoomDescription) {
	m.Called(desc)
}

func (m *MockRegistry) RemoveRoom(id string, r Room) {
	m.Called(id, r)
}

func (m *MockRegistry) Rooms(ctx context.Context) []RoomDescription {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]RoomDescription)
	}
	return nil
}
