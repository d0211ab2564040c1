package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func envelopeFrom(id, event string) any {
	return mock.MatchedBy(func(e ClientEnvelope) bool {
		return e.from == id && e.event == event
	})
}

func TestReadPump(t *testing.T) {
	t.Parallel()
	t.Run("Read Error Without Room", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		player := NewPlayer("id", &MockRegistry{})
		mockSocket.On("Read").Return([]byte{}, false, assert.AnError)
		mockSocket.On("Close").Return()
		wg := sync.WaitGroup{}
		wg.Go(func() {
			player.ReadPump(mockSocket)
		})
		// on read error, the goroutine must release
		wg.Wait()

		assert.Error(t, player.ctx.Err())
		mockSocket.AssertExpectations(t)
	})

	t.Run("Read Error Removes Player From Room", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockRoom := &MockRoom{}
		player := NewPlayer("id", &MockRegistry{})
		player.SetRoom(mockRoom)
		mockSocket.On("Read").Return([]byte{}, false, assert.AnError)
		mockSocket.On("Close").Return()
		mockRoom.On("RemoveMe", mock.Anything, player).Return().Once()
		wg := sync.WaitGroup{}
		wg.Go(func() {
			player.ReadPump(mockSocket)
		})
		wg.Wait()

		mockRoom.AssertExpectations(t)
		mockSocket.AssertExpectations(t)
	})

	t.Run("Read garbage data", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockRoom := &MockRoom{}
		player := NewPlayer("id", &MockRegistry{})
		player.SetRoom(mockRoom)
		mockSocket.On("Read").Return([]byte(`{"event":`), false, nil).Once()
		mockSocket.On("Read").Return([]byte(`{"event":"roomState"}`), false, nil).Once()
		mockSocket.On("Read").Return([]byte{0x0d, 0x01}, true, nil).Once()
		mockSocket.On("Read").Return([]byte{}, false, assert.AnError).Once()
		mockSocket.On("Close").Return()
		mockRoom.On("RemoveMe", mock.Anything, player).Return().Once()
		wg := sync.WaitGroup{}
		wg.Go(func() {
			player.ReadPump(mockSocket)
		})
		wg.Wait()

		mockRoom.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		mockRoom.AssertExpectations(t)
		mockSocket.AssertExpectations(t)
	})

	t.Run("Read good data", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockRoom := &MockRoom{}
		player := NewPlayer("id", &MockRegistry{})
		player.SetRoom(mockRoom)
		mockSocket.On("Read").Return([]byte(`{"event":"answer","data":{"message":"apple"}}`), false, nil).Once()
		mockSocket.On("Read").Return(encodeStrokeFrame(StrokeSegment{X1: 5, Y1: 5, LineWidth: 2}), true, nil).Once()
		mockSocket.On("Read").Return([]byte{}, false, assert.AnError).Once()
		mockSocket.On("Close").Return()
		mockRoom.On("Send", mock.Anything, mock.MatchedBy(func(e ClientEnvelope) bool {
			return e.from == "id" && e.event == EventAnswer && string(e.data) == `{"message":"apple"}`
		})).Return().Once()
		mockRoom.On("Send", mock.Anything, mock.MatchedBy(func(e ClientEnvelope) bool {
			return e.from == "id" && e.event == EventDraw && e.stroke != nil && e.stroke.X1 == 5
		})).Return().Once()
		mockRoom.On("RemoveMe", mock.Anything, player).Return().Once()
		wg := sync.WaitGroup{}
		wg.Go(func() {
			player.ReadPump(mockSocket)
		})
		wg.Wait()

		mockRoom.AssertExpectations(t)
		mockSocket.AssertExpectations(t)
	})

	t.Run("Text frame with leading whitespace", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockRoom := &MockRoom{}
		player := NewPlayer("id", &MockRegistry{})
		player.SetRoom(mockRoom)
		mockSocket.On("Read").Return([]byte("\r\n {\"event\":\"clearCanvas\",\"data\":{\"roomId\":\"party1\"}}"), false, nil).Once()
		mockSocket.On("Read").Return([]byte{}, false, assert.AnError).Once()
		mockSocket.On("Close").Return()
		mockRoom.On("Send", mock.Anything, envelopeFrom("id", EventClearCanvas)).Return().Once()
		mockRoom.On("RemoveMe", mock.Anything, player).Return().Once()
		wg := sync.WaitGroup{}
		wg.Go(func() {
			player.ReadPump(mockSocket)
		})
		wg.Wait()

		mockRoom.AssertExpectations(t)
		mockSocket.AssertExpectations(t)
	})

	t.Run("Spam Messages Rate Limiting", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockRoom := &MockRoom{}
		player := NewPlayer("id", &MockRegistry{})
		player.SetRoom(mockRoom)
		mockSocket.On("Read").Return([]byte(`{"event":"answer","data":{"message":"spam spamm"}}`), false, nil).Times(50)
		mockSocket.On("Read").Return([]byte{}, false, assert.AnError).Once()
		mockSocket.On("Close").Return()
		mockRoom.On("Send", mock.Anything, envelopeFrom("id", EventAnswer)).Return()
		mockRoom.On("RemoveMe", mock.Anything, player).Return().Once()
		wg := sync.WaitGroup{}
		wg.Go(func() {
			player.ReadPump(mockSocket)
		})
		wg.Wait()

		mockRoom.AssertNumberOfCalls(t, "Send", 5)
		mockSocket.AssertExpectations(t)
	})

	t.Run("Drawing data doesn't get rate limited", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockRoom := &MockRoom{}
		player := NewPlayer("id", &MockRegistry{})
		player.SetRoom(mockRoom)
		mockSocket.On("Read").Return(encodeStrokeFrame(StrokeSegment{X1: 1, LineWidth: 2}), true, nil).Times(25)
		mockSocket.On("Read").Return([]byte(`{"event":"clearCanvas"}`), false, nil).Times(25)
		mockSocket.On("Read").Return([]byte{}, false, assert.AnError).Once()
		mockSocket.On("Close").Return()
		mockRoom.On("Send", mock.Anything, mock.Anything).Return()
		mockRoom.On("RemoveMe", mock.Anything, player).Return().Once()
		wg := sync.WaitGroup{}
		wg.Go(func() {
			player.ReadPump(mockSocket)
		})
		wg.Wait()

		mockRoom.AssertNumberOfCalls(t, "Send", 50)
		mockSocket.AssertExpectations(t)
	})

	t.Run("Join Before Room Goes Through Registry Once", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockRegistry := &MockRegistry{}
		player := NewPlayer("id", mockRegistry)
		join := []byte(`{"event":"joinRoom","data":{"roomId":" party1 ","nickname":"Ann","binaryStrokes":true}}`)
		mockSocket.On("Read").Return([]byte(`{"event":"answer","data":{"message":"too early"}}`), false, nil).Once()
		mockSocket.On("Read").Return(join, false, nil).Twice()
		mockSocket.On("Read").Return([]byte{}, false, assert.AnError).Once()
		mockSocket.On("Close").Return()
		mockRegistry.On("RequestJoin", player.ctx, mock.MatchedBy(func(j joinRequest) bool {
			return j.roomID == "party1" && j.nickname == "Ann" && j.binaryStrokes && j.player == Player(player)
		})).Return().Once()
		wg := sync.WaitGroup{}
		wg.Go(func() {
			player.ReadPump(mockSocket)
		})
		wg.Wait()

		mockRegistry.AssertExpectations(t)
		mockSocket.AssertExpectations(t)
	})
}

func TestPlayerJoin(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name   string
		roomID string
	}{
		{"empty room id", ""},
		{"blank room id", "   "},
		{"room id too long", string(make([]byte, MaxRoomIDLength+1))},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			mockRegistry := &MockRegistry{}
			player := NewPlayer("id", mockRegistry)
			assert.False(t, player.Join(tc.roomID, "Ann", false))
			mockRegistry.AssertNotCalled(t, "RequestJoin", mock.Anything, mock.Anything)
		})
	}
}

func TestPlayerSetRoomAfterDisconnect(t *testing.T) {
	t.Parallel()
	mockRegistry := &MockRegistry{}
	mockRegistry.On("RequestJoin", mock.Anything, mock.Anything).Return().Once()
	player := NewPlayer("id", mockRegistry)
	require.True(t, player.Join("party1", "Ann", false))

	// the socket drops while the join is in flight
	player.leaveRoom()

	removed := make(chan Player, 1)
	mockRoom := &MockRoom{}
	mockRoom.On("RemoveMe", mock.Anything, player).Run(func(args mock.Arguments) {
		removed <- args.Get(1).(Player)
	}).Return().Once()
	player.SetRoom(mockRoom)

	select {
	case p := <-removed:
		assert.Equal(t, Player(player), p)
	case <-time.After(time.Second):
		t.Fatal("seated player was never handed back")
	}
	assert.False(t, player.Join("party2", "Ann", false))
}

func TestPlayerSend(t *testing.T) {
	t.Parallel()
	t.Run("Full Buffer", func(t *testing.T) {
		t.Parallel()
		player := NewPlayer("id", &MockRegistry{})
		for range cap(player.inbox) {
			require.NoError(t, player.Send([]byte("x")))
		}
		assert.ErrorIs(t, player.Send([]byte("x")), ErrSendBufferFull)
		assert.ErrorIs(t, player.SendBinary([]byte{1}), ErrSendBufferFull)
	})

	t.Run("Released Player", func(t *testing.T) {
		t.Parallel()
		player := NewPlayer("id", &MockRegistry{})
		player.CancelAndRelease()
		assert.ErrorIs(t, player.Send([]byte("x")), context.Canceled)
		assert.Empty(t, player.inbox)
	})

	t.Run("Pings Coalesce", func(t *testing.T) {
		t.Parallel()
		player := NewPlayer("id", &MockRegistry{})
		assert.NoError(t, player.Ping())
		assert.NoError(t, player.Ping())
		assert.Len(t, player.pingChan, 1)
	})
}

func TestWritePump(t *testing.T) {
	t.Parallel()

	t.Run("Ping Channel Closing Must Release The Goroutine", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockSocket.On("Close").Return().Once()
		player := NewPlayer("id", &MockRegistry{})
		wg := sync.WaitGroup{}
		wg.Go(func() {
			player.WritePump(mockSocket)
		})
		close(player.pingChan)
		wg.Wait()
		mockSocket.AssertExpectations(t)
	})

	t.Run("Context Cancelation Must Release The Goroutine", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockSocket.On("Close").Return().Once()
		player := NewPlayer("id", &MockRegistry{})
		wg := sync.WaitGroup{}
		wg.Go(func() {
			player.WritePump(mockSocket)
		})
		player.CancelAndRelease()
		wg.Wait()
		mockSocket.AssertExpectations(t)
	})

	t.Run("Write Error Must Notify Room Then Release The Goroutine", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockRoom := &MockRoom{}
		data := []byte(`{"event":"chat"}`)
		mockSocket.On("Close").Return().Once()
		mockSocket.On("Write", data).Return(assert.AnError).Once()
		player := NewPlayer("id", &MockRegistry{})
		player.SetRoom(mockRoom)
		mockRoom.On("RemoveMe", mock.Anything, player).Return().Once()
		wg := sync.WaitGroup{}
		wg.Go(func() {
			player.WritePump(mockSocket)
		})
		require.NoError(t, player.Send(data))
		wg.Wait()
		mockRoom.AssertExpectations(t)
		mockSocket.AssertExpectations(t)
	})

	t.Run("Correct Data Writing", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		text := []byte(`{"event":"chat"}`)
		stroke := encodeStrokeFrame(StrokeSegment{X0: 1, LineWidth: 2})
		mockSocket.On("Write", text).Return(nil).Once()
		mockSocket.On("WriteBinary", stroke).Return(nil).Once()
		mockSocket.On("Write", text).Return(assert.AnError).Once()
		mockSocket.On("Close").Return().Once()
		player := NewPlayer("id", &MockRegistry{})
		wg := sync.WaitGroup{}
		wg.Go(func() {
			player.WritePump(mockSocket)
		})
		require.NoError(t, player.Send(text))
		require.NoError(t, player.SendBinary(stroke))
		require.NoError(t, player.Send(text))
		wg.Wait()
		mockSocket.AssertExpectations(t)
	})

	t.Run("Correct Ping Handling", func(t *testing.T) {
		t.Parallel()
		mockSocket := &MockWebsocketConnection{}
		mockSocket.On("Ping").Return(nil).Once()
		mockSocket.On("Ping").Return(assert.AnError).Once()
		mockSocket.On("Close").Return().Once()
		player := NewPlayer("id", &MockRegistry{})
		wg := sync.WaitGroup{}
		wg.Go(func() {
			player.WritePump(mockSocket)
		})
		player.pingChan <- struct{}{}
		player.pingChan <- struct{}{}
		wg.Wait()
		mockSocket.AssertExpectations(t)
	})
}
