package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/app/domain/search"
	"github.com/FACorreiaa/triply/internal/app/models"
	"github.com/FACorreiaa/triply/internal/pkg/config"
)

func dialLive(t *testing.T, searcher *MockSearcher) *websocket.Conn {
	t.Helper()
	r := gin.New()
	live := NewLiveSearchHandler(searcher, config.SearchConfig{
		DebounceDelay:  5 * time.Millisecond,
		MinQueryLength: 2,
		MaxResults:     10,
	}, zap.NewNop())
	r.GET("/api/locations/live", live.Live)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/locations/live", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil returns the first event for which done reports true.
func readUntil(t *testing.T, conn *websocket.Conn, done func(liveSearchEvent) bool) liveSearchEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var ev liveSearchEvent
		require.NoError(t, conn.ReadJSON(&ev))
		if done(ev) {
			return ev
		}
	}
}

func settled(ev liveSearchEvent) bool {
	return ev.Type == "state" && ev.State != nil && !ev.State.IsLoading
}

func TestLiveSearchStreamsStates(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, "Lisbon", 10).Return([]models.Location{
		{ID: "village", PlaceType: models.PlaceVillage},
		{ID: "capital", ImportanceScore: 820000, PlaceType: models.PlaceCity},
	}, nil).Once()
	conn := dialLive(t, searcher)

	require.NoError(t, conn.WriteJSON(liveSearchMessage{Type: "query", Query: "Lisbon"}))

	first := readUntil(t, conn, func(liveSearchEvent) bool { return true })
	require.NotNil(t, first.State)
	assert.Equal(t, search.StatusDebouncing, first.State.Status)

	final := readUntil(t, conn, settled)
	assert.Equal(t, search.StatusSuccess, final.State.Status)
	require.Len(t, final.State.Results, 2)
	assert.Equal(t, "capital", final.State.Results[0].ID)
	searcher.AssertExpectations(t)
}

func TestLiveSearchClear(t *testing.T) {
	conn := dialLive(t, new(MockSearcher))

	require.NoError(t, conn.WriteJSON(liveSearchMessage{Type: "clear"}))

	ev := readUntil(t, conn, settled)
	assert.Equal(t, search.StatusIdle, ev.State.Status)
	assert.Empty(t, ev.State.Query)
}

func TestLiveSearchRejectsUnknownMessage(t *testing.T) {
	conn := dialLive(t, new(MockSearcher))

	require.NoError(t, conn.WriteJSON(liveSearchMessage{Type: "shout"}))

	ev := readUntil(t, conn, func(ev liveSearchEvent) bool { return ev.Type == "error" })
	require.NotNil(t, ev.Error)
	assert.Equal(t, "invalid_message", ev.Error.Error)
}

func TestLiveSearchClosesOnOversizedFrame(t *testing.T) {
	searcher := new(MockSearcher)
	conn := dialLive(t, searcher)

	require.NoError(t, conn.WriteJSON(liveSearchMessage{Type: "query", Query: strings.Repeat("a", 2*liveReadLimit)}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev liveSearchEvent
	err := conn.ReadJSON(&ev)
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseMessageTooBig), "got %v", err)
	searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}
