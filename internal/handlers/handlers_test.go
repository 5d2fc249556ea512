package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/jason-s-yu/swick/internal/auth"
	"github.com/jason-s-yu/swick/internal/bot"
	"github.com/jason-s-yu/swick/internal/game"
	"github.com/jason-s-yu/swick/internal/models"
	"github.com/jason-s-yu/swick/internal/room"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := auth.Init(0); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	store := room.NewStore(ctx, room.Options{
		IdleTimeout:       time.Minute,
		HeartbeatInterval: time.Hour,
		Bots:              bot.NewAgent(rand.New(rand.NewSource(1))),
		Logger:            logrus.NewEntry(logger),
	})
	s := NewServer(store, logger, []string{"*"})
	r := chi.NewRouter()
	s.Routes(r, game.DefaultHouseRules())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// sessionCookie creates a session and returns its cookie header value.
func sessionCookie(t *testing.T, srv *httptest.Server, name string) (string, sessionResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/session", "application/json", strings.NewReader(`{"name":"`+name+`"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body sessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookieName {
			return c.Name + "=" + c.Value, body
		}
	}
	t.Fatal("no session cookie")
	return "", body
}

func createRoom(t *testing.T, srv *httptest.Server, cookie, body string) (*http.Response, models.RoomSummary) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/rooms/", bytes.NewBufferString(body))
	require.NoError(t, err)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var sum models.RoomSummary
	if resp.StatusCode == http.StatusCreated {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&sum))
	}
	return resp, sum
}

func TestExtractCookieToken(t *testing.T) {
	assert.Equal(t, "abc", extractCookieToken("a=1; swick_session=abc; b=2", "swick_session"))
	assert.Equal(t, "abc", extractCookieToken("swick_session=abc", "swick_session"))
	assert.Empty(t, extractCookieToken("a=1", "swick_session"))
}

func TestSessionRenameKeepsID(t *testing.T) {
	srv := newTestServer(t)
	cookie, first := sessionCookie(t, srv, "alice")
	assert.Equal(t, "alice", first.Name)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/session", strings.NewReader(`{"name":"  al  "}`))
	req.Header.Set("Cookie", cookie)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var second sessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "al", second.Name)

	resp, err = http.Get(srv.URL + "/session")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateAndListRooms(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := createRoom(t, srv, "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cookie, _ := sessionCookie(t, srv, "host")
	resp, _ = createRoom(t, srv, cookie, `{"houseRules":{"defaultAnte":4}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = createRoom(t, srv, cookie, `{"seatCount":9}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, pub := createRoom(t, srv, cookie, `{"name":"open","seatCount":4,"bots":[{"difficulty":"medium"}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 4, pub.SeatCount)
	resp, priv := createRoom(t, srv, cookie, `{"name":"hidden","private":true,"passcode":"pw"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, priv.HasPasscode)

	listResp, err := http.Get(srv.URL + "/rooms/")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var list []models.RoomSummary
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, pub.ID, list[0].ID)

	getResp, err := http.Get(srv.URL + "/rooms/" + priv.ID.String())
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)

	getResp, err = http.Get(srv.URL + "/rooms/not-a-uuid")
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, getResp.StatusCode)
}

func TestCreateRoomBodyIsOptional(t *testing.T) {
	srv := newTestServer(t)
	cookie, _ := sessionCookie(t, srv, "host")

	resp, sum := createRoom(t, srv, cookie, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Swick table", sum.Name)

	resp, _ = createRoom(t, srv, cookie, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func dial(t *testing.T, srv *httptest.Server, path, cookie string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	header := http.Header{}
	if cookie != "" {
		header.Set("Cookie", cookie)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{Subprotocols: []string{Subprotocol}, HTTPHeader: header})
	require.NoError(t, err)
	return c
}

func readEvent(t *testing.T, c *websocket.Conn, typ game.GameEventType) game.GameEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		_, data, err := c.Read(ctx)
		require.NoError(t, err)
		var ev game.GameEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		if ev.Type == typ {
			return ev
		}
	}
}

func TestRoomSocketPlaysIntents(t *testing.T) {
	srv := newTestServer(t)
	cookie, me := sessionCookie(t, srv, "alice")
	_, sum := createRoom(t, srv, cookie, `{"name":"t"}`)

	c := dial(t, srv, "/rooms/"+sum.ID.String()+"/ws", cookie)
	defer c.Close(websocket.StatusNormalClosure, "")

	ev := readEvent(t, c, game.EventPrivateSyncState)
	require.Len(t, ev.State.Players, 1)
	assert.Equal(t, me.ID, ev.State.Players[0].PlayerID.String())
	assert.Equal(t, "alice", ev.State.Players[0].Name)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(`not json`)))
	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(`{"type":"change_name","payload":{"name":"Alicia"}}`)))

	for {
		ev = readEvent(t, c, game.EventPrivateSyncState)
		if ev.State.Players[0].Name == "Alicia" {
			break
		}
	}
}

func TestRoomSocketRefusals(t *testing.T) {
	srv := newTestServer(t)
	cookie, _ := sessionCookie(t, srv, "alice")
	_, sum := createRoom(t, srv, cookie, `{"passcode":"pw"}`)

	readClose := func(c *websocket.Conn) websocket.StatusCode {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _, err := c.Read(ctx)
		return websocket.CloseStatus(err)
	}

	c := dial(t, srv, "/rooms/"+sum.ID.String()+"/ws?passcode=wrong", cookie)
	assert.Equal(t, websocket.StatusCode(JoinRefusedError), readClose(c))

	c = dial(t, srv, "/rooms/00000000-0000-0000-0000-000000000001/ws", cookie)
	assert.Equal(t, websocket.StatusCode(InvalidRoomIDError), readClose(c))

	// A guest without a cookie still gets a session and a seat.
	c = dial(t, srv, "/rooms/"+sum.ID.String()+"/ws?passcode=pw", "")
	defer c.Close(websocket.StatusNormalClosure, "")
	ev := readEvent(t, c, game.EventPrivateSyncState)
	require.Len(t, ev.State.Players, 1)
	assert.Equal(t, "Guest", ev.State.Players[0].Name)
}

func TestLeaveClosesSocket(t *testing.T) {
	srv := newTestServer(t)
	cookie, _ := sessionCookie(t, srv, "alice")
	_, sum := createRoom(t, srv, cookie, `{}`)

	c := dial(t, srv, "/rooms/"+sum.ID.String()+"/ws", cookie)
	readEvent(t, c, game.EventPrivateSyncState)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(`{"type":"leave"}`)))
	for {
		_, _, err := c.Read(ctx)
		if err != nil {
			assert.Equal(t, websocket.StatusCode(RemovedFromRoom), websocket.CloseStatus(err))
			return
		}
	}
}
