package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RupeshSangoju/quickverdicts-sub001/api/testhelpers"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

func dial(t *testing.T, srv *httptest.Server, path, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func rawToken(t *testing.T, a *App, id primitive.ObjectID, role string) string {
	return strings.TrimPrefix(bearer(t, a, id, role), "Bearer ")
}

func TestNotificationSocketReceivesPush(t *testing.T) {
	a, _ := newTestApp(t)
	srv := httptest.NewServer(a.Router)
	defer srv.Close()

	userID := primitive.NewObjectID()
	conn := dial(t, srv, "/ws/notifications", rawToken(t, a, userID, models.UserTypeJuror))
	assert.Eventually(t, func() bool { return a.Hub.Connected(userID.Hex()) == 1 }, time.Second, 10*time.Millisecond)

	a.Hub.PushToUser(userID.Hex(), "new_notification", map[string]string{"title": "Application approved"})
	a.Hub.PushToUser(primitive.NewObjectID().Hex(), "new_notification", map[string]string{"title": "someone else"})

	var got struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	assert.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "new_notification", got.Event)
	assert.Equal(t, "Application approved", got.Data["title"])
}

func TestNotificationSocketNeedsToken(t *testing.T) {
	a, _ := newTestApp(t)
	req, _ := http.NewRequest("GET", "/ws/notifications", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusUnauthorized, response.Code)
}

func TestWarRoomSocketBroadcast(t *testing.T) {
	a, db := newTestApp(t)
	attorneyID := primitive.NewObjectID()
	c := models.Case{ID: primitive.NewObjectID(), AttorneyID: attorneyID}
	db.C("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(testhelpers.Found(c))
	srv := httptest.NewServer(a.Router)
	defer srv.Close()

	conn := dial(t, srv, "/ws/war-room/"+c.ID.Hex(), rawToken(t, a, attorneyID, models.UserTypeAttorney))
	assert.Eventually(t, func() bool { return a.Hub.Connected(attorneyID.Hex()) == 1 }, time.Second, 10*time.Millisecond)

	// war room sockets do not receive personal pushes
	a.Hub.PushToUser(attorneyID.Hex(), "new_notification", "ignored")
	a.Hub.BroadcastToCase(c.ID.Hex(), "meeting_started", map[string]string{"roomName": "qv-1"})

	var got struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	assert.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "meeting_started", got.Event)
	assert.Equal(t, "qv-1", got.Data["roomName"])
}

func TestWarRoomSocketRejectsOutsider(t *testing.T) {
	a, db := newTestApp(t)
	c := models.Case{ID: primitive.NewObjectID(), AttorneyID: primitive.NewObjectID()}
	db.C("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(testhelpers.Found(c))
	db.C("juror_applications").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	req, _ := http.NewRequest("GET", "/ws/war-room/"+c.ID.Hex(), nil)
	req.Header.Set("Authorization", bearer(t, a, primitive.NewObjectID(), models.UserTypeJuror))
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusForbidden, response.Code)
}

func TestHubDropsClosedClient(t *testing.T) {
	a, _ := newTestApp(t)
	srv := httptest.NewServer(a.Router)
	defer srv.Close()

	userID := primitive.NewObjectID()
	conn := dial(t, srv, "/ws/notifications", rawToken(t, a, userID, models.UserTypeAdmin))
	assert.Eventually(t, func() bool { return a.Hub.Connected(userID.Hex()) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return a.Hub.Connected(userID.Hex()) == 0 }, 2*time.Second, 10*time.Millisecond)
}
