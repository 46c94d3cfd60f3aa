package controllers

import (
	"context"
	"encoding/json"
	"testing"

	"makerspace/internal/authz"
	"makerspace/internal/cardreader"
	"makerspace/internal/entities"
	"makerspace/internal/services"
	appwebsocket "makerspace/pkg/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubReader struct {
	services.ReaderServiceInterface
	swipes     []string
	privileges []entities.Privilege
}

func (s *stubReader) Swipe(ctx context.Context, equipmentID uint64, universityID string) (*services.SwipeResult, error) {
	privilege, _ := authz.PrivilegeFromContext(ctx)
	s.swipes = append(s.swipes, universityID)
	s.privileges = append(s.privileges, privilege)
	return &services.SwipeResult{EquipmentID: equipmentID, Granted: true, KnownCard: true}, nil
}

// stubPrivileges answers with whatever privilege the operator currently holds.
type stubPrivileges struct {
	services.AuthPrivilegeServiceInterface
	current entities.Privilege
}

func (s *stubPrivileges) GetPrivilege(context.Context, uint64) (entities.Privilege, error) {
	return s.current, nil
}

func newReaderSession(t *testing.T, privileges *stubPrivileges, reader *stubReader) (*readerSession, *appwebsocket.Hub) {
	t.Helper()
	hub := appwebsocket.NewHub(zap.NewNop())
	c := NewReaderController(hub, reader, nil, privileges, zap.NewNop())
	client := appwebsocket.NewClient(hub, nil, 10, zap.NewNop())
	hub.Register(client)
	return &readerSession{controller: c, client: client, reader: cardreader.New()}, hub
}

func swipe(t *testing.T, ctx context.Context, session *readerSession, uid string) {
	t.Helper()
	keys := append([]string{cardreader.StartSentinel}, splitKeys(uid)...)
	keys = append(keys, cardreader.EndSentinel)
	for _, key := range keys {
		message, err := json.Marshal(appwebsocket.KeyMessage{Key: key})
		require.NoError(t, err)
		session.handle(ctx, message)
	}
}

func splitKeys(s string) []string {
	keys := make([]string, 0, len(s))
	for _, r := range s {
		keys = append(keys, string(r))
	}
	return keys
}

func drainTypes(client *appwebsocket.Client) (types []string, closed bool) {
	for {
		select {
		case message, ok := <-client.Send:
			if !ok {
				return types, true
			}
			var env struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(message, &env) == nil {
				types = append(types, env.Type)
			}
		default:
			return types, false
		}
	}
}

func TestReaderSession_UsesCurrentPrivilegePerSwipe(t *testing.T) {
	privileges := &stubPrivileges{current: entities.PrivilegeMentor}
	reader := &stubReader{}
	session, _ := newReaderSession(t, privileges, reader)
	connectedAs := authz.WithActor(context.Background(), 2, entities.PrivilegeStaff)

	swipe(t, connectedAs, session, "100000001")

	require.Equal(t, []string{"100000001"}, reader.swipes)
	assert.Equal(t, []entities.Privilege{entities.PrivilegeMentor}, reader.privileges)
	types, closed := drainTypes(session.client)
	assert.False(t, closed)
	assert.Contains(t, types, appwebsocket.TypeSwipeResult)
}

func TestReaderSession_DemotedOperatorIsDisconnected(t *testing.T) {
	privileges := &stubPrivileges{current: entities.PrivilegeMentor}
	reader := &stubReader{}
	session, hub := newReaderSession(t, privileges, reader)
	ctx := authz.WithActor(context.Background(), 2, entities.PrivilegeMentor)

	privileges.current = entities.PrivilegeMaker
	swipe(t, ctx, session, "100000001")

	assert.Empty(t, reader.swipes)
	assert.Zero(t, hub.Connected(10))
	types, closed := drainTypes(session.client)
	assert.True(t, closed)
	assert.Contains(t, types, appwebsocket.TypeError)

	swipe(t, ctx, session, "100000001")
	assert.Empty(t, reader.swipes, "a revoked session ignores further keys")
}

func TestReaderSession_ArchivedOperatorIsDisconnected(t *testing.T) {
	privileges := &stubPrivileges{current: ""}
	reader := &stubReader{}
	session, hub := newReaderSession(t, privileges, reader)

	swipe(t, authz.WithActor(context.Background(), 2, entities.PrivilegeMentor), session, "100000001")

	assert.Empty(t, reader.swipes)
	assert.Zero(t, hub.Connected(10))
}
