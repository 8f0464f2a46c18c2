package ws

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"marketplace-chat/internal/models"
	"marketplace-chat/internal/session"
)

type stubConn struct {
	id      string
	sendErr error
	sent    []models.ServerEvent
	closed  bool
}

func (c *stubConn) ID() string { return c.id }
func (c *stubConn) Send(event models.ServerEvent) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, event)
	return nil
}
func (c *stubConn) Close() { c.closed = true }

type stubResolver struct {
	conns        map[string]*stubConn
	disconnected []string
}

func (r *stubResolver) Resolve(userID string) (session.Conn, bool) {
	conn, ok := r.conns[userID]
	return conn, ok
}

func (r *stubResolver) Disconnect(_ context.Context, connID string) {
	r.disconnected = append(r.disconnected, connID)
}

func newHubFixture(conns map[string]*stubConn) (*Hub, *stubResolver) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	resolver := &stubResolver{conns: conns}
	return NewHub(resolver, log), resolver
}

func TestToRoomDeliversToReachableRecipients(t *testing.T) {
	alice := &stubConn{id: "conn-a"}
	bob := &stubConn{id: "conn-b"}
	hub, _ := newHubFixture(map[string]*stubConn{"alice": alice, "bob": bob})

	event := models.ServerEvent{Event: models.EventNewChatMessage, Data: "payload"}
	hub.ToRoom("chat-1", []string{"alice", "bob", "offline"}, event)

	assert.Equal(t, []models.ServerEvent{event}, alice.sent)
	assert.Equal(t, []models.ServerEvent{event}, bob.sent)
}

func TestToRoomExceptSkipsSender(t *testing.T) {
	alice := &stubConn{id: "conn-a"}
	bob := &stubConn{id: "conn-b"}
	hub, _ := newHubFixture(map[string]*stubConn{"alice": alice, "bob": bob})

	hub.ToRoomExcept("chat-1", []string{"alice", "bob"}, "alice",
		models.ServerEvent{Event: models.EventUserTyping})

	assert.Empty(t, alice.sent)
	assert.Len(t, bob.sent, 1)
}

func TestToUserTargetsSingleRecipient(t *testing.T) {
	alice := &stubConn{id: "conn-a"}
	hub, _ := newHubFixture(map[string]*stubConn{"alice": alice})

	hub.ToUser("alice", models.ServerEvent{Event: models.EventUpdateUserChatStatus})
	hub.ToUser("nobody", models.ServerEvent{Event: models.EventUpdateUserChatStatus})

	assert.Len(t, alice.sent, 1)
}

func TestFailedWriteTearsDownConnection(t *testing.T) {
	alice := &stubConn{id: "conn-a", sendErr: assert.AnError}
	bob := &stubConn{id: "conn-b"}
	hub, resolver := newHubFixture(map[string]*stubConn{"alice": alice, "bob": bob})

	hub.ToRoom("chat-1", []string{"alice", "bob"}, models.ServerEvent{Event: models.EventNewChatMessage})

	assert.True(t, alice.closed, "dead connection must be closed")
	assert.Equal(t, []string{"conn-a"}, resolver.disconnected)
	// The failure is isolated; the other recipient still gets the event.
	assert.Len(t, bob.sent, 1)
}
