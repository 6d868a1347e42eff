package chat_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"pawpair/backend/internal/chat"
	"pawpair/backend/internal/match"
	"pawpair/backend/internal/models"
	"pawpair/backend/internal/storage"
	"pawpair/backend/internal/storage/storagetest"
	"pawpair/backend/internal/swipe"
	"pawpair/backend/pkg/apperrors"
)

// recordingBroker keeps every published event in order.
type recordingBroker struct {
	mu     sync.Mutex
	events []models.Event
}

func (b *recordingBroker) Publish(ev models.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBroker) Events() []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Event(nil), b.events...)
}

type MockBroker struct {
	mock.Mock
}

func (b *MockBroker) Publish(ev models.Event) {
	b.Called(ev)
}

type mapTranslator map[string]string

func (m mapTranslator) GetString(_, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}

var translations = mapTranslator{
	"chat.enter": "%s entered the room.",
	"chat.leave": "%s left the room.",
}

type fixture struct {
	store   *storage.Service
	svc     *chat.Service
	broker  *recordingBroker
	matches *match.Registry
	a, b, c *models.User
	matchAB *models.Match
}

func setup(t *testing.T) *fixture {
	t.Helper()
	s := storagetest.NewService(t)
	broker := &recordingBroker{}
	reg := match.NewRegistry(s)
	f := &fixture{
		store:   s,
		svc:     chat.NewService(s, s, broker, translations, chat.Options{}),
		broker:  broker,
		matches: reg,
		a:       storagetest.CreateUser(t, s, "Bori"),
		b:       storagetest.CreateUser(t, s, "Coco"),
		c:       storagetest.CreateUser(t, s, "Dubu"),
	}
	m, _, err := reg.CreateOrGetMatch(context.Background(), f.a.ID, f.b.ID)
	require.NoError(t, err)
	f.matchAB = m
	return f
}

func (f *fixture) room(t *testing.T) *models.ChatRoom {
	t.Helper()
	room, err := f.svc.GetOrCreateRoom(context.Background(), f.matchAB.ID)
	require.NoError(t, err)
	return room
}

func TestScenario_MutualSwipeToRead(t *testing.T) {
	s := storagetest.NewService(t)
	reg := match.NewRegistry(s)
	ledger := swipe.NewService(s, s, reg, nil)
	svc := chat.NewService(s, s, &recordingBroker{}, translations, chat.Options{})
	ctx := context.Background()

	a := storagetest.CreateUser(t, s, "Bori")
	b := storagetest.CreateUser(t, s, "Coco")

	m, err := ledger.RecordInterest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, m)
	m, err = ledger.RecordInterest(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, m)

	room, err := svc.GetOrCreateRoom(ctx, m.ID)
	require.NoError(t, err)

	_, err = svc.PostMessage(ctx, room.ID, a.ID, "hi")
	require.NoError(t, err)

	n, err := svc.UnreadCount(ctx, room.ID, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	marked, err := svc.MarkRead(ctx, room.ID, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, marked)

	n, err = svc.UnreadCount(ctx, room.ID, b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetOrCreateRoom(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first := f.room(t)
	second := f.room(t)
	assert.Equal(t, first.ID, second.ID)

	_, err := f.svc.GetOrCreateRoom(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrMatchNotFound)

	found, err := f.svc.FindByMatch(ctx, f.matchAB.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)

	_, err = f.svc.GetOrCreateRoomFor(ctx, f.matchAB.ID, f.c.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestGetOrCreateRoom_Concurrent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	const callers = 8
	ids := make([]string, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		i := i
		g.Go(func() error {
			room, err := f.svc.GetOrCreateRoom(ctx, f.matchAB.ID)
			if err != nil {
				return err
			}
			ids[i] = room.ID
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	var rows int64
	require.NoError(t, f.store.DB.Model(&models.ChatRoom{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestFindByMatch_NoRoomYet(t *testing.T) {
	f := setup(t)
	room, err := f.svc.FindByMatchFor(context.Background(), f.matchAB.ID, f.a.ID)
	require.NoError(t, err)
	assert.Nil(t, room)
}

func TestListRoomsForUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := f.room(t)

	rooms, err := f.svc.ListRoomsForUser(ctx, f.b.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, room.ID, rooms[0].ID)

	rooms, err = f.svc.ListRoomsForUser(ctx, f.c.ID)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestPostMessage_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := f.room(t)

	_, err := f.svc.PostMessage(ctx, room.ID, f.a.ID, "   ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidContent)

	_, err = f.svc.PostMessage(ctx, room.ID, f.a.ID, strings.Repeat("a", chat.DefaultMaxMessageLength+1))
	assert.ErrorIs(t, err, apperrors.ErrInvalidContent)

	msg, err := f.svc.PostMessage(ctx, room.ID, f.a.ID, strings.Repeat("멍", chat.DefaultMaxMessageLength))
	require.NoError(t, err, "the limit counts characters, not bytes")
	assert.False(t, msg.IsRead)

	_, err = f.svc.PostMessage(ctx, uuid.NewString(), f.a.ID, "hi")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)

	assert.Len(t, f.broker.Events(), 1)
}

func TestPostMessage_PublishesCommittedMessage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := f.room(t)

	msg, err := f.svc.PostMessage(ctx, room.ID, f.a.ID, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "  hello  ", msg.Content, "content is stored as sent")
	assert.Equal(t, "Bori", msg.SenderName)
	assert.NotZero(t, msg.ID)

	events := f.broker.Events()
	require.Len(t, events, 1)
	ev, ok := events[0].(models.MessageEvent)
	require.True(t, ok)
	assert.Equal(t, msg.ID, ev.Message.ID)
	assert.Equal(t, room.ID, ev.Room())
	assert.Equal(t, "Bori", models.Encode(ev).SenderName)

	history, err := f.svc.GetHistory(ctx, room.ID, f.b.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "  hello  ", history[0].Content)
	assert.Equal(t, "Bori", history[0].SenderName)
}

// failingStore rejects every append.
type failingStore struct {
	*storage.Service
}

func (failingStore) SaveMessage(context.Context, *models.ChatMessage) error {
	return fmt.Errorf("disk full")
}

func TestPostMessage_NoPublishWhenSaveFails(t *testing.T) {
	f := setup(t)
	room := f.room(t)

	broker := new(MockBroker)
	svc := chat.NewService(failingStore{f.store}, f.store, broker, translations, chat.Options{})

	_, err := svc.PostMessage(context.Background(), room.ID, f.a.ID, "hi")
	require.Error(t, err)
	broker.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestPostMessage_ConcurrentOrdering(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := f.room(t)

	const perSender = 20
	var g errgroup.Group
	for _, sender := range []string{f.a.ID, f.b.ID} {
		sender := sender
		g.Go(func() error {
			for i := 0; i < perSender; i++ {
				if _, err := f.svc.PostMessage(ctx, room.ID, sender, fmt.Sprintf("%s-%d", sender, i)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	history, err := f.svc.GetHistory(ctx, room.ID, f.a.ID)
	require.NoError(t, err)
	require.Len(t, history, 2*perSender)

	events := f.broker.Events()
	require.Len(t, events, len(history))
	for i, ev := range events {
		assert.Equal(t, history[i].ID, ev.(models.MessageEvent).Message.ID, "delivery order follows the log at %d", i)
	}

	// Each sender's own messages keep their relative order.
	next := map[string]int{}
	for _, msg := range history {
		assert.Equal(t, fmt.Sprintf("%s-%d", msg.SenderID, next[msg.SenderID]), msg.Content)
		next[msg.SenderID]++
	}
}

func TestAccessIsolation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := f.room(t)

	_, err := f.svc.PostMessage(ctx, room.ID, f.a.ID, "hi")
	require.NoError(t, err)

	_, err = f.svc.GetHistory(ctx, room.ID, f.c.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.svc.PostMessage(ctx, room.ID, f.c.ID, "hello?")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.svc.MarkRead(ctx, room.ID, f.c.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.svc.UnreadCount(ctx, room.ID, f.c.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.svc.LastMessage(ctx, room.ID, f.c.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	history, err := f.svc.GetHistory(ctx, room.ID, f.b.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].IsRead, "a stranger's attempt changes nothing")
}

func TestMarkRead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := f.room(t)

	for _, content := range []string{"one", "two"} {
		_, err := f.svc.PostMessage(ctx, room.ID, f.a.ID, content)
		require.NoError(t, err)
	}
	_, err := f.svc.PostMessage(ctx, room.ID, f.b.ID, "mine")
	require.NoError(t, err)

	n, err := f.svc.MarkRead(ctx, room.ID, f.b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n, "own messages are never marked")

	n, err = f.svc.MarkRead(ctx, room.ID, f.b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	unread, err := f.svc.UnreadCount(ctx, room.ID, f.a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	history, err := f.svc.GetHistory(ctx, room.ID, f.a.ID)
	require.NoError(t, err)
	for _, msg := range history {
		assert.Equal(t, msg.SenderID == f.a.ID, msg.IsRead)
	}
}

func TestLastMessage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := f.room(t)

	last, err := f.svc.LastMessage(ctx, room.ID, f.a.ID)
	require.NoError(t, err)
	assert.Nil(t, last)

	_, err = f.svc.PostMessage(ctx, room.ID, f.a.ID, "first")
	require.NoError(t, err)
	_, err = f.svc.PostMessage(ctx, room.ID, f.b.ID, "second")
	require.NoError(t, err)

	last, err = f.svc.LastMessage(ctx, room.ID, f.a.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "second", last.Content)
	assert.Equal(t, "Coco", last.SenderName)
}

func TestEndedMatchKeepsRoomUsable(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := f.room(t)

	_, err := f.matches.UpdateStatus(ctx, f.matchAB.ID, models.MatchEnded)
	require.NoError(t, err)

	_, err = f.svc.PostMessage(ctx, room.ID, f.a.ID, "still here")
	require.NoError(t, err)
	history, err := f.svc.GetHistory(ctx, room.ID, f.b.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestHandleFrame(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	room := f.room(t)

	err := f.svc.HandleFrame(ctx, room.ID, f.a.ID, models.InboundFrame{Type: models.EventEnter})
	require.NoError(t, err)
	err = f.svc.HandleFrame(ctx, room.ID, f.a.ID, models.InboundFrame{Type: models.EventMessage, Content: "hi", SenderID: f.a.ID})
	require.NoError(t, err)
	err = f.svc.HandleFrame(ctx, room.ID, f.a.ID, models.InboundFrame{Type: models.EventLeave, RoomID: room.ID})
	require.NoError(t, err)

	events := f.broker.Events()
	require.Len(t, events, 3)
	enter, ok := events[0].(models.EnterEvent)
	require.True(t, ok)
	assert.Equal(t, "Bori entered the room.", enter.Notice)
	assert.IsType(t, models.MessageEvent{}, events[1])
	leave, ok := events[2].(models.LeaveEvent)
	require.True(t, ok)
	assert.Equal(t, "Bori left the room.", leave.Notice)

	history, err := f.svc.GetHistory(ctx, room.ID, f.a.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "presence notices are not persisted")

	err = f.svc.HandleFrame(ctx, room.ID, f.a.ID, models.InboundFrame{Type: models.EventMessage, Content: "spoof", SenderID: f.b.ID})
	assert.Equal(t, apperrors.CodePermissionDenied, apperrors.CodeOf(err))

	err = f.svc.HandleFrame(ctx, room.ID, f.a.ID, models.InboundFrame{Type: "typing"})
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	err = f.svc.HandleFrame(ctx, room.ID, f.c.ID, models.InboundFrame{Type: models.EventEnter})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
