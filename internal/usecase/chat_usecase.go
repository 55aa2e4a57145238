package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pairchat/internal/domain/entity"
	"pairchat/pkg/logger"
)

// ChatEngine is the synchronization core: the single owner of conversation
// state. It merges the REST-hydrated snapshot with frames delivered by the
// transport, reconciles optimistic sends against echoes, and tracks unread
// counts against the one active conversation.
//
// All public operations settle without returning errors: failures are
// handled where they occur (logged, prior state preserved) and a missing
// session token turns every operation into a no-op.
type ChatEngine struct {
	session      Session
	api          APIClient
	transport    Transport
	activeStore  ActiveStore
	data         *DataUseCase
	historyLimit int
	fanout       *dispatcher

	mu              sync.RWMutex
	conversations   []*entity.Conversation
	activeID        int64
	loadingMessages bool
	historySeq      map[int64]uint64
}

func NewChatEngine(
	session Session,
	api APIClient,
	transport Transport,
	activeStore ActiveStore,
	data *DataUseCase,
	historyLimit int,
) *ChatEngine {
	e := &ChatEngine{
		session:      session,
		api:          api,
		transport:    transport,
		activeStore:  activeStore,
		data:         data,
		historyLimit: historyLimit,
		historySeq:   make(map[int64]uint64),
	}
	e.fanout = &dispatcher{
		refreshTasks:   func() { e.RefreshTasks(context.Background()) },
		refreshDebts:   func() { e.RefreshDebts(context.Background()) },
		refreshBalance: func() { e.RefreshBalance(context.Background()) },
	}
	return e
}

// Initialize brings the engine to a live state: local user, conversation
// snapshot, dependent collections, transport connection, and the persisted
// active conversation.
func (e *ChatEngine) Initialize(ctx context.Context) {
	token := e.session.Token()
	if token == "" {
		return
	}

	if err := e.session.EnsureUser(ctx); err != nil {
		logger.Warn("could not resolve local user: %v", err)
	}

	e.FetchConversations(ctx)
	e.RefreshTasks(ctx)
	e.RefreshDebts(ctx)
	e.data.FetchBalance(ctx)

	if err := e.transport.Connect(token); err != nil {
		logger.Error("transport connect failed: %v", err)
	}

	if id, ok := e.activeStore.Load(); ok {
		e.SetActiveConversation(id)
	}
}

// Hydrate replaces the whole conversation map. Pending local state is not
// carried over; hydration is a full replace.
func (e *ChatEngine) Hydrate(conversations []*entity.Conversation) {
	e.mu.Lock()
	e.conversations = conversations
	e.mu.Unlock()
}

// FetchConversations builds one empty conversation per known counterpart.
func (e *ChatEngine) FetchConversations(ctx context.Context) {
	token := e.session.Token()
	if token == "" {
		return
	}

	users, err := e.api.ListUsers(ctx, token)
	if err != nil {
		logger.Error("fetch conversations failed: %v", err)
		return
	}

	var selfID int64
	if me := e.session.CurrentUser(); me != nil {
		selfID = me.ID
	}

	conversations := make([]*entity.Conversation, 0, len(users))
	for _, u := range users {
		if u.ID == selfID {
			continue
		}
		conversations = append(conversations, &entity.Conversation{
			ID:       u.ID,
			User:     u,
			Messages: []entity.Message{},
		})
	}
	e.Hydrate(conversations)
}

// FetchMessages replaces one conversation's history, most recent last. A
// response that arrives after a newer request for the same conversation is
// discarded; a response for a conversation the user has navigated away from
// still fills that conversation's own history.
func (e *ChatEngine) FetchMessages(ctx context.Context, conversationID int64) {
	token := e.session.Token()
	if token == "" {
		return
	}

	e.mu.Lock()
	if e.findLocked(conversationID) == nil {
		e.mu.Unlock()
		return
	}
	e.historySeq[conversationID]++
	seq := e.historySeq[conversationID]
	e.loadingMessages = true
	e.mu.Unlock()

	messages, err := e.api.ListMessages(ctx, token, conversationID, e.historyLimit)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadingMessages = false

	if err != nil {
		logger.Error("fetch messages failed for %d: %v", conversationID, err)
		return
	}
	if e.historySeq[conversationID] != seq {
		logger.Debug("discarding superseded history response for %d", conversationID)
		return
	}
	conv := e.findLocked(conversationID)
	if conv == nil {
		return
	}

	history := make([]entity.Message, len(messages))
	for i, m := range messages {
		m.Status = entity.MessageStatusRead
		history[len(messages)-1-i] = m
	}
	conv.Messages = history
	if len(history) > 0 {
		conv.LastMessage = &conv.Messages[len(conv.Messages)-1]
	}
}

// SendMessage appends an optimistic copy and then asks the transport to
// transmit. The sender sees their message immediately whether or not the
// wire frame goes out.
func (e *ChatEngine) SendMessage(conversationID int64, text string) {
	token := e.session.Token()
	if token == "" {
		return
	}
	me := e.session.CurrentUser()
	if me == nil {
		return
	}

	e.mu.Lock()
	conv := e.findLocked(conversationID)
	if conv == nil {
		e.mu.Unlock()
		return
	}
	msg := entity.Message{
		LocalID:    uuid.NewString(),
		SenderID:   me.ID,
		ReceiverID: conversationID,
		Content:    text,
		CreatedAt:  time.Now(),
		Status:     entity.MessageStatusSent,
	}
	conv.Messages = append(conv.Messages, msg)
	conv.LastMessage = &conv.Messages[len(conv.Messages)-1]
	e.mu.Unlock()

	if err := e.transport.Send(entity.SendFrame{ReceiverID: conversationID, Content: text}); err != nil {
		logger.Error("send failed for %d: %v", conversationID, err)
	}
}

// HandleFrame is the transport's delivery point. Frames are processed in
// arrival order; side-effect fan-out runs off the delivering goroutine so a
// slow refresh never holds up the next frame.
func (e *ChatEngine) HandleFrame(frame entity.InboundFrame) {
	switch frame.Type {
	case entity.FrameTypeMessage:
		echo := false
		if me := e.session.CurrentUser(); me != nil {
			echo = classifyInbound(me.ID, frame) == verdictEcho
		}
		if !echo {
			e.applyInbound(frame.Message())
		}
		go e.fanout.dispatch(frame)

	case entity.FrameTypeNotification:
		go e.fanout.dispatch(frame)

	default:
		logger.Debug("ignoring frame type %q", frame.Type)
	}
}

// applyInbound appends a reconciled non-echo message and bumps unread when
// its conversation is not the active one.
func (e *ChatEngine) applyInbound(msg entity.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()

	conv := e.findLocked(msg.SenderID)
	if conv == nil {
		logger.Debug("inbound message for unknown conversation %d", msg.SenderID)
		return
	}

	conv.Messages = append(conv.Messages, msg)
	conv.LastMessage = &conv.Messages[len(conv.Messages)-1]
	if e.activeID != conv.ID {
		conv.UnreadCount++
	}
}

// SetActiveConversation activates a conversation: unread drops to zero, the
// id is persisted, and a history load is kicked off. Unknown ids are a
// no-op so the active pointer never dangles.
func (e *ChatEngine) SetActiveConversation(id int64) {
	e.mu.Lock()
	conv := e.findLocked(id)
	if conv == nil {
		e.mu.Unlock()
		return
	}
	e.activeID = id
	conv.UnreadCount = 0
	e.mu.Unlock()

	e.activeStore.Save(id)
	go e.FetchMessages(context.Background(), id)
}

func (e *ChatEngine) ActiveConversationID() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeID
}

// ActiveConversation is a plain lookup, recomputed on demand.
func (e *ChatEngine) ActiveConversation() (entity.Conversation, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if conv := e.findLocked(e.activeID); conv != nil {
		return *conv, true
	}
	return entity.Conversation{}, false
}

func (e *ChatEngine) Conversation(id int64) (entity.Conversation, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if conv := e.findLocked(id); conv != nil {
		return *conv, true
	}
	return entity.Conversation{}, false
}

func (e *ChatEngine) Conversations() []entity.Conversation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]entity.Conversation, len(e.conversations))
	for i, conv := range e.conversations {
		out[i] = *conv
	}
	return out
}

func (e *ChatEngine) LoadingMessages() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadingMessages
}

// RefreshTasks re-fetches the task list and re-attaches each conversation's
// slice of it.
func (e *ChatEngine) RefreshTasks(ctx context.Context) {
	token := e.session.Token()
	if token == "" {
		return
	}

	tasks, err := e.api.ListTasks(ctx, token)
	if err != nil {
		logger.Error("refresh tasks failed: %v", err)
		return
	}

	// the global cache shares this fetch, so a task annotation refreshes it
	// too
	e.data.storeTasks(tasks)

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, conv := range e.conversations {
		var mine []entity.Task
		for _, t := range tasks {
			if t.CreatedBy == conv.ID || t.AssignedTo == conv.ID {
				mine = append(mine, t)
			}
		}
		conv.Tasks = mine
	}
}

// RefreshDebts re-fetches active debt records and projects them into each
// conversation's point of view, newest first.
func (e *ChatEngine) RefreshDebts(ctx context.Context) {
	token := e.session.Token()
	if token == "" {
		return
	}
	if err := e.session.EnsureUser(ctx); err != nil {
		return
	}
	me := e.session.CurrentUser()
	if me == nil {
		return
	}

	debts, err := e.api.ListActiveDebts(ctx, token, 100)
	if err != nil {
		logger.Error("refresh debts failed: %v", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, conv := range e.conversations {
		var projected []entity.ConversationDebt
		for _, debt := range debts {
			if debt.DebtorID != conv.ID && debt.CreditorID != conv.ID {
				continue
			}
			cd := entity.ConversationDebt{
				ID:        debt.ID,
				Amount:    debt.Amount,
				CreatedAt: debt.CreatedAt,
			}
			if debt.DebtorID == me.ID {
				cd.WhoOwes = "me"
				cd.Description = fmt.Sprintf("you owe %s", conv.User.Username)
			} else {
				cd.WhoOwes = "other"
				cd.Description = fmt.Sprintf("%s owes you", conv.User.Username)
			}
			projected = append(projected, cd)
		}
		sort.Slice(projected, func(i, j int) bool {
			return projected[i].CreatedAt.After(projected[j].CreatedAt)
		})
		conv.Debts = projected
	}
}

// RefreshBalance delegates to the data cache; balance is derived from debts
// and is never refreshed alone by the dispatcher.
func (e *ChatEngine) RefreshBalance(ctx context.Context) {
	if e.session.Token() == "" {
		return
	}
	e.data.FetchBalance(ctx)
}

// Close tears down the transport. No automatic reconnect happens afterwards;
// a fresh Initialize or Connect is required.
func (e *ChatEngine) Close() {
	e.transport.Close()
}

func (e *ChatEngine) findLocked(id int64) *entity.Conversation {
	for _, conv := range e.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}
