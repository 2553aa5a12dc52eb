package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/scamguard/internal/model"
)

const (
	alice model.UserID = 1
	bob   model.UserID = 2
)

func textEvent(sender model.UserID, name, body string) Event {
	return Event{SenderID: sender, SenderName: name, Body: Text{Body: body}}
}

func staticAnalyzer(score int) AnalyzerFunc {
	return func(_ context.Context, _ Snapshot) model.AnalysisResult {
		return model.AnalysisResult{RiskScore: score, Confidence: 0.9}
	}
}

func TestGroupOwnerRule(t *testing.T) {
	t.Parallel()

	m := NewManager()
	key := Key{Scope: model.ScopeGroup, ChatID: -100, OwnerID: alice}
	target := textEvent(bob, "Bob", "send me the code from the SMS")

	ack, err := m.Start(key, &target)
	require.NoError(t, err)
	assert.Equal(t, 1, ack.Count)
	assert.Equal(t, []Action{ActionComplete, ActionCancel}, ack.Actions)

	_, ok := m.Append(key, bob, textEvent(bob, "Bob", "hurry up"))
	assert.False(t, ok, "non-owner must not extend the session")
	assert.Equal(t, 1, m.Count(key))

	ack, ok = m.Append(key, alice, textEvent(alice, "Alice", "is this real?"))
	assert.True(t, ok)
	assert.Equal(t, 2, ack.Count)
	assert.Equal(t, StateCollecting, m.State(key))
}

func TestPrivateProvenance(t *testing.T) {
	t.Parallel()

	m := NewManager()
	key := Key{Scope: model.ScopePrivate, ChatID: 42, OwnerID: alice}

	ack, err := m.Start(key, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ack.Count)

	m.Append(key, alice, Event{SenderID: alice, Body: Forwarded{Inner: Text{Body: "you won a prize"}}})
	m.Append(key, alice, Event{SenderID: alice, Body: Reply{Text: "what prize?", Quoted: "you won a prize"}})
	m.Append(key, alice, Event{SenderID: alice, Body: Captioned{Attachment: "photo", Caption: "card photo"}})

	var got Snapshot
	_, err = m.Complete(context.Background(), key, AnalyzerFunc(func(_ context.Context, s Snapshot) model.AnalysisResult {
		got = s
		return model.AnalysisResult{}
	}))
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())

	assert.Equal(t, model.MessageForwarded, got.Messages[0].Kind)
	assert.Equal(t, "you won a prize", got.Messages[0].Text)
	assert.Equal(t, model.MessageReply, got.Messages[1].Kind)
	assert.Equal(t, "what prize?\n[Reply to]: you won a prize", got.Messages[1].Text)
	assert.Equal(t, model.MessageText, got.Messages[2].Kind)
	assert.Equal(t, "card photo", got.Messages[2].Text)
	assert.False(t, got.Messages[0].Timestamp.IsZero())
}

func TestGroupReplyIsNotAugmented(t *testing.T) {
	t.Parallel()

	m := NewManager()
	key := Key{Scope: model.ScopeGroup, ChatID: -1, OwnerID: alice}
	_, err := m.Start(key, &Event{SenderID: alice, Body: Reply{Text: "look", Quoted: "quoted"}})
	require.NoError(t, err)

	out, err := m.Complete(context.Background(), key, staticAnalyzer(0))
	require.NoError(t, err)
	assert.Equal(t, "look", out.Snapshot.Messages[0].Text)
	assert.Equal(t, model.MessageText, out.Snapshot.Messages[0].Kind)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	m := NewManager()
	key := Key{Scope: model.ScopePrivate, ChatID: 7, OwnerID: alice}

	_, err := m.Cancel(key)
	require.ErrorIs(t, err, ErrNotCollecting)

	_, err = m.Start(key, nil)
	require.NoError(t, err)
	for i := range 3 {
		ack, ok := m.Append(key, alice, textEvent(alice, "Alice", "msg"))
		require.True(t, ok)
		require.Equal(t, i+1, ack.Count)
	}

	n, err := m.Cancel(key)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, StateIdle, m.State(key))

	_, ok := m.Append(key, alice, textEvent(alice, "Alice", "late"))
	assert.False(t, ok, "idle session must not accept messages")

	ack, err := m.Start(key, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ack.Count)
	ack, ok = m.Append(key, alice, textEvent(alice, "Alice", "fresh"))
	require.True(t, ok)
	assert.Equal(t, 1, ack.Count)
}

func TestStartWhileCollectingAppends(t *testing.T) {
	t.Parallel()

	m := NewManager()
	key := Key{Scope: model.ScopeGroup, ChatID: -5, OwnerID: alice}
	first := textEvent(bob, "Bob", "one")
	second := textEvent(bob, "Bob", "two")

	_, err := m.Start(key, &first)
	require.NoError(t, err)
	ack, err := m.Start(key, &second)
	require.NoError(t, err)
	assert.Equal(t, 2, ack.Count)
}

func TestCompleteResetsAndBlocksDuringAnalysis(t *testing.T) {
	t.Parallel()

	m := NewManager()
	key := Key{Scope: model.ScopePrivate, ChatID: 9, OwnerID: alice}
	_, err := m.Start(key, nil)
	require.NoError(t, err)

	_, err = m.Complete(context.Background(), key, staticAnalyzer(10))
	require.ErrorIs(t, err, ErrNoMessages)
	assert.Equal(t, StateCollecting, m.State(key))

	m.Append(key, alice, textEvent(alice, "Alice", "hello"))

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan Outcome)
	go func() {
		out, err := m.Complete(context.Background(), key, AnalyzerFunc(func(_ context.Context, _ Snapshot) model.AnalysisResult {
			close(entered)
			<-release
			return model.AnalysisResult{RiskScore: 80, Confidence: 0.8}
		}))
		assert.NoError(t, err)
		done <- out
	}()

	<-entered
	assert.Equal(t, StateTerminal, m.State(key))
	_, ok := m.Append(key, alice, textEvent(alice, "Alice", "during"))
	assert.False(t, ok)
	_, err = m.Start(key, nil)
	require.ErrorIs(t, err, ErrBusy)
	_, err = m.Cancel(key)
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	out := <-done
	assert.Equal(t, 80, out.Result.RiskScore)
	assert.Equal(t, 1, out.Snapshot.Len())
	assert.Equal(t, StateIdle, m.State(key))
	assert.Equal(t, 0, m.Count(key))
}

func TestCompleteResetsAfterPanic(t *testing.T) {
	t.Parallel()

	m := NewManager()
	key := Key{Scope: model.ScopePrivate, ChatID: 3, OwnerID: alice}
	_, err := m.Start(key, &Event{SenderID: alice, Body: Text{Body: "x"}})
	require.NoError(t, err)

	assert.Panics(t, func() {
		_, _ = m.Complete(context.Background(), key, AnalyzerFunc(func(context.Context, Snapshot) model.AnalysisResult {
			panic("boom")
		}))
	})
	assert.Equal(t, StateIdle, m.State(key))
}

func TestSpeakerOrdinals(t *testing.T) {
	t.Parallel()

	key := Key{Scope: model.ScopeGroup}
	s := NewSnapshot(key, []model.Message{
		{SenderID: bob, Text: "a"},
		{SenderID: alice, Text: "b"},
		{SenderID: bob, Text: "c"},
	})
	assert.Equal(t, 1, s.SpeakerOf(bob))
	assert.Equal(t, 2, s.SpeakerOf(alice))
	assert.Equal(t, 0, s.SpeakerOf(99))

	bare := Snapshot{Key: key, Messages: s.Messages}
	assert.Equal(t, 1, bare.SpeakerOf(bob))
	assert.Equal(t, 2, bare.SpeakerOf(alice))
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	t.Parallel()

	m := NewManager()
	key := Key{Scope: model.ScopePrivate, ChatID: 11, OwnerID: alice}
	_, err := m.Start(key, nil)
	require.NoError(t, err)

	const n = 100
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Append(key, alice, textEvent(alice, "Alice", "spam"))
		}()
	}
	wg.Wait()
	assert.Equal(t, n, m.Count(key))
}

func TestIdleTimeout(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	m := NewManager(WithIdleTimeout(10*time.Minute), WithClock(clock))
	key := Key{Scope: model.ScopePrivate, ChatID: 1, OwnerID: alice}
	other := Key{Scope: model.ScopePrivate, ChatID: 2, OwnerID: bob}

	_, err := m.Start(key, &Event{SenderID: alice, Body: Text{Body: "hi"}})
	require.NoError(t, err)
	_, err = m.Start(other, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Active())

	advance(5 * time.Minute)
	_, ok := m.Append(key, alice, textEvent(alice, "Alice", "still here"))
	require.True(t, ok)

	advance(6 * time.Minute)
	assert.Equal(t, StateCollecting, m.State(key))
	assert.Equal(t, 1, m.Sweep(), "expired session should be removed")
	assert.Equal(t, StateIdle, m.State(other))

	advance(10 * time.Minute)
	_, ok = m.Append(key, alice, textEvent(alice, "Alice", "too late"))
	assert.False(t, ok)
	assert.Equal(t, 0, m.Active())
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Inbound
		want string
		kind model.MessageKind
	}{
		{name: "text", in: Text{Body: "hello"}, want: "hello", kind: model.MessageText},
		{name: "caption", in: Captioned{Attachment: "photo", Caption: "look"}, want: "look", kind: model.MessageText},
		{name: "forwarded caption", in: Forwarded{Inner: Captioned{Caption: "cap"}}, want: "cap", kind: model.MessageForwarded},
		{name: "reply", in: Reply{Text: "ok", Quoted: "q"}, want: "ok", kind: model.MessageReply},
		{name: "nil", in: nil, want: "", kind: model.MessageText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractText(tt.in))
			assert.Equal(t, tt.kind, Provenance(tt.in))
		})
	}
}
