package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHook struct {
	events []Event
}

func (h *recordingHook) Notify(_ context.Context, evt Event) error {
	h.events = append(h.events, evt)
	return nil
}

func TestEmitterDefaultsChannelAndEmits(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{Enabled: true})
	if !em.Enabled() {
		t.Fatalf("expected emitter enabled")
	}
	err := em.Emit(context.Background(), Event{
		Verb:       "listview.bulk.delete",
		ObjectType: "list",
		ObjectID:   "admin.list.inventory",
	})
	if err != nil {
		t.Fatalf("emit returned error: %v", err)
	}
	if len(hook.events) != 1 {
		t.Fatalf("expected event emitted, got %d", len(hook.events))
	}
	if hook.events[0].Channel != DefaultChannel {
		t.Fatalf("expected default channel %q, got %q", DefaultChannel, hook.events[0].Channel)
	}
}

func TestEmitterKeepsExplicitChannel(t *testing.T) {
	capture := &CaptureHook{}
	em := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "admin"})
	require.NoError(t, em.Emit(context.Background(), Event{Verb: "v", ObjectType: "list", Channel: "chat"}))
	require.NoError(t, em.Emit(context.Background(), Event{Verb: "v", ObjectType: "list"}))

	require.Len(t, capture.Events, 2)
	assert.Equal(t, "chat", capture.Events[0].Channel)
	assert.Equal(t, "admin", capture.Events[1].Channel)
}

func TestEmitterDisabledWithoutHooks(t *testing.T) {
	em := NewEmitter(nil, Config{Enabled: true})
	if em.Enabled() {
		t.Fatalf("expected emitter disabled without hooks")
	}
	var nilEmitter *Emitter
	assert.False(t, nilEmitter.Enabled())
	assert.NoError(t, nilEmitter.Emit(context.Background(), Event{Verb: "v", ObjectType: "list"}))
}

func TestEmitterDisabledByConfig(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{})
	require.NoError(t, em.Emit(context.Background(), Event{Verb: "v", ObjectType: "list"}))
	assert.Empty(t, hook.events)
}

func TestHooksJoinErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	hooks := Hooks{
		HookFunc(func(context.Context, Event) error { return errA }),
		nil,
		HookFunc(func(context.Context, Event) error { return errB }),
	}
	err := hooks.Notify(context.Background(), Event{Verb: "v", ObjectType: "list"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}
