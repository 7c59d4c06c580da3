package bot

import (
	"testing"
	"time"
)

func TestDraftStoreIdleByDefault(t *testing.T) {
	store := NewDraftStore(time.Minute)
	if got := store.Get(42); got.State != StateIdle {
		t.Errorf("fresh store should return idle draft, got state %v", got.State)
	}
}

func TestDraftStorePutGetClear(t *testing.T) {
	store := NewDraftStore(time.Minute)
	store.Put(42, Draft{State: StateAwaitingAPIKey, Exchange: "bybit", Demo: true})

	got := store.Get(42)
	if got.State != StateAwaitingAPIKey || got.Exchange != "bybit" || !got.Demo {
		t.Errorf("unexpected draft: %+v", got)
	}

	// Other users are unaffected.
	if other := store.Get(43); other.State != StateIdle {
		t.Errorf("drafts leaked across users: %+v", other)
	}

	store.Clear(42)
	if got := store.Get(42); got.State != StateIdle {
		t.Errorf("cleared draft should be idle, got %+v", got)
	}
}

func TestDraftStoreExpires(t *testing.T) {
	store := NewDraftStore(10 * time.Millisecond)
	store.Put(42, Draft{State: StateAwaitingQuestion})

	time.Sleep(30 * time.Millisecond)
	if got := store.Get(42); got.State != StateIdle {
		t.Errorf("draft should have expired, got %+v", got)
	}
}

func TestIsSkip(t *testing.T) {
	for _, text := range []string{btnSkip, "skip", "Skip", "no", "none"} {
		if !isSkip(text) {
			t.Errorf("isSkip(%q) = false, want true", text)
		}
	}
	if isSkip("my-passphrase") {
		t.Error("real passphrase misread as skip")
	}
}
