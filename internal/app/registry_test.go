package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/interviewly/relay/internal/domain"
)

func TestRegistryCreateDuplicate(t *testing.T) {
	reg := NewMemoryRegistry()
	now := time.Unix(1000, 0)

	if _, err := reg.Create("room-1", "conn-a", now); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := reg.Create("room-1", "conn-b", now); !errors.Is(err, domain.ErrRoomExists) {
		t.Fatalf("second create err = %v, want ErrRoomExists", err)
	}
}

func TestRegistryGetAndRemove(t *testing.T) {
	reg := NewMemoryRegistry()
	now := time.Unix(1000, 0)

	if _, ok := reg.Get("room-1"); ok {
		t.Fatal("lookup before create succeeded")
	}

	created, err := reg.Create("room-1", "conn-a", now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, ok := reg.Get("room-1")
	if !ok || got != created {
		t.Fatal("lookup after create did not return the created room")
	}

	reg.Remove("room-1")
	if _, ok := reg.Get("room-1"); ok {
		t.Fatal("lookup after remove succeeded")
	}
	// Idempotent.
	reg.Remove("room-1")
}

func TestRegistryCreateRaceSingleWinner(t *testing.T) {
	reg := NewMemoryRegistry()
	now := time.Unix(1000, 0)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = reg.Create("room-1", domain.ConnID(string(rune('a'+i))), now)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("creates succeeded = %d, want exactly 1", wins)
	}
}

func TestRegistryRoomsSnapshot(t *testing.T) {
	reg := NewMemoryRegistry()
	now := time.Unix(1000, 0)
	for _, id := range []domain.RoomID{"a", "b", "c"} {
		if _, err := reg.Create(id, "conn", now); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if got := len(reg.Rooms()); got != 3 {
		t.Fatalf("rooms = %d, want 3", got)
	}
}
