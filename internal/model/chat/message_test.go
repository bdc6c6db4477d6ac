package chat

import (
	"testing"
	"time"
)

func TestNewTurnIDsAreOrdered(t *testing.T) {
	first := NewTurn("s1", RoleUser, "hello")
	time.Sleep(2 * time.Millisecond)
	second := NewTurn("s1", RoleAssistant, "hi there")

	if first.ID == "" || second.ID == "" {
		t.Fatal("expected turn identifiers")
	}
	if first.ID >= second.ID {
		t.Fatalf("expected ids in creation order: %s >= %s", first.ID, second.ID)
	}
	if first.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %s", first.CreatedAt.Location())
	}
	if second.Role != RoleAssistant || second.SessionID != "s1" {
		t.Fatalf("unexpected turn %+v", second)
	}
}
