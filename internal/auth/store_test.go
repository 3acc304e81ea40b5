package auth

import (
	"testing"
	"time"
)

func TestIssueAndLookup(t *testing.T) {
	store := NewStore(time.Hour)
	id := Identity{PlayerID: 7, Username: "newton"}

	token := store.Issue(id)
	if token == "" {
		t.Fatal("Expected a nonempty token")
	}

	got, ok := store.Lookup(token)
	if !ok {
		t.Fatal("Expected the token to resolve")
	}
	if got != id {
		t.Errorf("Expected identity %+v, got %+v", id, got)
	}

	other := store.Issue(Identity{PlayerID: 8, Username: "leibniz"})
	if other == token {
		t.Error("Expected distinct tokens per issue")
	}
}

func TestLookupUnknownToken(t *testing.T) {
	store := NewStore(time.Hour)
	if _, ok := store.Lookup("not-a-token"); ok {
		t.Error("Expected an unknown token to fail lookup")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	store := NewStore(-time.Second)
	token := store.Issue(Identity{PlayerID: 1, Username: "gauss"})

	if _, ok := store.Lookup(token); ok {
		t.Error("Expected an expired token to fail lookup")
	}
	// The expired entry is also swept.
	if _, ok := store.Lookup(token); ok {
		t.Error("Expected the expired token to stay invalid")
	}
}

func TestRevoke(t *testing.T) {
	store := NewStore(time.Hour)
	token := store.Issue(Identity{PlayerID: 2, Username: "euler"})

	store.Revoke(token)
	if _, ok := store.Lookup(token); ok {
		t.Error("Expected a revoked token to fail lookup")
	}
}
