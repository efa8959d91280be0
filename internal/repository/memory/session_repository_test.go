package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"askdb-be/pkg/store"
)

func TestSessionRepositoryGetMissing(t *testing.T) {
	repo := NewSessionRepository(time.Hour, 10)

	if _, found := repo.Get("nope"); found {
		t.Error("Get() found = true for a missing session")
	}
}

func TestSessionRepositorySaveAndGet(t *testing.T) {
	repo := NewSessionRepository(time.Hour, 10)

	repo.Save(&store.Session{
		ID: "s1",
		Turns: []store.Turn{
			{Role: "user", Content: "q1"},
			{Role: "assistant", Content: "a1"},
		},
	})

	sess, found := repo.Get("s1")
	if !found {
		t.Fatal("Get() found = false after Save")
	}
	if len(sess.Turns) != 2 {
		t.Errorf("turns = %d, want 2", len(sess.Turns))
	}
	if sess.LastAccess.IsZero() {
		t.Error("Save must stamp LastAccess")
	}
}

func TestSessionRepositoryTrimsOldestPairsFirst(t *testing.T) {
	repo := NewSessionRepository(time.Hour, 2)

	sess := &store.Session{ID: "s1"}
	for i := 1; i <= 4; i++ {
		sess.Turns = append(sess.Turns,
			store.Turn{Role: "user", Content: fmt.Sprintf("q%d", i)},
			store.Turn{Role: "assistant", Content: fmt.Sprintf("a%d", i)},
		)
	}
	repo.Save(sess)

	got, _ := repo.Get("s1")
	if len(got.Turns) != 4 {
		t.Fatalf("turns = %d, want 4 (2 pairs)", len(got.Turns))
	}
	if got.Turns[0].Content != "q3" {
		t.Errorf("oldest kept turn = %q, want q3", got.Turns[0].Content)
	}
	if got.Turns[3].Content != "a4" {
		t.Errorf("newest kept turn = %q, want a4", got.Turns[3].Content)
	}
}

func TestSessionRepositoryGetReturnsPrivateCopy(t *testing.T) {
	repo := NewSessionRepository(time.Hour, 10)

	repo.Save(&store.Session{
		ID: "s1",
		Turns: []store.Turn{
			{Role: "user", Content: "q1"},
			{Role: "assistant", Content: "a1"},
		},
	})

	a, _ := repo.Get("s1")
	a.Turns[0].Content = "mutated"
	a.Turns = append(a.Turns, store.Turn{Role: "user", Content: "q2"})

	b, _ := repo.Get("s1")
	if len(b.Turns) != 2 {
		t.Fatalf("turns = %d, want 2 (caller appends must not leak in)", len(b.Turns))
	}
	if b.Turns[0].Content != "q1" {
		t.Errorf("stored turn = %q, want q1 (caller mutation leaked in)", b.Turns[0].Content)
	}
}

func TestSessionRepositorySaveCopiesCallerTurns(t *testing.T) {
	repo := NewSessionRepository(time.Hour, 10)

	sess := &store.Session{
		ID:    "s1",
		Turns: []store.Turn{{Role: "user", Content: "q1"}},
	}
	repo.Save(sess)
	sess.Turns[0].Content = "mutated"

	got, _ := repo.Get("s1")
	if got.Turns[0].Content != "q1" {
		t.Errorf("stored turn = %q, want q1 (caller retained a live reference)", got.Turns[0].Content)
	}
}

func TestSessionRepositoryConcurrentAppends(t *testing.T) {
	repo := NewSessionRepository(time.Hour, 50)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sess, found := repo.Get("s1")
			if !found {
				sess = &store.Session{ID: "s1"}
			}
			sess.Turns = append(sess.Turns,
				store.Turn{Role: "user", Content: fmt.Sprintf("q%d", n)},
				store.Turn{Role: "assistant", Content: fmt.Sprintf("a%d", n)},
			)
			repo.Save(sess)
		}(i)
	}
	wg.Wait()

	got, found := repo.Get("s1")
	if !found {
		t.Fatal("session missing after concurrent saves")
	}
	// Last-writer-wins may drop pairs, but never tear one.
	if len(got.Turns)%2 != 0 {
		t.Errorf("turns = %d, want an even count", len(got.Turns))
	}
	for i := 0; i+1 < len(got.Turns); i += 2 {
		if got.Turns[i].Role != "user" || got.Turns[i+1].Role != "assistant" {
			t.Errorf("pair %d has roles %q/%q", i/2, got.Turns[i].Role, got.Turns[i+1].Role)
		}
	}
}

func TestSessionRepositoryDelete(t *testing.T) {
	repo := NewSessionRepository(time.Hour, 10)

	repo.Save(&store.Session{ID: "s1"})
	repo.Delete("s1")

	if _, found := repo.Get("s1"); found {
		t.Error("Get() found = true after Delete")
	}
}

func TestSessionRepositoryExpiry(t *testing.T) {
	repo := NewSessionRepository(20*time.Millisecond, 10)

	repo.Save(&store.Session{ID: "s1"})
	time.Sleep(50 * time.Millisecond)

	if _, found := repo.Get("s1"); found {
		t.Error("Get() found = true after TTL elapsed")
	}
}
