package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aniladanir/portfolio-contact-service/internal/domain"
	"github.com/google/uuid"
)

func newMessage(t *testing.T, name string) *domain.ContactMessage {
	t.Helper()
	msg, err := domain.NewContactMessage(name, name+"@example.com", "Hi", "Hello from "+name)
	if err != nil {
		t.Fatalf("NewContactMessage: %v", err)
	}
	return msg
}

func sameMessage(a, b *domain.ContactMessage) bool {
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.Email == b.Email &&
		a.Subject == b.Subject &&
		a.Message == b.Message &&
		a.Status == b.Status &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}

// runRepositoryContract exercises the behaviour every store implementation shares
func runRepositoryContract(t *testing.T, repo Repository) {
	ctx := context.Background()

	t.Run("insert assigns id and timestamps", func(t *testing.T) {
		stored, err := repo.Insert(ctx, newMessage(t, "alice"))
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		t.Cleanup(func() { _, _ = repo.DeleteByID(ctx, stored.ID) })

		if _, err := uuid.Parse(stored.ID); err != nil {
			t.Errorf("expected uuid id, got %q", stored.ID)
		}
		if stored.Status != domain.StatusNew {
			t.Errorf("expected status new, got %q", stored.Status)
		}
		if stored.CreatedAt.IsZero() || !stored.CreatedAt.Equal(stored.UpdatedAt) {
			t.Errorf("expected createdAt == updatedAt, got %v / %v", stored.CreatedAt, stored.UpdatedAt)
		}
	})

	t.Run("get returns the inserted record", func(t *testing.T) {
		stored, err := repo.Insert(ctx, newMessage(t, "bob"))
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		t.Cleanup(func() { _, _ = repo.DeleteByID(ctx, stored.ID) })

		got, err := repo.GetByID(ctx, stored.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if !sameMessage(got, stored) {
			t.Errorf("expected %+v, got %+v", stored, got)
		}
	})

	t.Run("repeated inserts produce distinct records", func(t *testing.T) {
		first, err := repo.Insert(ctx, newMessage(t, "carol"))
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		second, err := repo.Insert(ctx, newMessage(t, "carol"))
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		t.Cleanup(func() {
			_, _ = repo.DeleteByID(ctx, first.ID)
			_, _ = repo.DeleteByID(ctx, second.ID)
		})

		if first.ID == second.ID {
			t.Errorf("expected distinct ids, both were %q", first.ID)
		}
	})

	t.Run("list is ordered newest first", func(t *testing.T) {
		ids := make(map[string]bool)
		for _, name := range []string{"d1", "d2", "d3"} {
			stored, err := repo.Insert(ctx, newMessage(t, name))
			if err != nil {
				t.Fatalf("Insert: %v", err)
			}
			ids[stored.ID] = true
			t.Cleanup(func() { _, _ = repo.DeleteByID(ctx, stored.ID) })
		}

		msgs, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}

		found := 0
		for i, m := range msgs {
			if ids[m.ID] {
				found++
			}
			if i > 0 && msgs[i-1].CreatedAt.Before(m.CreatedAt) {
				t.Errorf("list out of order at %d: %v before %v", i, msgs[i-1].CreatedAt, m.CreatedAt)
			}
		}
		if found != len(ids) {
			t.Errorf("expected %d inserted records in list, found %d", len(ids), found)
		}
	})

	t.Run("update merges fields and moves updatedAt", func(t *testing.T) {
		stored, err := repo.Insert(ctx, newMessage(t, "erin"))
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		t.Cleanup(func() { _, _ = repo.DeleteByID(ctx, stored.ID) })

		status := domain.StatusRead
		updated, err := repo.Update(ctx, stored.ID, domain.MessagePatch{Status: &status})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}

		if updated.Status != domain.StatusRead {
			t.Errorf("expected status read, got %q", updated.Status)
		}
		if !updated.UpdatedAt.After(stored.UpdatedAt) {
			t.Errorf("expected updatedAt after %v, got %v", stored.UpdatedAt, updated.UpdatedAt)
		}
		if !updated.CreatedAt.Equal(stored.CreatedAt) {
			t.Errorf("createdAt changed from %v to %v", stored.CreatedAt, updated.CreatedAt)
		}
		if updated.Name != stored.Name || updated.Email != stored.Email ||
			updated.Subject != stored.Subject || updated.Message != stored.Message {
			t.Errorf("untouched fields changed: %+v", updated)
		}

		got, err := repo.GetByID(ctx, stored.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if !sameMessage(got, updated) {
			t.Errorf("stored record %+v differs from update result %+v", got, updated)
		}
	})

	t.Run("concurrent updates to one record all apply", func(t *testing.T) {
		stored, err := repo.Insert(ctx, newMessage(t, "grace"))
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		t.Cleanup(func() { _, _ = repo.DeleteByID(ctx, stored.ID) })

		const writers = 20
		results := make([]*domain.ContactMessage, writers)
		errs := make([]error, writers)

		var wg sync.WaitGroup
		for i := range writers {
			wg.Go(func() {
				status := domain.StatusRead
				if i%2 == 0 {
					status = domain.StatusReplied
				}
				results[i], errs[i] = repo.Update(ctx, stored.ID, domain.MessagePatch{Status: &status})
			})
		}
		wg.Wait()

		seen := make(map[int64]bool, writers)
		for i, err := range errs {
			if err != nil {
				t.Fatalf("writer %d: Update: %v", i, err)
			}
			// every write must be applied on top of the previous one
			at := results[i].UpdatedAt.UnixMicro()
			if seen[at] {
				t.Errorf("writer %d: updatedAt %v shared with another write", i, results[i].UpdatedAt)
			}
			seen[at] = true
			if !results[i].UpdatedAt.After(stored.UpdatedAt) {
				t.Errorf("writer %d: updatedAt did not advance", i)
			}
		}

		got, err := repo.GetByID(ctx, stored.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		for i := range results {
			if results[i].UpdatedAt.After(got.UpdatedAt) {
				t.Errorf("writer %d: result newer than stored record", i)
			}
		}
	})

	t.Run("update of unknown id", func(t *testing.T) {
		status := domain.StatusRead
		_, err := repo.Update(ctx, uuid.NewString(), domain.MessagePatch{Status: &status})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete removes the record", func(t *testing.T) {
		stored, err := repo.Insert(ctx, newMessage(t, "frank"))
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}

		deleted, err := repo.DeleteByID(ctx, stored.ID)
		if err != nil {
			t.Fatalf("DeleteByID: %v", err)
		}
		if !sameMessage(deleted, stored) {
			t.Errorf("expected deleted record %+v, got %+v", stored, deleted)
		}

		if _, err := repo.GetByID(ctx, stored.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if _, err := repo.DeleteByID(ctx, stored.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}
