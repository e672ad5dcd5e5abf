package domain

import (
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func statusPtr(s MessageStatus) *MessageStatus { return &s }

func TestMessageStatus_Valid(t *testing.T) {
	tests := []struct {
		status MessageStatus
		want   bool
	}{
		{StatusNew, true},
		{StatusRead, true},
		{StatusReplied, true},
		{"archived", false},
		{"", false},
		{"NEW", false},
	}
	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.want {
			t.Errorf("MessageStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestNewContactMessage_RequiresAllFields(t *testing.T) {
	tests := []struct {
		name    string
		sender  string
		email   string
		subject string
		body    string
	}{
		{"missing name", "", "a@x.com", "Hi", "Hello"},
		{"missing email", "A", "", "Hi", "Hello"},
		{"missing subject", "A", "a@x.com", "", "Hello"},
		{"missing message", "A", "a@x.com", "Hi", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewContactMessage(tt.sender, tt.email, tt.subject, tt.body)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Msg != "All fields are required" {
				t.Errorf("unexpected message %q", vErr.Msg)
			}
		})
	}
}

func TestNewContactMessage_DefaultsToNew(t *testing.T) {
	msg, err := NewContactMessage("A", "a@x.com", "Hi", "Hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Status != StatusNew {
		t.Errorf("expected status new, got %q", msg.Status)
	}
}

func TestMessagePatch_Validate(t *testing.T) {
	tests := []struct {
		name    string
		patch   MessagePatch
		wantErr bool
	}{
		{"empty patch", MessagePatch{}, false},
		{"valid status", MessagePatch{Status: statusPtr(StatusReplied)}, false},
		{"invalid status", MessagePatch{Status: statusPtr("archived")}, true},
		{"empty status", MessagePatch{Status: statusPtr("")}, true},
		{"text fields", MessagePatch{Name: strPtr("B"), Subject: strPtr("Re")}, false},
		{"empty email", MessagePatch{Email: strPtr("")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestContactMessage_ApplyLeavesOmittedFields(t *testing.T) {
	created := Timestamp(time.Now())
	msg := ContactMessage{
		ID: "id-1", Name: "A", Email: "a@x.com", Subject: "Hi", Message: "Hello",
		Status: StatusNew, CreatedAt: created, UpdatedAt: created,
	}

	msg.Apply(MessagePatch{Status: statusPtr(StatusRead)}, created.Add(time.Second))

	if msg.Status != StatusRead {
		t.Errorf("expected status read, got %q", msg.Status)
	}
	if msg.Name != "A" || msg.Email != "a@x.com" || msg.Subject != "Hi" || msg.Message != "Hello" {
		t.Errorf("unexpected field change: %+v", msg)
	}
	if !msg.CreatedAt.Equal(created) {
		t.Errorf("createdAt changed")
	}
	if !msg.UpdatedAt.Equal(created.Add(time.Second)) {
		t.Errorf("expected updatedAt %v, got %v", created.Add(time.Second), msg.UpdatedAt)
	}
}

func TestContactMessage_ApplyAdvancesUpdatedAtWhenClockStalls(t *testing.T) {
	ts := Timestamp(time.Now())
	msg := ContactMessage{CreatedAt: ts, UpdatedAt: ts}

	// same instant and an earlier one must both move updatedAt forward
	msg.Apply(MessagePatch{}, ts)
	if !msg.UpdatedAt.After(ts) {
		t.Fatalf("expected updatedAt after %v, got %v", ts, msg.UpdatedAt)
	}

	prev := msg.UpdatedAt
	msg.Apply(MessagePatch{}, ts.Add(-time.Hour))
	if !msg.UpdatedAt.After(prev) {
		t.Fatalf("expected updatedAt after %v, got %v", prev, msg.UpdatedAt)
	}
}

func TestContactMessage_AfterFindNormalizesToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*60*60)
	created := time.Date(2024, 5, 1, 15, 4, 5, 123456789, zone)
	updated := created.Add(time.Minute)
	msg := ContactMessage{CreatedAt: created, UpdatedAt: updated}

	if err := msg.AfterFind(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.CreatedAt.Location() != time.UTC || msg.UpdatedAt.Location() != time.UTC {
		t.Errorf("expected UTC, got %v and %v", msg.CreatedAt.Location(), msg.UpdatedAt.Location())
	}
	if !msg.CreatedAt.Equal(created.Truncate(time.Microsecond)) {
		t.Errorf("createdAt instant changed: %v", msg.CreatedAt)
	}
	if !msg.UpdatedAt.Equal(updated.Truncate(time.Microsecond)) {
		t.Errorf("updatedAt instant changed: %v", msg.UpdatedAt)
	}
}
