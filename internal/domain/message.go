package domain

import (
	"time"

	"gorm.io/gorm"
)

type MessageStatus string

const (
	StatusNew     MessageStatus = "new"
	StatusRead    MessageStatus = "read"
	StatusReplied MessageStatus = "replied"
)

// Valid reports whether s is one of the known triage states
func (s MessageStatus) Valid() bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied:
		return true
	}
	return false
}

type ContactMessage struct {
	ID        string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string        `gorm:"type:text;not null" json:"name"`
	Email     string        `gorm:"type:text;not null" json:"email"`
	Subject   string        `gorm:"type:text;not null" json:"subject"`
	Message   string        `gorm:"type:text;not null" json:"message"`
	Status    MessageStatus `gorm:"type:varchar(16);not null;default:'new'" json:"status"`
	CreatedAt time.Time     `gorm:"not null;index;autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time     `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}

// AfterFind normalizes timestamps read back from the database, whose driver
// reports them in the server's local zone.
func (m *ContactMessage) AfterFind(_ *gorm.DB) error {
	m.CreatedAt = Timestamp(m.CreatedAt)
	m.UpdatedAt = Timestamp(m.UpdatedAt)
	return nil
}

// MessagePatch carries the fields a client may change on an existing message.
// Nil fields are left untouched.
type MessagePatch struct {
	Name    *string
	Email   *string
	Subject *string
	Message *string
	Status  *MessageStatus
}

// NewContactMessage builds a message ready to be stored. Every text field is required.
func NewContactMessage(name, email, subject, message string) (*ContactMessage, error) {
	if name == "" || email == "" || subject == "" || message == "" {
		return nil, &ValidationError{Msg: "All fields are required"}
	}
	return &ContactMessage{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
		Status:  StatusNew,
	}, nil
}

// Validate checks the patch before it reaches the store
func (p MessagePatch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return &ValidationError{Field: "status", Msg: "Invalid status"}
	}
	for _, f := range []struct {
		name string
		val  *string
	}{
		{"name", p.Name},
		{"email", p.Email},
		{"subject", p.Subject},
		{"message", p.Message},
	} {
		if f.val != nil && *f.val == "" {
			return &ValidationError{Field: f.name, Msg: "Field '" + f.name + "' cannot be empty"}
		}
	}
	return nil
}

// Apply merges the patch into m and moves UpdatedAt forward to now,
// or one tick past the previous value when the clock has not advanced.
func (m *ContactMessage) Apply(p MessagePatch, now time.Time) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Email != nil {
		m.Email = *p.Email
	}
	if p.Subject != nil {
		m.Subject = *p.Subject
	}
	if p.Message != nil {
		m.Message = *p.Message
	}
	if p.Status != nil {
		m.Status = *p.Status
	}

	now = Timestamp(now)
	if !now.After(m.UpdatedAt) {
		now = m.UpdatedAt.Add(time.Microsecond)
	}
	m.UpdatedAt = now
}

// Timestamp normalizes t to the precision every store can round-trip
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
