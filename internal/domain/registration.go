package domain

import "time"

// Registration booking inquiry submitted from the public form
type Registration struct {
	ID        int64     `json:"id,string"`
	FullName  string    `gorm:"size:255" json:"fullName"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Phone     string    `gorm:"size:64" json:"phone,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (Registration) TableName() string {
	return "registration"
}

const (
	MailKindAdminNotification = "admin_notification"
	MailKindVisitorAck        = "visitor_ack"

	MailStatusPending = "pending"
	MailStatusSent    = "sent"
	MailStatusFailed  = "failed"
	MailStatusSkipped = "skipped"
)

// MailOutbox outbound email tied to a registration, kept for retry
type MailOutbox struct {
	ID             int64      `json:"id,string"`
	RegistrationID int64      `gorm:"index" json:"registration_id,string"`
	Kind           string     `gorm:"size:32" json:"kind"`
	Recipient      string     `gorm:"size:255" json:"recipient"`
	Subject        string     `json:"subject"`
	Body           string     `json:"-"`
	Status         string     `gorm:"size:16;index" json:"status"`
	Attempts       int        `json:"attempts"`
	LastError      string     `json:"last_error"`
	SentAt         *time.Time `json:"sent_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (MailOutbox) TableName() string {
	return "mail_outbox"
}
