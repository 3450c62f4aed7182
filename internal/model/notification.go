package model

import "time"

// SMS delivery statuses.
const (
	SMSStatusPending   = "pending"
	SMSStatusSent      = "sent"
	SMSStatusDelivered = "delivered"
	SMSStatusFailed    = "failed"
)

// SMSNotification is a write-once delivery audit record.  It copies
// the temporary link and its expiry for traceability but is never
// consulted for authorization decisions.
//
// Fields:
//  ID                – primary key identifier.
//  PhoneNumber       – recipient phone number.
//  Message           – full message body as sent.
//  TemporaryLink     – copy of the link embedded in the message.
//  LinkExpiry        – copy of the link's expiry.
//  Status            – delivery status (see constants above).
//  RelatedEntityType – entity the message is about ('bill').
//  RelatedEntityID   – ID of the related entity.
//  SentAt            – when the message was handed to the gateway.
//  CreatedAt         – creation timestamp.
type SMSNotification struct {
	ID                uint64     // sms_notifications.id
	PhoneNumber       string     // sms_notifications.phone_number
	Message           string     // sms_notifications.message
	TemporaryLink     *string    // sms_notifications.temporary_link (nullable)
	LinkExpiry        *time.Time // sms_notifications.link_expiry (nullable)
	Status            string     // sms_notifications.status
	RelatedEntityType *string    // sms_notifications.related_entity_type (nullable)
	RelatedEntityID   *uint64    // sms_notifications.related_entity_id (nullable)
	SentAt            *time.Time // sms_notifications.sent_at (nullable)
	CreatedAt         time.Time  // sms_notifications.created_at
}

// Notification is a generic in-app message for a user or merchant.
// It is decoupled from the link mechanism except that bill
// notifications are created alongside the SMS record.
//
// Fields:
//  ID                – primary key identifier.
//  UserID            – recipient user (nullable when addressed to a merchant).
//  MerchantID        – recipient merchant (nullable when addressed to a user).
//  Type              – 'bill', 'payment', 'pickup', etc.
//  Title             – short title.
//  Message           – message body.
//  IsRead            – whether the recipient has read it.
//  RelatedEntityType – entity the message is about.
//  RelatedEntityID   – ID of the related entity.
//  CreatedAt         – creation timestamp.
type Notification struct {
	ID                uint64    // notifications.id
	UserID            *uint64   // notifications.user_id (nullable)
	MerchantID        *uint64   // notifications.merchant_id (nullable)
	Type              string    // notifications.type
	Title             string    // notifications.title
	Message           string    // notifications.message
	IsRead            bool      // notifications.is_read
	RelatedEntityType *string   // notifications.related_entity_type (nullable)
	RelatedEntityID   *uint64   // notifications.related_entity_id (nullable)
	CreatedAt         time.Time // notifications.created_at
}
