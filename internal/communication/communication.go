package communication

import (
	"errors"
	"time"
)

// Communication is a logged interaction with a lead or customer,
// partitioned by owner. Email and SMS entries are also delivered
// through the message gateway.
type Communication struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	OwnerID        int64      `json:"owner_id" gorm:"column:owner_id;not null;index"`
	CustomerID     *int64     `json:"customer_id,omitempty" gorm:"index"`
	LeadID         *int64     `json:"lead_id,omitempty" gorm:"index"`
	Channel        string     `json:"channel" gorm:"not null"`
	Direction      string     `json:"direction" gorm:"default:outbound"`
	Recipient      string     `json:"recipient"`
	Subject        string     `json:"subject"`
	Body           string     `json:"body"`
	DeliveryStatus string     `json:"delivery_status" gorm:"default:logged"`
	ExternalID     string     `json:"external_id,omitempty" gorm:"index"`
	MessageID      string     `json:"message_id,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Communication) TableName() string {
	return "communications"
}

const (
	ChannelEmail   = "email"
	ChannelSMS     = "sms"
	ChannelCall    = "call"
	ChannelMeeting = "meeting"
	ChannelNote    = "note"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Delivery statuses. Call, meeting and note entries are only logged;
// email and sms go through the gateway lifecycle.
const (
	DeliveryStatusLogged = "logged"
	DeliveryStatusQueued = "queued"
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

func ValidChannel(channel string) bool {
	switch channel {
	case ChannelEmail, ChannelSMS, ChannelCall, ChannelMeeting, ChannelNote:
		return true
	}
	return false
}

func DeliverableChannel(channel string) bool {
	return channel == ChannelEmail || channel == ChannelSMS
}

var (
	ErrCommunicationNotFound = errors.New("communication not found")
	ErrUnauthorizedAccess    = errors.New("unauthorized access to communication")
)
