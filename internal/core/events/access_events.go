package events

import (
	"fmt"
	"time"
)

// Access lifecycle event types. Subscribers use these to invalidate cached
// visibility sets or to notify clients that their accessible owner set changed.
const (
	AccessRequestSent     = "access.request.sent"
	AccessRequestAccepted = "access.request.accepted"
	AccessRequestRejected = "access.request.rejected"
	AccessRevoked         = "access.revoked"
	PermissionUpdated     = "access.permission.updated"
)

func NewAccessRequestEvent(eventType string, requestID, requesterID, receiverID int64) BaseEvent {
	return BaseEvent{
		ID:        fmt.Sprintf("%s-%d-%d", eventType, requestID, time.Now().UnixNano()),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"request_id":   requestID,
			"requester_id": requesterID,
			"receiver_id":  receiverID,
		},
	}
}

func NewAccessRevokedEvent(grantorID, granteeID int64) BaseEvent {
	return BaseEvent{
		ID:        fmt.Sprintf("%s-%d-%d-%d", AccessRevoked, grantorID, granteeID, time.Now().UnixNano()),
		Type:      AccessRevoked,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"grantor_id": grantorID,
			"grantee_id": granteeID,
		},
	}
}

func NewPermissionUpdatedEvent(targetID int64, enabled bool, newRole string) BaseEvent {
	return BaseEvent{
		ID:        fmt.Sprintf("%s-%d-%d", PermissionUpdated, targetID, time.Now().UnixNano()),
		Type:      PermissionUpdated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"actor_id":          targetID,
			"can_view_all_data": enabled,
			"new_role":          newRole,
		},
	}
}
