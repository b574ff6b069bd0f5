package domain

// EventCategory classifies an inbound session event for the network filter.
type EventCategory string

const (
	EventRoomLeft                   EventCategory = "room_left"
	EventLeavePropertiesChanged     EventCategory = "leave_properties_changed"
	EventLeaveRoomPropertiesChanged EventCategory = "leave_room_properties_changed"
	EventOther                      EventCategory = "other"
)

// EventCategoryFromCode maps raw transport event codes. Codes 1..3 are the
// transport's leave and cleanup notifications.
func EventCategoryFromCode(code byte) EventCategory {
	switch code {
	case 1:
		return EventRoomLeft
	case 2:
		return EventLeavePropertiesChanged
	case 3:
		return EventLeaveRoomPropertiesChanged
	default:
		return EventOther
	}
}

// AdmitsBannedSender reports whether events of this category still pass when the
// sender is banned, so that leaving and removal can complete.
func (c EventCategory) AdmitsBannedSender() bool {
	switch c {
	case EventRoomLeft, EventLeavePropertiesChanged, EventLeaveRoomPropertiesChanged:
		return true
	default:
		return false
	}
}
