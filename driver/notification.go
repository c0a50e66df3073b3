package driver

// NotificationOutcome is the result of looking for the extension notification popup.
// It is either NotificationFound or NotificationNotFound.
type NotificationOutcome interface {
	isNotificationOutcome()
}

// NotificationFound carries the focused notification window.
type NotificationFound struct {
	Window Window
}

// NotificationNotFound means no notification window appeared in time.
// This is expected when the extension approved implicitly.
type NotificationNotFound struct{}

func (NotificationFound) isNotificationOutcome()    {}
func (NotificationNotFound) isNotificationOutcome() {}
