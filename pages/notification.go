package pages

// Notification lists the elements of the approval popup.
var Notification = struct {
	ApproveButton string
	RejectButton  string
}{
	ApproveButton: `button:has-text("Approve")`,
	RejectButton:  `button:has-text("Reject")`,
}

// Permission lists the elements of the permission management panel.
var Permission = struct {
	DisconnectAllText string
}{
	DisconnectAllText: "Disconnect All",
}

// Extension URLs relative to chrome-extension://<id>/.
const (
	OnboardingPath   = "register.html"
	NotificationPath = "popup.html"
	PermissionPath   = "popup.html#/setting/security/permission"
)
