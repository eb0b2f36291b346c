package ports

// ResetNotification carries a freshly issued reset secret to the delivery
// collaborator. This is the only place the plaintext secret travels; it is
// never persisted or logged.
type ResetNotification struct {
	UserID string
	Email  string
	Secret string
}

// ResetNotifier hands reset notifications off for asynchronous delivery.
type ResetNotifier interface {
	Notify(n ResetNotification)
}
