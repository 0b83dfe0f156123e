package delivery

// ConversationRoom identifies the broadcast group for a user pair. Derived,
// never stored: the sorted pair makes it direction-independent.
func ConversationRoom(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// PersonalRoom is the per-user room joined at authentication, used for
// targeted pushes such as inbox-refresh signals.
func PersonalRoom(userID string) string {
	return "user:" + userID
}
