package buddy

const (
	textConfirmPrompt = "You've received a buddy request code. By replying 'yes', you agree to be the accountability buddy for the requesting user. " +
		"As an accountability buddy, if they don't complete any tasks in 7 days, you'll receive a reminder to check in on them. " +
		"Reply 'yes' to accept or 'no' to decline."
	textAcceptedResponder = "Thank you! You are now registered as an accountability buddy."
	textAcceptedInviter   = "Your accountability buddy request has been accepted!"
	textDeclinedResponder = "You have declined the buddy request."
	textDeclinedInviter   = "Unfortunately, your accountability buddy request was declined."
	textExpired           = "Buddy request expired. No one responded in time."
	textNotConfirmed      = "Buddy request expired. The other person did not confirm in time."
	textUnreachable       = "Buddy request cancelled. I could not reach the other person."
	textLinkFailed        = "Sorry, the buddy link could not be saved. Please ask them to try again."
)
