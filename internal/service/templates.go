package service

import "fmt"

// User-facing message texts. Interpolation is plain Sprintf; the
// gateway truncates anything over the provider limit.
const (
	msgNamePrompt      = "Hi! I'm your SMS assistant. What's your first name?"
	msgNameReprompt    = "Sorry, I didn't catch that. What's your first name? (letters only, please)"
	msgLocationRepromt = "Hmm, that doesn't look like a place. What city or zip code are you in?"
	msgCompleteUnknown = "You're all set! Text me any question and I'll find the answer."
	msgWelcomeBack     = "Welcome back! Ask me anything."
	msgUnsubscribed    = "You've been unsubscribed. Text START anytime to resume."
	msgTextStart       = "Text START to begin using the assistant."
	msgInactiveSub     = "Your subscription is inactive. Please update your billing details to keep using the assistant."
	msgGoodbye         = "Your subscription has ended. Text START anytime to rejoin."
	msgTrialEnding     = "Heads up: your trial ends soon. Add a payment method to keep the assistant going."
	msgPaymentFailed   = "We couldn't process your payment. Please update your billing details."
	msgFallback        = "Sorry, something went wrong on my end. Please try again in a moment."
)

func msgLocationPrompt(name string) string {
	return fmt.Sprintf("Nice to meet you, %s! What city or zip code are you in?", name)
}

func msgComplete(name string) string {
	return fmt.Sprintf("You're all set, %s! Text me any question and I'll find the answer.", name)
}

func msgQuotaWarning(count, remaining, daysRemaining int) string {
	return fmt.Sprintf("You've used %d messages this period. %d remaining over the next %d days.",
		count, remaining, daysRemaining)
}

func msgQuotaExceeded(count, daysRemaining int) string {
	return fmt.Sprintf("You've reached your %d-message limit for this period. It resets in %d days.",
		count, daysRemaining)
}
