package messages

import (
	"fmt"
)

// Common
const (
	Error       = "❌ Something went wrong. Please try again later."
	Processing  = "Processing..."
	UseButtons  = "Please use the buttons below:"
	AboutUs     = "We Are Anomonus"
	HowToUseMap = "This is how to use maps"
)

// Buttons
const (
	ButtonBuySubscription = "Buy subscription"
	ButtonAboutUs         = "About us"
	ButtonHowToUseMap     = "How to use Map"
	ButtonBuyStars        = "Buy Stars"
	ButtonTerms           = "Terms"
	ButtonPaySupport      = "Paysupport"
	ButtonSupport         = "Support"
)

// Start and linking
const (
	Welcome           = "Welcome to Anomonus Bot"
	StartAskHash      = "🔐 Welcome to Anomonus Bot\n\nPlease enter your registration hash:"
	EnterHashPrompt   = "Please enter your registration hash:"
	InvalidHashFormat = "❌ Invalid hash format. Hash must be 24 characters (12 letters + 12 numbers).\n\n" + EnterHashPrompt
	InvalidStartArgs  = "❌ Invalid start link. Please open the link from the website again or enter your registration hash:"
	StillChecking     = "⏳ Still checking your hash, please wait..."
	LinkSucceeded     = "✅ Hash validated and account linked successfully!\n\n" + Welcome
	LinkFailed        = "✅ Hash validated, but failed to link account. Please try again later.\n\n" + EnterHashPrompt
	LinkNoAccount     = "✅ Hash validated, but user information not found. Please contact support."
)

// Purchase
const (
	AlreadySubscribed    = "You already subscribed"
	ChooseTier           = "📅 Choose your subscription:"
	UnknownTier          = "❌ This subscription plan does not exist. Please choose one from the menu."
	NeedStars            = "Need Telegram Stars?"
	InvoiceErrorCreating = "Error creating invoice. Please try again later."
	NotLinked            = "🔐 Please link your account first.\n\n" + EnterHashPrompt
	PreCheckoutRejected  = "Payment details do not match the selected plan. Please request a new invoice."
)

// Payment completion
const (
	PaymentActivated = "✅ Payment successful! You are now subscribed and can access premium features on our map website."
	PaymentCaveat    = "✅ Payment successful! You are subscribed.\n\n⚠️ Note: If you have issues accessing premium features, please contact support."
	PaymentUnmatched = "⚠️ Payment received, but we could not match it to a subscription plan. Please contact support via /paysupport."
)

// Info commands
const (
	Terms      = "📄 Terms of Use\n\nClick the button below to view our Terms of Use:"
	PaySupport = "💳 Payment & Subscription Support\n\nFor payment or subscription issues, please use the options below:"
)

// Command descriptions
const (
	CommandStart      = "Start and link your account"
	CommandTerms      = "Terms of Use"
	CommandPaySupport = "Payment support"
)

// HashCheckMessage wraps a validation answer the way the hash prompt expects.
func HashCheckMessage(message string) string {
	return fmt.Sprintf("❌ %s\n\n%s", message, EnterHashPrompt)
}

// TierButton renders a tier in the purchase menu.
func TierButton(name string, priceStars int) string {
	return fmt.Sprintf("%s - %d ⭐", name, priceStars)
}

// InvoicePriceLabel labels the single price line of an invoice.
func InvoicePriceLabel(name string) string {
	return fmt.Sprintf("Subscription (%s)", name)
}

// AdminActivationFailure is sent to operators by the reconciliation report.
func AdminActivationFailure(chargeID string, userID int64, tierID, reason string, stars int) string {
	return fmt.Sprintf("⚠️ Unactivated payment\n\nCharge: %s\nUser: %d\nPlan: %s\nStars: %d\nReason: %s",
		chargeID, userID, tierID, stars, reason)
}
