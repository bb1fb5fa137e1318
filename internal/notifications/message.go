package notifications

import (
	"fmt"
	"strings"
	"time"
)

// Message is a single outbound email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// VerificationEmail builds the address-confirmation email sent after
// registration and on resend.
func VerificationEmail(frontendURL, to, name, token string) Message {
	link := fmt.Sprintf("%s/verify-email?token=%s", strings.TrimRight(frontendURL, "/"), token)
	return Message{
		To:      to,
		Subject: "Verify your email address",
		HTML: fmt.Sprintf(
			`<p>Hi %s,</p><p>Confirm your email address to finish setting up your account.</p><p><a href="%s">Verify email</a></p><p>This link expires in 24 hours.</p>`,
			htmlEscape(name), link,
		),
	}
}

// PasswordResetEmail builds the reset-link email.
func PasswordResetEmail(frontendURL, to, name, token string) Message {
	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(frontendURL, "/"), token)
	return Message{
		To:      to,
		Subject: "Reset your password",
		HTML: fmt.Sprintf(
			`<p>Hi %s,</p><p>We received a request to reset your password.</p><p><a href="%s">Reset password</a></p><p>This link expires in 1 hour. If you did not request a reset you can ignore this email.</p>`,
			htmlEscape(name), link,
		),
	}
}

// TagActivatedEmail confirms a successful activation, echoing the codes
// printed on the tag's insert.
func TagActivatedEmail(frontendURL, to, name, tagCode, activationCode string) Message {
	link := strings.TrimRight(frontendURL, "/") + "/dashboard"
	return Message{
		To:      to,
		Subject: "Tag activated successfully",
		HTML: fmt.Sprintf(
			`<p>Hi %s,</p><p>Your tag has been activated.</p><p>Tag code: %s<br>Activation code: %s</p><p>Next, add your pet's profile and emergency contacts, then attach the tag to the collar.</p><p><a href="%s">Complete setup</a></p>`,
			htmlEscape(name), htmlEscape(tagCode), htmlEscape(activationCode), link,
		),
	}
}

// ScanAlertEmail notifies the owner that a tag was scanned, with a map link
// to the reported coordinates.
func ScanAlertEmail(to, petName string, lat, lon float64, at time.Time) Message {
	mapLink := fmt.Sprintf("https://www.google.com/maps?q=%f,%f", lat, lon)
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s's tag was just scanned", petName),
		HTML: fmt.Sprintf(
			`<p>Someone scanned %s's tag at %s.</p><p><a href="%s">View the location on a map</a></p>`,
			htmlEscape(petName), at.UTC().Format(time.RFC1123), mapLink,
		),
	}
}

func htmlEscape(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return replacer.Replace(s)
}
