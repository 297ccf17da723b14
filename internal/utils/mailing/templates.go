package mailing

import (
	"fmt"
	"html"
)

// StatusChangedMail renders the notification a recipient gets when an admin
// decision (or full funding) moves their request to a new status.
func StatusChangedMail(appURL, patientName, status string) (subject string, body string) {
	name := html.EscapeString(patientName)

	switch status {
	case "approved":
		subject = "Your donation request has been approved"
		body = fmt.Sprintf(`<p>Good news! The donation request for <b>%s</b> was approved and is now visible to donors.</p>`, name)
	case "rejected":
		subject = "Your donation request was not approved"
		body = fmt.Sprintf(`<p>The donation request for <b>%s</b> was reviewed and could not be approved.</p>`, name)
	case "achieved":
		subject = "Your donation goal has been reached"
		body = fmt.Sprintf(`<p>The donation request for <b>%s</b> has reached its goal. Thank you for trusting us.</p>`, name)
	default:
		subject = "Your donation request was updated"
		body = fmt.Sprintf(`<p>The donation request for <b>%s</b> is now <b>%s</b>.</p>`, name, html.EscapeString(status))
	}

	if appURL != "" {
		body += fmt.Sprintf(`<p><a href="%s">Open your dashboard</a></p>`, html.EscapeString(appURL))
	}
	return subject, body
}
