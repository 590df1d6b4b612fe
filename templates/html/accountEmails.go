package templates

import (
	"fmt"
	"html"
)

// RenderPasswordResetEmail generates the password reset email with a one-hour link
func RenderPasswordResetEmail(name, resetLink string) string {
	content := fmt.Sprintf(`<p>Hi %s,</p>
      <p>We received a request to reset your QuickVerdicts password. The link below works once and expires in one hour.</p>
      <p><a href="%s" class="cta-button">Reset Password</a></p>
      <p style="color: #6b7280; font-size: 13px;">If you did not ask for this, you can ignore this email. Your password stays the same.</p>`,
		html.EscapeString(name), html.EscapeString(resetLink))
	return layout("Reset your password", "Reset your password", content)
}

// RenderTrialReminderEmail reminds a participant of an upcoming trial; when is already formatted
func RenderTrialReminderEmail(name, caseTitle, when, link string) string {
	content := fmt.Sprintf(`<p>Hi %s,</p>
      <p>This is a reminder that the mock trial below starts within the next day.</p>
      <div class="slot"><strong>%s</strong><br>%s</div>
      <p><a href="%s" class="cta-button">Open War Room</a></p>`,
		html.EscapeString(name), html.EscapeString(caseTitle), html.EscapeString(when), html.EscapeString(link))
	return layout("Trial reminder", "Your trial is coming up", content)
}
