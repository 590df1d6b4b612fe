package templates

import (
	"fmt"
	"html"
	"strings"
)

const footer = `<div class="footer">
      <p>&copy; QuickVerdicts | <a href="https://www.quickverdicts.com">quickverdicts.com</a></p>
      <p><a href="https://www.quickverdicts.com/contact">Contact Support</a></p>
    </div>`

// layout wraps already escaped content in the branded shell
func layout(title, heading, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: Georgia, 'Times New Roman', serif; margin: 0; padding: 0; background-color: #f4f1ea; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background-color: #0b2545; padding: 36px 30px; text-align: center; }
    .header h1 { color: #f4d35e; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 36px 30px; color: #1f2933; line-height: 1.6; font-size: 15px; }
    .slot { background: #eef2f7; border-left: 4px solid #0b2545; padding: 16px 20px; margin: 20px 0; }
    .cta-button { display: inline-block; background-color: #0b2545; color: #ffffff; padding: 12px 26px; border-radius: 6px; text-decoration: none; font-weight: 700; }
    .footer { padding: 26px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
    .footer a { color: #0b2545; text-decoration: none; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      %s
    </div>
    %s
  </div>
</body>
</html>`, title, heading, content, footer)
}

// escapeText escapes plain text and keeps its line breaks
func escapeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}

// RenderGenericEmail generates branded HTML for a notification email.
// bodyContent is plain text; it is escaped and newlines become <br> tags.
func RenderGenericEmail(subject, bodyContent string) string {
	safeSubject := html.EscapeString(subject)
	return layout(safeSubject, safeSubject, escapeText(bodyContent))
}
