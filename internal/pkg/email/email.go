package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/framelab/train_go_server/config"
)

// Sender dispatches outcome notifications. Best-effort: callers persist
// state first and only log a failed send.
type Sender interface {
	SendTrainingFinished(to, classifierName string) error
	SendInferenceFinished(to, classifierName, predictionsURL string) error
	SendTopicModelFinished(to, topicModelName, previewURL string) error
}

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendTrainingFinished notifies that classifier training completed.
func (s *Service) SendTrainingFinished(to, classifierName string) error {
	subject := fmt.Sprintf("Training finished - %s", classifierName)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">Training finished</h2>
        <p>Hello,</p>
        <p>Your classifier <strong>%s</strong> has finished training.</p>
        <p>You can now upload test sets to run predictions against it.</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This is an automated message, please do not reply.</p>
    </div>
</body>
</html>
`, classifierName)

	return s.sendHTML(to, subject, body)
}

// SendInferenceFinished notifies that predictions for a test set are ready.
func (s *Service) SendInferenceFinished(to, classifierName, predictionsURL string) error {
	subject := fmt.Sprintf("Predictions ready - %s", classifierName)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">Predictions ready</h2>
        <p>Hello,</p>
        <p>Your classifier <strong>%s</strong> has finished labelling the test set you uploaded.</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #2563eb; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Download predictions</a>
        </div>
        <p>Or copy this link into your browser:</p>
        <p style="background-color: #f3f4f6; padding: 10px; word-break: break-all;">%s</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This is an automated message, please do not reply.</p>
    </div>
</body>
</html>
`, classifierName, predictionsURL, predictionsURL)

	return s.sendHTML(to, subject, body)
}

// SendTopicModelFinished notifies that topic-model training completed.
func (s *Service) SendTopicModelFinished(to, topicModelName, previewURL string) error {
	subject := fmt.Sprintf("Topic model ready - %s", topicModelName)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">Topic model ready</h2>
        <p>Hello,</p>
        <p>Your topic model <strong>%s</strong> has finished training.</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #2563eb; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Preview topics</a>
        </div>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This is an automated message, please do not reply.</p>
    </div>
</body>
</html>
`, topicModelName, previewURL)

	return s.sendHTML(to, subject, body)
}

func (s *Service) sendHTML(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = s.cfg.From
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
