// Package notify tells users about approval decisions.
package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gopkg.in/gomail.v2"

	"zuvomo/internal/config"
	"zuvomo/internal/model"
)

// Notifier delivers account and project review outcomes.
type Notifier interface {
	AccountReviewed(ctx context.Context, user *model.User) error
	ProjectReviewed(ctx context.Context, owner *model.User, project *model.Project) error
}

// Nop discards notifications.
type Nop struct{}

func (Nop) AccountReviewed(context.Context, *model.User) error                 { return nil }
func (Nop) ProjectReviewed(context.Context, *model.User, *model.Project) error { return nil }

// Dialer is the part of gomail.Dialer used for delivery.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends plain-text mail through an SMTP relay.
type SMTPNotifier struct {
	dialer      Dialer
	from        string
	frontendURL string
}

// New returns an SMTP notifier, or Nop when no SMTP host is configured.
func New(cfg config.SMTPConfig, frontendURL string) Notifier {
	if cfg.Host == "" {
		return Nop{}
	}
	return NewSMTPNotifier(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From, frontendURL)
}

// NewSMTPNotifier builds a notifier around an existing dialer.
func NewSMTPNotifier(d Dialer, from, frontendURL string) *SMTPNotifier {
	return &SMTPNotifier{dialer: d, from: from, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// AccountReviewed reports an approval or rejection of the user's account.
func (n *SMTPNotifier) AccountReviewed(ctx context.Context, user *model.User) error {
	var subject, body string
	switch user.ApprovalStatus {
	case model.ApprovalApproved:
		subject = "Your Zuvomo account is approved"
		body = fmt.Sprintf("Hi %s,\n\nYour account has been approved. Sign in at %s/login to open your dashboard.\n",
			user.FirstName, n.frontendURL)
	case model.ApprovalRejected:
		subject = "Your Zuvomo account needs changes"
		body = fmt.Sprintf("Hi %s,\n\nYour account was not approved.\nReason: %s\n\nYou can update your profile and resubmit at %s/login.\n",
			user.FirstName, reasonOrDefault(user.RejectionReason), n.frontendURL)
	default:
		return nil
	}
	return n.send(user.Email, subject, body)
}

// ProjectReviewed reports a review decision on one of the owner's projects.
func (n *SMTPNotifier) ProjectReviewed(ctx context.Context, owner *model.User, project *model.Project) error {
	var subject, body string
	switch project.Status {
	case model.ProjectStatusApproved:
		subject = fmt.Sprintf("%q is live on Zuvomo", project.Title)
		body = fmt.Sprintf("Hi %s,\n\nYour project %q was approved and is now visible to investors.\n%s/project-owner\n",
			owner.FirstName, project.Title, n.frontendURL)
	case model.ProjectStatusRejected:
		subject = fmt.Sprintf("%q needs changes", project.Title)
		body = fmt.Sprintf("Hi %s,\n\nYour project %q was not approved.\nReason: %s\n\nEdit and resubmit it at %s/project-owner\n",
			owner.FirstName, project.Title, reasonOrDefault(project.ReviewNote), n.frontendURL)
	default:
		return nil
	}
	return n.send(owner.Email, subject, body)
}

func (n *SMTPNotifier) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		log.Printf("notify %s: %v", to, err)
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return "no reason given"
	}
	return reason
}
