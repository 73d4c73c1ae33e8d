// Package mailer sends the order notification emails over SMTP. It is a thin
// wrapper around go-mail with the site's two fixed French plain-text
// templates baked in.
package mailer

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	mail "github.com/wneessen/go-mail"

	"github.com/lescrepesdenanou/shop/internal/domain/confirmation"
)

const senderName = "Les Crêpes de Nanou"

// Config holds the SMTP account and delivery addresses.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// AdminAddr receives the new-order alert for every confirmed order.
	AdminAddr string
}

var _ confirmation.Notifier = (*Mailer)(nil)

// Mailer implements confirmation.Notifier over a single SMTP account. The
// account address doubles as the From address for both templates.
type Mailer struct {
	client *mail.Client
	from   string
	admin  string
}

// New builds a Mailer. The connection is opened per send; use Ping to check
// the account is reachable.
func New(cfg Config) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create smtp client")
	}
	return &Mailer{
		client: client,
		from:   cfg.Username,
		admin:  cfg.AdminAddr,
	}, nil
}

// OrderConfirmation sends the customer their order recap.
func (m *Mailer) OrderConfirmation(ctx context.Context, o confirmation.Order) error {
	msg, err := m.buildOrderConfirmation(o)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrap(err, "send customer confirmation")
	}
	return nil
}

// AdminAlert notifies the shop that a new order came in.
func (m *Mailer) AdminAlert(ctx context.Context, o confirmation.Order) error {
	msg, err := m.buildAdminAlert(o)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrap(err, "send admin alert")
	}
	return nil
}

// Ping dials the SMTP server and disconnects, for readiness checks.
func (m *Mailer) Ping(ctx context.Context) error {
	if err := m.client.DialWithContext(ctx); err != nil {
		return errors.Wrap(err, "dial smtp")
	}
	return m.client.Close()
}

func (m *Mailer) buildOrderConfirmation(o confirmation.Order) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(senderName, m.from); err != nil {
		return nil, errors.Wrap(err, "set from")
	}
	if err := msg.To(o.CustomerEmail); err != nil {
		return nil, errors.Wrap(err, "set recipient")
	}
	msg.Subject("Confirmation de votre commande - Les Crêpes de Nanou")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Bonjour,\n\nMerci pour votre achat !\n\nVotre commande :\n- %s\n- Total : %s€\n\nCordialement,\nLes Crêpes de Nanou",
		o.Summary, o.Amount,
	))
	return msg, nil
}

func (m *Mailer) buildAdminAlert(o confirmation.Order) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(senderName, m.from); err != nil {
		return nil, errors.Wrap(err, "set from")
	}
	if err := msg.To(m.admin); err != nil {
		return nil, errors.Wrap(err, "set recipient")
	}
	msg.Subject("Nouvelle commande reçue !")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Nouvelle commande !\n\nClient : %s\nCommande : %s\nMontant : %s€\n\nPrépare la commande vite !",
		o.CustomerEmail, o.Summary, o.Amount,
	))
	return msg, nil
}
