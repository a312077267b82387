package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wneessen/go-mail"

	"parlmonitor/internal/bootstrap/config"
	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

type sendFunc func(ctx context.Context, msg *mail.Msg) error

// SMTPNotifier sends one digest mail per recipient.
type SMTPNotifier struct {
	cfg  config.NotifyConfig
	from string
	send sendFunc
}

var _ ports.Notifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(cfg config.NotifyConfig) *SMTPNotifier {
	from := cfg.From
	if from == "" {
		from = "noreply@" + cfg.SMTPHost
	}
	n := &SMTPNotifier{cfg: cfg, from: from}
	n.send = n.deliver
	return n
}

// New picks the SMTP notifier when a host is configured and the log notifier
// otherwise.
func New(cfg config.NotifyConfig) ports.Notifier {
	if cfg.SMTPHost == "" {
		return LogNotifier{}
	}
	return NewSMTPNotifier(cfg)
}

func (n *SMTPNotifier) Notify(ctx context.Context, to ports.Recipient, items []ports.NotificationItem) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if to.Email == "" || len(items) == 0 {
		return nil
	}

	msg, err := composeMessage(n.from, to, items)
	if err != nil {
		return err
	}
	if err := n.send(ctx, msg); err != nil {
		return errs.Wrapf(err, "send digest to %s", to.Email)
	}

	logging.Info(logging.WithComponent(ctx, "notify.smtp"), "alert digest sent",
		slog.String("to", to.Email),
		slog.Int("alerts", len(items)),
	)
	return nil
}

func (n *SMTPNotifier) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithTLSPolicy(mail.NoTLS)}
	if n.cfg.UseTLS {
		opts = []mail.Option{mail.WithTLSPolicy(mail.TLSMandatory)}
	}
	if n.cfg.SMTPPort > 0 {
		opts = append(opts, mail.WithPort(n.cfg.SMTPPort))
	}
	if n.cfg.SMTPUser != "" && n.cfg.SMTPPassword != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.SMTPUser),
			mail.WithPassword(n.cfg.SMTPPassword),
		)
	}
	return opts
}

// deliver dials per digest; STARTTLS is required when UseTLS is set.
func (n *SMTPNotifier) deliver(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(n.cfg.SMTPHost, n.clientOptions()...)
	if err != nil {
		return errs.Wrap(err, "create smtp client")
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return errs.Wrap(err, "deliver mail")
	}
	return nil
}
