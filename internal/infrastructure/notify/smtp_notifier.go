// Package notify envía los avisos administrativos por correo.
package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/factura-afip/internal/application/billing"
	"github.com/jhoicas/factura-afip/pkg/config"
	"github.com/jhoicas/factura-afip/pkg/logger"
)

var _ billing.AdminNotifier = (*SMTPNotifier)(nil)

// Sender envía mensajes ya armados; *gomail.Dialer lo implementa.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier avisa a los administradores (ADMIN_EMAILS). Sin SMTP configurado sólo deja el aviso en el log.
type SMTPNotifier struct {
	sender  Sender
	from    string
	to      []string
	appName string
	log     *logger.Logger
}

// NewSMTPNotifier construye el notifier a partir de la configuración SMTP.
func NewSMTPNotifier(cfg config.SMTPConfig, appName string, log *logger.Logger) *SMTPNotifier {
	var sender Sender
	if cfg.Host != "" {
		sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	}
	return NewNotifier(sender, cfg.From, cfg.AdminEmails, appName, log)
}

// NewNotifier construye el notifier con un Sender explícito (nil = sólo log).
func NewNotifier(sender Sender, from string, to []string, appName string, log *logger.Logger) *SMTPNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &SMTPNotifier{sender: sender, from: from, to: to, appName: appName, log: log.Named("notify")}
}

// Notify envía el aviso. Los errores no se propagan: se registran.
func (n *SMTPNotifier) Notify(ctx context.Context, orderNumber, message string) {
	log := n.log.With().Str("order_number", orderNumber).Logger()
	if n.sender == nil || len(n.to) == 0 {
		log.Warn().Str("message", message).Msg("aviso administrativo (SMTP no configurado)")
		return
	}
	if ctx.Err() != nil {
		log.Warn().Str("message", message).Msg("aviso administrativo descartado: contexto cancelado")
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to...)
	m.SetHeader("Subject", fmt.Sprintf("[%s] Aviso sobre la orden %s", n.appName, orderNumber))
	m.SetBody("text/plain", message)

	if err := n.sender.DialAndSend(m); err != nil {
		log.Error().Err(err).Str("message", message).Msg("no se pudo enviar el aviso administrativo")
		return
	}
	log.Info().Int("recipients", len(n.to)).Msg("aviso administrativo enviado")
}
