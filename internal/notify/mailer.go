package notify

import (
	"context"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/riverhouse-belgrade/riverhouse/config"
	"github.com/riverhouse-belgrade/riverhouse/internal/domain"
	"github.com/riverhouse-belgrade/riverhouse/internal/store"
)

const (
	TopicRegistrationCreated = "registration.created"

	sendTimeout   = 30 * time.Second
	retryBatch    = 50
	retryPoolSize = 4
)

// Sender delivers composed messages; *gomail.Dialer satisfies it
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// NewSMTPSender returns a gomail dialer for the configured SMTP relay
func NewSMTPSender(cfg config.MailConfig) Sender {
	return gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Passwd)
}

// Mailer sends registration emails and records every attempt in the outbox.
// Delivery failures never propagate to the caller.
type Mailer struct {
	cfg         config.MailConfig
	sender      Sender
	outbox      *store.OutboxStore
	pool        *ants.Pool
	maxAttempts int
}

func NewMailer(cfg config.MailConfig, sender Sender, outbox *store.OutboxStore, maxAttempts int) (*Mailer, error) {
	pool, err := ants.NewPool(retryPoolSize, ants.WithPanicHandler(func(p interface{}) {
		zap.L().Error("mail worker panic", zap.Any("panic", p))
	}))
	if err != nil {
		return nil, errors.Wrap(err, "create mail worker pool")
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Mailer{cfg: cfg, sender: sender, outbox: outbox, pool: pool, maxAttempts: maxAttempts}, nil
}

// Subscribe attaches the mailer to registration events. Async handlers run
// off the publisher's goroutine; call bus.WaitAsync before shutdown.
func (m *Mailer) Subscribe(bus EventBus.Bus, async bool) error {
	if async {
		return bus.SubscribeAsync(TopicRegistrationCreated, m.OnRegistration, false)
	}
	return bus.Subscribe(TopicRegistrationCreated, m.OnRegistration)
}

// OnRegistration is the event handler for TopicRegistrationCreated
func (m *Mailer) OnRegistration(reg *domain.Registration) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	m.NotifyRegistration(ctx, reg)
}

// NotifyRegistration sends the operator notification and the visitor
// acknowledgement. It returns the number of messages delivered.
func (m *Mailer) NotifyRegistration(ctx context.Context, reg *domain.Registration) int {
	msgs, err := m.compose(reg)
	if err != nil {
		zap.L().Error("render registration emails failed", zap.Int64("registration_id", reg.ID), zap.Error(err))
		return 0
	}
	sent := 0
	for _, msg := range msgs {
		if !m.cfg.Enabled {
			msg.Status = domain.MailStatusSkipped
		}
		if err := m.outbox.Create(ctx, msg); err != nil {
			zap.L().Error("record outbox message failed", zap.String("kind", msg.Kind), zap.Error(err))
		}
		if !m.cfg.Enabled {
			zap.L().Info("mail disabled, message skipped",
				zap.String("kind", msg.Kind), zap.Int64("registration_id", reg.ID))
			continue
		}
		if m.deliver(ctx, msg) {
			sent++
		}
	}
	return sent
}

func (m *Mailer) compose(reg *domain.Registration) ([]*domain.MailOutbox, error) {
	data := newTemplateData(reg, m.cfg.SiteURL)
	adminBody, err := render(adminTpl, data)
	if err != nil {
		return nil, err
	}
	visitorBody, err := render(visitorTpl, data)
	if err != nil {
		return nil, err
	}
	return []*domain.MailOutbox{
		{
			RegistrationID: reg.ID,
			Kind:           domain.MailKindAdminNotification,
			Recipient:      m.cfg.AdminEmail,
			Subject:        adminSubjectPrefix + reg.FullName,
			Body:           adminBody,
		},
		{
			RegistrationID: reg.ID,
			Kind:           domain.MailKindVisitorAck,
			Recipient:      reg.Email,
			Subject:        visitorSubject,
			Body:           visitorBody,
		},
	}, nil
}

func (m *Mailer) message(msg *domain.MailOutbox) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.From)
	gm.SetHeader("To", msg.Recipient)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.Body)
	return gm
}

// deliver sends one message and records the outcome
func (m *Mailer) deliver(ctx context.Context, msg *domain.MailOutbox) bool {
	if err := m.sender.DialAndSend(m.message(msg)); err != nil {
		zap.L().Error("send email failed",
			zap.String("kind", msg.Kind),
			zap.String("recipient", msg.Recipient),
			zap.Int64("registration_id", msg.RegistrationID),
			zap.Error(err))
		if msg.ID != 0 {
			if err := m.outbox.MarkFailed(ctx, msg.ID, err.Error()); err != nil {
				zap.L().Error("update outbox message failed", zap.Error(err))
			}
		}
		return false
	}
	if msg.ID != 0 {
		if err := m.outbox.MarkSent(ctx, msg.ID); err != nil {
			zap.L().Error("update outbox message failed", zap.Error(err))
		}
	}
	return true
}

// RetryFailed re-delivers failed outbox messages on the worker pool and
// returns how many went through.
func (m *Mailer) RetryFailed(ctx context.Context) (int, error) {
	if !m.cfg.Enabled {
		return 0, nil
	}
	items, err := m.outbox.GetRetryable(ctx, m.maxAttempts, retryBatch)
	if err != nil {
		return 0, err
	}
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sent int
	)
	for _, item := range items {
		item := item
		wg.Add(1)
		err := m.pool.Submit(func() {
			defer wg.Done()
			if m.deliver(ctx, item) {
				mu.Lock()
				sent++
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			zap.L().Warn("submit mail retry failed", zap.Error(err))
		}
	}
	wg.Wait()
	if len(items) > 0 {
		zap.L().Info("outbox retry finished", zap.Int("pending", len(items)), zap.Int("sent", sent))
	}
	return sent, nil
}

func (m *Mailer) Release() {
	m.pool.Release()
}
