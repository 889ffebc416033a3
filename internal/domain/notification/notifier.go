package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"myhometech/internal/logger"
)

// Publisher pushes a payload to live connections. Both the local hub and the
// Redis relay satisfy it.
type Publisher interface {
	PublishToUser(ctx context.Context, userID int64, v any) error
	PublishToRole(ctx context.Context, role string, v any) error
}

type EmailResolver interface {
	EmailByID(ctx context.Context, userID int64) (string, error)
}

type Mailer interface {
	Send(to, subject, body string) error
}

// Message is one state change to fan out.
//
// UserIDs receive a persisted row and a push. PushUserIDs only receive the
// push. Role broadcasts the push to every connection of that role and never
// persists rows. Subject, when set, also sends Text by email to UserIDs.
type Message struct {
	UserIDs          []int64
	PushUserIDs      []int64
	Role             string
	Type             Type
	Text             string
	ServiceRequestID *int64
	Event            any
	Subject          string
}

const deliverTimeout = 15 * time.Second

type Notifier struct {
	store  Store
	pub    Publisher
	emails EmailResolver
	mailer Mailer
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewNotifier(store Store, pub Publisher, l *zap.Logger) *Notifier {
	return &Notifier{
		store:  store,
		pub:    pub,
		logger: logger.OrNop(l).Named("notifier"),
	}
}

// WithEmail enables the email channel.
func (n *Notifier) WithEmail(resolver EmailResolver, mailer Mailer) *Notifier {
	n.emails = resolver
	n.mailer = mailer
	return n
}

// Dispatch delivers msgs in the background. Call it after the triggering
// transaction has committed.
func (n *Notifier) Dispatch(msgs ...Message) {
	if n == nil || len(msgs) == 0 {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		defer cancel()
		n.Deliver(ctx, msgs...)
	}()
}

// Wait blocks until every dispatched delivery has finished.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

// Deliver persists rows, then pushes, then emails. Failures are logged and
// never returned.
func (n *Notifier) Deliver(ctx context.Context, msgs ...Message) {
	for _, m := range msgs {
		n.persist(ctx, m)
		n.push(ctx, m)
		n.email(ctx, m)
	}
}

func (n *Notifier) persist(ctx context.Context, m Message) {
	if len(m.UserIDs) == 0 || m.Text == "" || n.store == nil {
		return
	}
	rows := make([]Notification, 0, len(m.UserIDs))
	for _, id := range m.UserIDs {
		rows = append(rows, Notification{
			UserID:           id,
			Type:             m.Type,
			Message:          m.Text,
			ServiceRequestID: m.ServiceRequestID,
		})
	}
	if err := n.store.CreateBatch(ctx, rows); err != nil {
		n.logger.Error("persist notifications failed",
			zap.String("type", string(m.Type)),
			zap.Int64s("user_ids", m.UserIDs),
			zap.Error(err),
		)
	}
}

func (n *Notifier) push(ctx context.Context, m Message) {
	if n.pub == nil || m.Event == nil {
		return
	}
	seen := make(map[int64]struct{}, len(m.UserIDs)+len(m.PushUserIDs))
	for _, ids := range [][]int64{m.UserIDs, m.PushUserIDs} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if err := n.pub.PublishToUser(ctx, id, m.Event); err != nil {
				n.logger.Warn("push to user failed", zap.Int64("user_id", id), zap.Error(err))
			}
		}
	}
	if m.Role != "" {
		if err := n.pub.PublishToRole(ctx, m.Role, m.Event); err != nil {
			n.logger.Warn("push to role failed", zap.String("role", m.Role), zap.Error(err))
		}
	}
}

func (n *Notifier) email(ctx context.Context, m Message) {
	if m.Subject == "" || n.mailer == nil || n.emails == nil {
		return
	}
	for _, id := range m.UserIDs {
		addr, err := n.emails.EmailByID(ctx, id)
		if err != nil {
			n.logger.Debug("no email for user", zap.Int64("user_id", id), zap.Error(err))
			continue
		}
		if err := n.mailer.Send(addr, m.Subject, m.Text); err != nil {
			n.logger.Warn("send email failed", zap.Int64("user_id", id), zap.Error(err))
		}
	}
}
