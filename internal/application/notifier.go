package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
	"github.com/oksasatya/fitness-app-api/pkg/mailer"
	tpl "github.com/oksasatya/fitness-app-api/pkg/mailer/templates"
)

// Notifier enqueues transactional emails. A nil Notifier or one without a
// publisher silently does nothing.
type Notifier struct {
	Pub         JobPublisher
	Logger      *logrus.Logger
	AppName     string
	CompanyName string
	SupportURL  string
}

func (n *Notifier) Send(ctx context.Context, template string, u *entity.User, opts ...tpl.Option) {
	if n == nil || n.Pub == nil {
		return
	}
	data := tpl.NewEmailData(n.AppName, n.CompanyName, n.SupportURL, u.Name, u.Email, opts...)
	job := mailer.EmailJob{To: u.Email, Template: template, Data: tpl.ToMap(data)}
	if err := n.Pub.PublishJSON(ctx, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "template": template}).Warn("failed to enqueue email")
	}
}
