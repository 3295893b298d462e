package mailer

import (
	"errors"
	"fmt"

	"github.com/oksasatya/fitness-app-api/pkg/mailer/templates"
)

var ErrEmptyJob = errors.New("email job has neither template nor content")

// Compose turns a queued job into a ready-to-send message.
func Compose(job EmailJob) (subject, text, html string, err error) {
	if job.To == "" {
		return "", "", "", errors.New("email job has no recipient")
	}
	if job.Template != "" {
		data := job.Data
		if data == nil {
			data = map[string]any{}
		}
		if v, ok := data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
			data["Email"] = job.To
		}
		return templates.Render(job.Template, data)
	}
	if job.Subject == "" || (job.Text == "" && job.HTML == "") {
		return "", "", "", ErrEmptyJob
	}
	return job.Subject, job.Text, job.HTML, nil
}
