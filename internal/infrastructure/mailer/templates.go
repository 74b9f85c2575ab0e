package mailer

import (
	"bytes"
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"
	"time"
)

// RoleUpgradeData feeds the role upgrade template.
type RoleUpgradeData struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	AppURL   string `json:"appUrl"`
}

// OverdueTaskData feeds the overdue reminder template.
type OverdueTaskData struct {
	Username string    `json:"username"`
	TaskID   string    `json:"taskId"`
	Title    string    `json:"title"`
	DueDate  time.Time `json:"dueDate"`
	Timezone string    `json:"timezone"`
	AppURL   string    `json:"appUrl"`
}

// DueLocal formats the due date in the recipient's timezone.
func (d OverdueTaskData) DueLocal() string {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return d.DueDate.In(loc).Format("Mon, 02 Jan 2006 15:04 MST")
}

var funcs = map[string]interface{}{"title": titleCase}

var (
	roleUpgradeText = texttemplate.Must(texttemplate.New("role_text").Funcs(funcs).Parse(
		`Hello {{.Username}},

Your TaskDesk account has been upgraded to {{title .Role}}.
{{if eq .Role "admin"}}You now have access to the administration panel.
{{else}}Premium features are now available on your account.
{{end}}
Sign in: {{.AppURL}}
`))
	roleUpgradeHTML = htmltemplate.Must(htmltemplate.New("role_html").Funcs(funcs).Parse(
		`<p>Hello {{.Username}},</p>
<p>Your TaskDesk account has been upgraded to <strong>{{title .Role}}</strong>.</p>
{{if eq .Role "admin"}}<p>You now have access to the administration panel.</p>{{else}}<p>Premium features are now available on your account.</p>{{end}}
<p><a href="{{.AppURL}}">Sign in to TaskDesk</a></p>`))

	overdueText = texttemplate.Must(texttemplate.New("overdue_text").Parse(
		`Hello {{.Username}},

Your task "{{.Title}}" was due {{.DueLocal}} and is not done yet.

Open it: {{.AppURL}}/tasks/{{.TaskID}}
`))
	overdueHTML = htmltemplate.Must(htmltemplate.New("overdue_html").Parse(
		`<p>Hello {{.Username}},</p>
<p>Your task <strong>{{.Title}}</strong> was due {{.DueLocal}} and is not done yet.</p>
<p><a href="{{.AppURL}}/tasks/{{.TaskID}}">Open the task</a></p>`))
)

func RenderRoleUpgrade(to string, data RoleUpgradeData) (Message, error) {
	text, html, err := render(data, roleUpgradeText.Execute, roleUpgradeHTML.Execute)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		ToName:  data.Username,
		Subject: "Your TaskDesk account is now " + titleCase(data.Role),
		Text:    text,
		HTML:    html,
	}, nil
}

func RenderOverdueTask(to string, data OverdueTaskData) (Message, error) {
	text, html, err := render(data, overdueText.Execute, overdueHTML.Execute)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		ToName:  data.Username,
		Subject: "Overdue: " + data.Title,
		Text:    text,
		HTML:    html,
	}, nil
}

type executeFunc func(w io.Writer, data any) error

func render(data any, text, html executeFunc) (string, string, error) {
	var textBuf, htmlBuf bytes.Buffer
	if err := text(&textBuf, data); err != nil {
		return "", "", err
	}
	if err := html(&htmlBuf, data); err != nil {
		return "", "", err
	}
	return textBuf.String(), htmlBuf.String(), nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
