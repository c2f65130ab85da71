package service

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jobportal/jobboard-api/internal/core/domain"
)

const resetSubject = "Your Password Reset"

var resetMailTemplate = template.Must(template.New("reset").Parse(`<h1>Password Reset</h1>
<p>Hello {{.Name}},</p>
<p>Your password has been reset. Here is your new temporary password:</p>
<h2>{{.Password}}</h2>
<p>Please login with this password and change it immediately.</p>
`))

func resetMessage(user *domain.User, password string) (domain.Message, error) {
	var body bytes.Buffer
	err := resetMailTemplate.Execute(&body, struct {
		Name     string
		Password string
	}{Name: user.Name, Password: password})
	if err != nil {
		return domain.Message{}, fmt.Errorf("render reset mail: %w", err)
	}

	return domain.Message{
		To:       user.Email,
		Subject:  resetSubject,
		HTMLBody: body.String(),
	}, nil
}
