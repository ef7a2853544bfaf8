package services

import (
	"bytes"
	"fmt"
	"html/template"

	"safewatch/internal/models"
	"safewatch/internal/utils"
)

const alertSubject = "SOS Alert"

var alertEmailTemplate = template.Must(template.New("sos_email").Parse(`<h2>Emergency SOS Alert</h2>
<p><strong>{{.Name}}</strong> has triggered an emergency SOS alert.</p>
<p><strong>Location:</strong> <a href="{{.MapLink}}">View on Map</a></p>
{{- if .Address}}
<p><strong>Near:</strong> {{.Address}}</p>
{{- end}}
<p><strong>Time:</strong> {{.Time}}</p>
<p>Please try to contact them immediately{{if .Phone}} at {{.Phone}}{{end}}.</p>
`))

// AlertMessage is the content shared by every recipient of one SOS event.
type AlertMessage struct {
	Subject string
	HTML    string
	Text    string
	MapLink string
}

type alertEmailData struct {
	Name    string
	MapLink string
	Address string
	Time    string
	Phone   string
}

// ComposeAlert renders the email and SMS bodies for event.
func ComposeAlert(event *models.SOSEvent, mapURL, timezone string) (*AlertMessage, error) {
	link := utils.MapLink(mapURL, event.Coordinate.Latitude, event.Coordinate.Longitude)

	var buf bytes.Buffer
	err := alertEmailTemplate.Execute(&buf, alertEmailData{
		Name:    event.UserName,
		MapLink: link,
		Address: event.Address,
		Time:    utils.FormatTime(event.ReportedAt, timezone),
		Phone:   event.UserPhone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render alert email: %w", err)
	}

	return &AlertMessage{
		Subject: alertSubject,
		HTML:    buf.String(),
		Text:    fmt.Sprintf("EMERGENCY: %s needs help! Current location: %s", event.UserName, link),
		MapLink: link,
	}, nil
}
