package tasks

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/restaurantbooking/backend/internal/models"
)

// Email is a rendered message ready to be sent
type Email struct {
	To      string
	Subject string
	Body    string
}

const dateLayout = "Monday, 2 January 2006 at 15:04 MST"

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<p>Hi {{.UserFirstname}},</p>
<p>Your table at <strong>{{.RestaurantName}}</strong> is booked for {{.When}}.</p>
<p>{{.RestaurantAddr}}{{if .RestaurantTel}}<br>Tel: {{.RestaurantTel}}{{end}}</p>
<p>Reservation number: {{.ReservationID}}</p>`))

var reminderTemplate = template.Must(template.New("reminder").Parse(`<p>Hi {{.UserFirstname}},</p>
<p>This is a reminder of your reservation at <strong>{{.RestaurantName}}</strong> on {{.When}}.</p>
<p>{{.RestaurantAddr}}{{if .RestaurantTel}}<br>Tel: {{.RestaurantTel}}{{end}}</p>
<p>Reservation number: {{.ReservationID}}</p>`))

type emailData struct {
	*models.ReservationNotice
	When string
}

// ConfirmationEmail renders the booking confirmation for a reservation
func ConfirmationEmail(n *models.ReservationNotice) (*Email, error) {
	return render(confirmationTemplate, "Your reservation at "+n.RestaurantName+" is confirmed", n)
}

// ReminderEmail renders the reminder for an upcoming reservation
func ReminderEmail(n *models.ReservationNotice) (*Email, error) {
	return render(reminderTemplate, "Reminder: your reservation at "+n.RestaurantName, n)
}

func render(tmpl *template.Template, subject string, n *models.ReservationNotice) (*Email, error) {
	if n.UserEmail == "" {
		return nil, fmt.Errorf("reservation %d has no recipient email", n.ReservationID)
	}

	var body bytes.Buffer
	data := emailData{ReservationNotice: n, When: n.ResvDate.UTC().Format(dateLayout)}
	if err := tmpl.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to render %s email: %w", tmpl.Name(), err)
	}

	return &Email{To: n.UserEmail, Subject: subject, Body: body.String()}, nil
}
