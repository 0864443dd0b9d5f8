package event

// DonorNotificationModel matches the payload the notification service
// consumes: { recipients: string[], subject, body, data? }
type DonorNotificationModel struct {
	Recipients []string       `json:"recipients"`
	Subject    string         `json:"subject"`
	Body       string         `json:"body"`
	Data       map[string]any `json:"data,omitempty"`
}

const DonorNotiQueue string = "donor_noti_events"

const PaymentEventsQueue string = "payment_events"
