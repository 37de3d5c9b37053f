package push

import "strings"

type sendRequest struct {
	Message message `json:"message"`
}

type message struct {
	Token        string               `json:"token"`
	Notification *messageNotification `json:"notification,omitempty"`
	Data         map[string]string    `json:"data,omitempty"`
	Android      *androidConfig       `json:"android,omitempty"`
	APNS         *apnsConfig          `json:"apns,omitempty"`
	Webpush      *webpushConfig       `json:"webpush,omitempty"`
}

type messageNotification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Image string `json:"image,omitempty"`
}

type androidConfig struct {
	Priority     string               `json:"priority,omitempty"`
	Notification *androidNotification `json:"notification,omitempty"`
}

type androidNotification struct {
	ChannelID string `json:"channel_id,omitempty"`
}

type apnsConfig struct {
	Headers map[string]string `json:"headers,omitempty"`
	Payload apnsPayload       `json:"payload"`
}

type apnsPayload struct {
	Aps apsPayload `json:"aps"`
}

type apsPayload struct {
	Alert apsAlert `json:"alert"`
	Sound string   `json:"sound,omitempty"`
	Badge int      `json:"badge,omitempty"`
}

type apsAlert struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

type webpushConfig struct {
	Notification webpushNotification `json:"notification"`
	FCMOptions   *webpushFCMOptions  `json:"fcm_options,omitempty"`
}

type webpushNotification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

type webpushFCMOptions struct {
	Link string `json:"link,omitempty"`
}

type sendResponse struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Status  string        `json:"status"`
	Details []errorDetail `json:"details"`
}

type errorDetail struct {
	Type      string `json:"@type"`
	ErrorCode string `json:"errorCode"`
}

// errorCode prefers the FCM-specific code over the generic RPC status.
func (e errorBody) errorCode() string {
	for _, detail := range e.Details {
		if code := strings.TrimSpace(detail.ErrorCode); code != "" {
			return strings.ToUpper(code)
		}
	}
	return strings.ToUpper(strings.TrimSpace(e.Status))
}
