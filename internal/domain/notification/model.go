package notification

import (
	"time"

	"github.com/riskibarqy/matchday/internal/domain/devicetoken"
)

// Message is the platform-neutral content of one notification.
type Message struct {
	Title     string
	Body      string
	ImageURL  string
	EventType string
	Data      map[string]string
}

// Payload is the platform-specific rendering of a Message sent in one multicast call.
type Payload struct {
	Platform devicetoken.Platform
	Title    string
	Body     string
	ImageURL string
	Data     map[string]string
	IOS      *IOSOptions
	Android  *AndroidOptions
	Web      *WebOptions
}

type IOSOptions struct {
	Sound string
	Badge int
}

type AndroidOptions struct {
	Priority  string
	ChannelID string
}

type WebOptions struct {
	Icon string
	Link string
}

type FailureKind string

const (
	FailureNone FailureKind = ""
	// FailureInvalidToken means the provider will never accept this token again.
	FailureInvalidToken FailureKind = "invalid_token"
	FailureTransient    FailureKind = "transient"
)

type TokenResult struct {
	Token     string
	Success   bool
	MessageID string
	Failure   FailureKind
	Error     string
}

type MulticastResult struct {
	SuccessCount int
	FailureCount int
	Results      []TokenResult
}

// Log records one dispatch to one platform.
type Log struct {
	ID             string
	NotificationID string
	UserIDs        []string
	EventType      string
	Platform       devicetoken.Platform
	Delivered      int
	Failed         int
	CreatedAt      time.Time
}
