package devicetoken

import (
	"fmt"
	"strings"
	"time"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

func ParsePlatform(value string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(value))) {
	case PlatformIOS:
		return PlatformIOS, nil
	case PlatformAndroid:
		return PlatformAndroid, nil
	case PlatformWeb:
		return PlatformWeb, nil
	default:
		return "", fmt.Errorf("unsupported platform %q", value)
	}
}

// DeviceToken is a push registration. Token is globally unique.
type DeviceToken struct {
	ID         string
	UserID     string
	Token      string
	Platform   Platform
	DeviceName string
	AppVersion string
	OSVersion  string
	Active     bool
	LastUsedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
