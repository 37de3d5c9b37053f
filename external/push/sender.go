package push

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday/internal/domain/devicetoken"
	"github.com/riskibarqy/matchday/internal/domain/notification"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const defaultBaseURL = "https://fcm.googleapis.com"

var errPushTransient = crerr.New("push provider transient failure")

type SenderConfig struct {
	HTTPClient  *fasthttp.Client
	BaseURL     string
	ProjectID   string
	AccessToken string
	Timeout     time.Duration
	// Concurrency bounds in-flight per-token sends of one multicast.
	Concurrency int
	Logger      *logging.Logger
}

// Sender delivers notifications through an FCM HTTP v1 compatible endpoint. The v1 API
// takes one token per request, so a multicast fans out to bounded parallel sends.
type Sender struct {
	httpClient  *fasthttp.Client
	sendURL     string
	accessToken string
	timeout     time.Duration
	concurrency int
	logger      *logging.Logger
}

func NewSender(cfg SenderConfig) (*Sender, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, crerr.New("push project id is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 32
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "matchday-push",
			MaxConnsPerHost:     concurrency,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Sender{
		httpClient:  httpClient,
		sendURL:     fmt.Sprintf("%s/v1/projects/%s/messages:send", baseURL, projectID),
		accessToken: strings.TrimSpace(cfg.AccessToken),
		timeout:     timeout,
		concurrency: concurrency,
		logger:      logger,
	}, nil
}

// SendMulticast sends payload to every token. Per-token outcomes are reported in the
// result; an error is returned only when nothing could be attempted.
func (s *Sender) SendMulticast(ctx context.Context, tokens []string, payload notification.Payload) (notification.MulticastResult, error) {
	if len(tokens) == 0 {
		return notification.MulticastResult{}, nil
	}
	if err := ctx.Err(); err != nil {
		return notification.MulticastResult{}, err
	}

	results := make([]notification.TokenResult, len(tokens))
	p := pool.New().WithMaxGoroutines(s.concurrency)
	for i, token := range tokens {
		p.Go(func() {
			results[i] = s.sendOne(ctx, token, payload)
		})
	}
	p.Wait()

	out := notification.MulticastResult{Results: results}
	for _, item := range results {
		if item.Success {
			out.SuccessCount++
			continue
		}
		out.FailureCount++
	}
	s.logger.DebugContext(ctx, "push multicast sent",
		"platform", payload.Platform,
		"tokens", len(tokens),
		"success_count", out.SuccessCount,
		"failure_count", out.FailureCount,
	)
	return out, nil
}

func (s *Sender) sendOne(ctx context.Context, token string, payload notification.Payload) notification.TokenResult {
	result := notification.TokenResult{Token: token}
	if err := ctx.Err(); err != nil {
		result.Failure = notification.FailureTransient
		result.Error = err.Error()
		return result
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(buildRequest(token, payload)); err != nil {
		result.Failure = notification.FailureTransient
		result.Error = crerr.Wrap(err, "encode push message").Error()
		return result
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.sendURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if s.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
	}
	req.SetBody(buf.B)

	deadline := time.Now().Add(s.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := s.httpClient.DoDeadline(req, resp, deadline); err != nil {
		result.Failure = notification.FailureTransient
		result.Error = crerr.Mark(crerr.Wrap(err, "send push message"), errPushTransient).Error()
		return result
	}

	status := resp.StatusCode()
	if status >= fasthttp.StatusOK && status < fasthttp.StatusMultipleChoices {
		var ok sendResponse
		_ = sonic.Unmarshal(resp.Body(), &ok)
		result.Success = true
		result.MessageID = ok.Name
		return result
	}

	var failed errorResponse
	_ = sonic.Unmarshal(resp.Body(), &failed)
	result.Failure = classifyFailure(status, failed.Error)
	result.Error = fmt.Sprintf("status=%d code=%s message=%s", status, failed.Error.errorCode(), strings.TrimSpace(failed.Error.Message))
	return result
}

// classifyFailure decides whether a token should be dropped for good.
func classifyFailure(status int, body errorBody) notification.FailureKind {
	switch body.errorCode() {
	case "UNREGISTERED", "SENDER_ID_MISMATCH", "NOT_FOUND":
		return notification.FailureInvalidToken
	case "INVALID_ARGUMENT":
		// Also returned for a malformed message, which says nothing about the token.
		if namesRegistrationToken(body.Message) {
			return notification.FailureInvalidToken
		}
		return notification.FailureTransient
	case "UNAVAILABLE", "INTERNAL", "QUOTA_EXCEEDED", "RESOURCE_EXHAUSTED":
		return notification.FailureTransient
	}

	switch {
	case status == fasthttp.StatusNotFound:
		return notification.FailureInvalidToken
	default:
		return notification.FailureTransient
	}
}

func namesRegistrationToken(message string) bool {
	message = strings.ToLower(message)
	return strings.Contains(message, "registration token") || strings.Contains(message, "registration-token")
}

func buildRequest(token string, payload notification.Payload) sendRequest {
	msg := message{
		Token: token,
		Notification: &messageNotification{
			Title: payload.Title,
			Body:  payload.Body,
			Image: payload.ImageURL,
		},
		Data: payload.Data,
	}

	switch payload.Platform {
	case devicetoken.PlatformIOS:
		aps := apsPayload{Alert: apsAlert{Title: payload.Title, Body: payload.Body}}
		if payload.IOS != nil {
			aps.Sound = payload.IOS.Sound
			aps.Badge = payload.IOS.Badge
		}
		msg.APNS = &apnsConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: apnsPayload{Aps: aps},
		}
	case devicetoken.PlatformAndroid:
		cfg := &androidConfig{Priority: "HIGH"}
		if payload.Android != nil {
			if payload.Android.Priority != "" {
				cfg.Priority = strings.ToUpper(payload.Android.Priority)
			}
			cfg.Notification = &androidNotification{ChannelID: payload.Android.ChannelID}
		}
		msg.Android = cfg
	case devicetoken.PlatformWeb:
		cfg := &webpushConfig{
			Notification: webpushNotification{Title: payload.Title, Body: payload.Body},
		}
		if payload.Web != nil {
			cfg.Notification.Icon = payload.Web.Icon
			if payload.Web.Link != "" {
				cfg.FCMOptions = &webpushFCMOptions{Link: payload.Web.Link}
			}
		}
		msg.Webpush = cfg
	}

	return sendRequest{Message: msg}
}
