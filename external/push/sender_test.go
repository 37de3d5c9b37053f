package push

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchday/internal/domain/devicetoken"
	"github.com/riskibarqy/matchday/internal/domain/notification"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestSender(t *testing.T, handler fasthttp.RequestHandler) *Sender {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: handler}
	go func() {
		_ = server.Serve(ln)
	}()
	t.Cleanup(func() {
		_ = ln.Close()
	})

	sender, err := NewSender(SenderConfig{
		HTTPClient: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) {
				return ln.Dial()
			},
		},
		BaseURL:     "http://push.test",
		ProjectID:   "matchday-test",
		AccessToken: "access",
		Concurrency: 4,
		Logger:      logging.NewNop(),
	})
	require.NoError(t, err)
	return sender
}

func TestSender_ClassifiesPerTokenResults(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		bodies = map[string]sendRequest{}
		paths  []string
	)
	sender := newTestSender(t, func(ctx *fasthttp.RequestCtx) {
		var req sendRequest
		_ = sonic.Unmarshal(ctx.PostBody(), &req)

		mu.Lock()
		bodies[req.Message.Token] = req
		paths = append(paths, string(ctx.Path()))
		mu.Unlock()

		switch req.Message.Token {
		case "tok-dead":
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			ctx.SetBodyString(`{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND",
				"details":[{"@type":"type.googleapis.com/google.firebase.fcm.v1.FcmError","errorCode":"UNREGISTERED"}]}}`)
		case "tok-busy":
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			ctx.SetBodyString(`{"error":{"code":503,"message":"try later","status":"UNAVAILABLE"}}`)
		default:
			ctx.SetBodyString(`{"name":"projects/matchday-test/messages/0:1"}`)
		}
	})

	payload := notification.Payload{
		Platform: devicetoken.PlatformAndroid,
		Title:    "GOAL",
		Body:     "United 1-0 Liverpool",
		Data:     map[string]string{"event_type": "GOAL"},
		Android:  &notification.AndroidOptions{Priority: "high", ChannelID: "match_updates"},
	}
	result, err := sender.SendMulticast(context.Background(), []string{"tok-ok", "tok-dead", "tok-busy"}, payload)
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.FailureCount)
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Success)
	assert.Equal(t, "projects/matchday-test/messages/0:1", result.Results[0].MessageID)
	assert.Equal(t, notification.FailureInvalidToken, result.Results[1].Failure)
	assert.Equal(t, notification.FailureTransient, result.Results[2].Failure)

	sent := bodies["tok-ok"]
	require.NotNil(t, sent.Message.Android)
	assert.Equal(t, "HIGH", sent.Message.Android.Priority)
	assert.Equal(t, "match_updates", sent.Message.Android.Notification.ChannelID)
	assert.Equal(t, "GOAL", sent.Message.Data["event_type"])
	for _, path := range paths {
		assert.Equal(t, "/v1/projects/matchday-test/messages:send", path)
	}
}

func TestSender_EmptyTokensIsNoop(t *testing.T) {
	t.Parallel()

	sender := newTestSender(t, func(ctx *fasthttp.RequestCtx) {
		t.Errorf("unexpected request to %s", ctx.Path())
	})
	result, err := sender.SendMulticast(context.Background(), nil, notification.Payload{})
	require.NoError(t, err)
	assert.Zero(t, result.SuccessCount)
	assert.Empty(t, result.Results)
}

func TestNewSender_RequiresProject(t *testing.T) {
	t.Parallel()

	_, err := NewSender(SenderConfig{})
	require.Error(t, err)
}

func TestBuildRequest_PlatformOptions(t *testing.T) {
	t.Parallel()

	ios := buildRequest("t1", notification.Payload{
		Platform: devicetoken.PlatformIOS,
		Title:    "Kick-off",
		IOS:      &notification.IOSOptions{Sound: "default", Badge: 1},
	})
	require.NotNil(t, ios.Message.APNS)
	assert.Equal(t, "default", ios.Message.APNS.Payload.Aps.Sound)
	assert.Equal(t, 1, ios.Message.APNS.Payload.Aps.Badge)
	assert.Nil(t, ios.Message.Android)

	web := buildRequest("t2", notification.Payload{
		Platform: devicetoken.PlatformWeb,
		Title:    "Kick-off",
		Web:      &notification.WebOptions{Icon: "/icon.png", Link: "https://matchday.example/m/1"},
	})
	require.NotNil(t, web.Message.Webpush)
	assert.Equal(t, "/icon.png", web.Message.Webpush.Notification.Icon)
	assert.True(t, strings.HasSuffix(web.Message.Webpush.FCMOptions.Link, "/m/1"))
}

func TestClassifyFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   errorBody
		want   notification.FailureKind
	}{
		{name: "unregistered detail", status: 404, body: errorBody{Details: []errorDetail{{ErrorCode: "UNREGISTERED"}}}, want: notification.FailureInvalidToken},
		{name: "invalid registration token", status: 400, body: errorBody{Status: "INVALID_ARGUMENT", Message: "The registration token is not a valid FCM registration token"}, want: notification.FailureInvalidToken},
		{name: "malformed message keeps token", status: 400, body: errorBody{Status: "INVALID_ARGUMENT", Message: "Invalid value at 'message.data[0].value'"}, want: notification.FailureTransient},
		{name: "bare invalid argument", status: 400, body: errorBody{Status: "INVALID_ARGUMENT"}, want: notification.FailureTransient},
		{name: "sender mismatch", status: 403, body: errorBody{Details: []errorDetail{{ErrorCode: "SENDER_ID_MISMATCH"}}}, want: notification.FailureInvalidToken},
		{name: "quota", status: 429, body: errorBody{Details: []errorDetail{{ErrorCode: "QUOTA_EXCEEDED"}}}, want: notification.FailureTransient},
		{name: "bare 404", status: 404, want: notification.FailureInvalidToken},
		{name: "bare 500", status: 500, want: notification.FailureTransient},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := classifyFailure(tc.status, tc.body); got != tc.want {
				t.Fatalf("classifyFailure(%d) = %q, want %q", tc.status, got, tc.want)
			}
		})
	}
}
