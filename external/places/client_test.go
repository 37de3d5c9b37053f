package places

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestClient(t *testing.T, handler fasthttp.RequestHandler) *Client {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: handler}
	go func() {
		_ = server.Serve(ln)
	}()
	t.Cleanup(func() {
		_ = ln.Close()
	})

	return NewClient(ClientConfig{
		HTTPClient: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) {
				return ln.Dial()
			},
		},
		BaseURL:  "http://places.test",
		APIKey:   "places-key",
		CacheTTL: time.Hour,
		Logger:   logging.NewNop(),
	})
}

func TestClient_FindPlaceInfo(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		hits.Add(1)
		switch string(ctx.Path()) {
		case "/maps/api/place/textsearch/json":
			ctx.SetBodyString(`{"status":"OK","results":[{"place_id":"p1","name":"Old Trafford",
				"formatted_address":"Sir Matt Busby Way, Manchester","geometry":{"location":{"lat":53.46,"lng":-2.29}},
				"photos":[{"photo_reference":"ref-1"}],"types":["stadium","parking","point_of_interest"]}]}`)
		case "/maps/api/place/details/json":
			ctx.SetBodyString(`{"status":"OK","result":{"editorial_summary":{"overview":"Home of Manchester United since 1910."},
				"wheelchair_accessible_entrance":true}}`)
		case "/maps/api/place/nearbysearch/json":
			if string(ctx.QueryArgs().Peek("type")) == "restaurant" {
				ctx.SetBodyString(`{"status":"OK","results":[{"name":"Red Cafe"},{"name":"Red Cafe"},{"name":"Lou Macari"}]}`)
				return
			}
			ctx.SetBodyString(`{"status":"OK","results":[{"name":"Imperial War Museum North"}]}`)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	})

	info, err := client.FindPlaceInfo(context.Background(), "Old Trafford", "Manchester")
	require.NoError(t, err)
	require.NotNil(t, info)

	assert.Equal(t, "Home of Manchester United since 1910.", info.Overview)
	assert.Equal(t, []string{"Imperial War Museum North"}, info.Attractions)
	assert.Equal(t, []string{"Red Cafe", "Lou Macari"}, info.Restaurants)
	assert.Contains(t, info.Facilities, "Parking")
	assert.Contains(t, info.Facilities, "Wheelchair accessible entrance")
	require.Len(t, info.Images, 1)
	assert.NotContains(t, info.Images[0], "places-key")
	assert.EqualValues(t, 4, hits.Load())

	again, err := client.FindPlaceInfo(context.Background(), "old trafford", "manchester")
	require.NoError(t, err)
	assert.Same(t, info, again)
	assert.EqualValues(t, 4, hits.Load(), "second lookup should be served from cache")
}

func TestClient_FindPlaceInfoUnknownPlace(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`{"status":"ZERO_RESULTS","results":[]}`)
	})

	info, err := client.FindPlaceInfo(context.Background(), "Nowhere Park", "Atlantis")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestClient_FindPlaceInfoProviderError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`{"status":"REQUEST_DENIED","results":[]}`)
	})

	_, err := client.FindPlaceInfo(context.Background(), "Anfield", "Liverpool")
	require.Error(t, err)
}

func TestPlaceCache_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cache := newPlaceCache(time.Minute, 2)
	cache.now = func() time.Time { return now }

	cache.Set("a", nil)
	_, ok := cache.Get("a")
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get("a")
	require.False(t, ok)

	cache.Set("b", nil)
	cache.Set("c", nil)
	cache.Set("d", nil)
	assert.LessOrEqual(t, len(cache.entries), 2)
}
