package middleware

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"doctor-booking-api/internal/auth"
	"doctor-booking-api/internal/metrics"
	"doctor-booking-api/internal/rpc"
)

func init() { gin.SetMode(gin.TestMode) }

var issuer = auth.NewIssuer("test-secret", 15*time.Minute, time.Hour)

func echoUID(ctx context.Context, _ any) (any, error) {
	uid, _ := UserID(ctx)
	return uid, nil
}

func bearerCtx(tok string) context.Context {
	md := metadata.New(map[string]string{"authorization": "Bearer " + tok})
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestAuthInterceptor(t *testing.T) {
	intercept := Auth(issuer)
	protected := &grpc.UnaryServerInfo{FullMethod: rpc.MethodListAppointments}

	tok, err := issuer.Access("user-1")
	require.NoError(t, err)
	got, err := intercept(bearerCtx(tok), nil, protected, echoUID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got)

	_, err = intercept(context.Background(), nil, protected, echoUID)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = intercept(bearerCtx("garbage"), nil, protected, echoUID)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	other, _ := auth.NewIssuer("other-secret", time.Minute, time.Hour).Access("user-1")
	_, err = intercept(bearerCtx(other), nil, protected, echoUID)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	// login needs no token
	_, err = intercept(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: rpc.MethodLogin}, echoUID)
	require.NoError(t, err)
}

func TestGinAuth(t *testing.T) {
	r := gin.New()
	r.Use(GinAuth(issuer))
	r.GET("/me", func(c *gin.Context) {
		uid, _ := UserID(c.Request.Context())
		c.String(http.StatusOK, uid)
	})
	tok, _ := issuer.Access("user-2")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-2", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: tok})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Unauthorized"`)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimitInterceptor(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	defer rl.Stop()
	intercept := RateLimit(rl)
	ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 5000}})
	login := &grpc.UnaryServerInfo{FullMethod: rpc.MethodLogin}

	before := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("grpc"))
	for i := 0; i < 2; i++ {
		_, err := intercept(ctx, nil, login, echoUID)
		require.NoError(t, err)
	}
	_, err := intercept(ctx, nil, login, echoUID)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("grpc")))

	// unlimited methods pass through
	for i := 0; i < 5; i++ {
		_, err := intercept(ctx, nil, &grpc.UnaryServerInfo{FullMethod: rpc.MethodListDoctors}, echoUID)
		require.NoError(t, err)
	}
}

func TestGinRateLimit(t *testing.T) {
	rl := NewRateLimiter(0.5, 1)
	defer rl.Stop()
	r := gin.New()
	r.Use(GinRateLimit(rl))
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.Equal(t, "1", w2.Header().Get("Retry-After"))
}

func TestJanitorEvictsIdle(t *testing.T) {
	rl := &RateLimiter{clients: map[string]*client{}, r: 1, burst: 1, stop: make(chan struct{})}
	rl.Allow("a")
	rl.mu.Lock()
	rl.clients["a"].seen = time.Now().Add(-time.Hour)
	rl.mu.Unlock()

	go rl.janitor(5*time.Millisecond, time.Minute)
	defer rl.Stop()

	require.Eventually(t, func() bool {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		return len(rl.clients) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestRecoveryInterceptor(t *testing.T) {
	intercept := Recovery(zerolog.Nop())
	_, err := intercept(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x"}, func(context.Context, any) (any, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestLoggingRecordsLatency(t *testing.T) {
	intercept := Logging(zerolog.Nop())
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Latency/Call"}
	_, err := intercept(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.RPCDuration, "booking_rpc_duration_seconds"))
}

func TestGinRecovery(t *testing.T) {
	r := gin.New()
	r.Use(GinRecovery(zerolog.Nop()))
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
