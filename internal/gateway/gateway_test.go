package gateway

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"doctor-booking-api/internal/auth"
	"doctor-booking-api/internal/booking"
	"doctor-booking-api/internal/handler"
	"doctor-booking-api/internal/metrics"
	"doctor-booking-api/internal/middleware"
	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/rpc"
	"doctor-booking-api/internal/store/memory"
)

func init() { gin.SetMode(gin.TestMode) }

type env struct {
	engine *gin.Engine
	iss    *auth.Issuer
	store  *memory.Store
}

func newEnv(t *testing.T, withBridge bool) *env {
	t.Helper()
	st := memory.New()
	require.NoError(t, st.UpsertDoctor(context.Background(), &model.Doctor{ID: "d1", Name: "Dr. Adams", Specialization: "Cardiology", Available: true}))

	iss := auth.NewIssuer("test-secret", 15*time.Minute, 24*time.Hour)
	h := handler.New(booking.NewService(st, st), st, iss, zerolog.Nop())

	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)

	cfg := Config{
		Handler:     h,
		Issuer:      iss,
		Limiter:     middleware.NewRateLimiter(100, 100),
		Gatherer:    reg,
		Logger:      zerolog.Nop(),
		CORSOrigins: []string{"http://localhost:3000"},
	}
	t.Cleanup(cfg.Limiter.Stop)

	if withBridge {
		lis := bufconn.Listen(1 << 20)
		srv := grpc.NewServer(grpc.ForceServerCodec(rpc.Codec{}), grpc.ChainUnaryInterceptor(middleware.Auth(iss)))
		rpc.RegisterBookingServer(srv, h)
		go func() { _ = srv.Serve(lis) }()
		t.Cleanup(srv.Stop)

		conn, err := grpc.NewClient("passthrough:///bufnet",
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		cfg.Conn = conn
	}
	return &env{engine: New(cfg), iss: iss, store: st}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *env) registerToken(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "rest_user", "emailId": "rest@test.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["jwt_token"].(string)
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t, false)
	e.registerToken(t)

	w := e.do(t, http.MethodPost, "/api/login", "", map[string]string{"emailId": "rest@test.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Login successful", body["message"])
	assert.NotEmpty(t, body["refresh_token"])

	var hasAccess, hasRefresh bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.AccessCookie && c.HttpOnly {
			hasAccess = true
		}
		if c.Name == middleware.RefreshCookie && c.HttpOnly {
			hasRefresh = true
		}
	}
	assert.True(t, hasAccess, "missing httponly access_token cookie")
	assert.True(t, hasRefresh, "missing httponly refresh_token cookie")

	w = e.do(t, http.MethodPost, "/api/login", "", map[string]string{"emailId": "rest@test.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["error"])
}

func TestRefreshViaCookie(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "cookie_user", "email": "cookie@test.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	raw := decode(t, w)["refresh_token"].(string)

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshCookie, Value: raw})
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEqual(t, raw, decode(t, rec)["refresh_token"])
}

func TestRegisterValidationError(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodPost, "/api/register", "", map[string]string{"username": "x", "emailId": "bad", "password": "1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Validation error", body["error"])
	assert.Contains(t, body["message"], "Username must be between 3 and 30 characters")
}

func TestAppointmentsFlow(t *testing.T) {
	e := newEnv(t, false)
	tok := e.registerToken(t)
	at := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

	w := e.do(t, http.MethodPost, "/api/userappointments", tok, map[string]string{
		"userId": "ignored", "doctorId": "d1", "dateTime": at.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, booking.MsgBooked, decode(t, w)["text"])

	w = e.do(t, http.MethodPost, "/api/userappointments", tok, map[string]string{"doctorId": "d1", "dateTime": at.Format(time.RFC3339)})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Time slot unavailable", decode(t, w)["error"])

	w = e.do(t, http.MethodGet, "/api/userappointments/all", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []appointmentJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Dr. Adams", list[0].Doctor.Name)
	assert.Equal(t, "Pending", list[0].Status)
	assert.NotEqual(t, "ignored", list[0].UserID)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = e.do(t, http.MethodDelete, "/api/userappointments/"+list[0].ID, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.MsgDeleted, decode(t, w)["message"])

	w = e.do(t, http.MethodDelete, "/api/userappointments/"+list[0].ID, tok, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Appointment not found", decode(t, w)["error"])
}

func TestCreateErrorMapping(t *testing.T) {
	e := newEnv(t, false)
	tok := e.registerToken(t)
	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	tests := []struct {
		name  string
		body  map[string]string
		code  int
		title string
	}{
		{"past", map[string]string{"doctorId": "d1", "dateTime": "2000-01-01T00:00:00Z"}, http.StatusBadRequest, "Invalid appointment time"},
		{"garbage time", map[string]string{"doctorId": "d1", "dateTime": "tomorrow"}, http.StatusBadRequest, "Validation error"},
		{"missing time", map[string]string{"doctorId": "d1"}, http.StatusBadRequest, "Validation error"},
		{"missing doctor", map[string]string{"dateTime": future}, http.StatusBadRequest, "Validation error"},
		{"unknown doctor", map[string]string{"doctorId": "nope", "dateTime": future}, http.StatusNotFound, "Doctor not found"},
		{"status", map[string]string{"doctorId": "d1", "dateTime": future, "status": "Confirmed"}, http.StatusBadRequest, "Validation error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, http.MethodPost, "/api/userappointments", tok, tt.body)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Equal(t, tt.title, decode(t, w)["error"])
		})
	}
}

func TestCreateValidationMessages(t *testing.T) {
	e := newEnv(t, false)
	tok := e.registerToken(t)

	tests := []struct {
		name string
		body map[string]string
		msg  string
	}{
		{"garbage time", map[string]string{"doctorId": "d1", "dateTime": "garbage"}, "Appointment date and time is invalid"},
		{"missing time", map[string]string{"doctorId": "d1"}, "Appointment date and time is required"},
		{"missing both", map[string]string{}, "Doctor ID is required, Appointment date and time is required"},
		{"caller status", map[string]string{"doctorId": "d1", "dateTime": "2031-03-01T09:30", "status": "Confirmed"},
			"Status cannot be set when booking; new appointments start as Pending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, http.MethodPost, "/api/userappointments", tok, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			body := decode(t, w)
			assert.Equal(t, "Validation error", body["error"])
			assert.Equal(t, tt.msg, body["message"])
		})
	}
}

func TestCreateAcceptsDatetimeLocal(t *testing.T) {
	e := newEnv(t, false)
	tok := e.registerToken(t)

	w := e.do(t, http.MethodPost, "/api/userappointments", tok, map[string]string{"doctorId": "d1", "dateTime": "2030-01-01T10:00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// same slot written with seconds and with an explicit zone
	for _, v := range []string{"2030-01-01T10:00:00", "2030-01-01T10:00:00.000Z", "2030-01-01T15:30:00+05:30"} {
		w = e.do(t, http.MethodPost, "/api/userappointments", tok, map[string]string{"doctorId": "d1", "dateTime": v})
		require.Equal(t, http.StatusConflict, w.Code, v)
	}

	w = e.do(t, http.MethodGet, "/api/userappointments", tok, nil)
	var list []appointmentJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].DateTime.Equal(time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)))
}

func TestParseDateTime(t *testing.T) {
	for _, v := range []string{"2030-01-01T10:00", "2030-01-01T10:00:00", "2030-01-01T10:00:00.250", "2030-01-01T10:00:00Z"} {
		got, err := parseDateTime(v)
		require.NoError(t, err, v)
		assert.Equal(t, time.UTC, got.Location(), v)
	}
	for _, v := range []string{"", "garbage", "01/01/2030 10:00", "2030-13-01T10:00"} {
		_, err := parseDateTime(v)
		assert.Error(t, err, v)
	}
}

func TestRegisterMissingPassword(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodPost, "/api/register", "", map[string]string{"username": "nopass", "emailId": "np@test.com"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Validation error", body["error"])
	assert.Equal(t, "Password is required", body["message"])
}

func TestDeletePastMapsTo400(t *testing.T) {
	e := newEnv(t, false)
	tok := e.registerToken(t)
	claims, err := e.iss.Parse(tok)
	require.NoError(t, err)
	require.NoError(t, e.store.CreateAppointment(context.Background(), &model.Appointment{
		ID: "past", UserID: claims.UserID, DoctorID: "d1", DateTime: time.Now().Add(-time.Hour), Status: model.StatusConfirmed,
	}))

	w := e.do(t, http.MethodDelete, "/api/userappointments/past", tok, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot delete past appointment", decode(t, w)["error"])
}

func TestDoctorsRequireAuth(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodGet, "/api/doctors", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok := e.registerToken(t)
	w = e.do(t, http.MethodGet, "/api/doctors", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])

	w = e.do(t, http.MethodGet, "/api/doctors/d1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "Cardiology", data["specialization"])
	assert.Equal(t, true, data["availability"])

	w = e.do(t, http.MethodGet, "/api/doctors/zzz", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthMetricsAndNoRoute(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decode(t, w)["error"])
}

func TestCORSPreflight(t *testing.T) {
	e := newEnv(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func webFrame(payload []byte) []byte {
	f := make([]byte, 5+len(payload))
	binary.BigEndian.PutUint32(f[1:5], uint32(len(payload)))
	copy(f[5:], payload)
	return f
}

func TestGRPCWebBridge(t *testing.T) {
	e := newEnv(t, true)
	tok := e.registerToken(t)

	req := httptest.NewRequest(http.MethodPost, "/"+rpc.ServiceName+"/GetDoctor",
		bytes.NewReader(webFrame((&rpc.GetDoctorRequest{ID: "d1"}).AppendWire(nil))))
	req.Header.Set("Content-Type", "application/grpc-web+proto")
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.Bytes()
	require.GreaterOrEqual(t, len(body), 5)
	require.Equal(t, byte(0x00), body[0])
	n := binary.BigEndian.Uint32(body[1:5])
	var d rpc.Doctor
	require.NoError(t, d.UnmarshalWire(body[5:5+n]))
	assert.Equal(t, "Dr. Adams", d.Name)
	assert.Contains(t, string(body[5+n:]), "grpc-status:0")

	// no token: the server interceptor rejects it
	req = httptest.NewRequest(http.MethodPost, "/"+rpc.ServiceName+"/ListAppointments", bytes.NewReader(webFrame(nil)))
	req.Header.Set("Content-Type", "application/grpc-web+proto")
	w = httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, byte(0x80), w.Body.Bytes()[0])
	assert.Contains(t, w.Body.String(), "grpc-status:16")

	req = httptest.NewRequest(http.MethodPost, "/"+rpc.ServiceName+"/GetDoctor", bytes.NewReader([]byte{0, 0}))
	req.Header.Set("Content-Type", "application/grpc-web+proto")
	w = httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), "grpc-status:3")
}
