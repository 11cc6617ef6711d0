package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/posbridge/internal/device"
	"github.com/nerrad567/posbridge/internal/hardware"
	"github.com/nerrad567/posbridge/internal/infrastructure/config"
	"github.com/nerrad567/posbridge/internal/infrastructure/logging"
	"github.com/nerrad567/posbridge/internal/journal"
	"github.com/nerrad567/posbridge/internal/security"
	"github.com/nerrad567/posbridge/internal/session"
)

const testSecret = "secret"

// unreachableAddr is a TCP address nothing listens on.
func unreachableAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

type fakeJournal struct {
	filter journal.Filter
}

func (f *fakeJournal) Create(context.Context, *journal.Entry) error { return nil }

func (f *fakeJournal) List(_ context.Context, filter journal.Filter) (*journal.ListResult, error) {
	f.filter = filter
	return &journal.ListResult{
		Entries: []journal.Entry{{ID: "cmd-1", Command: "print", DeviceID: "p1", Status: "ok"}},
		Total:   1,
		Limit:   filter.Limit,
	}, nil
}

func (f *fakeJournal) Prune(context.Context, time.Time) (int64, error) { return 0, nil }

// testServer wires a real registry, gate and dispatcher. Devices: mock printer
// p1, network printer p2 pointing nowhere, printer-driven drawer d1 on p1 and
// mock display disp1.
func testServer(t *testing.T, mutate func(*Deps)) *Server {
	t.Helper()

	logger := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")

	registry := device.NewRegistry()
	registry.SetLogger(logger)
	err := registry.Load(config.DevicesConfig{
		Printers: []config.DeviceConfig{
			{ID: "p1", DeviceType: "mock"},
			{ID: "p2", DeviceType: "network", Connection: unreachableAddr(t)},
		},
		Drawers: []config.DeviceConfig{
			{ID: "d1", DeviceType: "printer_driven", Connection: "p1"},
		},
		Displays: []config.DeviceConfig{
			{ID: "disp1", DeviceType: "mock"},
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	gate, err := security.NewGate(testSecret)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	deps := Deps{
		Server: config.ServerConfig{
			Host:     "127.0.0.1",
			Port:     0,
			Timeouts: config.ServerTimeoutConfig{Read: 5, Write: 5, Idle: 5},
		},
		WS: config.WebSocketConfig{
			Path:           "/",
			MaxMessageSize: 65536,
		},
		Logger:     logger,
		Registry:   registry,
		Dispatcher: session.NewDispatcher(registry, gate),
		Gate:       gate,
		Version:    "test",
	}
	if mutate != nil {
		mutate(&deps)
	}

	srv, err := New(deps)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		srv.Close() //nolint:errcheck // Test cleanup
	})
	return srv
}

func startHTTP(t *testing.T, srv *Server) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", wsURL, err)
	}
	resp.Body.Close()
	t.Cleanup(func() {
		conn.Close()
	})
	return conn
}

// send writes one text frame and returns the response frame.
func send(t *testing.T, conn *websocket.Conn, msg string) string {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("WriteMessage(%s) error = %v", msg, err)
	}
	//nolint:errcheck // test deadline
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() after %s error = %v", msg, err)
	}
	if msgType != websocket.TextMessage {
		t.Fatalf("response frame type = %d, want text", msgType)
	}
	return string(data)
}

func expect(t *testing.T, conn *websocket.Conn, msg, want string) {
	t.Helper()
	if got := send(t, conn, msg); got != want {
		t.Errorf("%s\n got  %s\n want %s", msg, got, want)
	}
}

const (
	authOK       = `{"status":"ok","message":"Authenticated"}`
	authRequired = `{"status":"error","message":"Authentication required"}`
	authMsg      = `{"type":"auth","token":"secret"}`
)

func TestWebSocket_AuthThenOpenDrawer(t *testing.T) {
	ts := startHTTP(t, testServer(t, nil))
	conn := dial(t, ts.URL)

	expect(t, conn, authMsg, authOK)
	expect(t, conn, `{"type":"open_drawer","device_id":"d1"}`, `{"status":"ok","device_id":"d1"}`)
}

func TestWebSocket_UnauthenticatedPrintRejected(t *testing.T) {
	ts := startHTTP(t, testServer(t, nil))
	conn := dial(t, ts.URL)

	expect(t, conn, `{"type":"print","device_id":"p1","data":{"text":"hi"}}`, authRequired)
}

func TestWebSocket_MalformedJSONKeepsAuthState(t *testing.T) {
	ts := startHTTP(t, testServer(t, nil))

	t.Run("unauthenticated stays unauthenticated", func(t *testing.T) {
		conn := dial(t, ts.URL)
		got := send(t, conn, `{"type":"bogus"}`)
		if !strings.HasPrefix(got, `{"status":"error","message":"Invalid JSON format: `) {
			t.Errorf("bogus command response = %s", got)
		}
		expect(t, conn, `{"type":"cut","device_id":"p1"}`, authRequired)
	})

	t.Run("authenticated stays authenticated", func(t *testing.T) {
		conn := dial(t, ts.URL)
		expect(t, conn, authMsg, authOK)
		send(t, conn, `not json at all`)
		expect(t, conn, `{"type":"cut","device_id":"p1"}`, `{"status":"ok","device_id":"p1"}`)
	})
}

func TestWebSocket_InvalidTokenDoesNotRevoke(t *testing.T) {
	ts := startHTTP(t, testServer(t, nil))
	conn := dial(t, ts.URL)

	expect(t, conn, authMsg, authOK)
	expect(t, conn, `{"type":"auth","token":"wrong"}`, `{"status":"error","message":"Invalid token"}`)
	expect(t, conn,
		`{"type":"display_update","device_id":"disp1","data":{"line1":"Total","line2":"9.99"}}`,
		`{"status":"ok","device_id":"disp1"}`)
}

func TestWebSocket_AuthIsPerConnection(t *testing.T) {
	ts := startHTTP(t, testServer(t, nil))
	first := dial(t, ts.URL)
	second := dial(t, ts.URL)

	expect(t, first, authMsg, authOK)
	expect(t, second, `{"type":"open_drawer","device_id":"d1"}`, authRequired)
	expect(t, first, `{"type":"open_drawer","device_id":"d1"}`, `{"status":"ok","device_id":"d1"}`)
}

func TestWebSocket_DeviceErrorsKeepConnection(t *testing.T) {
	ts := startHTTP(t, testServer(t, nil))
	conn := dial(t, ts.URL)

	expect(t, conn, authMsg, authOK)
	expect(t, conn, `{"type":"print","device_id":"nope","data":{"text":"x"}}`,
		`{"status":"error","device_id":"nope","message":"Device not found"}`)

	got := send(t, conn, `{"type":"print","device_id":"p2","data":{"text":"x","auto_cut":true}}`)
	var resp map[string]string
	if err := json.Unmarshal([]byte(got), &resp); err != nil {
		t.Fatalf("unmarshal %s: %v", got, err)
	}
	if resp["status"] != "error" || resp["device_id"] != "p2" ||
		!strings.HasPrefix(resp["message"], "io error: failed to connect to printer at ") {
		t.Errorf("unreachable printer response = %s", got)
	}

	expect(t, conn, `{"type":"print","device_id":"p1","data":{"text":"still here"}}`, `{"status":"ok","device_id":"p1"}`)
}

func TestWebSocket_IgnoresBinaryFrames(t *testing.T) {
	ts := startHTTP(t, testServer(t, nil))
	conn := dial(t, ts.URL)

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte(authMsg)); err != nil {
		t.Fatalf("WriteMessage(binary) error = %v", err)
	}
	// The first response must belong to the text frame.
	expect(t, conn, `{"type":"cut","device_id":"p1"}`, authRequired)
}

func TestWebSocket_KeepaliveAnswersPings(t *testing.T) {
	srv := testServer(t, func(d *Deps) {
		d.WS.PingInterval = 1
		d.WS.PongTimeout = 1
	})
	ts := startHTTP(t, srv)
	conn := dial(t, ts.URL)

	// The default ping handler answers with a pong while we read, so the
	// connection must survive several ping intervals.
	pinged := make(chan struct{}, 1)
	conn.SetPingHandler(func(data string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(3 * time.Second):
		t.Fatal("no ping received")
	}
	if srv.Hub().ConnectionCount() != 1 {
		t.Errorf("ConnectionCount() = %d, want 1", srv.Hub().ConnectionCount())
	}
}

func TestServer_StartAndClose(t *testing.T) {
	srv := testServer(t, nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	conn := dial(t, "http://"+srv.Addr())
	expect(t, conn, authMsg, authOK)

	if err := srv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	//nolint:errcheck // test deadline
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("connection should be closed after server Close()")
	}
}

func TestServer_StartBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	srv := testServer(t, func(d *Deps) { d.Server.Port = port })
	if err := srv.Start(context.Background()); err == nil {
		t.Error("Start() on a busy port should fail")
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New() without dependencies should fail")
	}
}

func doRequest(t *testing.T, method, url, token string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var body map[string]any
	//nolint:errcheck // some tests only look at the status
	json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestDiagnostics(t *testing.T) {
	repo := &fakeJournal{}
	ts := startHTTP(t, testServer(t, func(d *Deps) { d.Journal = repo }))

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"health is public", http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{"metrics is public", http.MethodGet, "/api/v1/metrics", "", http.StatusOK},
		{"devices needs token", http.MethodGet, "/api/v1/devices", "", http.StatusUnauthorized},
		{"devices rejects wrong token", http.MethodGet, "/api/v1/devices", "wrong", http.StatusUnauthorized},
		{"devices", http.MethodGet, "/api/v1/devices", testSecret, http.StatusOK},
		{"journal", http.MethodGet, "/api/v1/journal?device_id=p1&limit=5", testSecret, http.StatusOK},
		{"journal bad since", http.MethodGet, "/api/v1/journal?since=yesterday", testSecret, http.StatusBadRequest},
		{"journal bad limit", http.MethodGet, "/api/v1/journal?limit=-1", testSecret, http.StatusBadRequest},
		{"printer test", http.MethodPost, "/api/v1/printers/p1/test", testSecret, http.StatusOK},
		{"printer test unknown", http.MethodPost, "/api/v1/printers/zzz/test", testSecret, http.StatusNotFound},
		{"printer test unreachable", http.MethodPost, "/api/v1/printers/p2/test", testSecret, http.StatusBadGateway},
		{"display clear", http.MethodPost, "/api/v1/displays/disp1/clear", testSecret, http.StatusOK},
		{"display clear unknown", http.MethodPost, "/api/v1/displays/p1/clear", testSecret, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doRequest(t, tt.method, ts.URL+tt.path, tt.token)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}

	t.Run("journal filter passed through", func(t *testing.T) {
		doRequest(t, http.MethodGet, ts.URL+"/api/v1/journal?device_id=p1&command=print&status=ok&limit=5&offset=2", testSecret)
		want := journal.Filter{DeviceID: "p1", Command: "print", Status: "ok", Limit: 5, Offset: 2}
		if repo.filter != want {
			t.Errorf("filter = %+v, want %+v", repo.filter, want)
		}
	})

	t.Run("devices body", func(t *testing.T) {
		_, body := doRequest(t, http.MethodGet, ts.URL+"/api/v1/devices", testSecret)
		if body["count"] != float64(4) {
			t.Errorf("count = %v, want 4", body["count"])
		}
	})

	t.Run("metrics body", func(t *testing.T) {
		_, body := doRequest(t, http.MethodGet, ts.URL+"/api/v1/metrics", "")
		devices, _ := body["devices"].(map[string]any) //nolint:errcheck // checked below
		if devices["total"] != float64(4) {
			t.Errorf("devices = %v, want total 4", body["devices"])
		}
	})
}

// recordingPeer accepts TCP connections and reports each one's payload.
func recordingPeer(t *testing.T) (string, <-chan []byte) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() {
		ln.Close()
	})

	jobs := make(chan []byte, 8)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			data, _ := io.ReadAll(conn) //nolint:errcheck // peer closes after writing
			conn.Close()
			jobs <- data
		}
	}()
	return ln.Addr().String(), jobs
}

func TestDiagnostics_PrinterTestIsOneJob(t *testing.T) {
	addr, jobs := recordingPeer(t)

	ts := startHTTP(t, testServer(t, func(d *Deps) {
		registry := device.NewRegistry()
		err := registry.Load(config.DevicesConfig{
			Printers: []config.DeviceConfig{{ID: "net1", DeviceType: "network", Connection: addr}},
		})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		d.Registry = registry
	}))

	resp, _ := doRequest(t, http.MethodPost, ts.URL+"/api/v1/printers/net1/test", testSecret)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	select {
	case job := <-jobs:
		if !bytes.HasPrefix(job, hardware.Initialize) {
			t.Errorf("job does not start with initialize: % x", job)
		}
		if !bytes.Contains(job, []byte(testPageText)) {
			t.Errorf("job missing test page text: %q", job)
		}
		if !bytes.HasSuffix(job, hardware.FeedAndCut) {
			t.Errorf("job does not end with feed and cut: % x", job)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("printer received no job")
	}

	select {
	case extra := <-jobs:
		t.Errorf("printer received a second job: % x", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDiagnostics_JournalDisabled(t *testing.T) {
	ts := startHTTP(t, testServer(t, nil))

	resp, body := doRequest(t, http.MethodGet, ts.URL+"/api/v1/journal", testSecret)
	if resp.StatusCode != http.StatusServiceUnavailable || body["code"] != ErrCodeUnavailable {
		t.Errorf("status = %d body = %v, want 503 unavailable", resp.StatusCode, body)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		wantOK bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", tt.header)
			got, ok := bearerToken(r)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("bearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
