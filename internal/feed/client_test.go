package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/stockstream/internal/model"
)

// recordedTrade captures one RecordTrade call.
type recordedTrade struct {
	symbol string
	price  float64
	volume int64
}

// mockRecorder collects trades delivered by the client.
type mockRecorder struct {
	mu     sync.Mutex
	trades []recordedTrade
}

func (m *mockRecorder) RecordTrade(t model.Trade) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, recordedTrade{t.Symbol, t.Price, t.Volume})
}

func (m *mockRecorder) snapshot() []recordedTrade {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedTrade(nil), m.trades...)
}

// mockFeedServer creates a test WebSocket server for the upstream feed.
func mockFeedServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	return cfg
}

func TestClient_SubscribesAndRecordsTrades(t *testing.T) {
	var gotSubscribe sync.WaitGroup
	gotSubscribe.Add(1)

	server := mockFeedServer(t, func(conn *websocket.Conn) {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}

		var sub subscribeRequest
		if err := json.Unmarshal(data, &sub); err != nil {
			t.Errorf("decode subscribe: %v", err)
		}
		if sub.Action != "subscribe" || len(sub.Trades) != 1 || sub.Trades[0] != "*" {
			t.Errorf("unexpected subscribe request: %s", data)
		}
		gotSubscribe.Done()

		conn.WriteMessage(websocket.TextMessage, []byte(`{"T":"t","S":"AAPL","p":187.23,"s":100}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"T":"t","S":"MSFT","p":"402.5"}`))

		// Keep the connection open
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	rec := &mockRecorder{}
	client := NewClient(testConfig(wsURL(server)), rec, nil)

	ctx := context.Background()
	if err := client.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		client.Stop(stopCtx)
	}()

	gotSubscribe.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(rec.snapshot()) == 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	trades := rec.snapshot()
	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(trades))
	}

	if trades[0].symbol != "AAPL" || trades[0].price != 187.23 || trades[0].volume != 100 {
		t.Errorf("trade 0 = %+v, want AAPL 187.23 x100", trades[0])
	}
	// String-typed price and absent size are both tolerated.
	if trades[1].symbol != "MSFT" || trades[1].price != 402.5 || trades[1].volume != 0 {
		t.Errorf("trade 1 = %+v, want MSFT 402.5 x0", trades[1])
	}

	if !client.IsConnected() {
		t.Error("expected IsConnected after subscribe")
	}
}

func TestClient_HandleMessage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []recordedTrade
	}{
		{
			name: "trade with numeric price",
			raw:  `{"T":"t","S":"AAPL","p":187.23,"s":100}`,
			want: []recordedTrade{{"AAPL", 187.23, 100}},
		},
		{
			name: "trade with string price",
			raw:  `{"T":"t","S":"AAPL","p":"187.23","s":100}`,
			want: []recordedTrade{{"AAPL", 187.23, 100}},
		},
		{
			name: "trade without size defaults to zero volume",
			raw:  `{"T":"t","S":"AAPL","p":187.23}`,
			want: []recordedTrade{{"AAPL", 187.23, 0}},
		},
		{
			name: "non-trade message ignored",
			raw:  `{"T":"success","msg":"authenticated"}`,
			want: nil,
		},
		{
			name: "array-shaped message ignored",
			raw:  `[{"T":"t","S":"AAPL","p":187.23}]`,
			want: nil,
		},
		{
			name: "malformed json dropped",
			raw:  `{"T":"t","S":`,
			want: nil,
		},
		{
			name: "unparseable price dropped",
			raw:  `{"T":"t","S":"AAPL","p":"abc"}`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &mockRecorder{}
			client := NewClient(DefaultConfig(), rec, nil)

			client.handleMessage([]byte(tt.raw), time.Now())

			got := rec.snapshot()
			if len(got) != len(tt.want) {
				t.Fatalf("recorded %d trades, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("trade %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestClient_BackoffSequence(t *testing.T) {
	client := NewClient(testConfig("ws://localhost:1"), &mockRecorder{}, nil)

	want := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
		60 * time.Second,
		60 * time.Second,
		60 * time.Second,
	}

	for i, w := range want {
		if got := client.nextBackoff(); got != w {
			t.Errorf("attempt %d: backoff = %v, want %v", i+1, got, w)
		}
	}

	// A successful subscribe resets the sequence.
	client.resetBackoff()
	if got := client.nextBackoff(); got != 2*time.Second {
		t.Errorf("backoff after reset = %v, want 2s", got)
	}
}

func TestClient_ReconnectsAfterServerClose(t *testing.T) {
	var mu sync.Mutex
	connects := 0

	server := mockFeedServer(t, func(conn *websocket.Conn) {
		mu.Lock()
		connects++
		n := connects
		mu.Unlock()

		// Read the subscribe request, then drop the first connection.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		if n == 1 {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	cfg := testConfig(wsURL(server))
	cfg.MaxReconnectWait = 50 * time.Millisecond

	// With the cap below the base delay, the first retry waits only 50ms.
	client := NewClient(cfg, &mockRecorder{}, nil)

	ctx := context.Background()
	if err := client.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		client.Stop(stopCtx)
	}()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := connects
		mu.Unlock()
		if n >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("client never reconnected after server close")
}
