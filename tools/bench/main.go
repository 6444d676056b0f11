// Command bench drives the messaging gateway with concurrent clients and
// reports message round-trip latency.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type chatMessage struct {
	Room    string `json:"room"`
	Author  string `json:"author"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

// Stats latency samples of delivered messages, shared by all clients.
type Stats struct {
	mu        sync.Mutex
	latencies []time.Duration
	failed    int
}

func (s *Stats) Add(latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latencies = append(s.latencies, latency)
}

func (s *Stats) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
}

func (s *Stats) Report(took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Println("\n=== Gateway benchmark results ===")
	fmt.Printf("Took: %v\n", took)
	fmt.Printf("Delivered: %d Failed: %d\n", len(s.latencies), s.failed)
	if len(s.latencies) == 0 {
		return
	}
	sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })
	var sum time.Duration
	for _, l := range s.latencies {
		sum += l
	}
	pct := func(p float64) time.Duration { return s.latencies[int(float64(len(s.latencies)-1)*p)] }
	fmt.Printf("Latency avg: %v p50: %v p95: %v p99: %v max: %v\n",
		sum/time.Duration(len(s.latencies)), pct(0.50), pct(0.95), pct(0.99), s.latencies[len(s.latencies)-1])
	fmt.Printf("Throughput: %.2f msg/s\n", float64(len(s.latencies))/took.Seconds())
}

func (s *Stats) SaveCSV(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString("latency_ms\n"); err != nil {
		return err
	}
	for _, l := range s.latencies {
		if _, err := fmt.Fprintf(f, "%.3f\n", float64(l.Microseconds())/1000); err != nil {
			return err
		}
	}
	return nil
}

// register creates a throwaway account and returns its token.
func register(base, username string) (string, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": "bench-" + username})
	client := &http.Client{Timeout: 8 * time.Second}
	resp, err := client.Post(base+"/api/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var out struct {
		Message string `json:"message"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("register %s: %d %s", username, resp.StatusCode, out.Message)
	}
	return out.Data.Token, nil
}

func wsURL(base, token string) string {
	u := strings.Replace(strings.Replace(base, "https://", "wss://", 1), "http://", "ws://", 1)
	return u + "/ws?token=" + url.QueryEscape(token)
}

func write(conn *websocket.Conn, event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return conn.WriteJSON(envelope{Event: event, Data: raw})
}

// runClient sends perClient messages one at a time and times each echo.
func runClient(base, room, token, username string, perClient int, stats *Stats) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(base, token), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := write(conn, "join_room", map[string]string{"room": room, "username": username}); err != nil {
		return err
	}

	for i := 0; i < perClient; i++ {
		id := uuid.NewString()
		start := time.Now()
		if err := write(conn, "send_message", chatMessage{Room: room, Author: username, Message: id, Time: start.Format("15:04")}); err != nil {
			return err
		}
		if err := awaitEcho(conn, username, id); err != nil {
			stats.Fail()
			continue
		}
		stats.Add(time.Since(start))
	}
	return nil
}

func awaitEcho(conn *websocket.Conn, username, id string) error {
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			return err
		}
		if env.Event != "receive_message" {
			continue
		}
		var msg chatMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			continue
		}
		if msg.Author == username && msg.Message == id {
			return nil
		}
	}
}

func main() {
	base := flag.String("url", "http://localhost:3001", "server base URL")
	clients := flag.Int("clients", 20, "concurrent gateway connections")
	perClient := flag.Int("messages", 50, "messages sent by each client")
	room := flag.String("room", "bench-"+uuid.NewString()[:8], "room all clients join")
	csv := flag.String("csv", "", "write latency samples to this file")
	flag.Parse()

	fmt.Println("=== Gateway benchmark ===")
	fmt.Printf("Target: %s Clients: %d Messages per client: %d Room: %s\n", *base, *clients, *perClient, *room)

	type account struct{ username, token string }
	accounts := make([]account, 0, *clients)
	for i := 0; i < *clients; i++ {
		username := fmt.Sprintf("bench_%s", uuid.NewString()[:12])
		token, err := register(*base, username)
		if err != nil {
			fmt.Fprintln(os.Stderr, "setup failed:", err)
			os.Exit(1)
		}
		accounts = append(accounts, account{username, token})
	}

	stats := &Stats{}
	var wg sync.WaitGroup
	start := time.Now()
	for _, a := range accounts {
		wg.Add(1)
		go func(a account) {
			defer wg.Done()
			if err := runClient(*base, *room, a.token, a.username, *perClient, stats); err != nil {
				fmt.Fprintf(os.Stderr, "client %s: %v\n", a.username, err)
			}
		}(a)
	}
	wg.Wait()

	stats.Report(time.Since(start))
	if *csv != "" {
		if err := stats.SaveCSV(*csv); err != nil {
			fmt.Fprintln(os.Stderr, "save csv failed:", err)
			os.Exit(1)
		}
		fmt.Println("Samples saved:", *csv)
	}
}
