// Command wsprobe soak-tests the realtime notification feed. It logs in,
// exchanges the JWT for single-use WebSocket tickets, holds the requested
// number of connections open, and counts pushed notifications.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

type counters struct {
	attempted int64
	connected int64
	failed    int64
	received  int64
}

var stats counters

func main() {
	host := flag.String("host", "localhost:8080", "API server host")
	email := flag.String("email", "marco@example.com", "account email")
	password := flag.String("password", "password123", "account password")
	clients := flag.Int("clients", 5, "number of concurrent connections")
	duration := flag.Duration("duration", 30*time.Second, "probe duration")
	flag.Parse()

	token, err := login(*host, *email, *password)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}
	log.Printf("probing %s with %d connections for %v", *host, *clients, *duration)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go listen(*host, token, stop, &wg)
		// Stagger dials so each connection gets its own ticket.
		time.Sleep(50 * time.Millisecond)
	}

	select {
	case <-time.After(*duration):
	case <-interrupt:
		log.Println("interrupted")
	}

	close(stop)
	wg.Wait()

	log.Printf("connections: %d attempted, %d connected, %d failed",
		atomic.LoadInt64(&stats.attempted),
		atomic.LoadInt64(&stats.connected),
		atomic.LoadInt64(&stats.failed))
	log.Printf("notifications received: %d", atomic.LoadInt64(&stats.received))
}

func login(host, email, password string) (string, error) {
	payload, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	resp, err := http.Post(
		fmt.Sprintf("http://%s/api/auth/login", host),
		"application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login returned status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func fetchTicket(host, token string) (string, error) {
	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("http://%s/api/ws/ticket", host), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ticket endpoint returned status %d", resp.StatusCode)
	}

	var result struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Ticket, nil
}

func listen(host, token string, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&stats.attempted, 1)

	ticket, err := fetchTicket(host, token)
	if err != nil {
		atomic.AddInt64(&stats.failed, 1)
		log.Printf("ticket: %v", err)
		return
	}

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/", RawQuery: "ticket=" + ticket}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&stats.failed, 1)
		log.Printf("dial: %v", err)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = conn.Close() }()
	atomic.AddInt64(&stats.connected, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&stats.received, 1)
			log.Printf("notification: %s", message)
		}
	}()

	select {
	case <-stop:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-done:
	}
}
