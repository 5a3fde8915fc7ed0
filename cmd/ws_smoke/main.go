package main

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

type session struct {
	Token string `json:"token"`
}

type taskEnvelope struct {
	Task struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"task"`
}

type event struct {
	Type       string `json:"type"`
	TaskID     string `json:"task_id"`
	FromStatus string `json:"from_status"`
}

func main() {
	_ = godotenv.Load()

	base := os.Getenv("SMOKE_BASE_URL")
	if base == "" {
		port := os.Getenv("APP_PORT")
		if port == "" {
			port = "8080"
		}
		// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
		base = "http://127.0.0.1:" + port
	}
	email := envOr("SMOKE_EMAIL", "smoke@taskflow.local")
	password := envOr("SMOKE_PASSWORD", "smoke-password")

	// sign up is allowed to fail when the account already exists
	if resp, err := post(base+"/api/v1/auth/signup", "", map[string]string{
		"email": email, "password": password, "confirm_password": password,
	}); err == nil {
		resp.Body.Close()
	}

	var sess session
	if err := postJSON(base+"/api/v1/auth/login", "", map[string]string{"email": email, "password": password}, &sess); err != nil {
		log.Fatalf("login: %v", err)
	}

	u, _ := url.Parse(base)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = url.Values{"token": {sess.Token}}.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	expect(conn, "ready")

	var created taskEnvelope
	if err := postJSON(base+"/api/v1/tasks", sess.Token, map[string]string{"title": "smoke " + time.Now().Format(time.Kitchen)}, &created); err != nil {
		log.Fatalf("create task: %v", err)
	}
	ev := expect(conn, "task.created")
	log.Printf("created %s in %s", ev.TaskID, created.Task.Status)

	if err := postJSON(base+"/api/v1/tasks/"+created.Task.ID+"/move", sess.Token, map[string]string{"status": "done"}, nil); err != nil {
		log.Fatalf("move task: %v", err)
	}
	ev = expect(conn, "task.moved")
	log.Printf("moved %s from %s", ev.TaskID, ev.FromStatus)

	req, _ := http.NewRequest(http.MethodDelete, base+"/api/v1/tasks/"+created.Task.ID, nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	if resp, err := http.DefaultClient.Do(req); err != nil {
		log.Fatalf("delete task: %v", err)
	} else {
		resp.Body.Close()
	}
	expect(conn, "task.deleted")

	log.Println("smoke test finished")
}

// expect reads until a message of type want arrives, skipping pongs.
func expect(conn *websocket.Conn, want string) event {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("waiting for %s: %v", want, err)
		}
		var ev event
		_ = sonic.Unmarshal(msg, &ev)
		if ev.Type == want {
			return ev
		}
	}
	log.Fatalf("no %s message before deadline", want)
	return event{}
}

func post(endpoint, token string, body any) (*http.Response, error) {
	b, err := sonic.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return http.DefaultClient.Do(req)
}

func postJSON(endpoint, token string, body, out any) error {
	resp, err := post(endpoint, token, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: status %d", endpoint, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return sonic.ConfigDefault.NewDecoder(resp.Body).Decode(out)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
