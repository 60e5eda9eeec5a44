package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"text/tabwriter"
)

// Thin HTTP client for the carbook API. The login token is kept in
// ~/.carbook/token and attached to booking requests.

var baseURL = envOr("CARBOOK_URL", "http://localhost:8080")

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "signup":
		requireArgs(4, "usage: carbook signup <username> <password>")
		doSignup(os.Args[2], os.Args[3])
	case "login":
		requireArgs(4, "usage: carbook login <username> <password>")
		doLogin(os.Args[2], os.Args[3])
	case "bookings":
		handleBookings(os.Args[2:])
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func handleBookings(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: carbook bookings <list|create|delete>")
		return
	}
	switch args[0] {
	case "list":
		listBookings()
	case "create":
		if len(args) != 4 {
			fmt.Println("usage: carbook bookings create <carName> <days> <rentPerDay>")
			return
		}
		createBooking(args[1], args[2], args[3])
	case "delete":
		if len(args) != 2 {
			fmt.Println("usage: carbook bookings delete <id>")
			return
		}
		deleteBooking(args[1])
	default:
		fmt.Printf("unknown bookings command: %s\n", args[0])
	}
}

func doSignup(username, password string) {
	var out struct {
		Data struct {
			UserID string `json:"userId"`
		} `json:"data"`
	}
	if err := request("POST", "/auth/signup", map[string]string{
		"username": username,
		"password": password,
	}, false, &out); err != nil {
		fail(err)
	}
	fmt.Printf("created user %s\n", out.Data.UserID)
}

func doLogin(username, password string) {
	var out struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := request("POST", "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, false, &out); err != nil {
		fail(err)
	}
	if err := saveToken(out.Data.Token); err != nil {
		fail(err)
	}
	fmt.Println("logged in")
}

func listBookings() {
	var out struct {
		Data []struct {
			ID         string  `json:"id"`
			CarName    string  `json:"carName"`
			Days       int     `json:"days"`
			RentPerDay float64 `json:"rentPerDay"`
		} `json:"data"`
	}
	if err := request("GET", "/bookings", nil, true, &out); err != nil {
		fail(err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCAR\tDAYS\tRENT/DAY")
	for _, b := range out.Data {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\n", b.ID, b.CarName, b.Days, b.RentPerDay)
	}
	tw.Flush()
}

func createBooking(carName, days, rentPerDay string) {
	var d int
	var r float64
	if _, err := fmt.Sscanf(days, "%d", &d); err != nil {
		fail(fmt.Errorf("invalid days: %s", days))
	}
	if _, err := fmt.Sscanf(rentPerDay, "%f", &r); err != nil {
		fail(fmt.Errorf("invalid rentPerDay: %s", rentPerDay))
	}

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := request("POST", "/bookings", map[string]any{
		"carName":    carName,
		"days":       d,
		"rentPerDay": r,
	}, true, &out); err != nil {
		fail(err)
	}
	fmt.Printf("created booking %s\n", out.Data.ID)
}

func deleteBooking(id string) {
	if err := request("DELETE", "/bookings/"+id, nil, true, nil); err != nil {
		fail(err)
	}
	fmt.Println("deleted")
}

func request(method, path string, body any, authed bool, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := loadToken()
		if err != nil {
			return fmt.Errorf("not logged in, run: carbook login <username> <password>")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var envelope struct {
			Error string `json:"error"`
		}
		json.Unmarshal(data, &envelope)
		if envelope.Error != "" {
			return fmt.Errorf("%s (%d)", envelope.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".carbook", "token"), nil
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func loadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func requireArgs(n int, usage string) {
	if len(os.Args) != n {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printUsage() {
	fmt.Println(`carbook - car rental booking client

Usage:
  carbook signup <username> <password>
  carbook login <username> <password>
  carbook bookings list
  carbook bookings create <carName> <days> <rentPerDay>
  carbook bookings delete <id>

Environment:
  CARBOOK_URL   API base URL (default http://localhost:8080)`)
}
