// Command walletctl is a small operations CLI for the wallet HTTP API.
//
// Usage:
//
//	walletctl -addr http://localhost:8080 create  -player <uuid>
//	walletctl -addr http://localhost:8080 credit  -player <uuid> -amount 25.50 -key bet-1
//	walletctl -addr http://localhost:8080 debit   -player <uuid> -amount 10 -key win-2
//	walletctl -addr http://localhost:8080 balance -player <uuid>
//	walletctl -addr http://localhost:8080 history -player <uuid>
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "wallet service base URL")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}

	cli := &client{base: *addr, http: &http.Client{Timeout: 10 * time.Second}}

	var err error
	switch flag.Arg(0) {
	case "create":
		err = cli.create(flag.Args()[1:])
	case "credit":
		err = cli.mutate("credit", flag.Args()[1:])
	case "debit":
		err = cli.mutate("debit", flag.Args()[1:])
	case "balance":
		err = cli.balance(flag.Args()[1:])
	case "history":
		err = cli.history(flag.Args()[1:])
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: walletctl [-addr URL] {create|credit|debit|balance|history} [flags]")
	os.Exit(2)
}

type client struct {
	base string
	http *http.Client
}

func (c *client) create(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	player := fs.String("player", "", "player UUID")
	_ = fs.Parse(args)
	if *player == "" {
		return fmt.Errorf("-player is required")
	}

	body, _ := json.Marshal(map[string]string{"player_id": *player})
	return c.do(http.MethodPost, "/api/v1/wallets", body)
}

func (c *client) mutate(op string, args []string) error {
	fs := flag.NewFlagSet(op, flag.ExitOnError)
	player := fs.String("player", "", "player UUID")
	amount := fs.String("amount", "", "amount, e.g. 25.50")
	key := fs.String("key", "", "idempotency key")
	_ = fs.Parse(args)
	if *player == "" || *amount == "" || *key == "" {
		return fmt.Errorf("-player, -amount and -key are required")
	}

	body, _ := json.Marshal(map[string]string{
		"amount":          *amount,
		"idempotency_key": *key,
	})
	return c.do(http.MethodPost, "/api/v1/wallets/"+*player+"/"+op, body)
}

func (c *client) balance(args []string) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	player := fs.String("player", "", "player UUID")
	_ = fs.Parse(args)
	if *player == "" {
		return fmt.Errorf("-player is required")
	}
	return c.do(http.MethodGet, "/api/v1/wallets/"+*player+"/balance", nil)
}

func (c *client) history(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	player := fs.String("player", "", "player UUID")
	_ = fs.Parse(args)
	if *player == "" {
		return fmt.Errorf("-player is required")
	}
	return c.do(http.MethodGet, "/api/v1/wallets/"+*player+"/transactions", nil)
}

// do sends the request and pretty-prints the JSON response to stdout.
func (c *client) do(method, path string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, raw, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(raw))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
