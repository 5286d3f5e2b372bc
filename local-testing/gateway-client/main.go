package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/compose-network/bodycodec/x/envelope"
)

type commandFlags struct {
	gatewayURL  string
	action      string
	codecs      string
	payload     string
	messageType string
	timeout     time.Duration
}

func main() {
	flags := parseFlags()

	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() commandFlags {
	var flags commandFlags
	flag.StringVar(&flags.gatewayURL, "gateway", "http://127.0.0.1:8081", "Codec gateway base URL")
	flag.StringVar(&flags.action, "action", "", "Action to perform: codecs|encode|roundtrip")
	flag.StringVar(&flags.codecs, "codecs", "json,gzip-json,bson,gzip-bson,binary",
		"Comma separated codec names used by encode and roundtrip")
	flag.StringVar(&flags.payload, "payload", `{"id":100,"created_on":"2017-12-30T00:00:00Z"}`, "JSON payload")
	flag.StringVar(&flags.messageType, "type", "", "Declared payload type written to MessageType")
	flag.DurationVar(&flags.timeout, "timeout", 5*time.Second, "Per request timeout")

	flag.Parse()

	if flags.action == "" {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "\nmissing required flag: -action")
		os.Exit(2)
	}

	return flags
}

func run(cfg commandFlags) error {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).Level(zerolog.InfoLevel).With().Timestamp().Logger()

	c := &client{
		base: strings.TrimRight(cfg.gatewayURL, "/"),
		http: &http.Client{Timeout: cfg.timeout},
	}
	ctx := context.Background()

	switch strings.ToLower(cfg.action) {
	case "codecs":
		var out json.RawMessage
		if err := c.do(ctx, http.MethodGet, "/v1/codecs", nil, &out); err != nil {
			return err
		}
		logger.Info().RawJSON("codecs", out).Msg("Gateway codecs")
		return nil

	case "encode":
		for _, name := range splitCodecs(cfg.codecs) {
			msg, err := c.encode(ctx, name, cfg.messageType, cfg.payload)
			if err != nil {
				return fmt.Errorf("encode %s: %w", name, err)
			}
			logger.Info().
				Str("codec", name).
				Str("content_type", msg.ContentType).
				Int("body_bytes", len(msg.Body)).
				Interface("properties", msg.Properties).
				Msg("Encoded payload")
		}
		return nil

	case "roundtrip":
		var failed int
		for _, name := range splitCodecs(cfg.codecs) {
			if err := c.roundTrip(ctx, name, cfg.messageType, cfg.payload); err != nil {
				failed++
				logger.Error().Err(err).Str("codec", name).Msg("Round trip failed")
				continue
			}
			logger.Info().Str("codec", name).Msg("Round trip ok")
		}
		if failed > 0 {
			return fmt.Errorf("%d round trips failed", failed)
		}
		return nil

	default:
		return fmt.Errorf("unknown action %q", cfg.action)
	}
}

func splitCodecs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type client struct {
	base string
	http *http.Client
}

func (c *client) encode(ctx context.Context, name, messageType, payload string) (*envelope.Message, error) {
	path := "/v1/encode?codec=" + name
	if messageType != "" {
		path += "&type=" + messageType
	}

	var resp struct {
		Message *envelope.Message `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, path, []byte(payload), &resp); err != nil {
		return nil, err
	}
	if resp.Message == nil {
		return nil, errors.New("gateway returned no message")
	}
	return resp.Message, nil
}

func (c *client) roundTrip(ctx context.Context, name, messageType, payload string) error {
	msg, err := c.encode(ctx, name, messageType, payload)
	if err != nil {
		return err
	}

	req, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	var resp struct {
		Payload any `json:"payload"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/decode", req, &resp); err != nil {
		return err
	}

	var want any
	if err := json.Unmarshal([]byte(payload), &want); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}
	got, _ := json.Marshal(resp.Payload)
	exp, _ := json.Marshal(want)
	if !bytes.Equal(got, exp) {
		return fmt.Errorf("decoded payload %s does not match %s", got, exp)
	}
	return nil
}

func (c *client) do(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return json.Unmarshal(data, out)
}
