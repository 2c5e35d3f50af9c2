package main

import (
	"bytes"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/surveyintake/envelope-ingest-backend/cmd/flags"
	"github.com/surveyintake/envelope-ingest-backend/envelope"
)

var cliFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "server-addr",
		Value: "http://127.0.0.1:8080",
		Usage: "base URL of the ingest server",
	},
	&cli.StringFlag{
		Name:  "payload",
		Usage: "path to a JSON record to submit; '-' reads stdin",
		Value: "-",
	},
	&cli.BoolFlag{
		Name:  "legacy",
		Value: false,
		Usage: "use the legacy single-field envelope (RSA only, no AES layer)",
	},
	&cli.BoolFlag{
		Name:  "test-ping",
		Value: false,
		Usage: "submit a minimal test-ping record instead of a payload",
	},
	flags.LogJSONFlag,
	flags.LogDebugFlag,
	flags.LogUIDFlag,
	flags.LogServiceFlag,
}

func main() {
	app := &cli.App{
		Name:  "envelope-client",
		Usage: "Encrypt a record and submit it to the ingest server",
		Flags: cliFlags,
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context) error {
	serverAddr := cCtx.String("server-addr")
	logger := flags.SetupLogger(cCtx)
	client := &http.Client{Timeout: 30 * time.Second}

	pub, err := fetchPublicKey(client, serverAddr)
	if err != nil {
		logger.Error("Failed to fetch public key", "err", err)
		return err
	}

	var record any
	if cCtx.Bool("test-ping") {
		record = map[string]any{
			"testPing":  true,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
	} else {
		payload, err := readPayload(cCtx.String("payload"))
		if err != nil {
			logger.Error("Failed to read payload", "err", err)
			return err
		}
		record = payload
	}

	var env envelope.Envelope
	if cCtx.Bool("legacy") {
		env, err = envelope.SealLegacy(record, pub)
	} else {
		env, err = envelope.Seal(record, pub)
	}
	if err != nil {
		logger.Error("Failed to seal record", "err", err)
		return err
	}

	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	resp, err := client.Post(serverAddr+"/api/envelope", "application/json", bytes.NewReader(body))
	if err != nil {
		logger.Error("Failed to submit envelope", "err", err)
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		logger.Error("Server rejected envelope", "status", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	logger.Info("Envelope accepted", "status", resp.StatusCode)
	return nil
}

func fetchPublicKey(client *http.Client, serverAddr string) (*rsa.PublicKey, error) {
	resp, err := client.Get(serverAddr + "/api/public-key")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("public key endpoint returned %d", resp.StatusCode)
	}

	var payload struct {
		PublicKey string `json:"publicKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return envelope.LoadPublicKey(payload.PublicKey)
}

func readPayload(path string) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	return record, nil
}
