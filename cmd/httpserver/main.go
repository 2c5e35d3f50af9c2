package main

import (
	"context"
	"crypto/rsa"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/surveyintake/envelope-ingest-backend/cmd/flags"
	"github.com/surveyintake/envelope-ingest-backend/configstore"
	"github.com/surveyintake/envelope-ingest-backend/envelope"
	"github.com/surveyintake/envelope-ingest-backend/httpserver"
	"github.com/surveyintake/envelope-ingest-backend/interfaces"
	"github.com/surveyintake/envelope-ingest-backend/storage"
)

var cliFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:  "listen-addr",
		Value: "127.0.0.1:8080",
		Usage: "address to listen on for API",
	},
	&cli.StringSliceFlag{
		Name:  "sink",
		Value: cli.NewStringSlice("file://records"),
		Usage: "record sink URI (file://, sqlite://, s3://, ipfs://); repeat for fan-out",
	},
	&cli.StringFlag{
		Name:  "config-store",
		Value: "env://",
		Usage: "config store URI for key material (env://, file://, vault://)",
	},
	&cli.BoolFlag{
		Name:  "debug-previews",
		Value: false,
		Usage: "attach bounded previews of undecodable plaintext to decode errors",
	},
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:  "envelope-ingest",
		Usage: "Serve the encrypted envelope ingest API",
		Flags: cliFlags,
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String("listen-addr")
			sinkURIs := cCtx.StringSlice("sink")
			configStoreURI := cCtx.String("config-store")
			debugPreviews := cCtx.Bool("debug-previews")

			logger := flags.SetupLogger(cCtx)

			store, err := configstore.FromURI(configStoreURI, logger)
			if err != nil {
				logger.Error("Failed to create config store", "err", err)
				return err
			}

			privateKey, publicKeyPEM, err := loadKeyMaterial(cCtx.Context, store)
			if err != nil {
				logger.Error("Failed to load key material", "err", err)
				return err
			}
			if privateKey == nil {
				logger.Warn("No private key configured, every envelope will be rejected")
			}

			locations := make([]interfaces.SinkLocation, 0, len(sinkURIs))
			for _, uri := range sinkURIs {
				loc, err := interfaces.NewSinkLocation(uri)
				if err != nil {
					logger.Error("Invalid sink URI", "uri", uri, "err", err)
					return err
				}
				locations = append(locations, loc)
			}

			factory := storage.NewFactory(logger)
			sink, err := factory.CreateMultiSink(locations)
			if err != nil {
				logger.Error("Failed to create record sink", "err", err)
				return err
			}
			logger.Info("Record sink ready", "location", sink.LocationURI())

			pipeline := &envelope.Pipeline{DebugPreviews: debugPreviews}
			handler := httpserver.NewHandler(pipeline, privateKey, publicKeyPEM, sink, logger)

			cfg := flags.ConfigureServer(cCtx, logger, listenAddr)
			server, err := httpserver.New(cfg, handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}
			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadKeyMaterial resolves the wrapping key pair from the config store. The
// private key is optional so the service can come up before keys are
// provisioned; the public key falls back to derivation from the private key.
func loadKeyMaterial(ctx context.Context, store interfaces.ConfigStore) (*rsa.PrivateKey, string, error) {
	privatePEM, ok, err := store.Get(ctx, interfaces.PrivateKeyPEMName)
	if err != nil {
		return nil, "", err
	}

	var privateKey *rsa.PrivateKey
	if ok && privatePEM != "" {
		privateKey, err = envelope.LoadPrivateKey(privatePEM)
		if err != nil {
			return nil, "", err
		}
	}

	publicPEM, ok, err := store.Get(ctx, interfaces.PublicKeyPEMName)
	if err != nil {
		return nil, "", err
	}
	if ok && publicPEM != "" {
		// Validate the configured key so a bad value fails at startup.
		if _, err := envelope.LoadPublicKey(publicPEM); err != nil {
			return nil, "", err
		}
		return privateKey, publicPEM, nil
	}

	if privateKey == nil {
		return nil, "", errors.New("neither private nor public key configured")
	}

	derived, err := envelope.PublicKeyPEM(&privateKey.PublicKey)
	if err != nil {
		return nil, "", err
	}
	return privateKey, derived, nil
}
