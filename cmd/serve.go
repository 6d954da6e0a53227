package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leads-agent/internal/extract"
	"github.com/sells-group/leads-agent/internal/ingest"
	"github.com/sells-group/leads-agent/internal/model"
)

var (
	servePort        int
	serveTestChannel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Slack events webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.RequireSlack(); err != nil {
			return err
		}
		if serveTestChannel != "" {
			cfg.Slack.TestChannelID = serveTestChannel
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		handler := func(ctx context.Context, lead model.Lead, ev extract.RawEvent) {
			outcome, err := env.Pipeline.Run(ctx, lead, ev.TS)
			if err != nil {
				zap.L().Error("lead processing failed",
					zap.String("email", lead.Email),
					zap.String("ts", ev.TS),
					zap.Error(err),
				)
				return
			}
			if err := env.Deliverer.Deliver(ctx, outcome, ev.Channel, ev.TS); err != nil {
				zap.L().Error("delivery failed",
					zap.String("correlation_id", outcome.CorrelationID),
					zap.Error(err),
				)
			}
		}

		// Dispatched leads run on an uncancelable context so shutdown drains
		// them instead of aborting mid-verdict.
		eventServer := ingest.NewServer(context.WithoutCancel(ctx), cfg.Slack.SigningSecret, cfg.Slack.ChannelID, env.Extractor, handler)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: eventServer.Router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("channel", cfg.Slack.ChannelID),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		// Let in-flight leads finish before releasing the journal.
		eventServer.Wait()
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveTestChannel, "test-channel", "", "post detailed results to this channel instead of thread replies")
	rootCmd.AddCommand(serveCmd)
}
