// Package main provides the Render deploy entry point. It triggers a
// deploy for an existing service (or launches the blueprint for a new
// one), waits for the deploy to go live, probes the health endpoint,
// and records the outcome locally and to the configured sinks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmarkhas/renderdeploy-go/internal/archive"
	"github.com/dmarkhas/renderdeploy-go/internal/buildinfo"
	"github.com/dmarkhas/renderdeploy-go/internal/config"
	"github.com/dmarkhas/renderdeploy-go/internal/ctxutil"
	"github.com/dmarkhas/renderdeploy-go/internal/errors"
	"github.com/dmarkhas/renderdeploy-go/internal/history"
	"github.com/dmarkhas/renderdeploy-go/internal/logger"
	"github.com/dmarkhas/renderdeploy-go/internal/notify"
	"github.com/dmarkhas/renderdeploy-go/internal/probe"
	"github.com/dmarkhas/renderdeploy-go/internal/render"
	"github.com/dmarkhas/renderdeploy-go/internal/sentry"
)

func main() {
	showHistory := flag.Int("history", 0, "print the last N deploy records and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(buildinfo.Release())
		return
	}

	// The CLI check comes before anything else, config included: without
	// the binary no amount of configuration helps.
	if err := render.CheckCLI(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: render CLI not found. Install it from https://render.com/docs/cli")
		os.Exit(1)
	}

	cfg, err := config.LoadForMode(config.DeployMode)
	if err != nil {
		if name, ok := errors.IsMissingVar(err); ok {
			fmt.Fprintf(os.Stderr, "Error: %s is not set\n", name)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		}
		os.Exit(1)
	}

	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Release(),
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize error reporting")
	}

	if *showHistory > 0 {
		if err := printHistory(cfg, *showHistory); err != nil {
			log.WithError(err).Error("Failed to read deploy history")
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	ctx = ctxutil.WithRunID(ctx, runID)
	if cfg.RenderServiceID != "" {
		ctx = ctxutil.WithServiceID(ctx, cfg.RenderServiceID)
	}

	log.WithField("run_id", runID).WithField("version", buildinfo.Release()).Info("Starting deploy")

	start := time.Now()
	action, serviceURL, deployErr := run(ctx, cfg, log)
	duration := time.Since(start)

	finish(ctx, cfg, log, finishParams{
		runID:      runID,
		action:     action,
		serviceURL: serviceURL,
		duration:   duration,
		startedAt:  start,
		err:        deployErr,
	})

	if deployErr != nil {
		log.WithError(deployErr).WithField("duration", duration.Round(time.Second)).Error("Deploy failed")
		sentry.CaptureDeployFailure(ctx, deployErr, sentry.DeployContext{
			RunID:     runID,
			ServiceID: cfg.RenderServiceID,
			Action:    string(action),
		})
		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}

	log.WithField("duration", duration.Round(time.Second)).
		WithField("action", string(action)).
		Info("Deploy succeeded")
}

// run performs the deploy itself: dispatch, readiness wait, and health
// probe. It returns the action taken and the service URL when known.
func run(ctx context.Context, cfg *config.Config, log *logger.Logger) (render.Action, string, error) {
	deployer := render.NewDeployer(render.NewCLI(cfg.RenderAPIKey), log)

	action, err := deployer.Dispatch(ctx, cfg.RenderServiceID, cfg.BlueprintPath)
	if err != nil {
		return action, "", err
	}

	// Blueprint launches create the service asynchronously; there is no
	// service ID to poll yet, so readiness and health are skipped.
	if action == render.ActionCreate {
		log.Info("Blueprint launched; check the Render dashboard for the new service")
		return action, "", nil
	}

	if err := deployer.WaitLive(ctx, cfg.RenderServiceID, render.WaitOptions{
		Timeout:      cfg.WaitTimeout,
		MaxRetries:   cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		FixedDelay:   cfg.WaitFixed,
	}); err != nil {
		return action, "", err
	}

	svc, err := deployer.GetService(ctx, cfg.RenderServiceID)
	if err != nil {
		log.WithError(err).Warn("Failed to read service metadata; skipping health probe")
		return action, "", nil
	}
	if svc.URL == "" {
		log.Info("Service has no public URL; skipping health probe")
		return action, "", nil
	}

	err = verifyHealth(ctx, probe.New(cfg.HealthcheckTimeout), svc.URL, cfg.HealthPath, cfg.StrictHealth, log)
	return action, svc.URL, err
}

// verifyHealth probes the service health endpoint after a deploy goes
// live. A failed probe fails the run only in strict mode: the deploy
// itself already succeeded, and an unhealthy endpoint right after going
// live is often just slow startup.
func verifyHealth(ctx context.Context, p *probe.Prober, serviceURL, healthPath string, strict bool, log *logger.Logger) error {
	healthURL := strings.TrimRight(serviceURL, "/") + healthPath

	err := p.Probe(ctx, healthURL)
	if err == nil {
		log.WithField("url", healthURL).Info("Service is healthy")
		return nil
	}
	if strict {
		return fmt.Errorf("post-deploy health probe: %w", err)
	}
	log.WithError(err).WithField("url", healthURL).Warn("Post-deploy health probe failed")
	return nil
}

type finishParams struct {
	runID      string
	action     render.Action
	serviceURL string
	duration   time.Duration
	startedAt  time.Time
	err        error
}

// finish records the outcome: local history, Telegram notification, and
// the R2 manifest archive. All three are best effort and run even when
// the deploy was interrupted, so the sinks use a detached context that
// keeps only tracing values.
func finish(ctx context.Context, cfg *config.Config, log *logger.Logger, p finishParams) {
	ctx = ctxutil.PreserveTracing(ctx)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	status := history.StatusSucceeded
	errText := ""
	if p.err != nil {
		status = history.StatusFailed
		errText = p.err.Error()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		db, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer db.Close()

		_, err = db.Save(gctx, history.Record{
			ID:         p.runID,
			ServiceID:  cfg.RenderServiceID,
			Action:     string(p.action),
			Status:     status,
			ServiceURL: p.serviceURL,
			Error:      errText,
			Duration:   p.duration,
			CreatedAt:  p.startedAt,
		})
		return err
	})

	if cfg.BotToken != "" && len(cfg.AdminIDs) > 0 {
		g.Go(func() error {
			notifier, err := notify.NewFromToken(cfg.BotToken, cfg.AdminIDs, log)
			if err != nil {
				return fmt.Errorf("create notifier: %w", err)
			}
			notifier.DeployFinished(gctx, notify.Result{
				Action:     string(p.action),
				ServiceID:  cfg.RenderServiceID,
				ServiceURL: p.serviceURL,
				Duration:   p.duration,
				Err:        p.err,
			})
			return nil
		})
	}

	if cfg.R2.Enabled {
		g.Go(func() error {
			client, err := archive.NewClient(gctx, archive.Config{
				Endpoint:    cfg.R2.Endpoint(),
				AccessKeyID: cfg.R2.AccessKeyID,
				SecretKey:   cfg.R2.SecretAccessKey,
				BucketName:  cfg.R2.BucketName,
			})
			if err != nil {
				return fmt.Errorf("create archive client: %w", err)
			}
			_, err = archive.New(client, cfg.R2.ManifestPrefix, log).Store(gctx, archive.Manifest{
				RunID:      p.runID,
				ServiceID:  cfg.RenderServiceID,
				Action:     string(p.action),
				Status:     status,
				ServiceURL: p.serviceURL,
				Error:      errText,
				Duration:   p.duration,
				StartedAt:  p.startedAt,
				Version:    buildinfo.Release(),
			})
			return err
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("Failed to record deploy outcome")
	}
}

// printHistory lists the newest deploy records on stdout.
func printHistory(cfg *config.Config, limit int) error {
	db, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No deploys recorded yet")
		return nil
	}

	for _, rec := range records {
		line := fmt.Sprintf("%s  %-7s %-9s %s",
			rec.CreatedAt.Format(time.RFC3339), rec.Action, rec.Status, rec.Duration.Round(time.Second))
		if rec.ServiceID != "" {
			line += "  " + rec.ServiceID
		}
		if rec.Error != "" {
			line += "  (" + firstLine(rec.Error) + ")"
		}
		fmt.Println(line)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
