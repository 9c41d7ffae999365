package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/apiclient"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/app"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/i18n"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/notifications"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/permissions"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/logger"
)

// newRecordKey selects the "record not created yet" case.
const newRecordKey = "+"

// keyResult is the outcome for one record.
type keyResult struct {
	Collection  string                      `json:"collection"`
	Key         string                      `json:"key"`
	Permissions permissions.ItemPermissions `json:"permissions"`
	Fallback    bool                        `json:"fallback"`
	Error       string                      `json:"error,omitempty"`
}

// report is written to stdout as JSON.
type report struct {
	Results       []keyResult                  `json:"results"`
	Notifications []notifications.Notification `json:"notifications"`
}

func runCheck(ctx context.Context, opts *options, out, errOut io.Writer) error {
	if opts.collection == "" {
		return errors.New("--collection is required")
	}
	if len(opts.keys) == 0 {
		return errors.New("at least one key is required")
	}

	cfg, err := app.LoadConfigFrom(opts.configPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg, opts)

	if err := app.ConfigureLogging(cfg.Server.LogLevel, cfg.Server.LogFormat); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	client, err := apiclient.New(cfg.Client.APIClientConfig())
	if err != nil {
		return err
	}

	catalogue, err := i18n.Default(cfg.I18n.Locale)
	if err != nil {
		return err
	}
	store := notifications.NewStore(cfg.Notifications.StoreOptions())
	reporter := notifications.NewReporter(store, catalogue)

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	if opts.stream {
		feed, stop := store.Subscribe()
		streamed := make(chan struct{})
		go func() {
			defer close(streamed)
			streamNotifications(errOut, feed)
		}()
		defer func() {
			stop()
			<-streamed
		}()
	}

	results, resolveErr := resolveAll(ctx, opts, client, reporter)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report{Results: results, Notifications: store.List()}); err != nil {
		return multierr.Append(resolveErr, fmt.Errorf("write report: %w", err))
	}
	return resolveErr
}

// streamNotifications writes each notification as a JSON line until feed is closed.
func streamNotifications(w io.Writer, feed <-chan notifications.Notification) {
	log := logger.WithModule("permcheck")
	for n := range feed {
		data, err := notifications.MarshalNotification(n)
		if err != nil {
			log.Warn("encode notification", zap.String("id", n.ID), zap.Error(err))
			continue
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			log.Warn("write notification", zap.Error(err))
		}
	}
}

func applyOverrides(cfg *app.Config, opts *options) {
	if opts.baseURL != "" {
		cfg.Client.BaseURL = opts.baseURL
	}
	if opts.token != "" {
		cfg.Client.Token = opts.token
	}
	if opts.locale != "" {
		cfg.I18n.Locale = opts.locale
	}
}

// resolveAll resolves every key with bounded concurrency. A failed key does not stop the others;
// all failures are combined into the returned error.
func resolveAll(ctx context.Context, opts *options, fetcher permissions.ItemFetcher, reporter permissions.ErrorReporter) ([]keyResult, error) {
	log := logger.WithModule("permcheck")
	results := make([]keyResult, len(opts.keys))

	var (
		mu   sync.Mutex
		errs error
	)

	g, gctx := errgroup.WithContext(ctx)
	if opts.concurrency > 0 {
		g.SetLimit(opts.concurrency)
	}

	for i, raw := range opts.keys {
		key := parseKey(raw)
		g.Go(func() error {
			result, err := resolveKey(gctx, opts, key, fetcher, reporter)
			results[i] = result
			if err != nil {
				log.Warn("resolve failed", zap.String("key", key.String()), zap.Error(err))
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("key %s: %w", key, err))
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	return results, errs
}

func resolveKey(ctx context.Context, opts *options, key permissions.PrimaryKey, fetcher permissions.ItemFetcher, reporter permissions.ErrorReporter) (keyResult, error) {
	result := keyResult{Collection: opts.collection, Key: key.String()}

	resolver, err := permissions.NewItemResolver(
		permissions.StaticSource(opts.collection),
		permissions.StaticSource(key),
		fetcher,
		permissions.WithReporter(reporter),
	)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	defer resolver.Close()

	perms, err := resolver.Resolve(ctx)
	if err == nil && opts.refresh {
		resolver.Refresh()
		perms, err = resolver.Resolve(ctx)
	}

	result.Permissions = perms
	result.Fallback = resolver.Snapshot().Phase == permissions.PhaseFallback
	if err != nil {
		result.Error = err.Error()
	}
	return result, err
}

func parseKey(raw string) permissions.PrimaryKey {
	if raw == newRecordKey {
		return permissions.NoPrimaryKey
	}
	return permissions.Key(raw)
}
