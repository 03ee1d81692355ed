package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/sandeepkv93/streakd/internal/config"
	"github.com/sandeepkv93/streakd/internal/daycycle"
	"github.com/sandeepkv93/streakd/internal/identity"
	"github.com/sandeepkv93/streakd/internal/logging"
	"github.com/sandeepkv93/streakd/internal/session"
	"github.com/sandeepkv93/streakd/internal/storage"
)

const closeTimeout = 5 * time.Second

// loadConfig reads --config when given and the default location otherwise.
// Only an explicit file has to exist.
func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.Load(configPath, true)
	}
	return config.Load(config.DefaultPath(), false)
}

func newProvider(cfg config.Config, out io.Writer) (identity.Provider, error) {
	return identity.New(identity.Options{
		Kind:         cfg.Identity,
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		TokenPath:    cfg.TokenPath,
		Prompt: func(resp *oauth2.DeviceAuthResponse) {
			fmt.Fprintf(out, "To sign in, open %s and enter code %s\n", resp.VerificationURI, resp.UserCode)
		},
	})
}

func engineOptions(cfg config.Config) ([]daycycle.Option, error) {
	cutoff, err := daycycle.ParseCutoff(cfg.Cutoff)
	if err != nil {
		return nil, err
	}
	opts := []daycycle.Option{daycycle.WithCutoff(cutoff)}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if loc != nil {
		opts = append(opts, daycycle.WithLocation(loc))
	}
	return opts, nil
}

// openSession signs in and prepares the user's record. Callers must
// close the returned session with closeSession.
func openSession(ctx context.Context, cfg config.Config, out io.Writer) (*session.Session, *zap.Logger, error) {
	logger, err := logging.New(logging.Options{Path: cfg.LogPath, Level: cfg.LogLevel})
	if err != nil {
		return nil, nil, err
	}
	engineOpts, err := engineOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	provider, err := newProvider(cfg, out)
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.Open(ctx, storage.Options{
		Kind:          cfg.Store,
		SQLitePath:    cfg.SQLitePath,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		PostgresDSN:   cfg.PostgresDSN,
	})
	if err != nil {
		logger.Error("open store failed", zap.String("store", cfg.Store), zap.Error(err))
		return nil, nil, err
	}
	sess, err := session.Open(ctx, session.Options{
		Store:         store,
		Provider:      provider,
		Logger:        logger,
		LockPath:      cfg.LockPath,
		EngineOptions: engineOpts,
	})
	if err != nil {
		_ = store.Close()
		logger.Error("open session failed", zap.Error(err))
		return nil, nil, err
	}
	return sess, sess.Logger(), nil
}

func closeSession(sess *session.Session, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := sess.Close(ctx); err != nil {
		logger.Error("close session failed", zap.Error(err))
	}
	_ = logger.Sync()
}

func displayName(id identity.Identity) string {
	switch {
	case id.DisplayName != "":
		return id.DisplayName
	case id.Email != "":
		return id.Email
	default:
		return id.UID
	}
}
