// Package session turns a signed-in identity into a ready day-cycle engine:
// it loads or creates the user's document, refreshes profile fields,
// reconciles missed days and hands back a writer for later patches.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/sandeepkv93/streakd/internal/daycycle"
	"github.com/sandeepkv93/streakd/internal/identity"
	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/storage"
)

var ErrLocked = errors.New("session: another streakd session is running")

type Options struct {
	Store    storage.DocumentStore
	Provider identity.Provider
	Logger   *zap.Logger
	// LockPath guards against two sessions on one data directory. Empty disables it.
	LockPath      string
	EngineOptions []daycycle.Option
}

type Session struct {
	Identity identity.Identity
	Engine   *daycycle.Engine
	Writer   *storage.Writer
	Store    storage.DocumentStore

	// Created is set when this sign-in created the document.
	Created bool
	// Reconciled is set when missed days were archived during Open.
	Reconciled bool
	// StartupErr holds a non-fatal persistence failure from Open.
	StartupErr error

	provider identity.Provider
	logger   *zap.Logger
	lock     *flock.Flock
}

// Open signs in, prepares the user's record and starts the patch writer.
// The store is owned by the returned session.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Store == nil || opts.Provider == nil {
		return nil, errors.New("session: store and identity provider are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var lock *flock.Flock
	if opts.LockPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LockPath), 0o755); err != nil {
			return nil, fmt.Errorf("session: create lock dir: %w", err)
		}
		lock = flock.New(opts.LockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("session: lock %s: %w", opts.LockPath, err)
		}
		if !ok {
			return nil, ErrLocked
		}
	}
	release := func() {
		if lock != nil {
			_ = lock.Unlock()
		}
	}

	id, err := opts.Provider.SignIn(ctx)
	if err != nil {
		release()
		return nil, fmt.Errorf("session: sign in: %w", err)
	}
	logger = logger.With(zap.String("uid", id.UID))

	rec, created, err := LoadOrInit(ctx, opts.Store, id.Profile())
	if err != nil {
		release()
		return nil, err
	}
	s := &Session{
		Identity: id,
		Store:    opts.Store,
		Created:  created,
		provider: opts.Provider,
		logger:   logger,
		lock:     lock,
	}
	if created {
		logger.Info("created user document")
	} else if patch, ok := ProfilePatch(rec, id.Profile()); ok {
		if err := opts.Store.Patch(ctx, id.UID, patch); err != nil {
			logger.Warn("refresh profile failed", zap.Error(err))
			s.StartupErr = err
		}
		patch.Apply(&rec)
	}

	s.Engine = daycycle.New(rec, opts.EngineOptions...)
	if patch, ok := s.Engine.Reconcile(); ok {
		s.Reconciled = true
		logger.Info("archived missed days",
			zap.Int("current_day", patch.Record.CurrentDay),
			zap.String("last_active", patch.Record.LastActiveDate.String()),
		)
		if err := opts.Store.Patch(ctx, id.UID, patch); err != nil {
			logger.Error("persist reconciliation failed", zap.Error(err))
			s.StartupErr = err
		}
	}

	s.Writer = storage.NewWriter(opts.Store, id.UID, logger)
	return s, nil
}

// LoadOrInit returns the stored record for the profile's uid, creating the
// default record first when none exists.
func LoadOrInit(ctx context.Context, store storage.DocumentStore, p model.Profile) (model.UserRecord, bool, error) {
	rec, err := store.Get(ctx, p.UID)
	if err == nil {
		return rec, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return model.UserRecord{}, false, err
	}
	created, err := store.Init(ctx, p.UID, model.NewUserRecord(p))
	if err != nil {
		return model.UserRecord{}, false, err
	}
	// Another client may have won the race; read back whatever is stored.
	rec, err = store.Get(ctx, p.UID)
	if err != nil {
		return model.UserRecord{}, false, err
	}
	return rec, created, nil
}

// ProfilePatch reports the profile fields that changed since the document
// was written. Empty identity values never overwrite stored ones.
func ProfilePatch(rec model.UserRecord, p model.Profile) (model.Patch, bool) {
	next := rec.Clone()
	fields := make([]model.Field, 0, 3)
	if p.Email != "" && p.Email != rec.Email {
		next.Email = p.Email
		fields = append(fields, model.FieldEmail)
	}
	if p.DisplayName != "" && p.DisplayName != rec.DisplayName {
		next.DisplayName = p.DisplayName
		fields = append(fields, model.FieldDisplayName)
	}
	if p.PhotoURL != "" && p.PhotoURL != rec.PhotoURL {
		next.PhotoURL = p.PhotoURL
		fields = append(fields, model.FieldPhotoURL)
	}
	if len(fields) == 0 {
		return model.Patch{}, false
	}
	return model.NewPatch(next, fields...), true
}

func (s *Session) Logger() *zap.Logger {
	return s.logger
}

// Close flushes queued patches, closes the store and releases the lock.
func (s *Session) Close(ctx context.Context) error {
	var errs []error
	if s.Writer != nil {
		if err := s.Writer.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush writes: %w", err))
		}
	}
	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release lock: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SignOut closes the session and forgets the provider's cached credentials.
func (s *Session) SignOut(ctx context.Context) error {
	closeErr := s.Close(ctx)
	if err := s.provider.SignOut(ctx); err != nil {
		return errors.Join(closeErr, err)
	}
	return closeErr
}
