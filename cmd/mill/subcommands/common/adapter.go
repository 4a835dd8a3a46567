package common

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/modelmill/modelmill/cmd/mill/config/profiles"
	"github.com/modelmill/modelmill/cmd/mill/env"
	"github.com/modelmill/modelmill/pkg/lifecycle"
	"github.com/modelmill/modelmill/pkg/rest"
	"github.com/youta-t/flarc"
)

// MillTaskWithCommonFlag is a task which receives the parsed common
// flags but opens no platform connection by itself. `mill init` is
// one, since it runs before any profile exists.
type MillTaskWithCommonFlag[T any] func(
	ctx context.Context,
	logger *log.Logger,
	commonFlag CommonFlags,
	cl flarc.Commandline[T],
	params []any,
) error

// splitCommonFlags digs CommonFlags out of the positional params the
// root command pushed down, handing back the rest untouched.
func splitCommonFlags(pos []any) (CommonFlags, []any, bool) {
	var commonFlag CommonFlags
	found := false
	rest := make([]any, 0, len(pos))
	for _, p := range pos {
		if v, ok := p.(CommonFlags); ok {
			commonFlag = v
			found = true
			continue
		}
		rest = append(rest, p)
	}
	return commonFlag, rest, found
}

// NewTaskWithCommonFlag adapts task into a flarc.Task. The task gets a
// logger prefixed with its own command name, writing to stderr.
func NewTaskWithCommonFlag[T any](task MillTaskWithCommonFlag[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		commonFlag, rest, found := splitCommonFlags(pos)
		if !found {
			return errors.New("programming error: common flags not found")
		}

		logger := log.New(
			cl.Stderr(), fmt.Sprintf("[%s] ", cl.Fullname()), log.LstdFlags,
		)

		return task(ctx, logger, commonFlag, cl, rest)
	}
}

// Task is a task which talks to a Modelmill platform. It receives the
// loaded millenv and a ready-to-use client set.
type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	millEnv env.MillEnv,
	clients lifecycle.Clients,
	cl flarc.Commandline[T],
	params []any,
) error

// NewTask adapts task into a flarc.Task which resolves the profile,
// loads millenv and signs in to the platform before the task body
// runs.
func NewTask[T any](task Task[T]) flarc.Task[T] {
	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag CommonFlags,
		cl flarc.Commandline[T],
		params []any,
	) error {
		prof, err := resolveProfile(commonFlag)
		if err != nil {
			return err
		}

		e, err := env.LoadMillEnv(commonFlag.Env)
		if err != nil {
			return fmt.Errorf("%w: failed to load millenv", err)
		}

		session, err := rest.NewSession(rest.Config{
			APIRoot:    prof.ApiRoot,
			User:       prof.User,
			Password:   prof.Password,
			CACert:     prof.Cert.CA,
			SkipVerify: prof.Insecure,
		})
		if err != nil {
			return fmt.Errorf(
				"%w: failed to connect. Your mill profile (%s in %s) can be broken.\n\nRemove it and try `mill init` again. Ask your admin to get a mill profile",
				err, commonFlag.Profile, commonFlag.ProfileStore,
			)
		}
		return task(ctx, logger, *e, lifecycle.NewClients(session), cl, params)
	})
}

func resolveProfile(commonFlag CommonFlags) (*profiles.MillProfile, error) {
	store, err := profiles.LoadProfileStore(commonFlag.ProfileStore)
	if err != nil {
		if errors.Is(err, profiles.ErrProfileStoreNotFound) {
			return nil, fmt.Errorf(
				"%w: mill profile store (%s) is not found. Please try `mill init` first. Ask your admin to get a mill profile",
				err, commonFlag.ProfileStore,
			)
		}
		return nil, fmt.Errorf(
			"%w: failed to load mill profile store (%s)",
			err, commonFlag.ProfileStore,
		)
	}

	prof, ok := store[commonFlag.Profile]
	if !ok {
		return nil, fmt.Errorf(
			"profile '%s' not found in the profile store (%s)",
			commonFlag.Profile, commonFlag.ProfileStore,
		)
	}
	return prof, nil
}
