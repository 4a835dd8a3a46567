package init

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	prof "github.com/modelmill/modelmill/cmd/mill/config/profiles"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/common"
	"github.com/youta-t/flarc"
)

const ARG_MILL_PROFILE_FILE = "MILL_PROFILE_FILE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"initialize this directory as a Modelmill project.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_MILL_PROFILE_FILE, Required: true,
				Help: "filepath to a mill profile file, which you received from your admin.",
			},
		},
		common.NewTaskWithCommonFlag(Task()),
		flarc.WithDescription(`
Register a new mill profile into your profile store.

A "mill profile" is a file which tells where a Modelmill platform is
and how to log in to it. "{{ .Command }}" registers the given profile
into your profile store and pins this directory to it.

The name of the profile is given by "--profile" ( default: current filepath ).
`),
	)
}

func Task() common.MillTaskWithCommonFlag[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		cf common.CommonFlags,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		profFile := cl.Args()[ARG_MILL_PROFILE_FILE][0]

		profStore, err := prof.LoadProfileStore(cf.ProfileStore)
		if errors.Is(err, prof.ErrProfileStoreNotFound) {
			// ok.
			profStore = prof.ProfileStore{}
		} else if err != nil {
			return fmt.Errorf(
				"%w: failed to load profile store (%s)", err, cf.ProfileStore,
			)
		}

		profName := cf.Profile
		newProf := new(prof.MillProfile)
		{
			content, err := os.ReadFile(profFile)
			if err != nil {
				return fmt.Errorf("%w: failed to read profile file (%s)", err, profFile)
			}

			if err := yaml.Unmarshal(content, newProf); err != nil {
				return fmt.Errorf("%w: failed to parse profile file (%s)", err, profFile)
			}
		}
		if err := newProf.Verify(); err != nil {
			return fmt.Errorf("%w: %s", err, profFile)
		}

		profStore[profName] = newProf
		if err := profStore.Save(cf.ProfileStore); err != nil {
			return fmt.Errorf(
				"%w: failed to save profile store (%s)", err, cf.ProfileStore,
			)
		}
		logger.Printf("profile %s is saved to %s", profName, cf.ProfileStore)

		{
			f, err := os.OpenFile(".millprofile", os.O_RDWR|os.O_CREATE|os.O_TRUNC, os.FileMode(0600))
			if err != nil {
				return fmt.Errorf("%w: failed to open .millprofile", err)
			}
			defer f.Close()
			if _, err := f.Write([]byte(profName)); err != nil {
				return fmt.Errorf("%w: failed to write .millprofile", err)
			}
		}

		return nil
	}
}
