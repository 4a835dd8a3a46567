package common

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/modelmill/modelmill/pkg/utils"
)

type CommonFlags struct {
	Profile      string `flag:"profile" help:"mill profile name to use"`
	ProfileStore string `flag:"profile-store" help:"path to mill profile store file"`
	Env          string `flag:"env" help:"path to millenv file"`
}

type commonFlagDetection struct {
	home string
}

type CommonFlagDetectionOption func(*commonFlagDetection) *commonFlagDetection

func WithHome(home string) CommonFlagDetectionOption {
	return func(opt *commonFlagDetection) *commonFlagDetection {
		opt.home = home
		return opt
	}
}

// Flags detects the default CommonFlags for a working directory.
//
// It walks up from the directory looking for a ".millprofile" file
// (whose first line names the profile to use) and a "millenv" file.
// When neither is found the directory itself names the profile and
// the millenv path points into it.
func Flags(from string, opt ...CommonFlagDetectionOption) (CommonFlags, error) {
	detparam := commonFlagDetection{
		home: "",
	}
	for _, o := range opt {
		detparam = *o(&detparam)
	}

	home := detparam.home
	if home == "" {
		_home, err := os.UserHomeDir()
		if err != nil {
			_home = ""
		}
		home = _home
	}

	if _from, err := filepath.Abs(from); err == nil {
		from = _from
	}

	profile := from
	if found, err := utils.SearchFilePathtoUpward(from, ".millprofile"); err == nil {
		content, err := os.ReadFile(*found)
		if err != nil {
			return CommonFlags{}, err
		}
		if p := strings.Split(string(content), "\n"); 0 < len(p) {
			profile = strings.TrimSpace(p[0])
		}
	}

	env := path.Join(from, "millenv")
	if found, err := utils.SearchFilePathtoUpward(from, "millenv"); err == nil {
		env = *found
	}

	return CommonFlags{
		Profile:      profile,
		ProfileStore: path.Join(home, ".mill", "profile"),
		Env:          env,
	}, nil
}

type CommonFlagOption func(*CommonFlags) *CommonFlags

func WithProfile(profile string, store string) CommonFlagOption {
	return func(opt *CommonFlags) *CommonFlags {
		opt.Profile = profile
		opt.ProfileStore = store
		return opt
	}
}

func WithEnv(env string) CommonFlagOption {
	return func(opt *CommonFlags) *CommonFlags {
		opt.Env = env
		return opt
	}
}
