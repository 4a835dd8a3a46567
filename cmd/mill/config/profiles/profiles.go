package profiles

import (
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hectane/go-acl"
	"github.com/modelmill/modelmill/cmd/mill/config/open"
	yaml "gopkg.in/yaml.v3"
)

var ErrProfileStoreNotFound = errors.New("config file is not found")
var ErrCannotCreateConfig = errors.New("cannot create config file")
var ErrCannotUpdateConfig = errors.New("cannot update config file")
var ErrProfileInvalid = errors.New("mill profile is invalid")

// ProfileStore is a map from profile name to MillProfile.
type ProfileStore map[string]*MillProfile

type MillCert struct {
	// base64 encoded CA certificate
	CA string `yaml:"ca,omitempty"`
}

// MillProfile is a profile for one Modelmill platform.
type MillProfile struct {
	// endpoint of the platform
	ApiRoot string `yaml:"apiRoot"`

	// account for the password grant
	User     string `yaml:"user"`
	Password string `yaml:"password,omitempty"`

	// Cert is a certificate for the platform.
	Cert MillCert `yaml:"cert"`

	// Insecure skips TLS certificate verification.
	Insecure bool `yaml:"insecure,omitempty"`
}

func verifyUrl(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

func verifyPEM(b64cert string) bool {
	der, err := base64.StdEncoding.DecodeString(b64cert)
	if err != nil {
		return false
	}
	block, _ := pem.Decode(der)
	return block != nil
}

// Verify MillProfile
//
// # Return
//
// nil if it is valid. Otherwise, ErrProfileInvalid error.
func (p *MillProfile) Verify() error {
	if !verifyUrl(p.ApiRoot) {
		return fmt.Errorf("%w: apiRoot is not URL: %s", ErrProfileInvalid, p.ApiRoot)
	}
	if p.User == "" {
		return fmt.Errorf("%w: user is required", ErrProfileInvalid)
	}
	if p.Cert.CA != "" && !verifyPEM(p.Cert.CA) {
		return fmt.Errorf("%w: cert.ca is not PEM", ErrProfileInvalid)
	}

	return nil
}

// LoadProfileStore loads profile store from file.
func LoadProfileStore(filepath string) (ProfileStore, error) {
	buf, err := os.ReadFile(filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrProfileStoreNotFound, filepath)
		}
		return nil, err
	}
	return Unmarshall(buf)
}

// Unmarshall profile store from yaml in byte array.
func Unmarshall(buf []byte) (ProfileStore, error) {
	ret := map[string]*MillProfile{}
	err := yaml.Unmarshal(buf, &ret)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Save writes the profile store to the file at path.
//
// Profiles carry credentials, so the file is held at permission 0600.
// The previous content is kept in <path>.backup while the rewrite is
// in flight. The backup is removed once the new content has landed,
// and stays behind when the rewrite fails.
func (ps ProfileStore) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0700)); err != nil {
		return err
	}

	f, err := openForRewrite(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bkpath := path + ".backup"
	if err := snapshot(f, bkpath); err != nil {
		os.Remove(bkpath)
		return err
	}

	if err := rewrite(f, ps); err != nil {
		return err
	}
	return os.Remove(bkpath)
}

// openForRewrite opens the profile file for reading and writing,
// creating it when missing. Either way the file ends up accessible by
// the current user only.
func openForRewrite(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, os.FileMode(0600))
	if err == nil {
		// In case of the existing file with loose permissions,
		// enforce permission to 0600.
		if err := acl.Chmod(path, os.FileMode(0600)); err != nil {
			f.Close()
			return nil, err
		}
		return f, nil
	}

	if os.IsNotExist(err) {
		f, err := open.NewSafeFile(path)
		if err != nil {
			return nil, fmt.Errorf(
				"%w: cannot create a file at %s",
				ErrCannotCreateConfig, path,
			)
		}
		return f, nil
	}
	if os.IsPermission(err) {
		return nil, fmt.Errorf(
			"%w, because no permission to write file at %s",
			ErrCannotUpdateConfig, path,
		)
	}
	return nil, err
}

// snapshot copies the whole content of f into a fresh file at bkpath.
func snapshot(f *os.File, bkpath string) error {
	bk, err := open.NewSafeFile(bkpath)
	if err != nil {
		return err
	}
	defer bk.Close()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err = io.Copy(bk, f)
	return err
}

// rewrite replaces the content of f with the yaml rendering of ps.
//
// Marshalling happens before the file is touched, so a marshalling
// error leaves the file as it was.
func rewrite(f *os.File, ps ProfileStore) error {
	buf, err := yaml.Marshal(ps)
	if err != nil {
		return err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	_, err = f.Write(buf)
	return err
}
