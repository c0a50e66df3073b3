package keplrflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/lo"

	"github.com/networkteam/keplrflow/driver"
)

// Identity is the runtime identity of the installed wallet extension.
type Identity struct {
	ID      string
	Version string
}

// ResolveIdentity looks up the wallet extension among the installed extensions
// and caches its identity for the rest of the session. Later calls return the
// cached identity without asking the driver again.
func (s *Session) ResolveIdentity(ctx context.Context) (Identity, error) {
	if s.identity != nil {
		return *s.identity, nil
	}

	var extensions map[string]driver.ExtensionData
	err := s.step(ctx, "query installed extensions", s.options.ExtensionName, func(ctx context.Context) error {
		var err error
		extensions, err = s.driver.ExtensionsData(ctx)
		return err
	})
	if err != nil {
		return Identity{}, err
	}

	ext, found := extensions[strings.ToLower(s.options.ExtensionName)]
	if !found {
		ext, found = lo.Find(lo.Values(extensions), func(e driver.ExtensionData) bool {
			return strings.EqualFold(e.Name, s.options.ExtensionName)
		})
	}
	if !found || ext.ID == "" {
		return Identity{}, fmt.Errorf("%w: %s", ErrExtensionNotInstalled, s.options.ExtensionName)
	}

	if err := checkVersion(ext.Version, s.options.VersionConstraint); err != nil {
		return Identity{}, err
	}

	s.identity = &Identity{ID: ext.ID, Version: ext.Version}
	s.logger.InfoContext(ctx, "Resolved extension identity", slog.String("extensionId", ext.ID), slog.String("version", ext.Version))

	return *s.identity, nil
}

// CurrentID returns the cached extension ID, if resolved.
func (s *Session) CurrentID() (string, bool) {
	if s.identity == nil {
		return "", false
	}
	return s.identity.ID, true
}

func checkVersion(version, constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("parsing version constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedVersion, version)
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, version, constraint)
	}
	return nil
}
