package config

import (
	"github.com/Masterminds/semver/v3"
	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/version"
)

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if err := c.validateVersion(version.Get()); err != nil {
		return err
	}

	if c.Registry.Path == "" {
		return errors.NewInvalidRequestError("registry.path is empty")
	}
	if c.Source.Classes == "" || c.Source.Tests == "" {
		return errors.NewInvalidRequestError("source.classes and source.tests are required")
	}
	if c.Hierarchy.RestMarker == "" {
		return errors.NewInvalidRequestError("hierarchy.rest_marker is empty")
	}
	if c.Fanout.Workers < 0 {
		return errors.NewInvalidRequestError("fanout.workers must be >= 0, got %d", c.Fanout.Workers)
	}

	for _, target := range transpile.AllTargets {
		tc, ok := c.Targets[string(target)]
		if !ok || tc.Folder == "" || tc.Tests == "" {
			return errors.WithHintf(
				errors.NewInvalidRequestError("target %s has no output folders", target),
				"set targets.%s.folder and targets.%s.tests in %s", target, target, FileName)
		}
	}
	for name := range c.Targets {
		if _, err := transpile.ParseTarget(name); err != nil {
			return err
		}
	}

	return nil
}

// validateVersion checks the requires constraint against the running binary
func (c *Config) validateVersion(info version.Info) error {
	if c.Requires == "" || info.IsDev() {
		return nil
	}

	current, err := semver.NewVersion(info.Version)
	if err != nil {
		return errors.Wrapf(err, "invalid wsgen version %s", info.Version)
	}

	constraint, err := semver.NewConstraint(c.Requires)
	if err != nil {
		return errors.Wrapf(err, "invalid version constraint %s", c.Requires)
	}

	if !constraint.Check(current) {
		return errors.WithHint(
			errors.NewInvalidRequestError("configuration requires wsgen %s, but running %s", c.Requires, info.Version),
			"upgrade wsgen or relax the requires constraint")
	}
	return nil
}
