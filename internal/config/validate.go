package config

import (
	"errors"
	"fmt"
)

// Pre-existing destination policies.
const (
	ExistingPolicySkip      = "skip"
	ExistingPolicyVersion   = "version"
	ExistingPolicyOverwrite = "overwrite"
)

var validExistingPolicies = map[string]struct{}{
	ExistingPolicySkip:      {},
	ExistingPolicyVersion:   {},
	ExistingPolicyOverwrite: {},
}

var validDuplicatePolicies = map[string]struct{}{
	"skip_duplicates":    {},
	"version_naming":     {},
	"quality_selection":  {},
	"archive_duplicates": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateDuplicates(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Paths.JournalDir == "" {
		return errors.New("paths.journal_dir must be set")
	}
	return nil
}

func (c *Config) validateOrganize() error {
	if c.Organize.NamingTemplate == "" {
		return errors.New("organize.naming_template must be set")
	}
	if _, ok := validExistingPolicies[c.Organize.ExistingPolicy]; !ok {
		return fmt.Errorf("organize.existing_policy must be one of skip, version, overwrite (got %q)", c.Organize.ExistingPolicy)
	}
	if c.Organize.ExistingPolicy == "overwrite" && !c.Organize.ConfirmOverwrite {
		return errors.New("organize.existing_policy = overwrite requires organize.confirm_overwrite = true")
	}
	if c.Organize.MaxComponentBytes < 16 {
		return fmt.Errorf("organize.max_component_bytes must be at least 16 (got %d)", c.Organize.MaxComponentBytes)
	}
	return nil
}

func (c *Config) validateDuplicates() error {
	if _, ok := validDuplicatePolicies[c.Duplicates.Policy]; !ok {
		return fmt.Errorf("duplicates.policy must be one of skip_duplicates, version_naming, quality_selection, archive_duplicates (got %q)", c.Duplicates.Policy)
	}
	return nil
}
