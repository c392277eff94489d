package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/piwi3910/plannest/internal/model"
)

// DefaultProfilesPath returns the default file path for custom cutting
// profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom cutting profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.CutProfile) error {
	return writeJSON(path, profiles)
}

// LoadCustomProfiles loads custom cutting profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.CutProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.CutProfile{}, nil
		}
		return nil, err
	}

	var profiles []model.CutProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// AllProfiles returns the built-in profiles followed by the custom profiles
// from the given path.
func AllProfiles(path string) ([]model.CutProfile, error) {
	custom, err := LoadCustomProfiles(path)
	if err != nil {
		return nil, err
	}
	return append(model.DefaultCutProfiles(), custom...), nil
}

// FindProfile returns the first profile with the given name, searching
// built-ins then the custom profiles at path.
func FindProfile(path, name string) (model.CutProfile, error) {
	profiles, err := AllProfiles(path)
	if err != nil {
		return model.CutProfile{}, err
	}
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return model.CutProfile{}, errors.New("cutting profile not found: " + name)
}

// ExportProfile exports a single profile to a JSON file for sharing.
func ExportProfile(path string, profile model.CutProfile) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (model.CutProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.CutProfile{}, err
	}

	var profile model.CutProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.CutProfile{}, err
	}
	if profile.Name == "" {
		return model.CutProfile{}, errors.New("imported profile has no name")
	}
	return profile, nil
}
