// Package prefs keeps small UI preferences that are not part of the leaderboard data.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const viewFile = "view.json"

// View is the last-used filter and sort selection.
type View struct {
	Category string `json:"category"`
	SortBy   string `json:"sortBy"`
}

func viewPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "leaderboard")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, viewFile), nil
}

func SaveView(v View) error {
	path, err := viewPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadView returns the saved preferences. ok is false when none were saved.
func LoadView() (View, bool, error) {
	path, err := viewPath()
	if err != nil {
		return View{}, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return View{}, false, nil
		}
		return View{}, false, err
	}
	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		return View{}, false, err
	}
	return v, true, nil
}
