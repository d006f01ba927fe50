package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"shopfloor/internal/models"
)

// The CLI keeps the bearer token between invocations the way the mobile app
// keeps it in memory for the life of the process.
func sessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".shopfloor", "session.json"), nil
}

func saveSession(sess models.Session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func loadSavedSession() (models.Session, error) {
	path, err := sessionPath()
	if err != nil {
		return models.Session{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Session{}, err
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

func clearSavedSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
