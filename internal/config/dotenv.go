package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotenv loads env files (".env" when none are named) into the process
// environment without overriding variables already set. A missing file is
// not an error; a malformed one is.
func LoadDotenv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file: %w", err)
}
