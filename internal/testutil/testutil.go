package testutil

import (
	"os"

	"github.com/spf13/viper"
)

// WriteStringToTempFile writes content to a temp file and returns its path
// and a cleanup function.
func WriteStringToTempFile(content string) (string, func(), error) {
	tempFile, err := os.CreateTemp("", "seadb-test-*")
	if err != nil {
		return "", nil, err
	}

	if _, err := tempFile.WriteString(content); err != nil {
		tempFile.Close()
		os.Remove(tempFile.Name())
		return "", nil, err
	}

	tempFile.Close()
	return tempFile.Name(), func() { os.Remove(tempFile.Name()) }, nil
}

// LoadTestConfig points the global viper at a throwaway YAML config file.
// Returns a cleanup that removes the file and resets viper.
func LoadTestConfig(content string) (func(), error) {
	viper.Reset()
	path, remove, err := WriteStringToTempFile(content)
	if err != nil {
		return nil, err
	}
	viper.SetConfigType("yaml")
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		remove()
		return nil, err
	}
	return func() {
		remove()
		viper.Reset()
	}, nil
}
