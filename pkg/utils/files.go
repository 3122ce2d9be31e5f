package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ReadROM reads a program image and returns it with a display title derived
// from the file name.
func ReadROM(path string) (rom []byte, title string, err error) {
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return nil, "", err
	}

	rom, err = os.ReadFile(fullPath)
	if err != nil {
		return nil, "", fmt.Errorf("read rom: %w", err)
	}

	base := filepath.Base(fullPath)
	title = strings.TrimSuffix(base, filepath.Ext(base))
	return rom, title, nil
}

// ScreenshotPath returns a PNG file name in dir that does not exist yet,
// numbered after title.
func ScreenshotPath(dir, title string) string {
	for i := 1; ; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s-%03d.png", title, i))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
	}
}
