//go:build windows
// +build windows

package path

import (
	"os"
	"path/filepath"
)

func programData() string {
	if dir := os.Getenv("ProgramData"); dir != "" {
		return dir
	}
	return `C:\ProgramData`
}

func GetDefaultConfigDirPath() string {
	return filepath.Join(programData(), "student-manager")
}

func GetDefaultDataDirPath() string {
	return filepath.Join(programData(), "student-manager", "data")
}

func GetDefaultExportDirPath() string {
	return filepath.Join(programData(), "student-manager", "export")
}
