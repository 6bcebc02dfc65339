//go:build !windows
// +build !windows

package path

func GetDefaultConfigDirPath() string {
	return "/etc/student-manager/"
}

func GetDefaultDataDirPath() string {
	return "/var/lib/student-manager"
}

func GetDefaultExportDirPath() string {
	return "/var/lib/student-manager/export"
}
