package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/APB2021/student_manager/util/encryption"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	configFilePath := filepath.Join(t.TempDir(), defaultConfigFileName)
	require.NoError(t, os.WriteFile(configFilePath, []byte(content), 0600))
	return configFilePath
}

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	configFilePath := writeConfig(t, "backend: mongo\nmongo-database: school\n")
	loaded, err := loadConfig([]string{studentManager, start, "--log-level", "debug", "--config-file", configFilePath})
	require.NoError(t, err)
	assert.Equal(t, configFilePath, loaded)
	assert.Equal(t, "mongo", viper.GetString(flagBackend))
	assert.Equal(t, "school", viper.GetString(flagMongoDatabase))
	assert.Equal(t, defMongoCollection, viper.GetString(flagMongoCollection))
	assert.Equal(t, defPort, viper.GetInt(flagServerPort))
}

func TestLoadConfigMissingFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	_, err := loadConfig([]string{studentManager, start, "-c", filepath.Join(t.TempDir(), "missing.yml")})
	require.NoError(t, err)
	assert.Equal(t, defBackend, viper.GetString(flagBackend))
}

func TestHandleConfigEncryption(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	configFilePath := writeConfig(t, "backend: relational\ndb-password: secret\n")
	viper.SetConfigType(yaml)
	viper.SetConfigFile(configFilePath)
	require.NoError(t, viper.ReadInConfig())
	viper.SetDefault(flagDbDir, t.TempDir())

	password, err := handleConfigEncryption(flagDbPassword, configFilePath)
	require.NoError(t, err)
	assert.Equal(t, "secret", password)
	content, err := os.ReadFile(configFilePath)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "secret")
	assert.Contains(t, string(content), "db-password: "+encryption.Prefix)
	assert.True(t, strings.HasPrefix(string(content), "backend: relational\n"))

	// the encrypted value is decrypted and left as is
	require.NoError(t, viper.ReadInConfig())
	password, err = handleConfigEncryption(flagDbPassword, configFilePath)
	require.NoError(t, err)
	assert.Equal(t, "secret", password)
	again, err := os.ReadFile(configFilePath)
	require.NoError(t, err)
	assert.Equal(t, string(content), string(again))
}

func TestRelationalDsn(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set(flagDbDialect, "sqlite")
	viper.Set(flagDbDir, "/data")
	assert.Equal(t, filepath.Join("/data", sqliteFileName), relationalDsn(""))

	viper.Set(flagDbDialect, "postgres")
	viper.Set(flagDbHost, "db")
	viper.Set(flagDbPort, 5433)
	viper.Set(flagDbUser, "u")
	viper.Set(flagDbName, "n")
	viper.Set(flagDbSslMode, "disable")
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", relationalDsn("p"))

	viper.Set(flagDbDsn, "explicit")
	assert.Equal(t, "explicit", relationalDsn("p"))
}

func TestForceConfirmation(t *testing.T) {
	assert.True(t, forceConfirmation(true)("alumnos.txt"))
	assert.False(t, forceConfirmation(false)("alumnos.txt"))
}
