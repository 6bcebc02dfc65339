package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/APB2021/student_manager/path"
	"github.com/APB2021/student_manager/util/encryption"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// locate and read the config file given with --config-file among the given args (or the default one) and set the
// defaults of all config keys. The returned error is reported when a command runs, so that --help still works
func loadConfig(args []string) (string, error) {
	configFlagSet := pflag.NewFlagSet(studentManager, pflag.ContinueOnError)
	_ = configFlagSet.StringP(flagConfigFile, "c", "", "path to student manager config file")
	configFlagSet.SetOutput(io.Discard)
	configFlagSet.ParseErrorsWhitelist.UnknownFlags = true
	if len(args) > 1 {
		_ = configFlagSet.Parse(args[1:])
	}
	configFilePath, _ := configFlagSet.GetString(flagConfigFile)
	if configFilePath == "" {
		configFilePath = filepath.Join(path.GetDefaultConfigDirPath(), defaultConfigFileName)
	}
	viper.SetConfigType(yaml)
	viper.SetConfigFile(configFilePath)
	viper.SetDefault(flagLogFileAndStdout, deLogFileAndStdOut)
	viper.SetDefault(flagLogFileMaxSize, defMaxLogFileSize)
	viper.SetDefault(flagLogFileMaxAge, defMaxLogFileAge)
	viper.SetDefault(flagLogFileMaxBackups, defMaxLogFileBackups)
	viper.SetDefault(flagLogLevel, info)
	viper.SetDefault(flagBackend, defBackend)
	viper.SetDefault(flagDbDir, path.GetDefaultDataDirPath())
	viper.SetDefault(flagDbDialect, defDbDialect)
	viper.SetDefault(flagDbHost, defDbHost)
	viper.SetDefault(flagDbPort, defDbPort)
	viper.SetDefault(flagDbUser, defDbUser)
	viper.SetDefault(flagDbName, defDbName)
	viper.SetDefault(flagDbSslMode, defDbSslMode)
	viper.SetDefault(flagDbMaxOpenConns, defDbMaxOpenConns)
	viper.SetDefault(flagDbMaxIdleConns, defDbMaxIdleConns)
	viper.SetDefault(flagDbConnMaxLifetime, defDbConnMaxLifetime)
	viper.SetDefault(flagMongoUri, defMongoUri)
	viper.SetDefault(flagMongoDatabase, defMongoDatabase)
	viper.SetDefault(flagMongoCollection, defMongoCollection)
	viper.SetDefault(flagMongoCounters, defMongoCounters)
	viper.SetDefault(flagMongoGroups, defMongoGroups)
	viper.SetDefault(flagMongoTimeout, defMongoTimeout)
	viper.SetDefault(flagExportDir, path.GetDefaultExportDirPath())
	viper.SetDefault(flagServerPort, defPort)
	if err := viper.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return configFilePath, err
	}
	return configFilePath, nil
}

// register the logging and store flags shared by all commands, using the loaded config as their defaults
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagConfigFile, "c", "", "path to student manager config file")
	cmd.Flags().Int(flagLogFileMaxBackups, viper.GetInt(flagLogFileMaxBackups), "maximum number of log file rotations")
	cmd.Flags().Int(flagLogFileMaxSize, viper.GetInt(flagLogFileMaxSize), "maximum size of the log file before it's rotated")
	cmd.Flags().Int(flagLogFileMaxAge, viper.GetInt(flagLogFileMaxAge), "maximum age of the log file before it's rotated")
	cmd.Flags().Bool(flagLogFileAndStdout, viper.GetBool(flagLogFileAndStdout), "write logs to stdout if log-file is specified?")
	cmd.Flags().String(flagLogLevel, viper.GetString(flagLogLevel), "logging level [panic, fatal, error, warn, info, debug]")
	cmd.Flags().String(flagLogFile, viper.GetString(flagLogFile), "log to file, specify the file location")
	cmd.Flags().String(flagBackend, viper.GetString(flagBackend), "storage backend [relational, document, mongo]")
	cmd.Flags().String(flagDbDir, viper.GetString(flagDbDir), "data directory (document store, sqlite database and key store)")
	cmd.Flags().String(flagDbDialect, viper.GetString(flagDbDialect), "SQL dialect of the relational backend [postgres, sqlite]")
	cmd.Flags().String(flagDbDsn, viper.GetString(flagDbDsn), "data source name of the relational backend, overrides the other db flags")
	cmd.Flags().String(flagDbHost, viper.GetString(flagDbHost), "postgres hostname (or ip address)")
	cmd.Flags().Int(flagDbPort, viper.GetInt(flagDbPort), "postgres port")
	cmd.Flags().String(flagDbUser, viper.GetString(flagDbUser), "postgres user")
	cmd.Flags().String(flagDbPassword, viper.GetString(flagDbPassword), "postgres password")
	cmd.Flags().String(flagDbName, viper.GetString(flagDbName), "postgres database name")
	cmd.Flags().String(flagDbSslMode, viper.GetString(flagDbSslMode), "postgres ssl mode")
	cmd.Flags().Int(flagDbMaxOpenConns, viper.GetInt(flagDbMaxOpenConns), "maximum number of open connections of the relational backend")
	cmd.Flags().Int(flagDbMaxIdleConns, viper.GetInt(flagDbMaxIdleConns), "maximum number of idle connections of the relational backend")
	cmd.Flags().Duration(flagDbConnMaxLifetime, viper.GetDuration(flagDbConnMaxLifetime), "maximum lifetime of a relational backend connection")
	cmd.Flags().String(flagMongoUri, viper.GetString(flagMongoUri), "MongoDB connection uri")
	cmd.Flags().String(flagMongoDatabase, viper.GetString(flagMongoDatabase), "MongoDB database")
	cmd.Flags().String(flagMongoCollection, viper.GetString(flagMongoCollection), "MongoDB students collection")
	cmd.Flags().String(flagMongoCounters, viper.GetString(flagMongoCounters), "MongoDB sequence counters collection")
	cmd.Flags().String(flagMongoGroups, viper.GetString(flagMongoGroups), "MongoDB groups collection")
	cmd.Flags().Duration(flagMongoTimeout, viper.GetDuration(flagMongoTimeout), "timeout of a single MongoDB operation")
	cmd.Flags().String(flagExportDir, viper.GetString(flagExportDir), "directory of the exported and imported files")
}

// bind the flags of the given command and configure logging. Must run first in every command
func setup(cmd *cobra.Command, setupErr error) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if setupErr != nil {
		return setupErr
	}
	return setupLogging()
}

func setupLogging() error {
	level, err := logrus.ParseLevel(viper.GetString(flagLogLevel))
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logFile := viper.GetString(flagLogFile)
	if logFile == "" {
		logger.Debug("log file undefined")
		return nil
	}
	lumberjackLogger := &lumberjack.Logger{
		Filename:	logFile,
		MaxSize:	viper.GetInt(flagLogFileMaxSize),
		MaxBackups:	viper.GetInt(flagLogFileMaxBackups),
		MaxAge:		viper.GetInt(flagLogFileMaxAge),
		LocalTime:	true,
	}
	if viper.GetBool(flagLogFileAndStdout) {
		logrus.SetOutput(io.MultiWriter(os.Stdout, lumberjackLogger))
	} else {
		logrus.SetOutput(lumberjackLogger)
	}
	return nil
}

// return the plain value of the given secret config key. A value read unencrypted from the config file is written
// back to it encrypted
func handleConfigEncryption(key, configFilePath string) (string, error) {
	value := viper.GetString(key)
	dataDir := viper.GetString(flagDbDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	keyFilePath := filepath.Join(dataDir, keyStoreFileName)
	if err := encryption.GenerateAesKeyFile(keyFilePath); err != nil {
		return "", err
	}
	aes := &encryption.AesEncryption{KeyFilePath: keyFilePath}
	if encryption.IsEncrypted(value) {
		return encryption.OpenValue(aes, value)
	}
	if value == "" || !viper.InConfig(key) {
		return value, nil
	}
	sealed, err := encryption.SealValue(aes, value)
	if err != nil {
		return "", err
	}
	confLines, err := readConfLines(configFilePath)
	if err != nil {
		return "", err
	}
	for i := 0; i < len(confLines); i++ {
		if strings.HasPrefix(strings.TrimSpace(confLines[i]), key+":") {
			confLines[i] = fmt.Sprintf("%s: %s", key, sealed)
		}
	}
	if err := writeConfLines(confLines, configFilePath); err != nil {
		return "", err
	}
	logger.Infof("encrypted %s in %s", key, configFilePath)
	return value, nil
}

// read the conf lines and return a list of them
func readConfLines(configFilePath string) ([]string, error) {
	confFile, err := os.Open(configFilePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := confFile.Close(); err != nil {
			logger.WithError(err).Error("error closing config file after reading")
		}
	}()
	var confLines []string
	confScanner := bufio.NewScanner(confFile)
	for confScanner.Scan() {
		confLines = append(confLines, confScanner.Text())
	}
	return confLines, confScanner.Err()
}

// write the given conf lines to the given path
func writeConfLines(confLines []string, configFilePath string) error {
	confFile, err := os.Create(configFilePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := confFile.Close(); err != nil {
			logger.WithError(err).Error("error closing config file after writing")
		}
	}()
	confWriter := bufio.NewWriter(confFile)
	for _, line := range confLines {
		if _, err := fmt.Fprintln(confWriter, line); err != nil {
			return err
		}
	}
	return confWriter.Flush()
}
