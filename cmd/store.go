package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/APB2021/student_manager/store"
	"github.com/APB2021/student_manager/store/document"
	mongostore "github.com/APB2021/student_manager/store/mongo"
	"github.com/APB2021/student_manager/store/relational"
	"github.com/spf13/viper"
)

// build the data source name of the relational backend from the config, unless one is given explicitly
func relationalDsn(password string) string {
	if dsn := viper.GetString(flagDbDsn); dsn != "" {
		return dsn
	}
	if viper.GetString(flagDbDialect) == relational.SQLite {
		return filepath.Join(viper.GetString(flagDbDir), sqliteFileName)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", viper.GetString(flagDbHost),
		viper.GetInt(flagDbPort), viper.GetString(flagDbUser), password, viper.GetString(flagDbName),
		viper.GetString(flagDbSslMode))
}

// open the configured store backend
func openStore(ctx context.Context, configFilePath string) (store.Store, error) {
	backend := viper.GetString(flagBackend)
	logger.Infof("using %s backend", backend)
	switch backend {
	case store.Relational:
		password, err := handleConfigEncryption(flagDbPassword, configFilePath)
		if err != nil {
			return nil, err
		}
		return relational.Open(relational.Config{
			Dialect:			viper.GetString(flagDbDialect),
			DSN:				relationalDsn(password),
			MaxOpenConns:		viper.GetInt(flagDbMaxOpenConns),
			MaxIdleConns:		viper.GetInt(flagDbMaxIdleConns),
			ConnMaxLifetime:	viper.GetDuration(flagDbConnMaxLifetime),
		})
	case store.Document:
		return document.Open(viper.GetString(flagDbDir))
	case store.Mongo:
		uri, err := handleConfigEncryption(flagMongoUri, configFilePath)
		if err != nil {
			return nil, err
		}
		return mongostore.Open(ctx, mongostore.Config{
			URI:		uri,
			Database:	viper.GetString(flagMongoDatabase),
			Students:	viper.GetString(flagMongoCollection),
			Groups:		viper.GetString(flagMongoGroups),
			Counters:	viper.GetString(flagMongoCounters),
			Timeout:	viper.GetDuration(flagMongoTimeout),
		})
	}
	return nil, fmt.Errorf("unknown backend \"%s\"", backend)
}

func closeStore(st store.Store) {
	if err := st.Close(); err != nil {
		logger.WithError(err).Error("error closing store")
	}
}
