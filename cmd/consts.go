package cmd

import "time"

const (
	students				= "students"
	studentManager			= "student_manager"
	start					= "start"
	serve					= "serve"
	export					= "export"
	importCmd				= "import"

	defaultConfigFileName	= "student_manager.yml"
	keyStoreFileName		= "student_manager_keystore"
	sqliteFileName			= "student_manager.sqlite"
	yaml					= "yaml"
	info					= "info"
	text					= "text"
	xml						= "xml"
	group					= "group"

	defPort					= 8080
	defMaxLogFileSize		= 10
	defMaxLogFileAge		= 3
	defMaxLogFileBackups	= 3
	deLogFileAndStdOut		= false
	defBackend				= "document"
	defDbDialect			= "sqlite"
	defDbHost				= "localhost"
	defDbPort				= 5432
	defDbUser				= "students"
	defDbName				= "students"
	defDbSslMode			= "disable"
	defDbMaxOpenConns		= 10
	defDbMaxIdleConns		= 5
	defDbConnMaxLifetime	= 30 * time.Minute
	defMongoUri				= "mongodb://localhost:27017"
	defMongoDatabase		= "students"
	defMongoCollection		= "alumnos"
	defMongoCounters		= "counters"
	defMongoGroups			= "grupos"
	defMongoTimeout			= 10 * time.Second

	flagConfigFile			= "config-file"
	flagLogLevel			= "log-level"
	flagLogFile				= "log-file"
	flagLogFileAndStdout	= "log-file-and-stdout"
	flagLogFileMaxSize		= "log-file-max-size"
	flagLogFileMaxBackups	= "log-file-max-backups"
	flagLogFileMaxAge		= "log-file-max-age"
	flagBackend				= "backend"
	flagDbDir				= "db-dir"
	flagDbDialect			= "db-dialect"
	flagDbDsn				= "db-dsn"
	flagDbHost				= "db-host"
	flagDbPort				= "db-port"
	flagDbUser				= "db-user"
	flagDbPassword			= "db-password"
	flagDbName				= "db-name"
	flagDbSslMode			= "db-sslmode"
	flagDbMaxOpenConns		= "db-max-open-conns"
	flagDbMaxIdleConns		= "db-max-idle-conns"
	flagDbConnMaxLifetime	= "db-conn-max-lifetime"
	flagMongoUri			= "mongo-uri"
	flagMongoDatabase		= "mongo-database"
	flagMongoCollection		= "mongo-collection"
	flagMongoCounters		= "mongo-counters-collection"
	flagMongoGroups			= "mongo-groups-collection"
	flagMongoTimeout		= "mongo-timeout"
	flagExportDir			= "export-dir"
	flagServerPort			= "server-port"
	flagFormat				= "format"
	flagGroup				= "group"
	flagForce				= "force"
)
