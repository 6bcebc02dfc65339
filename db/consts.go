package db

import "time"

const (
	dbPerms				= 0600
	dbDirPerms			= 0755
	dbOpenTimeout		= time.Minute
	DatabaseFileName	= "student_manager.db"

	// bucket holding sequence counters
	Counters	= "counters"
)
