package server

import "time"

const (
	ContentType		= "Content-Type"
	ApplicationJson	= "application/json"

	nia				= "nia"
	groupName		= "groupName"

	serverTimeout	= 15 * time.Second
)
