package server

const DefPort = 8080

// http view configuration
type Config struct {
	Port	int
}
