package runner

import "os"

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

func pid() int {
	return os.Getpid()
}
