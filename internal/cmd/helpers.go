package cmd

import "time"

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
