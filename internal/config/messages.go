package config

import "fmt"

const (
	errInvalidEnvValueFmt = "Warning: invalid %s value '%s', using default"
)

type messageBuilders struct {
	invalidEnvValue func(string, string) string
}

func newMessageBuilders() messageBuilders {
	return messageBuilders{
		invalidEnvValue: func(key, value string) string {
			return fmt.Sprintf(errInvalidEnvValueFmt, key, value)
		},
	}
}

var messages = newMessageBuilders()
