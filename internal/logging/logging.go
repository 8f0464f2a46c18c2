package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the service logger. Development keeps human-readable output;
// everything else logs JSON for the aggregator.
func New(environment string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if environment == "development" {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return log
	}

	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.JSONFormatter{})
	return log
}
