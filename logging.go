package zkteco

import "github.com/sirupsen/logrus"

// log is the package-level logger. It defaults to logrus's standard
// logger so callers get reasonable output with zero configuration;
// SetLogger lets a host application route it elsewhere.
var log logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the package's logger. Passing nil restores the
// default standard logger.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		log = logrus.StandardLogger()
		return
	}
	log = l
}
