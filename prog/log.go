package main

import (
	"flag"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

type prefixFormatter struct {
	prefix []byte
	next   log.Formatter
}

func (f *prefixFormatter) Format(entry *log.Entry) ([]byte, error) {
	formatted, err := f.next.Format(entry)
	if err != nil {
		return formatted, err
	}
	return append(f.prefix, formatted...), nil
}

func setLogFormatter(prefix string) {
	if !strings.HasSuffix(prefix, " ") {
		prefix += " "
	}
	log.SetFormatter(&prefixFormatter{
		prefix: []byte(prefix),
		next: &log.TextFormatter{
			TimestampFormat: "2006/01/02 15:04:05.000000",
			FullTimestamp:   true,
			DisableSorting:  true,
			DisableColors:   true,
		},
	})
}

func setLogLevel(levelname string) {
	level, err := log.ParseLevel(levelname)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(level)
}

type logFlags struct {
	level, prefix string
}

func (l *logFlags) register(prefix string) {
	flag.StringVar(&l.level, "log.level", "info", "logging threshold level: debug|info|warn|error|fatal|panic")
	flag.StringVar(&l.prefix, "log.prefix", fmt.Sprintf("<%s>", prefix), "prefix for each log line")
}

func (l *logFlags) apply() {
	setLogLevel(l.level)
	setLogFormatter(l.prefix)
}
