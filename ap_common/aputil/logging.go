/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package aputil

import (
	"fmt"
	"log"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func zapTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006/01/02 15:04:05"))
}

func newConfig() zap.Config {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.Level = logLevel
	zapConfig.DisableStacktrace = true
	zapConfig.EncoderConfig.EncodeTime = zapTimeEncoder
	return zapConfig
}

// NewLogger returns a 'sugared' zap logger, named for the daemon or tool using
// it.  Each logged line will include a timestamp, the log level, the logger
// name, and the caller before the message.  e.g.:
//	2020/03/02 10:23:27  INFO  ap.policyd  policymgr/pcl.go:121  built PCL ...
func NewLogger(pname string) *zap.SugaredLogger {
	logger, err := newConfig().Build()
	if err != nil {
		log.Panicf("can't zap: %s", err)
	}
	_ = zap.RedirectStdLog(logger)

	return logger.Named(pname).Sugar()
}

// LogSetLevel changes the level of every logger built by NewLogger.  The name
// argument is ignored, which lets this be used directly as a configuration
// change handler.
func LogSetLevel(name, val string) error {
	var level zapcore.Level

	if err := level.Set(strings.ToLower(val)); err != nil {
		return fmt.Errorf("invalid log level %q: %v", val, err)
	}
	logLevel.SetLevel(level)
	return nil
}

// LogGetLevel returns the current logging level.
func LogGetLevel() string {
	return logLevel.Level().String()
}
