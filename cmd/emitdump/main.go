// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Program emitdump assembles a sample function with the x86-64 encoder,
// finalizes it into executable memory and dumps the code and object pool.
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"gate.computer/emit/errors/errordata"
)

func main() {
	logger := &logrus.Logger{
		Out:       os.Stderr,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}

	if err := newRootCommand(logger).cmd.Execute(); err != nil {
		pub := errordata.Deconstruct(err).GetPublic()
		logger.WithError(err).WithFields(logrus.Fields{
			"public":   pub.Error,
			"contract": pub.Contract,
		}).Error("emitdump failed")
		os.Exit(1)
	}
}
