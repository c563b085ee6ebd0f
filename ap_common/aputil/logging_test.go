/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package aputil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogSetLevel(t *testing.T) {
	assert := require.New(t)

	slog := NewLogger("test")
	assert.NotNil(slog)

	assert.NoError(LogSetLevel("log_level", "DEBUG"))
	assert.Equal("debug", LogGetLevel())
	assert.True(slog.Desugar().Core().Enabled(-1))

	assert.Error(LogSetLevel("log_level", "chatty"))
	assert.Equal("debug", LogGetLevel())

	assert.NoError(LogSetLevel("", "warn"))
	assert.Equal("warn", LogGetLevel())
	assert.False(slog.Desugar().Core().Enabled(0))

	assert.NoError(LogSetLevel("", "info"))
}
