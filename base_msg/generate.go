/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


// Package base_msg holds the messages ap.policyd exchanges with the firmware
// proxy.  policy.pb.go is generated from policy.proto.
package base_msg

//go:generate protoc --go_out=. policy.proto
