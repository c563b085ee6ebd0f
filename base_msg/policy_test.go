/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package base_msg

import (
	"testing"

	"github.com/golang/protobuf/descriptor"
	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"
)

func TestPolicyRequestWire(t *testing.T) {
	assert := require.New(t)

	in := &PolicyRequest{
		Id:     proto.String("req-1"),
		Sender: proto.String("ap.policyd"),
		HwMode: &SetHwModeRequest{
			HwModeId: proto.Int32(2),
			Action:   HwModeAction_DOWNGRADE_DBS1.Enum(),
			Nss:      proto.Uint32(1),
			Vdevs:    []uint32{1, 3},
		},
	}
	data, err := proto.Marshal(in)
	assert.NoError(err)

	out := &PolicyRequest{}
	assert.NoError(proto.Unmarshal(data, out))
	assert.Equal("req-1", out.GetId())
	assert.Nil(out.GetPcl())
	assert.Equal(int32(2), out.GetHwMode().GetHwModeId())
	assert.Equal(HwModeAction_DOWNGRADE_DBS1, out.GetHwMode().GetAction())
	assert.Equal([]uint32{1, 3}, out.GetHwMode().GetVdevs())
	assert.Equal("", out.GetHwMode().GetReason())
}

func TestGettersOnNil(t *testing.T) {
	assert := require.New(t)

	var req *PolicyRequest
	assert.Equal("", req.GetId())
	assert.Nil(req.GetPcl().GetFreqs())
	assert.Equal(uint32(0), req.GetPcl().GetVdevId())

	var resp *PolicyResponse
	assert.Equal(PolicyStatus_OK, resp.GetStatus())
	assert.Equal("BUSY", PolicyStatus_BUSY.String())
	assert.Equal("SINGLE_MAC", HwModeAction_SINGLE_MAC.String())
}

// The registered file descriptor matches the Go types.
func TestDescriptor(t *testing.T) {
	testCases := []struct {
		msg    descriptor.Message
		name   string
		fields []string
	}{
		{&SetPCLRequest{}, "SetPCLRequest",
			[]string{"vdev_id", "mode", "freqs", "weights", "roam_bands"}},
		{&SetHwModeRequest{}, "SetHwModeRequest",
			[]string{"hw_mode_id", "action", "reason", "nss", "vdevs"}},
		{&PolicyRequest{}, "PolicyRequest",
			[]string{"id", "sender", "pcl", "hw_mode"}},
		{&PolicyResponse{}, "PolicyResponse",
			[]string{"id", "status", "errmsg"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)

			fd, md := descriptor.ForMessage(tc.msg)
			assert.Equal("policy.proto", fd.GetName())
			assert.Equal("base_msg", fd.GetPackage())
			assert.Equal(tc.name, md.GetName())

			var names []string
			for i, f := range md.GetField() {
				names = append(names, f.GetName())
				assert.Equal(int32(i+1), f.GetNumber())
			}
			assert.Equal(tc.fields, names)
			assert.Equal(tc.name, proto.MessageName(tc.msg)[len("base_msg."):])
		})
	}

	assert := require.New(t)
	assert.Equal(int32(4), proto.EnumValueMap("base_msg.HwModeAction")["DOWNGRADE_DBS1"])
	assert.Equal(int32(1), proto.EnumValueMap("base_msg.PolicyStatus")["BUSY"])

	var status PolicyStatus
	assert.NoError(status.UnmarshalJSON([]byte(`"FAILED"`)))
	assert.Equal(PolicyStatus_FAILED, status)
}
