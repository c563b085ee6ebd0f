/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package comms

import (
	"bgwlan/base_msg"

	"github.com/golang/protobuf/proto"
)

// HandlerFunc processes one policy request on the firmware proxy side.  A
// non-empty message accompanies a failure status.
type HandlerFunc func(req *base_msg.PolicyRequest) (base_msg.PolicyStatus, string)

// Responder wraps a HandlerFunc as an APComm.Serve callback, taking care of
// the protobuf encoding and echoing the request ID.
func Responder(fn HandlerFunc) func([]byte) []byte {
	return func(msg []byte) []byte {
		req := &base_msg.PolicyRequest{}
		resp := &base_msg.PolicyResponse{}

		if err := proto.Unmarshal(msg, req); err != nil {
			resp.Status = base_msg.PolicyStatus_INVALID.Enum()
			resp.Errmsg = proto.String("malformed request: " + err.Error())
		} else {
			status, errmsg := fn(req)
			resp.Id = req.Id
			resp.Status = status.Enum()
			if errmsg != "" {
				resp.Errmsg = proto.String(errmsg)
			}
		}

		data, err := proto.Marshal(resp)
		if err != nil {
			return nil
		}
		return data
	}
}
