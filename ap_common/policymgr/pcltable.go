/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package policymgr

import (
	"fmt"
	"strings"
)

// PCLType selects the recipe used to build a preferred channel list.
type PCLType int

// PCL types.  SCC_CH and MCC_CH refer to the channels of existing
// connections, SBS_CH to channels which may run alongside them on the other
// MAC.
const (
	PCLNone PCLType = iota
	PCL24G
	PCL5G
	PCLSCCCh
	PCLMCCCh
	PCLSCCCh24G
	PCLSCCCh5G
	PCL24GSCCCh
	PCL5GSCCCh
	PCLSCCOn5SCCOn24_24G
	PCLSCCOn5SCCOn24_5G
	PCLSCCOn24SCCOn5_24G
	PCLSCCOn24SCCOn5_5G
	PCLSCCOn5SCCOn24
	PCLSCCOn24SCCOn5
	PCLMCCCh24G
	PCLMCCCh5G
	PCL24GMCCCh
	PCL5GMCCCh
	PCLSBSCh
	PCLSBSCh5G
	PCL24GSCCChSBSCh
	PCL24GSCCChSBSCh5G
	PCL24GSBSChMCCCh
	PCLSBSCh24GSCCCh
	PCLSBSChSCCCh24G
	PCLSCCChSBSCh24G
	PCLSBSChSCCCh5G24G
	PCLSBSCh24G

	numPCLTypes
)

var pclNames = [numPCLTypes]string{
	PCLNone:              "PM_NONE",
	PCL24G:               "PM_24G",
	PCL5G:                "PM_5G",
	PCLSCCCh:             "PM_SCC_CH",
	PCLMCCCh:             "PM_MCC_CH",
	PCLSCCCh24G:          "PM_SCC_CH_24G",
	PCLSCCCh5G:           "PM_SCC_CH_5G",
	PCL24GSCCCh:          "PM_24G_SCC_CH",
	PCL5GSCCCh:           "PM_5G_SCC_CH",
	PCLSCCOn5SCCOn24_24G: "PM_SCC_ON_5_SCC_ON_24_24G",
	PCLSCCOn5SCCOn24_5G:  "PM_SCC_ON_5_SCC_ON_24_5G",
	PCLSCCOn24SCCOn5_24G: "PM_SCC_ON_24_SCC_ON_5_24G",
	PCLSCCOn24SCCOn5_5G:  "PM_SCC_ON_24_SCC_ON_5_5G",
	PCLSCCOn5SCCOn24:     "PM_SCC_ON_5_SCC_ON_24",
	PCLSCCOn24SCCOn5:     "PM_SCC_ON_24_SCC_ON_5",
	PCLMCCCh24G:          "PM_MCC_CH_24G",
	PCLMCCCh5G:           "PM_MCC_CH_5G",
	PCL24GMCCCh:          "PM_24G_MCC_CH",
	PCL5GMCCCh:           "PM_5G_MCC_CH",
	PCLSBSCh:             "PM_SBS_CH",
	PCLSBSCh5G:           "PM_SBS_CH_5G",
	PCL24GSCCChSBSCh:     "PM_24G_SCC_CH_SBS_CH",
	PCL24GSCCChSBSCh5G:   "PM_24G_SCC_CH_SBS_CH_5G",
	PCL24GSBSChMCCCh:     "PM_24G_SBS_CH_MCC_CH",
	PCLSBSCh24GSCCCh:     "PM_SBS_CH_24G_SCC_CH",
	PCLSBSChSCCCh24G:     "PM_SBS_CH_SCC_CH_24G",
	PCLSCCChSBSCh24G:     "PM_SCC_CH_SBS_CH_24G",
	PCLSBSChSCCCh5G24G:   "PM_SBS_CH_SCC_CH_5G_24G",
	PCLSBSCh24G:          "PM_SBS_CH_2G",
}

func (p PCLType) String() string {
	if p >= 0 && p < numPCLTypes {
		return pclNames[p]
	}
	return fmt.Sprintf("pcl(%d)", int(p))
}

// ParsePCLType accepts either the PM_ form of a type name or the same name
// without the prefix.
func ParsePCLType(s string) (PCLType, error) {
	n := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(n, "PM_") {
		n = "PM_" + n
	}
	for p, name := range pclNames {
		if name == n {
			return PCLType(p), nil
		}
	}
	return PCLNone, fmt.Errorf("unknown pcl type: %s", s)
}

// AllPCLTypes returns every defined PCL type.
func AllPCLTypes() []PCLType {
	types := make([]PCLType, numPCLTypes)
	for i := range types {
		types[i] = PCLType(i)
	}
	return types
}

// pclSource names a producer of candidate channels.  Each source yields one
// or more tiers; every non-empty tier consumes one weight group.
type pclSource int

const (
	src24G pclSource = iota
	src5G
	srcConn
	srcConn24GFirst
	srcConn5GFirst
	srcSCC
	srcSBS
	srcRest
)

// The recipe for each PCL type.  A list is built by running its sources in
// order.
var pclRecipes = [numPCLTypes][]pclSource{
	PCLNone:              nil,
	PCL24G:               {src24G},
	PCL5G:                {src5G},
	PCLSCCCh:             {srcConn},
	PCLMCCCh:             {srcConn},
	PCLSCCCh24G:          {srcConn, src24G},
	PCLSCCCh5G:           {srcConn, src5G},
	PCL24GSCCCh:          {src24G, srcConn},
	PCL5GSCCCh:           {src5G, srcConn},
	PCLSCCOn5SCCOn24_24G: {srcConn5GFirst, src24G},
	PCLSCCOn5SCCOn24_5G:  {srcConn5GFirst, src5G},
	PCLSCCOn24SCCOn5_24G: {srcConn24GFirst, src24G},
	PCLSCCOn24SCCOn5_5G:  {srcConn24GFirst, src5G},
	PCLSCCOn5SCCOn24:     {srcConn5GFirst},
	PCLSCCOn24SCCOn5:     {srcConn24GFirst},
	PCLMCCCh24G:          {srcConn, src24G},
	PCLMCCCh5G:           {srcConn, src5G},
	PCL24GMCCCh:          {src24G, srcConn},
	PCL5GMCCCh:           {src5G, srcConn},
	PCLSBSCh:             {srcSBS},
	PCLSBSCh5G:           {srcSBS, src5G},
	PCL24GSCCChSBSCh:     {src24G, srcSCC, srcSBS},
	PCL24GSCCChSBSCh5G:   {src24G, srcSCC, srcSBS, srcRest},
	PCL24GSBSChMCCCh:     {src24G, srcSBS, srcConn},
	PCLSBSCh24GSCCCh:     {srcSBS, src24G, srcSCC},
	PCLSBSChSCCCh24G:     {srcSBS, srcSCC, src24G},
	PCLSCCChSBSCh24G:     {srcSCC, srcSBS, src24G},
	PCLSBSChSCCCh5G24G:   {srcSBS, srcSCC, srcRest, src24G},
	PCLSBSCh24G:          {srcSBS, src24G},
}
