/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


// ap-policyctl runs the concurrency policy engine offline against a scenario
// file, to answer "what would the radio do" questions without hardware.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"bgwlan/ap_common/aputil"
	"bgwlan/ap_common/policymgr"
	"bgwlan/common/wifi"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tatsushid/go-prettytable"
	"go.uber.org/zap"
)

var appFs = afero.NewOsFs()

func silenceUsage(cmd *cobra.Command, args []string) {
	// Argument validation has passed by the time this runs, so only
	// errors from the command itself get here; those don't need usage.
	cmd.SilenceUsage = true
}

func cmdLogger(cmd *cobra.Command) *zap.SugaredLogger {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return aputil.NewLogger("ap-policyctl")
	}
	return zap.NewNop().Sugar()
}

func cmdEngine(cmd *cobra.Command) (*engine, error) {
	path, _ := cmd.Flags().GetString("scenario")
	if path == "" {
		return nil, errors.New("no scenario file given (-s)")
	}

	s, err := loadScenario(appFs, path)
	if err != nil {
		return nil, err
	}
	return s.build(cmdLogger(cmd))
}

func parseFreq(s string) (uint32, error) {
	f, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad frequency %q", s)
	}
	return uint32(f), nil
}

func printConns(cmd *cobra.Command, conns []policymgr.ConnInfo) {
	table, _ := prettytable.NewTable(
		prettytable.Column{Header: "Vdev"},
		prettytable.Column{Header: "Mode"},
		prettytable.Column{Header: "Freq"},
		prettytable.Column{Header: "Band"},
		prettytable.Column{Header: "BW"},
		prettytable.Column{Header: "MAC"},
		prettytable.Column{Header: "NSS"},
		prettytable.Column{Header: "DFS"},
	)
	table.Separator = "  "

	for _, c := range conns {
		table.AddRow(c.VdevID, c.Mode, c.Freq, wifi.BandName(c.Freq),
			c.Bandwidth, c.MacID, c.OriginalNSS, c.IsDFS())
	}
	table.WriteTo(cmd.OutOrStdout())
}

func printPCL(cmd *cobra.Command, res policymgr.PCLResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "PCL type: %v\n", res.Type)
	if res.Len() == 0 {
		fmt.Fprintf(out, "  (empty)\n")
		return
	}

	table, _ := prettytable.NewTable(
		prettytable.Column{Header: "Freq"},
		prettytable.Column{Header: "Band"},
		prettytable.Column{Header: "Weight", AlignRight: true},
	)
	table.Separator = "  "
	for i, f := range res.Freqs {
		table.AddRow(f, wifi.BandName(f), res.Weights[i])
	}
	table.WriteTo(out)
}

func printDispatched(cmd *cobra.Command, rec *recorder) {
	out := cmd.OutOrStdout()

	rec.Lock()
	defer rec.Unlock()

	for _, r := range rec.hwModes {
		fmt.Fprintf(out, "hw mode request: id=%d action=%v reason=%v\n",
			r.HwModeID, r.Action, r.Reason)
	}
	for _, r := range rec.pcls {
		fmt.Fprintf(out, "pcl for vdev %d (%v): %d channels\n",
			r.VdevID, r.Mode, len(r.Freqs))
	}
}

func dumpScenario(cmd *cobra.Command, args []string) error {
	e, err := cmdEngine(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n", e.mgr.DumpCurrentConcurrency())
	printConns(cmd, e.mgr.Table().Conns())
	return nil
}

func getPCL(cmd *cobra.Command, args []string) error {
	mode, err := policymgr.ParseMode(args[0])
	if err != nil {
		return err
	}

	e, err := cmdEngine(cmd)
	if err != nil {
		return err
	}

	res, err := e.mgr.GetPCL(mode)
	if err != nil {
		return err
	}
	printPCL(cmd, res)
	return nil
}

func getVdevPCL(cmd *cobra.Command, args []string) error {
	vdev, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("bad vdev %q", args[0])
	}

	e, err := cmdEngine(cmd)
	if err != nil {
		return err
	}

	res, err := e.mgr.GetPCLForVdev(uint32(vdev))
	if err != nil {
		return err
	}
	printPCL(cmd, res)
	return nil
}

func checkAdmission(cmd *cobra.Command, args []string) error {
	mode, err := policymgr.ParseMode(args[0])
	if err != nil {
		return err
	}
	freq, err := parseFreq(args[1])
	if err != nil {
		return err
	}
	dfs, _ := cmd.Flags().GetBool("dfs")

	e, err := cmdEngine(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if e.mgr.AllowNewHomeChannel(mode, freq, -1, dfs) {
		fmt.Fprintf(out, "%v on %d: allowed\n", mode, freq)
	} else {
		fmt.Fprintf(out, "%v on %d: not allowed\n", mode, freq)
	}

	if mode == policymgr.ModeSAP {
		if scc, ok := e.mgr.CheckForceSCC(freq); ok {
			fmt.Fprintf(out, "forced to SCC on %d\n", scc)
		}
	}
	return nil
}

func showHwModes(cmd *cobra.Command, args []string) error {
	e, err := cmdEngine(cmd)
	if err != nil {
		return err
	}

	table, _ := prettytable.NewTable(
		prettytable.Column{Header: "ID"},
		prettytable.Column{Header: "MAC0"},
		prettytable.Column{Header: "MAC1"},
		prettytable.Column{Header: "Type"},
	)
	table.Separator = "  "

	cur := e.mgr.CurrentHwMode()
	for _, d := range e.hw.Modes() {
		id := strconv.Itoa(d.ID)
		if d.ID == cur.ID {
			id += "*"
		}
		mac1 := "-"
		if !d.SingleMAC() {
			mac1 = fmt.Sprintf("%dx%d/%v", d.MAC1TxSS, d.MAC1RxSS,
				d.MAC1BW)
		}
		table.AddRow(id,
			fmt.Sprintf("%dx%d/%v", d.MAC0TxSS, d.MAC0RxSS, d.MAC0BW),
			mac1, hwmodeType(d.DBS, d.SBS))
	}

	out := cmd.OutOrStdout()
	table.WriteTo(out)

	next := e.mgr.NextPreferredHwMode(policymgr.ReasonOpportunistic)
	fmt.Fprintf(out, "\nnext: %v\n", next)
	return nil
}

func hwmodeType(dbs, sbs bool) string {
	switch {
	case dbs:
		return "DBS"
	case sbs:
		return "SBS"
	}
	return "SMM"
}

func startConnection(cmd *cobra.Command, args []string) error {
	mode, err := policymgr.ParseMode(args[0])
	if err != nil {
		return err
	}

	req := policymgr.ConnRequest{Mode: mode}
	if len(args) > 1 {
		if req.Freq, err = parseFreq(args[1]); err != nil {
			return err
		}
	}
	vdev, _ := cmd.Flags().GetUint32("vdev")
	req.VdevID = vdev
	req.MacID, _ = cmd.Flags().GetInt("mac")
	req.OriginalNSS, _ = cmd.Flags().GetInt("nss")
	bw, _ := cmd.Flags().GetString("bw")
	if req.Bandwidth, err = wifi.ParseBandwidth(bw); err != nil {
		return err
	}

	e, err := cmdEngine(cmd)
	if err != nil {
		return err
	}
	if req.VdevID == 0 {
		for _, c := range e.mgr.Table().Conns() {
			if c.VdevID > req.VdevID {
				req.VdevID = c.VdevID
			}
		}
		req.VdevID++
	}

	info, err := e.mgr.StartConnection(context.Background(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "started %v\n", info)
	printDispatched(cmd, e.rec)
	fmt.Fprintf(out, "%s\n", e.mgr.DumpCurrentConcurrency())
	return nil
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:              os.Args[0],
		Short:            "Evaluate WLAN concurrency policy against a scenario",
		PersistentPreRun: silenceUsage,
	}
	rootCmd.PersistentFlags().StringP("scenario", "s", "", "scenario YAML file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log engine activity")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Args:  cobra.NoArgs,
		Short: "Show the scenario's concurrency",
		RunE:  dumpScenario,
	})

	pclCmd := &cobra.Command{
		Use:   "pcl <mode>",
		Args:  cobra.ExactArgs(1),
		Short: "Show the preferred channel list for a new connection",
		RunE:  getPCL,
	}
	rootCmd.AddCommand(pclCmd)
	pclCmd.AddCommand(&cobra.Command{
		Use:   "vdev <vdev>",
		Args:  cobra.ExactArgs(1),
		Short: "Show the preferred channel list for an existing vdev",
		RunE:  getVdevPCL,
	})

	admitCmd := &cobra.Command{
		Use:   "admit <mode> <freq>",
		Args:  cobra.ExactArgs(2),
		Short: "Check whether a new connection could come up on a channel",
		RunE:  checkAdmission,
	}
	admitCmd.Flags().Bool("dfs", false, "the channel requires radar detection")
	rootCmd.AddCommand(admitCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "hwmode",
		Args:  cobra.NoArgs,
		Short: "Show the hardware modes and the preferred next mode",
		RunE:  showHwModes,
	})

	startCmd := &cobra.Command{
		Use:   "start <mode> [freq]",
		Args:  cobra.RangeArgs(1, 2),
		Short: "Run a new connection through the policy",
		RunE:  startConnection,
	}
	startCmd.Flags().Uint32("vdev", 0, "vdev id (default: next free)")
	startCmd.Flags().Int("mac", 0, "MAC the connection runs on")
	startCmd.Flags().Int("nss", 2, "spatial streams")
	startCmd.Flags().String("bw", "20", "channel width")
	rootCmd.AddCommand(startCmd)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
