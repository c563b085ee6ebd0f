/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


// ap.policyd runs the WLAN concurrency policy engine.  Connection events
// arrive over its diagnostics API; PCL and hardware mode requests go to the
// firmware proxy over a mangos socket.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bgwlan/ap_common/aputil"
	"bgwlan/ap_common/comms"
	"bgwlan/ap_common/hwmode"
	"bgwlan/ap_common/pmcfg"
	"bgwlan/ap_common/policymgr"
	"bgwlan/ap_common/regdb"
	"bgwlan/base_msg"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const pname = "ap.policyd"

var (
	cfgPath  = flag.StringP("config", "c", pmcfg.DefaultPath, "configuration file")
	logLevel = flag.String("log-level", "", "override the configured log level")
	iwCmd    = flag.String("iw", "/usr/sbin/iw", "path to the iw utility")
	fakeFW   = flag.Bool("fake-fw", false,
		"answer firmware requests in-process, for development")

	slog *zap.SugaredLogger
)

// daemon bundles the long-lived pieces of ap.policyd.
type daemon struct {
	cfg   *pmcfg.Config
	reg   *regdb.DB
	mgr   *policymgr.Manager
	disp  *comms.Dispatcher
	roam  *roamTracker
	cac   *cacState
	comm  *comms.APComm
	fwSrv *comms.APComm
}

func loadRegulatory(cfg *pmcfg.Config) (*regdb.DB, error) {
	if cfg.Phy == "" {
		return regdb.NewDefault(cfg.Country), nil
	}
	return regdb.FromPhy(*iwCmd, cfg.Phy, cfg.Country)
}

// A stand-in for the firmware proxy which accepts everything.
func fakeFirmware(req *base_msg.PolicyRequest) (base_msg.PolicyStatus, string) {
	slog.Infow("firmware request", "id", req.GetId(), "req", req.String())
	return base_msg.PolicyStatus_OK, ""
}

func newDaemon(fs afero.Fs, cfg *pmcfg.Config) (*daemon, error) {
	var err error

	d := &daemon{
		cfg:  cfg,
		roam: newRoamTracker(),
		cac:  newCACState(),
	}

	if d.reg, err = loadRegulatory(cfg); err != nil {
		return nil, errors.Wrap(err, "loading regulatory data")
	}

	hw, err := hwmode.Load(fs, cfg.HwModeFile)
	if err != nil {
		return nil, err
	}

	pc, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	if *fakeFW {
		d.fwSrv, err = comms.NewAPServer(cfg.FirmwareURL, slog)
		if err != nil {
			return nil, errors.Wrap(err, "starting fake firmware")
		}
	}

	if d.comm, err = comms.NewAPClient(cfg.FirmwareURL, slog); err != nil {
		d.close()
		return nil, errors.Wrap(err, "connecting to firmware proxy")
	}
	d.comm.SetSendTimeout(cfg.Timeout())
	d.comm.SetRecvTimeout(cfg.Timeout())
	d.disp = comms.NewDispatcher(d.comm, pname, cfg.QueueDepth, slog)

	d.mgr, err = policymgr.New(pc, policymgr.Deps{
		HwModes:    hw,
		Regulatory: d.reg,
		Dispatcher: d.disp,
		Roam:       d.roam,
		CAC:        d.cac,
		Avoid:      cfg.Avoid(),
		Log:        slog,
	})
	if err != nil {
		d.close()
		return nil, err
	}
	d.mgr.AddListener(func(ev policymgr.Event) {
		slog.Debugw("connection table event", "kind", ev.Kind,
			"vdev", ev.VdevID, "conns", len(ev.Conns))
	})

	slog.Infow("policy engine ready", "country", cfg.Country,
		"hw_modes", hw.Len(), "dbs", hw.DBSCapable(),
		"sbs", hw.SBSCapable(), "firmware", cfg.FirmwareURL)
	return d, nil
}

func (d *daemon) start() {
	d.disp.Start()
	d.mgr.Start()
}

func (d *daemon) close() {
	if d.mgr != nil {
		d.mgr.Close()
	}
	if d.disp != nil {
		d.disp.Close()
	}
	if d.comm != nil {
		d.comm.Close()
	}
	if d.fwSrv != nil {
		d.fwSrv.Close()
	}
}

func signalHandler(ctx context.Context) error {
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		slog.Infof("Signal (%v) received", s)
		return errors.Errorf("signal %v", s)
	case <-ctx.Done():
		return nil
	}
}

func run(fs afero.Fs) error {
	cfg, err := pmcfg.Load(fs, *cfgPath)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	if err = aputil.LogSetLevel("", level); err != nil {
		slog.Warnf("%v", err)
	}

	if err = policymgr.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		return errors.Wrap(err, "registering metrics")
	}

	d, err := newDaemon(fs, cfg)
	if err != nil {
		return err
	}
	defer d.close()
	d.start()

	srv := &http.Server{
		Addr:    cfg.DiagAddr,
		Handler: newRouter(d),
	}

	g, ctx := errgroup.WithContext(context.Background())
	if d.fwSrv != nil {
		g.Go(func() error {
			return d.fwSrv.Serve(comms.Responder(fakeFirmware))
		})
	}
	g.Go(func() error {
		slog.Infof("diagnostics listening on %s", cfg.DiagAddr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := signalHandler(ctx)

		sctx, cancel := context.WithTimeout(context.Background(),
			5*time.Second)
		defer cancel()
		srv.Shutdown(sctx)
		if d.fwSrv != nil {
			d.fwSrv.Close()
		}
		return err
	})

	err = g.Wait()
	slog.Infof("%s exiting: %v", pname, err)
	return nil
}

func main() {
	flag.Parse()
	slog = aputil.NewLogger(pname)
	defer slog.Sync()

	if err := run(afero.NewOsFs()); err != nil {
		slog.Fatalf("%s failed: %v", pname, err)
	}
}
