package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"orderwatch/src/alerts"
	"orderwatch/src/controller"
	"orderwatch/src/marketdata"
	"orderwatch/src/monitor"
	"orderwatch/src/server"
	"orderwatch/src/store"
)

var Version string

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()

	app := cli.NewApp()
	app.Name = "Orderwatch CMD"
	app.Usage = "The Orderwatch command line interface"
	app.Version = Version

	app.Commands = []cli.Command{
		serveCMD,
		checkCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the order tracking API and monitor",
		Action:      serveAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the HTTP API with the background order monitor`,
	}
	checkCMD = cli.Command{
		Name:        "check",
		Usage:       "run a single evaluation pass",
		Action:      checkAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Evaluate every open order once and print the alerts that fired`,
	}
)

func serveAction(_ *cli.Context) error {
	logger.Info("Starting serve CMD")

	orderStore, source, err := buildCore()
	if err != nil {
		return err
	}

	hub := alerts.NewHub()
	mon := monitor.New(orderStore, source, hub, monitor.GetConfig())
	mon.Start()
	defer mon.Stop()

	server.StartServer(server.GetConfig(), server.Deps{
		Orders:  controller.NewOrderController(orderStore, source),
		Monitor: mon,
		Hub:     hub,
		Candles: source,
	})
	return nil
}

func checkAction(_ *cli.Context) error {
	logger.Info("Starting check CMD")

	orderStore, source, err := buildCore()
	if err != nil {
		return err
	}

	mon := monitor.New(orderStore, source, alerts.NewHub(), monitor.GetConfig())
	fired, err := mon.CheckNow(context.Background())
	if err != nil {
		logger.WithError(err).Error("Check pass failed")
		return err
	}

	for _, alert := range fired {
		fmt.Println(alert.Message)
	}
	logger.WithField("alerts", len(fired)).Info("Check pass complete")
	return nil
}

func buildCore() (*store.OrderStore, marketdata.Source, error) {
	orderStore, err := store.NewOrderStore(store.GetConfig())
	if err != nil {
		logger.WithError(err).Error("Failed to open order store")
		return nil, nil, err
	}

	source, err := marketdata.NewSource(marketdata.GetConfig())
	if err != nil {
		logger.WithError(err).Error("Failed to build market data source")
		return nil, nil, err
	}

	return orderStore, source, nil
}
