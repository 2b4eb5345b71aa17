package main

import (
	"log"
	"os"
	"time"

	"github.com/abiiranathan/pdfterms/cli"
	"github.com/abiiranathan/pdfterms/logger"
	"github.com/abiiranathan/pdfterms/metrics"
	"github.com/abiiranathan/pdfterms/pdf"
	"github.com/abiiranathan/pdfterms/routes"
	"github.com/abiiranathan/pdfterms/server"
	"github.com/abiiranathan/pdfterms/terms"
	"github.com/prometheus/client_golang/prometheus"
)

func startServer(config *cli.Config) {
	store, err := terms.Open(config.TermsFile)
	if err != nil {
		log.Fatalln(err)
	}

	// Leave room to write the response of a search that ran to the limit.
	var writeTimeout time.Duration
	if config.SearchTimeout > 0 {
		writeTimeout = config.SearchTimeout + 10*time.Second
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	err = server.Run(server.Options{
		Port:    config.Port,
		Metrics: m,
		Services: routes.Services{
			Store:    store,
			Engine:   cli.NewEngine(config, m),
			Gatherer: prometheus.DefaultGatherer,
			Search: routes.SearchConfig{
				Root:             config.DocumentsDir,
				Timeout:          config.SearchTimeout,
				DefaultMode:      config.Mode,
				DefaultThreshold: config.Threshold,
			},
		},
		WriteTimeout: writeTimeout,
	})
	if err != nil {
		log.Fatalln(err)
	}
}

func main() {
	log.SetPrefix("[pdfterms]: ")
	log.SetFlags(log.Lshortfile)

	// Set the locale to the system's default
	pdf.SetLocale()

	config, err := cli.LoadConfig(cli.ConfigPath())
	if err != nil {
		log.Fatalln(err)
	}

	// Parse the command line arguments
	ctx := cli.DefineFlags(config, func() { startServer(config) })
	subcmd, err := ctx.Parse(os.Args)
	if err != nil {
		log.Fatalln(err)
	}

	// If the subcommand is nil, print the usage and exit
	if subcmd == nil {
		ctx.PrintUsage(os.Stdout)
		os.Exit(1)
	}

	logger.Setup(config.Log.Level, config.Log.Format)
	if err := config.Validate(); err != nil {
		log.Fatalln(err)
	}

	// Run the subcommand
	subcmd.Handler()
}
