package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/chrissnell/eddyflux/internal/controllers/restserver"
	"github.com/chrissnell/eddyflux/internal/log"
	"github.com/chrissnell/eddyflux/internal/simulator"
	"github.com/chrissnell/eddyflux/pkg/config"
	"github.com/chrissnell/eddyflux/pkg/flux"
	"github.com/chrissnell/eddyflux/pkg/responseformat"
)

func main() {
	p := simulator.DefaultParams()

	profile := flag.String("profile", config.Profile15Min, "averaging profile: 15min or 30min")
	flag.Float64Var(&p.MeanWind, "wind", p.MeanWind, "mean horizontal wind speed (m/s)")
	flag.Float64Var(&p.WindDirection, "direction", p.WindDirection, "wind direction relative to the sonic u axis (degrees)")
	flag.Float64Var(&p.Tilt, "tilt", p.Tilt, "sensor tilt producing a mean vertical wind (degrees)")
	flag.Float64Var(&p.SigmaW, "sigma-w", p.SigmaW, "standard deviation of w (m/s)")
	flag.Float64Var(&p.Covariance, "covariance", p.Covariance, "target w'T' covariance (K m/s)")
	flag.Float64Var(&p.Noise, "noise", p.Noise, "white noise as a fraction of each channel's sigma")
	flag.IntVar(&p.Spikes, "spikes", p.Spikes, "number of temperature spikes to inject")
	flag.Int64Var(&p.Seed, "seed", p.Seed, "random seed")
	intervals := flag.Int("intervals", 1, "number of consecutive intervals to generate")
	height := flag.Float64("height", 0, "measurement height (m); 0 disables the footprint estimate")
	server := flag.String("server", "", "base URL of an eddyflux server; when empty, compute locally")
	site := flag.String("site", "", "site name to post results under")
	format := flag.String("format", "json", "wire format: json or msgpack")
	logOpts := log.BindFlags(flag.CommandLine)
	flag.Parse()

	if err := log.InitWithOptions(*logOpts); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	opts, err := config.SiteData{Name: "simulator", Profile: *profile}.FluxOptions()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if *height > 0 {
		opts = opts.With(flux.WithMeasurementHeight(*height))
	}
	p.Samples = opts.MinSamples

	wire, err := responseformat.ParseFormat(*format)
	if err != nil {
		log.Fatalf("%v", err)
	}

	calc, err := flux.NewCalculator(opts, log.GetSugaredLogger())
	if err != nil {
		log.Fatalf("%v", err)
	}

	period := time.Duration(float64(p.Samples)/opts.SamplingFrequency) * time.Second
	start := time.Now().UTC().Truncate(period)
	client := &http.Client{Timeout: 30 * time.Second}

	for i := 0; i < *intervals; i++ {
		s, err := simulator.Generate(p)
		if err != nil {
			log.Fatalf("%v", err)
		}
		at := start.Add(time.Duration(i) * period)

		if *server == "" {
			res, err := calc.Compute(s)
			if err != nil {
				log.Fatalf("interval %d: %v", i, err)
			}
			if err := responseformat.Encode(os.Stdout, wire, res); err != nil {
				log.Fatalf("%v", err)
			}
		} else {
			req := restserver.FluxRequest{Site: *site, StartTime: &at, Series: s}
			if *height > 0 {
				req.Options = &restserver.OptionOverrides{MeasurementHeight: height}
			}
			if err := post(context.Background(), client, *server, wire, req); err != nil {
				log.Fatalf("interval %d: %v", i, err)
			}
		}
		p.Seed++
	}
}

func post(ctx context.Context, client *http.Client, server string, wire responseformat.Format, body restserver.FluxRequest) error {
	var buf bytes.Buffer
	if err := responseformat.Encode(&buf, wire, body); err != nil {
		return err
	}

	url := strings.TrimRight(server, "/") + "/api/v1/flux"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", wire.ContentType())

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(out)))
	}
	log.Infof("stored interval starting %s", body.StartTime.Format(time.RFC3339))
	fmt.Println(strings.TrimSpace(string(out)))
	return nil
}
