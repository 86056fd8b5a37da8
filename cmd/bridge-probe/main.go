package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/visiona/mediabridge"
	"github.com/visiona/mediabridge/emitter"
	"github.com/visiona/mediabridge/internal/enginemock"
)

const version = "v0.1.0"

func main() {
	consumers := flag.Int("consumers", 3, "Number of concurrent event consumers")
	buffer := flag.Int("buffer", 4, "Per-consumer subscription buffer size")
	tickMS := flag.Int("tick", 50, "Milliseconds between scripted time events")
	duration := flag.Duration("duration", 10*time.Second, "Scripted playback length")
	consumerLag := flag.Duration("consumer-lag", 0, "Artificial delay per consumed event (provokes eviction)")
	mqttBroker := flag.String("mqtt", "", "MQTT broker host:port (empty = no emitter)")
	mqttPrefix := flag.String("mqtt-prefix", "media/probe", "MQTT topic prefix")
	metricsAddr := flag.String("metrics", "", "Prometheus listen address, e.g. :9090 (empty = disabled)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("bridge-probe %s\n", version)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	fmt.Printf("bridge-probe %s\n", version)
	fmt.Printf("  Consumers:    %d (buffer %d, lag %s)\n", *consumers, *buffer, *consumerLag)
	fmt.Printf("  Script:       %s playback, %dms ticks\n", *duration, *tickMS)
	if *mqttBroker != "" {
		fmt.Printf("  MQTT:         %s (prefix %s)\n", *mqttBroker, *mqttPrefix)
	}
	if *metricsAddr != "" {
		fmt.Printf("  Metrics:      http://%s/metrics\n", *metricsAddr)
	}
	fmt.Printf("\n")

	eng := enginemock.New()
	eng.SetTracks(mediabridge.TrackAudio, []mediabridge.Track{
		{ID: "a1", Kind: mediabridge.TrackAudio, Codec: "mp4a", Language: "en"},
	})
	eng.SetTracks(mediabridge.TrackVideo, []mediabridge.Track{
		{ID: "v1", Kind: mediabridge.TrackVideo, Codec: "h264"},
	})
	eng.SetMetadata(mediabridge.Metadata{Title: "Probe Clip", Artist: "bridge-probe"})
	eng.OnRequestParse = func() {
		eng.Emit(enginemock.ParseCompletion(mediabridge.StatusDone))
	}

	session, err := mediabridge.NewSession(eng)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Printf("\nReceived interrupt, shutting down...\n")
		cancel()
	}()

	if *metricsAddr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(mediabridge.NewStatsCollector(session))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			slog.Info("metrics endpoint listening", "addr", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				slog.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	group, gctx := errgroup.WithContext(ctx)

	// Consumers: each one drains its own bounded subscription. With a lag
	// configured they fall behind and the eviction counters show newest-wins
	// in action.
	for i := 0; i < *consumers; i++ {
		sub, err := session.SubscribeBuffer(*buffer)
		if err != nil {
			log.Fatalf("Failed to subscribe consumer %d: %v", i, err)
		}
		id := i
		group.Go(func() error {
			count := 0
			for {
				select {
				case <-gctx.Done():
					sub.Close()
					return nil
				case ev, ok := <-sub.Events():
					if !ok {
						slog.Info("consumer finished", "consumer", id, "events", count)
						return nil
					}
					count++
					slog.Debug("consumer received event",
						"consumer", id, "type", ev.Type(), "count", count)
					if *consumerLag > 0 {
						time.Sleep(*consumerLag)
					}
				}
			}
		})
	}

	if *mqttBroker != "" {
		em := emitter.New(emitter.Config{
			Broker:      *mqttBroker,
			ClientID:    "bridge-probe",
			TopicPrefix: *mqttPrefix,
		})
		if err := em.Connect(ctx); err != nil {
			log.Fatalf("Failed to connect emitter: %v", err)
		}
		defer em.Close()

		sub, err := session.Subscribe()
		if err != nil {
			log.Fatalf("Failed to subscribe emitter: %v", err)
		}
		group.Go(func() error {
			err := em.Run(gctx, sub)
			sub.Close()
			if err == context.Canceled {
				return nil
			}
			return err
		})
	}

	// Script: a full playback lifecycle on a goroutine standing in for the
	// engine thread.
	group.Go(func() error {
		if err := session.Load("probe://clip"); err != nil {
			return err
		}
		if err := session.Play(); err != nil {
			return err
		}

		eng.Emit(enginemock.StateEvent(mediabridge.StateOpening))
		eng.Emit(enginemock.BufferingEvent(30))
		eng.Emit(enginemock.LengthEvent(duration.Milliseconds()))
		eng.Emit(enginemock.StateEvent(mediabridge.StatePlaying))

		tick := time.NewTicker(time.Duration(*tickMS) * time.Millisecond)
		defer tick.Stop()

		elapsed := time.Duration(0)
		for elapsed < *duration {
			select {
			case <-gctx.Done():
				return nil
			case <-tick.C:
				elapsed += time.Duration(*tickMS) * time.Millisecond
				eng.Emit(enginemock.TimeEvent(elapsed.Milliseconds()))
				eng.Emit(enginemock.PositionEvent(float64(elapsed) / float64(*duration)))
			}
		}

		eng.Emit(enginemock.StateEvent(mediabridge.StateStopped))

		// Give consumers a moment to drain, then end the run.
		time.Sleep(200 * time.Millisecond)
		cancel()
		return nil
	})

	// Metadata parse demo runs alongside the playback script.
	meta, err := session.ParseMetadata(ctx, mediabridge.ParseOptions{})
	if err != nil {
		slog.Error("parse failed", "error", err)
	} else {
		slog.Info("metadata parsed", "title", meta.Title, "artist", meta.Artist)
	}

	if err := group.Wait(); err != nil {
		slog.Error("probe run failed", "error", err)
	}

	state := session.State()
	stats := session.Stats()

	fmt.Printf("\nFinal state:\n")
	fmt.Printf("  Phase:          %s\n", state.Phase)
	fmt.Printf("  Elapsed:        %s\n", state.Elapsed)
	fmt.Printf("  Duration:       %s (known=%v)\n", state.TotalDuration, state.DurationKnown)
	fmt.Printf("  Audio tracks:   %d\n", len(state.AudioTracks))
	fmt.Printf("  Video tracks:   %d\n", len(state.VideoTracks))

	fmt.Printf("\nDelivery stats:\n")
	fmt.Printf("  Published:      %d\n", stats.Published)
	fmt.Printf("  Unmapped:       %d\n", stats.Dropped)
	fmt.Printf("  Eviction rate:  %.1f%%\n", mediabridge.EvictionRate(stats)*100)
	for id, sub := range stats.Subscriptions {
		fmt.Printf("  %s  delivered=%d evicted=%d\n", id, sub.Delivered, sub.Evicted)
	}

	if err := session.Close(); err != nil {
		slog.Error("close failed", "error", err)
	}
	slog.Info("probe completed")
}
