package main

import (
	"errors"
	"net/http"
	"os"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"
	"github.com/olablt/gio-routemap/internal/config"
	"github.com/olablt/gio-routemap/internal/logging"
	"github.com/olablt/gio-routemap/mapview"
	"github.com/olablt/gio-routemap/tiles"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr)
	}

	cache := tiles.NewCache(cfg.Tiles.MaxEntries)
	provider := tiles.NewMirrorProvider(cfg.Tiles.MirrorOptions())
	loader := tiles.NewLoader(cache, provider, cfg.Tiles.LoaderOptions())

	mv := mapview.New(loader, cfg.Map.Center(), cfg.Map.Zoom)
	mv.Renderer().Buffer = cfg.Tiles.Buffer
	mv.SetPointSelectionListener(func(ll tiles.LatLng) {
		log.WithField("point", ll.String()).Info("point selected")
	})

	go func() {
		w := new(app.Window)
		w.Option(
			app.Title("Map Route Explorer"),
			app.Size(unit.Dp(800), unit.Dp(600)),
		)

		// repaint whenever a worker delivers a tile
		go func() {
			for range loader.Ready() {
				w.Invalidate()
			}
		}()

		var ops op.Ops
		for {
			switch e := w.Event().(type) {
			case app.DestroyEvent:
				loader.Close()
				if e.Err != nil {
					log.WithError(e.Err).Error("window closed")
					os.Exit(1)
				}
				os.Exit(0)
			case app.FrameEvent:
				gtx := app.NewContext(&ops, e)
				mv.Layout(gtx)
				e.Frame(gtx.Ops)
			}
		}
	}()
	app.Main()
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.WithField("addr", addr).Info("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics server stopped")
	}
}
