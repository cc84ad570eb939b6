package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"github.com/mogaika/matrix3d/colorscale"
	"github.com/mogaika/matrix3d/config"
	"github.com/mogaika/matrix3d/dataset"
	"github.com/mogaika/matrix3d/history"
	"github.com/mogaika/matrix3d/scene"
	"github.com/mogaika/matrix3d/status"
	"github.com/mogaika/matrix3d/utils"
	"github.com/mogaika/matrix3d/web"
)

func main() {
	var configPath, addr, input, export string
	var dump, watch bool
	flag.StringVar(&configPath, "config", "", "Path to yaml config file")
	flag.StringVar(&addr, "i", "", "Address of server (overrides config)")
	flag.StringVar(&input, "input", "", "Path to matrix file (.csv, .tsv or .xlsx)")
	flag.StringVar(&export, "export", "", "Write scene to this .glb or .fbx file and exit")
	flag.BoolVar(&dump, "dump", false, "Dump computed layout to stdout")
	flag.BoolVar(&watch, "watch", false, "Reload input file when it changes")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if input != "" {
		cfg.Input = input
	}
	if watch {
		cfg.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	opts, err := cfg.MatrixOptions()
	if err != nil {
		log.Fatal(err)
	}
	scale, err := colorscale.New(cfg.Color.Scheme)
	if err != nil {
		log.Fatal(err)
	}

	store := dataset.NewStore(opts, cfg.Grid)
	if cfg.Input != "" {
		if _, err := store.LoadFile(cfg.Input); err != nil {
			log.Fatal(err)
		}
	}

	if dump || export != "" {
		snap, err := store.Current()
		if err != nil {
			log.Fatalf("Nothing to export, use -input: %v", err)
		}
		if dump {
			utils.Fdump(os.Stdout, snap.Layout)
		}
		if export != "" {
			if err := exportScene(export, snap, scale); err != nil {
				log.Fatal(err)
			}
			log.Printf("Scene with %d bars written to %s", len(snap.Layout.Cells), export)
		}
		return
	}

	hub := status.NewHub()
	defer hub.Close()
	store.SetNotifier(hub)

	srv := &web.Server{
		Store: store,
		Scale: scale,
		Hub:   hub,
		Title: cfg.Title,
	}

	if cfg.HistoryDB != "" {
		db, err := history.Open(cfg.HistoryDB)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		store.SetRecorder(db)
		srv.History = db
		if snap, err := store.Current(); err == nil {
			if err := db.Record(snap); err != nil {
				log.Printf("[history] %v", err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Watch {
		go func() {
			if err := store.Watch(ctx); err != nil {
				log.Printf("[dataset] watch stopped: %v", err)
			}
		}()
	}

	if err := srv.StartServer(ctx, cfg.Addr); err != nil {
		log.Fatal(err)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
	flag.PrintDefaults()
	fmt.Fprintf(out, "\nColor schemes: %s\n", strings.Join(colorscale.Schemes(), ", "))
	fmt.Fprintf(out, "Encodings: %s\n", strings.Join(config.ListEncodings(), ", "))
}

func exportScene(path string, snap *dataset.Snapshot, scale *colorscale.Scale) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fbx":
		return scene.ExportFBXFile(path, snap.Layout, scale)
	case ".glb":
		doc, err := scene.Build(snap.Layout, scale)
		if err != nil {
			return err
		}
		return scene.ExportBinaryFile(path, doc)
	default:
		return errors.Errorf("Unknown export format %q, use .glb or .fbx", path)
	}
}
