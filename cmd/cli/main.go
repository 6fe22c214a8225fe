package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"axviral/pkg/catalog"
	"axviral/pkg/logger"
	"axviral/pkg/resolver"
	"axviral/pkg/storage"
	"go.uber.org/zap"
)

type options struct {
	dbPath     *string
	driver     *string
	sourcePath *string
	destPath   *string
	title      *string
	url        *string
	mediaType  *string
	id         *string
}

func openService(opts options) (*catalog.Service, storage.Store) {
	s, err := storage.Open(*opts.driver, *opts.dbPath)
	if err != nil {
		fmt.Printf("Cannot open media db %v\n", err)
		os.Exit(1)
	}
	return catalog.NewService(s, logger.Logger), s
}

func actionInfo(opts options) {
	service, s := openService(opts)
	defer s.Close()

	items, err := service.List(context.Background())
	if err != nil {
		log.Printf("%v", err)
		os.Exit(5)
	}
	var videos, images, files int
	for _, rec := range items {
		if rec.IsVideo() {
			videos++
		} else {
			images++
		}
		if rec.SourceType == catalog.SourceTypeFile {
			files++
		}
	}
	fmt.Printf("db:     %s (%s)\n", *opts.dbPath, *opts.driver)
	fmt.Printf("media:  %d (%d videos, %d images)\n", len(items), videos, images)
	fmt.Printf("files:  %d\n", files)
	fmt.Printf("urls:   %d\n", len(items)-files)
}

func actionList(opts options) {
	service, s := openService(opts)
	defer s.Close()

	items, err := service.List(context.Background())
	if err != nil {
		log.Printf("%v", err)
		os.Exit(5)
	}
	for _, rec := range items {
		src := rec.RemoteURL
		if rec.File != nil {
			src = fmt.Sprintf("%s (%d bytes)", rec.File.Name, rec.File.Size)
		} else if resolver.IsEmbed(rec.RemoteURL) {
			src = resolver.EmbedURL(rec.RemoteURL)
		}
		fmt.Printf("%s  %s  %-5s  %s  %s\n",
			rec.ID,
			rec.Created().Format(time.DateTime),
			rec.Type,
			rec.Title,
			src,
		)
	}
}

func actionAddURL(opts options) {
	service, s := openService(opts)
	defer s.Close()

	rec, err := service.Upload(context.Background(), catalog.Upload{
		Title:      *opts.title,
		SourceType: catalog.SourceTypeURL,
		Type:       catalog.MediaType(*opts.mediaType),
		RemoteURL:  *opts.url,
	})
	if err != nil {
		log.Printf("%v", err)
		os.Exit(5)
	}
	fmt.Printf("added %s\n", rec.ID)
}

func actionImportDir(opts options) {
	log.Printf("%s", *opts.sourcePath)
	service, s := openService(opts)
	defer s.Close()

	fs, err := storage.NewSourceFileStorage(*opts.sourcePath)
	if err != nil {
		fmt.Printf("Cannot not find sourcepath %v\n", err)
		os.Exit(1)
	}
	n, err := service.ImportDirectory(context.Background(), fs)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(5)
	}
	fmt.Printf("imported %d files\n", n)
}

func actionDelete(opts options) {
	service, s := openService(opts)
	defer s.Close()

	if err := service.Delete(context.Background(), *opts.id); err != nil {
		log.Printf("%v", err)
		os.Exit(5)
	}
	fmt.Printf("deleted %s\n", *opts.id)
}

func actionExport(opts options) {
	service, s := openService(opts)
	defer s.Close()

	ds, err := storage.NewDestinationFileStorage(*opts.destPath)
	if err != nil {
		fmt.Printf("Cannot not find destpath %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	items, err := service.List(ctx)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(5)
	}
	exported := 0
	for _, rec := range items {
		if rec.File == nil {
			continue
		}
		if *opts.id != "" && rec.ID != *opts.id {
			continue
		}
		data, err := service.ReadFile(ctx, rec.ID)
		if err != nil {
			log.Printf("%v", err)
			os.Exit(5)
		}
		path, err := ds.ExportToDirectory(rec, data)
		if err != nil {
			log.Printf("%v", err)
			os.Exit(5)
		}
		log.Printf("%s -> %s", rec.ID, path)
		exported++
	}
	fmt.Printf("exported %d files\n", exported)
}

func main() {
	action := flag.String("action", "info", "action to do")
	opts := options{
		dbPath:     flag.String("db", "data/axviral.db", "path of the media db"),
		driver:     flag.String("driver", storage.DriverBolt, "store driver (bolt or sqlite)"),
		sourcePath: flag.String("sourcePath", "", "directory to import media from"),
		destPath:   flag.String("destPath", "", "directory to export media to"),
		title:      flag.String("title", "", "title of the media to add"),
		url:        flag.String("url", "", "remote url of the media to add"),
		mediaType:  flag.String("type", string(catalog.MediaTypeVideo), "media type (video or image)"),
		id:         flag.String("id", "", "media id"),
	}
	logLevel := flag.String("logLevel", "warn", "log level")
	flag.Parse()

	if err := logger.Init(*logLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()
	logger.Logger.Debug("cli started", zap.String("action", *action))

	switch *action {
	case "info":
		actionInfo(opts)
	case "list":
		actionList(opts)
	case "add-url":
		actionAddURL(opts)
	case "import-dir":
		actionImportDir(opts)
	case "delete":
		actionDelete(opts)
	case "export":
		actionExport(opts)
	default:
		fmt.Printf("Nothing to do\n")
		fmt.Printf("Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
}
