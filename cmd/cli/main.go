package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/dvloznov/deposit-matcher/internal/config"
	"github.com/dvloznov/deposit-matcher/internal/dataset"
	"github.com/dvloznov/deposit-matcher/internal/domain"
	"github.com/dvloznov/deposit-matcher/internal/export"
	"github.com/dvloznov/deposit-matcher/internal/gcs"
	"github.com/dvloznov/deposit-matcher/internal/gcsuploader"
	"github.com/dvloznov/deposit-matcher/internal/logger"
	"github.com/dvloznov/deposit-matcher/internal/matching"
	"github.com/dvloznov/deposit-matcher/internal/pipeline"
)

const displayTime = "2006-01-02 15:04:05"

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.NewFromOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Out: os.Stderr})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	storage := gcsuploader.NewGCSStorageService(gcsuploader.Options{
		CredentialsFile: cfg.GCSCredentialsFile,
		Endpoint:        cfg.GCSEndpoint,
	})

	switch os.Args[1] {
	case "match":
		runMatch(log, cfg, storage)
	case "preview":
		runPreview(log, cfg, storage)
	case "upload":
		runUpload(log, cfg, storage)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Deposit Matcher CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  match     Match contact notes to the deposits that followed them")
	fmt.Println("  preview   Show the first rows of a deposits or notes file")
	fmt.Println("  upload    Upload a local file to GCS")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nFiles may be local paths or gs://bucket/object URIs.")
	fmt.Println("Run 'cli <command> -h' for more information on a command.")
}

func runMatch(log zerolog.Logger, cfg *config.Config, storage *gcsuploader.GCSStorageService) {
	fs := flag.NewFlagSet("match", flag.ExitOnError)
	deposits := fs.String("deposits", "", "Deposits file (.csv, .xlsx, .xls)")
	notes := fs.String("notes", "", "Contact notes file (.csv, .xlsx, .xls)")
	keyword := fs.String("keyword", cfg.NoteKeyword, "Keep only notes containing this text (case-insensitive)")
	out := fs.String("out", "", "Write matches here; the extension picks csv, xlsx or xls")
	summaryOut := fs.String("summary-out", "", "Write the per-currency summary here")
	rows := fs.Int("rows", cfg.PreviewRows, "Matched rows to print")
	fs.Parse(os.Args[2:])

	if *deposits == "" || *notes == "" {
		log.Fatal().Msg("Usage: cli match -deposits FILE -notes FILE [-keyword TEXT] [-out FILE] [-summary-out FILE]")
	}

	state := pipeline.NewPipelineState(
		pipeline.Input{Location: *deposits},
		pipeline.Input{Location: *notes},
	)
	state.Keyword = *keyword
	state.Location = cfg.Location()

	var err error
	if state.MatchesOut, err = exportTarget(*out); err != nil {
		log.Fatal().Err(err).Msg("Invalid -out")
	}
	if state.SummaryOut, err = exportTarget(*summaryOut); err != nil {
		log.Fatal().Err(err).Msg("Invalid -summary-out")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("run_id", state.RunID).
		Str("deposits", *deposits).
		Str("notes", *notes).
		Str("keyword", *keyword).
		Msg("Starting matching run")

	if err := pipeline.NewMatchPipeline(storage).Execute(ctx, state); err != nil {
		log.Fatal().Err(err).Msg("Matching failed")
	}

	printReport(os.Stdout, state, *rows)
	for _, loc := range state.Exported {
		fmt.Printf("Wrote %s\n", loc)
	}
}

// exportTarget builds a target from a location; "" means no export.
func exportTarget(location string) (*pipeline.ExportTarget, error) {
	if location == "" {
		return nil, nil
	}
	format, err := export.ParseFormat(location)
	if err != nil {
		return nil, err
	}
	return &pipeline.ExportTarget{Location: location, Format: format}, nil
}

func printReport(w io.Writer, state *pipeline.PipelineState, rows int) {
	fmt.Fprintf(w, "Run %s\n", state.RunID)
	fmt.Fprintf(w, "Deposits: %d  Notes: %d (after filter: %d)\n",
		len(state.DepositRecords), len(state.NoteRecords), len(state.FilteredNotes))

	if state.Outcome == matching.OutcomeNoSharedIdentities {
		fmt.Fprintln(w, state.Outcome.Message())
		return
	}

	fmt.Fprintf(w, "\nMatching User Names (%d): %s\n", len(state.SharedIdentities), strings.Join(state.SharedIdentities, ", "))

	if state.Outcome == matching.OutcomeNoQualifyingNotes {
		fmt.Fprintln(w, state.Outcome.Message())
		return
	}

	fmt.Fprintf(w, "\n=== Matched Data (%d, showing %d) ===\n", len(state.Matches), len(domain.Head(state.Matches, rows)))
	printMatches(w, domain.Head(state.Matches, rows))

	fmt.Fprintln(w, "\n=== Currency Summary ===")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(export.SummaryColumns, "\t"))
	for _, s := range state.Summary {
		fmt.Fprintf(tw, "%s\t%s\n", s.Currency, s.TotalAmount.String())
	}
	tw.Flush()
}

func printMatches(w io.Writer, matches []domain.MatchedRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(export.MatchColumns, "\t"))
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.UserID,
			m.NoteTimestamp.Format(displayTime),
			m.DepositTimestamp.Format(displayTime),
			m.Agent,
			m.DepositAmount.String(),
			m.DepositCurrency,
			m.NoteText,
		)
	}
	tw.Flush()
}

func runPreview(log zerolog.Logger, cfg *config.Config, storage *gcsuploader.GCSStorageService) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	file := fs.String("file", "", "File to preview (.csv, .xlsx, .xls)")
	kind := fs.String("kind", "", "Table kind: deposits or notes")
	keyword := fs.String("keyword", cfg.NoteKeyword, "Notes only: keep rows containing this text")
	rows := fs.Int("rows", cfg.PreviewRows, "Rows to print")
	fs.Parse(os.Args[2:])

	if *file == "" || (*kind != "deposits" && *kind != "notes") {
		log.Fatal().Msg("Usage: cli preview -file FILE -kind deposits|notes [-keyword TEXT] [-rows N]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	data, err := storage.Fetch(ctx, *file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read file")
	}

	name := gcs.Filename(*file)
	opts := dataset.Options{Location: cfg.Location()}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if *kind == "deposits" {
		deposits, err := dataset.LoadDeposits(name, data, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load deposits")
		}
		fmt.Fprintf(tw, "%d deposits\n", len(deposits))
		fmt.Fprintln(tw, "Username\tTransaction Date\tAmount\tCurrency")
		for _, d := range domain.Head(deposits, *rows) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.UserID, d.Timestamp.Format(displayTime), d.Amount.String(), d.Currency)
		}
		return
	}

	notes, err := dataset.LoadNotes(name, data, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load notes")
	}
	filtered := matching.FilterNotes(notes, *keyword)
	fmt.Fprintf(tw, "%d notes, %d after filter\n", len(notes), len(filtered))
	fmt.Fprintln(tw, "Username\tDate\tNote\tAgent")
	for _, n := range domain.Head(filtered, *rows) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.UserID, n.Timestamp.Format(displayTime), n.NoteText, n.Agent)
	}
}

func runUpload(log zerolog.Logger, cfg *config.Config, storage *gcsuploader.GCSStorageService) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", cfg.GCSBucket, "GCS bucket name (or set GCS_BUCKET)")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := logger.WithContext(context.Background(), log)

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := storage.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, gcs.URI(*bucketName, *objectName))
}
