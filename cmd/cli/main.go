/*Insights command line tool*/
package main

import (
	"github.com/alecthomas/kong"
)

// context holds global options
type context struct {
	Verbose bool `help:"Enable debug logging."`
}

// cli commands / args available
var cli struct {
	Ctx context `embed:""`

	Analyze analyzeCmd `cmd:"" help:"Build an insight from a local transaction batch file."`
	Nudges  nudgesCmd  `cmd:"" help:"Generate personalized tips from a local transaction batch file."`
	Sync    syncCmd    `cmd:"" help:"Run the full sync pipeline for one account."`
	Replay  replayCmd  `cmd:"" help:"Rebuild an insight from an archived raw batch."`
}

type analyzeCmd struct {
	File string `arg:"" required:"" help:"Path to a JSON file holding a raw transaction batch."`
}

type nudgesCmd struct {
	File  string `arg:"" required:"" help:"Path to a JSON file holding a raw transaction batch."`
	Model string `env:"ADVISOR_MODEL" help:"Advisor model name."`
}

type syncCmd struct {
	Account      string `arg:"" required:"" help:"Provider account ID to sync."`
	Days         int    `default:"30" help:"Number of days backward to fetch transactions."`
	Host         string `env:"PROVIDER_HOST" default:"https://openapi.investec.com" help:"Provider API host."`
	ClientID     string `name:"client-id" env:"PROVIDER_CLIENT_ID" required:"" help:"Provider OAuth client ID."`
	ClientSecret string `name:"client-secret" env:"PROVIDER_CLIENT_SECRET" required:"" help:"Provider OAuth client secret."`
	APIKey       string `name:"api-key" env:"PROVIDER_API_KEY" required:"" help:"Provider API key."`
	Project      string `env:"GOOGLE_PROJECT_ID" required:"" help:"GCP project ID."`
	Dataset      string `env:"BIGQUERY_DATASET" default:"insights" help:"BigQuery dataset."`
	Bucket       string `env:"GCS_BUCKET" help:"GCS bucket for raw batch archival (optional)."`
}

type replayCmd struct {
	URI string `arg:"" required:"" help:"gs:// URI of an archived raw batch."`
}

func main() {
	ctx := kong.Parse(&cli)
	err := ctx.Run(&cli.Ctx)
	ctx.FatalIfErrorf(err)
}
