package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/database/postgres"
	"github.com/kozaktomas/photo-faces/internal/database/sqlite"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "photo-faces",
	Short: "Group the people in a photo library by face",
	Long: `Photo Faces indexes the faces in a local photo library, groups photos
of the same person with density-based clustering and serves the groups
through a small web UI where people can be named.

Typical workflow:
  photo-faces index ~/Pictures   # detect faces in new photos
  photo-faces cluster            # group faces into people
  photo-faces serve              # browse and name people`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	database.RegisterNameStore(config.NamingBackendSQLite, sqlite.Open)
	database.RegisterNameStore(config.NamingBackendPostgres, postgres.Open)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
