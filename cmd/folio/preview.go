package main

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/eringen/folio/preview"
)

var (
	previewRoot string
	previewAddr string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve a directory of static files for local viewing",
	RunE: func(cmd *cobra.Command, args []string) error {
		e := preview.New(previewRoot)
		e.Logger.SetLevel(logLevel())
		e.Logger.Infof("serving %s at http://%s/", previewRoot, previewAddr)
		if err := e.Start(previewAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewRoot, "root", ".", "Directory to serve")
	previewCmd.Flags().StringVar(&previewAddr, "addr", "127.0.0.1:3000", "Listen address")
	rootCmd.AddCommand(previewCmd)
}
