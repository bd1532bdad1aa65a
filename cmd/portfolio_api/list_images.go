package main

import (
	"encoding/json"
	"fmt"

	"github.com/UsamaZuberi/portfolio-v2/internal/blob"
	"github.com/UsamaZuberi/portfolio-v2/internal/observability"
	"github.com/spf13/cobra"
)

var (
	listImagesSlug string
	listImagesJSON bool
)

var listImagesCmd = &cobra.Command{
	Use:   "list-images",
	Short: "List project images from the configured object store",
	Long:  "Lists supported image files from Vercel Blob or Google Cloud Storage, grouped by project slug.",
	RunE:  runListImages,
}

func init() {
	listImagesCmd.Flags().StringVarP(&listImagesSlug, "slug", "s", "", "Only list images of this project")
	listImagesCmd.Flags().BoolVar(&listImagesJSON, "json", false, "Print JSON instead of a summary")
	rootCmd.AddCommand(listImagesCmd)
}

func runListImages(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := blob.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open image storage: %w", err)
	}
	if store == nil {
		return fmt.Errorf("image storage is not configured (provider %q)", cfg.BlobProvider)
	}

	objects, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}

	out := cmd.OutOrStdout()
	if listImagesSlug != "" {
		images := blob.ProjectImages(objects, listImagesSlug)
		if listImagesJSON {
			return writeJSON(cmd, map[string]any{"slug": listImagesSlug, "images": images, "count": len(images)})
		}
		for _, url := range images {
			fmt.Fprintln(out, url)
		}
		return nil
	}

	groups := blob.GroupProjectImages(objects)
	if listImagesJSON {
		return writeJSON(cmd, map[string]any{"images": groups, "projectCount": len(groups)})
	}
	observability.NewPrinter(out).PrintImageGroups(groups)
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
