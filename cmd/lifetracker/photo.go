// ABOUTME: CLI commands for storing and browsing progress photos.
// ABOUTME: Images go to the storage backend; metadata goes to the photo index.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/lifetracker/internal/models"
	"github.com/harperreed/lifetracker/internal/photos"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var (
	photoCategories string
	photoAt         string
)

var photoCmd = &cobra.Command{
	Use:     "photo",
	Aliases: []string{"photos"},
	Short:   "Manage progress photos",
	Long: `Store and browse progress photos tagged with body-region categories.

CATEGORIES:

  front, back, side, arms, chest, abs, legs, shoulders

EXAMPLES:

  lifetracker photo add front.jpg -c front,abs
  lifetracker photo list front
  lifetracker photo latest
  lifetracker photo history abs
  lifetracker photo delete abc12345`,
}

var photoAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Store a progress photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := models.ParseCategories(photoCategories)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}

		ref, err := app.repo.PutImage(data)
		if err != nil {
			return fmt.Errorf("failed to store image: %w", err)
		}

		p := models.NewProgressPhoto(ref, categories...)
		if photoAt != "" {
			t, err := models.ParseTime(photoAt, time.Local)
			if err != nil {
				return multierr.Append(
					fmt.Errorf("invalid timestamp: %s", photoAt),
					app.repo.DeleteImage(ref))
			}
			p = p.WithDate(t)
		}

		if err := app.photos.AddPhoto(p); err != nil {
			return multierr.Append(err, app.repo.DeleteImage(ref))
		}

		color.Green("✓ Added photo")
		fmt.Printf("  %s %s %s\n",
			color.New(color.Faint).Sprint(p.ID.String()[:8]),
			models.FormatRowDate(p.Date),
			categoryList(p.Categories))
		return nil
	},
}

var photoListCmd = &cobra.Command{
	Use:   "list [category]",
	Short: "List photos, optionally for one category",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var list []models.ProgressPhoto
		if len(args) == 1 {
			c, err := models.ParseCategory(args[0])
			if err != nil {
				return err
			}
			list = app.photos.Photos(c)
		} else {
			list = app.photos.AllPhotos()
		}

		if len(list) == 0 {
			fmt.Println("No photos found.")
			return nil
		}
		for _, p := range list {
			printPhotoRow(p)
		}
		return nil
	},
}

var photoLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent photo for each category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		latest := app.photos.LatestByCategory()
		if len(latest) == 0 {
			fmt.Println("No photos found.")
			return nil
		}

		for _, c := range models.AllPhotoCategories {
			p, ok := latest[c]
			if !ok {
				continue
			}
			fmt.Printf("%s %s %s\n",
				padRight(c.DisplayName(), 10),
				color.New(color.Faint).Sprint(p.ID.String()[:8]),
				models.FormatRowDate(p.Date))
		}
		return nil
	},
}

var photoHistoryCmd = &cobra.Command{
	Use:   "history <category>",
	Short: "Show photos for a category grouped by day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := models.ParseCategory(args[0])
		if err != nil {
			return err
		}

		groups := app.photos.PhotosByDate(c)
		if len(groups) == 0 {
			fmt.Printf("No %s photos found.\n", c.DisplayName())
			return nil
		}

		for _, day := range photos.SortedDays(groups) {
			color.New(color.Bold).Println(day.String())
			for _, p := range groups[day] {
				fmt.Print("  ")
				printPhotoRow(p)
			}
		}
		return nil
	},
}

var photoDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a photo and its image",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := app.photos.Find(args[0])
		if err != nil {
			return err
		}
		app.photos.DeletePhoto(p.ID)

		color.Yellow("✗ Deleted photo %s", p.ID.String()[:8])
		return nil
	},
}

func printPhotoRow(p models.ProgressPhoto) {
	faint := color.New(color.Faint)
	fmt.Printf("%s %s %s\n",
		faint.Sprint(p.ID.String()[:8]),
		faint.Sprint(padRight(models.FormatRowDate(p.Date), 16)),
		truncate(categoryList(p.Categories), 40))
}

func categoryList(categories []models.PhotoCategory) string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.DisplayName())
	}
	return strings.Join(names, ", ")
}

func init() {
	photoAddCmd.Flags().StringVarP(&photoCategories, "category", "c", "", "comma-separated categories (required)")
	photoAddCmd.Flags().StringVar(&photoAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	_ = photoAddCmd.MarkFlagRequired("category")

	photoCmd.AddCommand(photoAddCmd)
	photoCmd.AddCommand(photoListCmd)
	photoCmd.AddCommand(photoLatestCmd)
	photoCmd.AddCommand(photoHistoryCmd)
	photoCmd.AddCommand(photoDeleteCmd)
	rootCmd.AddCommand(photoCmd)
}
