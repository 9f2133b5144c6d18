package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/BeritaKepri/internal/config"
	"github.com/IshaanNene/BeritaKepri/internal/portal"
	"github.com/IshaanNene/BeritaKepri/internal/taxonomy"
)

var (
	taxonomySide  string
	showKeywords  bool
	singleMinimum bool
)

// portalsCmd creates the "portals" subcommand.
func portalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "portals",
		Short: "List the configured news portals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := portal.NewRegistry(cfg.Portals)
			if err != nil {
				return fmt.Errorf("load portals: %w", err)
			}

			fmt.Printf("%s  %s  %-9s  %s\n",
				runewidth.FillRight("ID", 12), runewidth.FillRight("Name", 22), "Date from", "Listing")
			for _, p := range registry.List() {
				source := "detail"
				if p.DateAtListing {
					source = "listing"
				}
				fmt.Printf("%s  %s  %-9s  %s\n",
					runewidth.FillRight(p.ID, 12), runewidth.FillRight(runewidth.Truncate(p.Name, 22, "…"), 22),
					source, p.ListingURL)
			}
			return nil
		},
	}
}

// taxonomyCmd creates the "taxonomy" subcommand.
func taxonomyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Show the categories loaded from the taxonomy sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			minLen := cfg.Taxonomy.MinTokenLength
			if singleMinimum {
				minLen = cfg.Taxonomy.SingleMinTokenLength
			}

			tax, err := taxonomy.LoadSide(cfg.Taxonomy.Sources, taxonomySide, minLen)
			if err != nil {
				return err
			}

			fmt.Printf("%d categories\n\n", tax.Len())
			for _, c := range tax.Categories() {
				fmt.Printf("%s  (%d keywords)\n", c.Name, len(c.Keywords))
				if showKeywords {
					fmt.Printf("    %s\n", strings.Join(c.Keywords, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&taxonomySide, "side", "", "only sources of this side: production, expenditure")
	cmd.Flags().BoolVarP(&showKeywords, "keywords", "k", false, "print every keyword")
	cmd.Flags().BoolVar(&singleMinimum, "single", false, "use the single-label token length")

	return cmd
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("BeritaKepri %s\n", config.Version)
		},
	}
}
