// simhashindex - a near-duplicate detection engine built on SimHash
// fingerprints and locality-sensitive bucketing.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lshguard/simhashindex/internal/config"
	"github.com/lshguard/simhashindex/internal/fingerprint"
	"github.com/lshguard/simhashindex/internal/lshindex"
)

var version = "0.1.0-dev"

var (
	configFile string
	tolerance  int
	fBits      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "simhashindex",
		Short: "simhashindex - near-duplicate detection over SimHash fingerprints",
		Long: `simhashindex indexes SimHash fingerprints into locality-sensitive
buckets and answers near-duplicate queries under a Hamming-distance
tolerance, without scanning the whole corpus.`,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file (defaults if omitted)")
	rootCmd.PersistentFlags().IntVarP(&tolerance, "k", "k", 0, "override the configured Hamming-distance tolerance")
	rootCmd.PersistentFlags().IntVar(&fBits, "f", 0, "override the configured fingerprint dimension")

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newProbeAddCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printBanner() {
	fmt.Println()
	fmt.Println("  +--------------------------------------------+")
	fmt.Printf("  |  simhashindex v%-28s|\n", version)
	fmt.Println("  |  near-duplicate detection over SimHash      |")
	fmt.Println("  +--------------------------------------------+")
	fmt.Println()
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configFile)
}

func applyOverrides(cfg *config.Config) {
	if fBits > 0 {
		cfg.Index.F = fBits
	}
	if tolerance > 0 {
		cfg.Index.K = tolerance
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("simhashindex version %s\n", version)
		},
	}
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <object-id> <hex-fingerprint>",
		Short: "insert a fingerprint into the index under an object id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyOverrides(cfg)

			ctx := context.Background()
			idx, closeFn, err := buildIdentifiedIndex(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			fp, err := fingerprint.FromHex(args[1], cfg.Index.F)
			if err != nil {
				return fmt.Errorf("bad fingerprint: %w", err)
			}
			if err := idx.Add(ctx, args[0], fp); err != nil {
				return err
			}
			fmt.Printf("  [+] added %s -> %s\n", args[0], fp.Hex())
			return nil
		},
	}
}

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <hex-fingerprint>",
		Short: "find every near-duplicate within tolerance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyOverrides(cfg)

			ctx := context.Background()
			idx, closeFn, err := buildIdentifiedIndex(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			fp, err := fingerprint.FromHex(args[0], cfg.Index.F)
			if err != nil {
				return fmt.Errorf("bad fingerprint: %w", err)
			}
			matches, err := idx.GetNearDups(ctx, fp)
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Println("  [*] no near-duplicates found")
				return nil
			}
			for _, m := range matches {
				fmt.Printf("  [+] %s (distance %d)\n", m.ObjectID, m.Distance)
			}
			return nil
		},
	}
}

func newProbeAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe-add <object-id> <hex-fingerprint>",
		Short: "find near-duplicates and add the fingerprint unless an exact duplicate exists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyOverrides(cfg)

			ctx := context.Background()
			idx, closeFn, err := buildIdentifiedIndex(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			fp, err := fingerprint.FromHex(args[1], cfg.Index.F)
			if err != nil {
				return fmt.Errorf("bad fingerprint: %w", err)
			}
			matches, err := idx.GetNearDupsAndAdd(ctx, args[0], fp)
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Println("  [*] no near-duplicates found, fingerprint added")
				return nil
			}
			for _, m := range matches {
				fmt.Printf("  [+] %s (distance %d)\n", m.ObjectID, m.Distance)
			}
			return nil
		},
	}
}

func buildIdentifiedIndex(ctx context.Context, cfg *config.Config) (*lshindex.IdentifiedIndex, func() error, error) {
	if !cfg.Index.WithID {
		return nil, nil, fmt.Errorf("simhashindex CLI requires with_id: true (got an anonymous-index config)")
	}
	bucketStore, idMap, closeFn, err := cfg.BuildStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	lshCfg, err := cfg.Index.LSHConfig(config.Logger())
	if err != nil {
		return nil, nil, err
	}
	return lshindex.NewIdentifiedIndex(lshCfg, bucketStore, idMap), closeFn, nil
}
