/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for Bletchley. Wires configuration flags into viper
and exposes one subcommand per cipher search plus crack, keyspace, encrypt, check and
serve.
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kleascm/bletchley/cmd/bletchley/commands"
	berrors "github.com/kleascm/bletchley/pkg/errors"
	"github.com/kleascm/bletchley/pkg/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Configuration
	configFile string
	logLevel   string
	logFormat  string
	logDir     string
	jsonLogs   bool

	// Search configuration
	tolerance float64
	workers   int
	timeout   time.Duration

	// Dictionary configuration
	dictionaryLocation string
	dictionaryFormat   string
	dictionarySelector string

	// Output configuration
	outputDir    string
	resultsFile  string
	snapshotFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bletchley",
		Short: "Bletchley - brute-force search for classical cipher keys",
		Long: `Bletchley recovers plaintext from Caesar, Vigenère and rail fence ciphertexts by
trying every key in a bounded key space and keeping the decryptions a dictionary
classifier accepts as real language.`,
		Version:       report.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Log output directory (empty logs to the console only)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Use JSON log format")

	rootCmd.PersistentFlags().Float64Var(&tolerance, "tolerance", 0.8, "Fraction of tokens that must be real words")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Concurrent Vigenère units (0 = number of CPUs)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Stop waiting for a search after this long (0 = no limit)")

	rootCmd.PersistentFlags().StringVar(&dictionaryLocation, "dictionary", "", "Word list path or URL (empty = embedded list)")
	rootCmd.PersistentFlags().StringVar(&dictionaryFormat, "dictionary-format", "auto", "Word list format (auto, txt, csv, json, html)")
	rootCmd.PersistentFlags().StringVar(&dictionarySelector, "dictionary-selector", "li", "CSS selector for html word lists")

	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "", "Directory for JSON search reports")
	rootCmd.PersistentFlags().StringVar(&resultsFile, "results-file", "", "Append accepted results to this JSON lines file")
	rootCmd.PersistentFlags().StringVar(&snapshotFile, "snapshot-file", "", "Restore and save accepted results in this gob snapshot")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))
	viper.BindPFlag("tolerance", rootCmd.PersistentFlags().Lookup("tolerance"))
	viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("dictionary", rootCmd.PersistentFlags().Lookup("dictionary"))
	viper.BindPFlag("dictionary_format", rootCmd.PersistentFlags().Lookup("dictionary-format"))
	viper.BindPFlag("dictionary_selector", rootCmd.PersistentFlags().Lookup("dictionary-selector"))
	viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("results_file", rootCmd.PersistentFlags().Lookup("results-file"))
	viper.BindPFlag("snapshot_file", rootCmd.PersistentFlags().Lookup("snapshot-file"))

	// Single cipher searches
	caesarCmd := &cobra.Command{
		Use:   "caesar [ciphertext...]",
		Short: "Search every Caesar shift",
		Long: `Try shifts 1 to 25, keep the decryption with the most dictionary words and
report it if it passes the tolerance check. Ties keep the lower shift.`,
		RunE: commands.RunCaesar,
	}
	railFenceCmd := &cobra.Command{
		Use:     "railfence [ciphertext...]",
		Aliases: []string{"rail-fence"},
		Short:   "Search rail counts 2 to 199",
		Long:    `Try rail counts in ascending order and report the first accepted decryption.`,
		RunE:    commands.RunRailFence,
	}
	substitutionCmd := &cobra.Command{
		Use:   "substitution [ciphertext...]",
		Short: "Substitution search (not supported)",
		Long: `Monoalphabetic substitution has 26! keys and no brute-force search. The command
always exits with the no-result status.`,
		RunE: commands.RunSubstitution,
	}
	for _, c := range []*cobra.Command{caesarCmd, railFenceCmd, substitutionCmd} {
		c.Flags().String("file", "", "Read the ciphertext from a file")
		rootCmd.AddCommand(c)
	}

	// Vigenère search
	vigenereCmd := &cobra.Command{
		Use:   "vigenere [ciphertext...]",
		Short: "Search Vigenère keys from the dictionary and/or all letter keys",
		Long: `Evaluate every key of the selected key space on a bounded worker pool. Mode "w"
uses dictionary words as keys, "l" uses every a-z key of --length letters and "wl"
uses both. Every accepted key is reported.`,
		RunE: commands.RunVigenere,
	}
	vigenereCmd.Flags().String("file", "", "Read the ciphertext from a file")
	vigenereCmd.Flags().String("mode", "w", "Key space: w (dictionary words), l (letters) or wl")
	vigenereCmd.Flags().Int("length", 0, "Key length for letter mode")
	rootCmd.AddCommand(vigenereCmd)

	// Combined search
	crackCmd := &cobra.Command{
		Use:   "crack [ciphertext...]",
		Short: "Run every cipher search in turn",
		Long: `Run the Caesar, Vigenère, rail fence and substitution searches on the same
ciphertext. Vigenère runs only when --mode is given.`,
		RunE: commands.RunCrack,
	}
	crackCmd.Flags().String("file", "", "Read the ciphertext from a file")
	crackCmd.Flags().StringSlice("ciphers", []string{}, "Ciphers to try (default all)")
	crackCmd.Flags().String("mode", "", "Vigenère key space (w, l or wl); empty skips Vigenère")
	crackCmd.Flags().Int("length", 0, "Vigenère key length for letter mode")
	rootCmd.AddCommand(crackCmd)

	// Key space inspection
	keySpaceCmd := &cobra.Command{
		Use:   "keyspace",
		Short: "Show the size of a cipher key space",
		RunE:  commands.RunKeySpace,
	}
	keySpaceCmd.Flags().String("cipher", "caesar", "Cipher kind")
	keySpaceCmd.Flags().String("mode", "w", "Vigenère key space (w, l or wl)")
	keySpaceCmd.Flags().Int("length", 0, "Vigenère key length for letter mode")
	keySpaceCmd.Flags().Bool("list", false, "Print the keys in search order")
	keySpaceCmd.Flags().Int("limit", 50, "Maximum keys to print with --list (0 = all)")
	rootCmd.AddCommand(keySpaceCmd)

	// Encryption of test messages
	encryptCmd := &cobra.Command{
		Use:   "encrypt [plaintext...]",
		Short: "Encrypt a message with a known key",
		RunE:  commands.RunEncrypt,
	}
	encryptCmd.Flags().String("file", "", "Read the plaintext from a file")
	encryptCmd.Flags().String("cipher", "", "Cipher kind (required)")
	encryptCmd.Flags().String("key", "", "Key: shift, rail count, keyword or 26-letter alphabet (required)")
	encryptCmd.MarkFlagRequired("cipher")
	encryptCmd.MarkFlagRequired("key")
	rootCmd.AddCommand(encryptCmd)

	// Add check command for built-in self-checks
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Perform built-in self-checks",
		Long: `Verify the configuration, cipher round trips, dictionary and output paths.
Useful for CI/CD integration.`,
		RunE: commands.PerformSelfCheck,
	})

	// HTTP API
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API over HTTP",
		RunE:  commands.RunServe,
	}
	serveCmd.Flags().String("listen", ":8080", "Listen address")
	serveCmd.Flags().Int("max-keys", 500000, "Largest Vigenère key space a request may search")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	rootCmd.AddCommand(serveCmd)

	// Execute root command
	err := rootCmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, berrors.ErrNoResult):
		fmt.Fprintf(os.Stderr, "%v\n", err)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(commands.ExitCode(err))
}
