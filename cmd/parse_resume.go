package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/junior-hunter/internal/logger"
	"go.uber.org/zap"
)

var parseResumeCmd = &cobra.Command{
	Use:   "parse-resume <file>",
	Short: "Parse a resume (pdf, docx, txt) into the profile JSON used for match scoring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return parseResume(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(parseResumeCmd)

	parseResumeCmd.Flags().StringP("output", "o", "", "write the profile JSON to this file instead of stdout")
}

func parseResume(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	cfg, err := getConfig()
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	generator, err := newGenerator(ctx, cfg.AI, log)
	if err != nil {
		return fmt.Errorf("creating ai client: %w", err)
	}

	profile, err := parseResumeFile(ctx, path, generator, cfg.AI.MaxLogLength, log)
	if err != nil {
		return err
	}

	data, err := profile.JSON()
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), data)
		return nil
	}

	if err := os.WriteFile(output, []byte(data+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}

	log.Info("resume profile written", zap.String("filename", output))
	return nil
}
