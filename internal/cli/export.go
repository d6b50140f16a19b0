package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/adforge/adforge/pkg/binding"
	"github.com/adforge/adforge/pkg/errors"
	"github.com/adforge/adforge/pkg/export"
)

// exportCommand creates the export command, which runs a full export
// job in the foreground with a live progress view.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		kind      string
		langs     []string
		outDir    string
		audioPath string
		audioSecs float64
		sets      []string
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "export <template>",
		Short: "Export a template as images, HTML bundles, or videos",
		Long: `Export renders the template once per language and size, packs the
results into zip archives, and writes them to the output directory.
Images and bundles nest per-language zips inside one master archive;
videos produce a separate archive per language.

Kinds:
  images   one PNG per language and size, zipped per language
  bundles  a self-contained HTML bundle per language
  videos   one MP4 per language and size (requires --audio)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.Config()
			if err != nil {
				return err
			}

			engine := binding.NewEngine(c.newLoader(cfg.Templates))
			if err := engine.Load(ctx, args[0]); err != nil {
				return err
			}
			for _, kv := range sets {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return errors.New(errors.ErrCodeInvalidInput, "--set wants field=value, got %q", kv)
				}
				if err := engine.Set(ctx, name, value); err != nil {
					return err
				}
			}
			snapshot, err := engine.Snapshot()
			if err != nil {
				return err
			}

			req := export.Request{
				Kind:          export.Kind(kind),
				Template:      args[0],
				Snapshot:      snapshot,
				SourceLang:    cfg.Translate.SourceLang,
				Languages:     langs,
				BlurIntensity: cfg.Render.BlurIntensity,
				Confirmed:     yes,
			}
			if audioPath != "" {
				data, err := os.ReadFile(audioPath)
				if err != nil {
					return errors.Wrap(errors.ErrCodeFileNotFound, err, "reading audio track")
				}
				req.Audio = data
				req.AudioExt = strings.TrimPrefix(filepath.Ext(audioPath), ".")
				req.AudioDuration = time.Duration(audioSecs * float64(time.Second))
			}

			if need, reason := export.NeedsConfirmation(req); need && !yes {
				printWarning("%s", reason)
				return errors.New(errors.ErrCodeInvalidInput, "large export needs --yes")
			}
			printInfo("Estimated duration: %s", export.Estimate(req).Round(time.Second))

			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			manager := export.NewManager(c.newExporter(ctx, cfg))
			job, err := manager.Start(runCtx, req)
			if err != nil {
				return err
			}
			model := NewExportProgressModel(job, cancel)
			if _, err := tea.NewProgram(model).Run(); err != nil {
				return err
			}

			if err := job.Err(); err != nil {
				return err
			}
			if job.Status() != export.StatusDone {
				return errors.New(errors.ErrCodeInternal, "export did not finish")
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "creating output directory")
			}
			for _, w := range job.Warnings() {
				printWarning("%s", w)
			}
			for _, art := range job.Outputs() {
				path := filepath.Join(outDir, art.Name)
				if err := os.WriteFile(path, art.Data, 0o644); err != nil {
					return errors.Wrap(errors.ErrCodeEncode, err, "writing archive")
				}
				printFile(path)
			}
			printSuccess("Exported %s for %d languages", kind, len(langs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", string(export.KindImages), "export kind (images, bundles, videos)")
	cmd.Flags().StringSliceVarP(&langs, "lang", "l", nil, "target languages (repeatable or comma separated)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&audioPath, "audio", "", "background audio track for video exports")
	cmd.Flags().Float64Var(&audioSecs, "audio-duration", 0, "audio track length in seconds")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "override a field value (field=value, repeatable)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm large exports without asking")
	return cmd
}
